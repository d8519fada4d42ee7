// Package mode selects the conversational strategy for a turn.
package mode

import (
	"hash/fnv"
	"math/rand"
)

const Reflection = "reflection"

// Modes is the canonical ordering of conversational modes.
var Modes = []string{
	"reflection",
	"reframe",
	"options",
	"values",
	"micro_plan",
	"summary",
	"compassion",
	"curious",
}

var emotionModes = map[string][]string{
	"sadness": {"compassion", "reflection", "micro_plan", "values"},
	"fear":    {"compassion", "reflection", "micro_plan", "values"},
	"anger":   {"reflection", "reframe", "options"},
	"joy":     {"summary", "values", "micro_plan"},
}

var intentModes = map[string][]string{
	"goal_setting": {"micro_plan", "options", "values"},
}

// Allowed returns the modes permitted for the given intent and emotion,
// in canonical order. Reflection is always allowed.
func Allowed(intent, emotion string) []string {
	set := map[string]bool{Reflection: true}
	for _, m := range emotionModes[emotion] {
		set[m] = true
	}
	for _, m := range intentModes[intent] {
		set[m] = true
	}

	out := make([]string, 0, len(set))
	for _, m := range Modes {
		if set[m] {
			out = append(out, m)
		}
	}
	return out
}

// Choose picks one mode from allowed, avoiding the two most recently used
// modes when possible. The pick is uniform over the candidates and fully
// determined by seed, so the same session/turn always selects the same mode.
func Choose(allowed, lastModes []string, seed string) string {
	if len(allowed) == 0 {
		return Reflection
	}

	recent := map[string]bool{}
	for _, m := range tail(lastModes, 2) {
		recent[m] = true
	}
	candidates := make([]string, 0, len(allowed))
	for _, m := range allowed {
		if !recent[m] {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		candidates = allowed
	}

	rng := rand.New(rand.NewSource(SeedHash(seed)))
	return candidates[rng.Intn(len(candidates))]
}

// SeedHash maps a seed string to a stable int64. FNV-1a, so the value is the
// same across processes and runs (unlike a language-level object hash).
func SeedHash(seed string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return int64(h.Sum64())
}

func tail(s []string, n int) []string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
