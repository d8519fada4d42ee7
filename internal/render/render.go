// Package render turns a structured plan into the final user-facing reply,
// choosing a non-repeating opener and applying per-mode formatting.
package render

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rohankhatri7/AURA/internal/llm"
	"github.com/rohankhatri7/AURA/internal/mode"
)

// DefaultQuestion closes a turn when the plan supplies no question.
const DefaultQuestion = "What feels like the hardest part of this right now?"

const maxRecentOpeners = 5

// Openers maps each mode to its lead-in phrase table. Modes without a table
// borrow the reflection table.
var Openers = map[string][]string{
	"reflection": {
		"It sounds like",
		"I'm hearing",
		"From what you're saying,",
		"That feels like",
		"It seems like",
		"I'm picking up that",
		"You're noticing",
	},
	"compassion": {
		"That's really heavy,",
		"I'm sorry that's hitting you like this,",
		"That sounds painful,",
		"That sounds like a lot to carry,",
		"I'm sorry you're dealing with this,",
	},
	"reframe": {
		"One way to look at this is",
		"Another angle might be",
		"It could be that",
		"A different lens could be",
		"An alternate take is",
	},
	"options": {
		"A few things you could try:",
		"If you want ideas, here are a few:",
		"Here are some options:",
		"A couple possibilities:",
		"Some small experiments to consider:",
	},
	"micro_plan": {
		"Let's make this small and doable.",
		"Want a tiny plan for the next 10 minutes?",
		"How about a very small next step?",
		"Let's keep it light and practical.",
		"We can make a micro-plan.",
	},
	"values": {
		"What feels most important here is",
		"It might help to anchor on what matters most:",
		"A values check might help:",
		"What you want to protect or move toward is",
		"You might be leaning toward",
	},
	"curious": {
		"Help me understand:",
		"I'm curious:",
		"When does it feel strongest?",
		"What's the hardest moment in it?",
		"What part feels most stuck?",
	},
	"summary": {
		"Let me check I've got this right:",
		"So far I'm hearing:",
		"Here's the shape of what you're saying:",
		"Quick recap:",
		"Tell me if I'm getting this:",
	},
}

// splitSentences splits on sentence-ending punctuation followed by
// whitespace, retaining the punctuation.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []string
	var b strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func trimSentences(text string, maxSentences int) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}
	return strings.Join(sentences, " ")
}

// combineOpener joins an opener phrase with the first sentence, fixing
// terminal punctuation and down-casing the sentence after an opener.
func combineOpener(opener, sentence string) string {
	opener = strings.TrimSpace(opener)
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return strings.TrimRight(opener, ".") + "."
	}

	if !strings.ContainsRune(".!?", rune(sentence[len(sentence)-1])) {
		sentence += "."
	}

	if opener != "" {
		if r, size := utf8.DecodeRuneInString(sentence); unicode.IsUpper(r) {
			sentence = string(unicode.ToLower(r)) + sentence[size:]
		}
		return opener + " " + sentence
	}
	return sentence
}

// chooseOpener picks a phrase for the mode, excluding recently used openers.
// A one-entry table is always returned as-is. The pick is deterministic in
// the seed.
func chooseOpener(modeName string, lastOpeners []string, seed string) string {
	options, ok := Openers[modeName]
	if !ok {
		options = Openers["reflection"]
	}
	recent := map[string]bool{}
	for _, o := range lastOpeners {
		recent[o] = true
	}
	candidates := make([]string, 0, len(options))
	for _, o := range options {
		if !recent[o] {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		candidates = options
	}
	rng := rand.New(rand.NewSource(mode.SeedHash(seed)))
	return candidates[rng.Intn(len(candidates))]
}

// FromPlan renders the final text for a plan and returns it together with
// the updated recent-opener queue (newest pushed, trimmed to the last 5).
func FromPlan(plan llm.Plan, modeName, intent, emotion string, lastOpeners []string) (string, []string) {
	reflection := trimSentences(plan.Reflection, 1)
	core := trimSentences(plan.Core, 4)
	question := trimSentences(plan.Question, 1)
	tagline := trimSentences(plan.Tagline, 1)

	seed := fmt.Sprintf("%s|%s|%s|%s|%s|%s", modeName, intent, emotion, reflection, core, question)
	opener := chooseOpener(modeName, lastOpeners, seed)
	if opener != "" {
		lastOpeners = append(lastOpeners, opener)
		if len(lastOpeners) > maxRecentOpeners {
			lastOpeners = lastOpeners[len(lastOpeners)-maxRecentOpeners:]
		}
	}

	var parts []string

	switch modeName {
	case "options":
		parts = append(parts, combineOpener(opener, reflection))
		var opts []string
		for _, o := range strings.Split(core, " | ") {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		if len(opts) > 4 {
			opts = opts[:4]
		}
		if len(opts) > 0 {
			lines := make([]string, len(opts))
			for i, o := range opts {
				lines[i] = "- " + o
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	case "micro_plan":
		parts = append(parts, combineOpener(opener, reflection))
		var steps []string
		for _, s := range strings.Split(core, " | ") {
			if s = strings.TrimSpace(s); s != "" {
				steps = append(steps, s)
			}
		}
		if len(steps) == 0 {
			steps = splitSentences(core)
		}
		if len(steps) > 3 {
			steps = steps[:3]
		}
		if len(steps) > 0 {
			lines := make([]string, len(steps))
			for i, s := range steps {
				lines[i] = fmt.Sprintf("%d) %s", i+1, s)
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	case "values":
		parts = append(parts, combineOpener(opener, reflection))
		if core != "" {
			parts = append(parts, core)
		}
	case "curious":
		parts = append(parts, combineOpener(opener, firstNonEmpty(reflection, core)))
	default:
		// reflection, compassion, reframe, summary and any unknown mode
		parts = append(parts, combineOpener(opener, firstNonEmpty(reflection, core)))
		if reflection != "" && core != "" {
			parts = append(parts, core)
		}
	}

	if tagline != "" {
		parts = append(parts, tagline)
	}

	if question == "" {
		question = DefaultQuestion
	}
	if strings.Contains(strings.ToLower(strings.Join(parts, "\n")), strings.ToLower(question)) {
		question = ""
	}
	if question != "" {
		parts = append(parts, question)
	}

	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n"), lastOpeners
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
