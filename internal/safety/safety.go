// Package safety classifies user text into coarse risk levels and supplies
// the fixed crisis-resources response used when risk is high.
package safety

import (
	"regexp"
	"strings"
)

// RiskLevel is a coarse safety classification of user text.
type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Default pattern sets. These are data, not code: a Gate can be built from
// alternative lists without touching the matching algorithm.
var (
	DefaultHighRiskPatterns = []string{
		`\bkill myself\b`,
		`\bsuicide\b`,
		`\bend my life\b`,
		`\bwant to die\b`,
		`\bself[- ]?harm\b`,
		`\bcut myself\b`,
		`\boverdose\b`,
		`\bi'm going to (hurt|harm) myself\b`,
		`\bno reason to live\b`,
	}

	DefaultMediumRiskPatterns = []string{
		`\bhopeless\b`,
		`\bworthless\b`,
		`\bcan't go on\b`,
		`\bpanic attack\b`,
	}
)

// Gate matches case-normalized text against ordered risk pattern lists.
type Gate struct {
	high   []*regexp.Regexp
	medium []*regexp.Regexp
}

// NewGate builds a Gate from the default pattern sets.
func NewGate() *Gate {
	g, err := NewGateWithPatterns(DefaultHighRiskPatterns, DefaultMediumRiskPatterns)
	if err != nil {
		// default patterns are compile-tested; reaching this is a programming error
		panic(err)
	}
	return g
}

// NewGateWithPatterns builds a Gate from caller-supplied pattern lists.
// Patterns are matched against lower-cased text in list order.
func NewGateWithPatterns(high, medium []string) (*Gate, error) {
	g := &Gate{}
	for _, p := range high {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		g.high = append(g.high, re)
	}
	for _, p := range medium {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		g.medium = append(g.medium, re)
	}
	return g, nil
}

// Level classifies text. High-risk patterns are checked first and
// short-circuit; any medium match yields medium; otherwise none.
func (g *Gate) Level(text string) RiskLevel {
	t := strings.ToLower(text)
	for _, re := range g.high {
		if re.MatchString(t) {
			return RiskHigh
		}
	}
	for _, re := range g.medium {
		if re.MatchString(t) {
			return RiskMedium
		}
	}
	return RiskNone
}

// Message returns the fixed crisis-resources response. It is deliberately
// not templated and never passes through the renderer.
func Message() string {
	return "I’m really sorry you’re going through this. I can’t help with self-harm. " +
		"If you’re in the US, you can call or text 988 (Suicide and Crisis Lifeline). " +
		"If you are in immediate danger, call 911 or your local emergency number. " +
		"If you can, reach out to someone you trust and stay with them."
}
