package safety

import "testing"

func TestLevel_HighRisk(t *testing.T) {
	g := NewGate()
	cases := []string{
		"I want to kill myself",
		"thinking about SUICIDE lately",
		"there is no reason to live",
		"i'm going to hurt myself tonight",
	}
	for _, c := range cases {
		if got := g.Level(c); got != RiskHigh {
			t.Fatalf("Level(%q) = %q, want high", c, got)
		}
	}
}

func TestLevel_MediumRisk(t *testing.T) {
	g := NewGate()
	if got := g.Level("I feel so hopeless about this job"); got != RiskMedium {
		t.Fatalf("expected medium, got %q", got)
	}
	if got := g.Level("had a panic attack at work"); got != RiskMedium {
		t.Fatalf("expected medium, got %q", got)
	}
}

func TestLevel_HighTakesPrecedenceOverMedium(t *testing.T) {
	g := NewGate()
	text := "I feel hopeless and I want to kill myself"
	if got := g.Level(text); got != RiskHigh {
		t.Fatalf("expected high precedence, got %q", got)
	}
}

func TestLevel_None(t *testing.T) {
	g := NewGate()
	if got := g.Level("today was actually fine"); got != RiskNone {
		t.Fatalf("expected none, got %q", got)
	}
	if got := g.Level(""); got != RiskNone {
		t.Fatalf("expected none for empty text, got %q", got)
	}
}

func TestNewGateWithPatterns_CustomSets(t *testing.T) {
	g, err := NewGateWithPatterns([]string{`\bred\b`}, []string{`\byellow\b`})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if g.Level("code RED now") != RiskHigh {
		t.Fatalf("expected custom high pattern to match")
	}
	if g.Level("a yellow flag") != RiskMedium {
		t.Fatalf("expected custom medium pattern to match")
	}
	if _, err := NewGateWithPatterns([]string{`(`}, nil); err == nil {
		t.Fatalf("expected compile error for invalid pattern")
	}
}

func TestMessage_Fixed(t *testing.T) {
	if Message() == "" {
		t.Fatalf("expected non-empty safety message")
	}
	if Message() != Message() {
		t.Fatalf("expected stable safety message")
	}
}
