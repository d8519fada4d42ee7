package mode

import "testing"

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func TestAllowed_AlwaysIncludesReflection(t *testing.T) {
	for _, emotion := range []string{"neutral", "sadness", "anger", "joy", ""} {
		got := Allowed("other", emotion)
		if !contains(got, Reflection) {
			t.Fatalf("Allowed(other, %q) missing reflection: %v", emotion, got)
		}
	}
}

func TestAllowed_UnionAndCanonicalOrder(t *testing.T) {
	got := Allowed("goal_setting", "sadness")
	want := []string{"reflection", "options", "values", "micro_plan", "compassion"}
	if len(got) != len(want) {
		t.Fatalf("allowed mismatch: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("canonical order broken at %d: got %v want %v", i, got, want)
		}
	}
}

func TestChoose_EmptyAllowedFallsBackToReflection(t *testing.T) {
	if got := Choose(nil, nil, "seed"); got != Reflection {
		t.Fatalf("expected reflection for empty allowed, got %q", got)
	}
}

func TestChoose_NeverOutsideAllowed(t *testing.T) {
	allowed := []string{"reflection", "reframe", "options"}
	for i := 0; i < 50; i++ {
		got := Choose(allowed, []string{"summary"}, string(rune('a'+i%26)))
		if !contains(allowed, got) {
			t.Fatalf("chose %q outside allowed %v", got, allowed)
		}
	}
}

func TestChoose_ExcludesTwoMostRecent(t *testing.T) {
	allowed := []string{"reflection", "reframe", "options", "values"}
	last := []string{"summary", "reflection", "reframe"}
	for i := 0; i < 50; i++ {
		got := Choose(allowed, last, string(rune('a'+i%26)))
		if got == "reflection" || got == "reframe" {
			t.Fatalf("chose recently used mode %q", got)
		}
	}
}

func TestChoose_FallsBackToFullAllowedWhenExclusionEmpties(t *testing.T) {
	allowed := []string{"reflection", "reframe"}
	last := []string{"reflection", "reframe"}
	got := Choose(allowed, last, "seed")
	if !contains(allowed, got) {
		t.Fatalf("expected fallback inside allowed, got %q", got)
	}
}

func TestChoose_DeterministicPerSeed(t *testing.T) {
	allowed := []string{"reflection", "reframe", "options", "values", "micro_plan"}
	a := Choose(allowed, nil, "sess-1:3")
	b := Choose(allowed, nil, "sess-1:3")
	if a != b {
		t.Fatalf("same seed produced different modes: %q vs %q", a, b)
	}
	varied := false
	for i := 0; i < 20; i++ {
		if Choose(allowed, nil, "sess-1:"+string(rune('a'+i))) != a {
			varied = true
			break
		}
	}
	if !varied {
		t.Fatalf("expected different seeds to vary the choice")
	}
}

func TestSeedHash_Stable(t *testing.T) {
	if SeedHash("abc") != SeedHash("abc") {
		t.Fatalf("seed hash not stable")
	}
	if SeedHash("abc") == SeedHash("abd") {
		t.Fatalf("suspicious collision between different seeds")
	}
}
