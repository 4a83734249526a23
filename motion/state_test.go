package motion

import "testing"

func TestStateNamesRoundtrip(t *testing.T) {
	for _, s := range []State{Rest, Accelerating, Turning, Cruising, Stopping} {
		got, err := ParseState(s.String())
		if err != nil {
			t.Fatalf("ParseState(%q) failed: %v", s.String(), err)
		}
		if got != s {
			t.Errorf("roundtrip %s -> %s", s, got)
		}
	}
}

func TestParseState(t *testing.T) {
	if s, err := ParseState(""); err != nil || s != Rest {
		t.Errorf("empty name: got %s, %v", s, err)
	}
	if _, err := ParseState("drifting"); err == nil {
		t.Error("expected error for unknown state")
	}
	if got := State(9).String(); got != "state(9)" {
		t.Errorf("unexpected name for unknown state: %q", got)
	}
}

func TestMoving(t *testing.T) {
	if Rest.Moving() {
		t.Error("rest should not move")
	}
	for _, s := range []State{Accelerating, Turning, Cruising, Stopping} {
		if !s.Moving() {
			t.Errorf("%s should move", s)
		}
	}
}
