package relay

import "testing"

func TestSubscriptions(t *testing.T) {
	s := newSubscriptions()
	s.Add("b")
	s.Add("a")
	s.Add("a")
	if s.Len() != 2 {
		t.Errorf("Len %d, want 2", s.Len())
	}
	if !s.Contains("a") {
		t.Error("should contain a")
	}
	if got := s.List(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("List %v, want [a b]", got)
	}

	s.Remove("a")
	s.Remove("missing")
	if s.Contains("a") {
		t.Error("a should be removed")
	}

	s.clear()
	if s.Len() != 0 {
		t.Errorf("Len after clear %d, want 0", s.Len())
	}
}
