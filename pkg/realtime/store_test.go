package realtime

import (
	"sort"
	"testing"
)

func TestNewStore(t *testing.T) {
	s := NewStore[string, int]()
	if s == nil {
		t.Fatal("NewStore returned nil")
	}
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
}

func TestStore_Put_Get(t *testing.T) {
	s := NewStore[string, string]()
	s.Put("conn1", "state1")
	v, ok := s.Get("conn1")
	if !ok {
		t.Fatal("Get returned false for existing entry")
	}
	if v != "state1" {
		t.Errorf("value %q, want state1", v)
	}

	_, ok = s.Get("nonexistent")
	if ok {
		t.Error("Get should return false for missing ID")
	}
}

func TestStore_Delete(t *testing.T) {
	s := NewStore[string, int]()
	s.Put("a", 1)
	v, ok := s.Delete("a")
	if !ok || v != 1 {
		t.Errorf("Delete got %d,%t, want 1,true", v, ok)
	}
	if _, ok := s.Delete("a"); ok {
		t.Error("second Delete should report false")
	}
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
}

func TestStore_ValuesIsSnapshot(t *testing.T) {
	s := NewStore[int, int]()
	s.Put(1, 10)
	s.Put(2, 20)
	vals := s.Values()
	s.Put(3, 30)
	s.Delete(1)

	sort.Ints(vals)
	if len(vals) != 2 || vals[0] != 10 || vals[1] != 20 {
		t.Errorf("Values %v, want [10 20]", vals)
	}
}

func TestStore_Filter(t *testing.T) {
	s := NewStore[int, int]()
	for i := 1; i <= 4; i++ {
		s.Put(i, i)
	}
	even := s.Filter(func(v int) bool { return v%2 == 0 })
	sort.Ints(even)
	if len(even) != 2 || even[0] != 2 || even[1] != 4 {
		t.Errorf("Filter %v, want [2 4]", even)
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore[string, int]()
	s.Put("a", 1)
	s.Put("b", 2)
	removed := s.Clear()
	if len(removed) != 2 {
		t.Errorf("Clear removed %d, want 2", len(removed))
	}
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
}
