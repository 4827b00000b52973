package realtime

import (
	"errors"
	"testing"
)

func TestNewOutbox(t *testing.T) {
	o := NewOutbox[string](0)
	if o == nil {
		t.Fatal("NewOutbox returned nil")
	}
	if err := o.Push("a"); err != nil {
		t.Fatalf("Push on minimum-sized outbox: %v", err)
	}
}

func TestOutbox_PushPreservesOrder(t *testing.T) {
	o := NewOutbox[string](3)
	for _, v := range []string{"one", "two", "three"} {
		if err := o.Push(v); err != nil {
			t.Fatalf("Push(%q): %v", v, err)
		}
	}
	for _, want := range []string{"one", "two", "three"} {
		if got := <-o.C(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestOutbox_PushFull(t *testing.T) {
	o := NewOutbox[int](1)
	if err := o.Push(1); err != nil {
		t.Fatal(err)
	}
	if err := o.Push(2); !errors.Is(err, ErrOutboxFull) {
		t.Errorf("got %v, want ErrOutboxFull", err)
	}
	if o.Len() != 1 {
		t.Errorf("Len %d, want 1", o.Len())
	}
}

func TestOutbox_CloseDrainsThenCloses(t *testing.T) {
	o := NewOutbox[int](2)
	_ = o.Push(7)
	o.Close()
	o.Close() // idempotent

	if err := o.Push(8); !errors.Is(err, ErrOutboxClosed) {
		t.Errorf("got %v, want ErrOutboxClosed", err)
	}
	if got, ok := <-o.C(); !ok || got != 7 {
		t.Errorf("got %d,%t, want 7,true", got, ok)
	}
	if _, ok := <-o.C(); ok {
		t.Error("channel should be closed after drain")
	}
}
