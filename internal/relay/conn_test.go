package relay

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestConn_WriterPreservesOrder(t *testing.T) {
	r := NewRegistry()
	_ = r.CreateChannel("c")
	ft := newFakeTransport()
	c := r.Accept(ft)
	r.Interpret(c, "subc")
	ft.next(t)

	for i := 0; i < 100; i++ {
		_ = r.Publish("c", float64(i))
	}
	for i := 0; i < 100; i++ {
		if ev := ft.next(t); ev["msg"] != float64(i) {
			t.Fatalf("event %d: got %v", i, ev)
		}
	}
	waitFor(t, "sent counter", func() bool { return c.EventsSent() == 101 })
}

func TestConn_StateString(t *testing.T) {
	var testcases = []struct {
		s    State
		want string
	}{
		{StateConnecting, "connecting"},
		{StateActive, "active"},
		{StateClosed, "closed"},
		{State(9), "State(9)"},
	}
	for _, tc := range testcases {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

// pingTransport records control frames.
type pingTransport struct {
	*fakeTransport
	pings  atomic.Int32
	closes atomic.Int32
}

func (p *pingTransport) WriteControl(messageType int, _ []byte, _ time.Time) error {
	switch messageType {
	case websocket.PingMessage:
		p.pings.Add(1)
	case websocket.CloseMessage:
		p.closes.Add(1)
	}
	return nil
}

func TestConn_WriterPingsAndSendsClose(t *testing.T) {
	r := NewRegistry(WithPingInterval(10 * time.Millisecond))
	pt := &pingTransport{fakeTransport: newFakeTransport()}
	c := r.Accept(pt)

	waitFor(t, "keepalive ping", func() bool { return pt.pings.Load() >= 2 })

	r.Remove(c)
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not stop")
	}
	if pt.closes.Load() != 1 {
		t.Errorf("close frames %d, want 1", pt.closes.Load())
	}
}
