package relay

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chanrelay/internal/debug"
	"chanrelay/pkg/realtime"
)

// Transport is the persistent bidirectional link behind a connection.
// *websocket.Conn satisfies it.
type Transport interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// controlWriter is implemented by transports that support control frames.
type controlWriter interface {
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

// State is the lifecycle stage of a connection.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Conn is a registered client connection: its transport, its subscriptions and
// the single writer goroutine that owns all writes to the transport.
type Conn struct {
	ID         string
	RemoteAddr string
	Created    time.Time

	transport Transport
	codec     Codec
	subs      *Subscriptions
	outbox    *realtime.Outbox[Event]

	outboxSize   int
	writeTimeout time.Duration
	pingInterval time.Duration

	state      atomic.Int32
	eventsSent atomic.Uint64
	done       chan struct{}
}

// ConnOption customizes a connection at accept time.
type ConnOption func(c *Conn)

// WithCodec selects the event encoding for the connection.
func WithCodec(codec Codec) ConnOption {
	return func(c *Conn) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithRemoteAddr records the client address for status reporting.
func WithRemoteAddr(addr string) ConnOption {
	return func(c *Conn) {
		c.RemoteAddr = addr
	}
}

func newConn(t Transport, conf registryConfig, opts ...ConnOption) *Conn {
	c := &Conn{
		ID:           uuid.NewString(),
		Created:      time.Now().UTC(),
		transport:    t,
		codec:        JSONCodec,
		subs:         newSubscriptions(),
		outboxSize:   conf.outboxSize,
		writeTimeout: conf.writeTimeout,
		pingInterval: conf.pingInterval,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle stage.
func (c *Conn) State() State {
	return State(c.state.Load())
}

func (c *Conn) setState(s State) {
	c.state.Store(int32(s))
}

// Subscriptions returns the connection's subscription table.
func (c *Conn) Subscriptions() *Subscriptions {
	return c.subs
}

// EventsSent returns how many events were written to the transport.
func (c *Conn) EventsSent() uint64 {
	return c.eventsSent.Load()
}

// Done is closed once the writer has stopped and the transport is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// send queues ev for the writer. It never blocks.
func (c *Conn) send(ev Event) error {
	err := c.outbox.Push(ev)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, realtime.ErrOutboxFull):
		return fmt.Errorf("%s: %w", c.ID, ErrSlowConsumer)
	default:
		return fmt.Errorf("%s: %w", c.ID, ErrConnClosed)
	}
}

// close stops accepting events. Queued events are still flushed by the writer.
func (c *Conn) close() {
	c.setState(StateClosed)
	c.subs.clear()
	if c.outbox != nil {
		c.outbox.Close()
	}
}

// writer drains the outbox onto the transport. It is the only goroutine that
// writes data frames, and it closes the transport when it returns.
func (c *Conn) writer() {
	defer close(c.done)
	defer c.transport.Close()
	// a failed write leaves the outbox closed so broadcasters see the connection as gone
	defer c.outbox.Close()

	cw, canControl := c.transport.(controlWriter)
	var tick <-chan time.Time
	if canControl && c.pingInterval > 0 {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case ev, ok := <-c.outbox.C():
			if !ok {
				debug.Debugf("outbox closed for %s", c.ID)
				if canControl {
					msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
					_ = cw.WriteControl(websocket.CloseMessage, msg, c.deadline())
				}
				return
			}
			if err := c.write(ev); err != nil {
				debug.Debugf("write to %s failed: %v", c.ID, err)
				return
			}
		case <-tick:
			if err := cw.WriteControl(websocket.PingMessage, nil, c.deadline()); err != nil {
				debug.Debugf("ping to %s failed: %v", c.ID, err)
				return
			}
		}
	}
}

func (c *Conn) write(ev Event) error {
	data, err := c.codec.Encode(ev)
	if err != nil {
		return err
	}
	if c.writeTimeout > 0 {
		if err := c.transport.SetWriteDeadline(c.deadline()); err != nil {
			return err
		}
	}
	if err := c.transport.WriteMessage(c.codec.FrameType(), data); err != nil {
		return err
	}
	c.eventsSent.Add(1)
	return nil
}

func (c *Conn) deadline() time.Time {
	if c.writeTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.writeTimeout)
}

// ConnStatus is a snapshot of one connection for status reporting.
type ConnStatus struct {
	ID            string   `json:"id"`
	Created       int64    `json:"created_at"`
	ClientIP      string   `json:"client_ip"`
	Encoding      string   `json:"encoding"`
	Subscriptions []string `json:"subscriptions"`
	EventsSent    uint64   `json:"events_sent"`
	Queued        int      `json:"queued"`
}

// Status returns a snapshot of the connection.
func (c *Conn) Status() ConnStatus {
	enc := c.codec.Subprotocol()
	if enc == "" {
		enc = "json"
	}
	return ConnStatus{
		ID:            c.ID,
		Created:       c.Created.Unix(),
		ClientIP:      c.RemoteAddr,
		Encoding:      enc,
		Subscriptions: c.subs.List(),
		EventsSent:    c.eventsSent.Load(),
		Queued:        c.outbox.Len(),
	}
}
