package relay

import (
	"log"
	"sort"
	"sync/atomic"
	"time"

	"chanrelay/internal/debug"
	"chanrelay/pkg/realtime"
)

const (
	DefaultOutboxSize   = 256
	DefaultWriteTimeout = 10 * time.Second
	DefaultPingInterval = 30 * time.Second

	defaultLockSlots = 64
)

// Registry is the single source of truth for which connections and channels
// exist and who is subscribed to what. It is also the broadcast engine.
//
// Locks are always taken in this order: channel key lock, directory, connection
// store, subscription table, outbox.
type Registry struct {
	dir   *Directory
	conns *realtime.Store[string, *Conn]
	locks *realtime.KeyLocks
	conf  registryConfig

	startupTime     time.Time
	eventsBroadcast atomic.Uint64
}

type registryConfig struct {
	outboxSize   int
	writeTimeout time.Duration
	pingInterval time.Duration
}

// Option configures a Registry.
type Option func(conf *registryConfig)

// WithOutboxSize sets how many events may queue for one connection before it is
// treated as failed.
func WithOutboxSize(n int) Option {
	return func(conf *registryConfig) {
		conf.outboxSize = n
	}
}

// WithWriteTimeout bounds a single frame write. Zero disables the deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(conf *registryConfig) {
		conf.writeTimeout = d
	}
}

// WithPingInterval sets the keepalive ping period. Zero disables pings.
func WithPingInterval(d time.Duration) Option {
	return func(conf *registryConfig) {
		conf.pingInterval = d
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	conf := registryConfig{
		outboxSize:   DefaultOutboxSize,
		writeTimeout: DefaultWriteTimeout,
		pingInterval: DefaultPingInterval,
	}
	for _, opt := range opts {
		opt(&conf)
	}
	return &Registry{
		dir:         NewDirectory(),
		conns:       realtime.NewStore[string, *Conn](),
		locks:       realtime.NewKeyLocks(defaultLockSlots),
		conf:        conf,
		startupTime: time.Now().UTC(),
	}
}

// Accept registers a new connection and queues a "new" advertisement for every
// channel that exists at that instant. Channels created afterwards reach the
// connection through the normal broadcast path.
func (r *Registry) Accept(t Transport, opts ...ConnOption) *Conn {
	c := newConn(t, r.conf, opts...)

	var failed error
	r.dir.View(func(ids []string) {
		// room for the whole snapshot on top of the regular buffer
		c.outbox = realtime.NewOutbox[Event](c.outboxSize + len(ids))
		r.conns.Put(c.ID, c)
		c.setState(StateActive)
		for _, id := range ids {
			if err := c.send(Event{Type: KindNew, ID: id}); err != nil {
				failed = err
				return
			}
		}
	})
	go c.writer()

	if failed != nil {
		r.drop(c, failed)
	}
	debug.Debugf("accepted %s (%d connections)", c.ID, r.conns.Len())
	return c
}

// Serve runs the receive loop for c until the transport fails or is closed,
// then removes c from the registry. Commands are applied in arrival order.
func (r *Registry) Serve(c *Conn) error {
	defer r.Remove(c)
	for {
		_, frame, err := c.transport.ReadMessage()
		if err != nil {
			return err
		}
		r.Interpret(c, string(frame))
	}
}

// Remove deregisters c. No events are queued for it afterwards; events already
// queued are still flushed before the transport is closed.
func (r *Registry) Remove(c *Conn) {
	if _, ok := r.conns.Delete(c.ID); ok {
		debug.Debugf("removed %s (%d connections)", c.ID, r.conns.Len())
	}
	c.close()
}

// Conn returns the registered connection with the given id.
func (r *Registry) Conn(id string) (*Conn, bool) {
	return r.conns.Get(id)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return r.conns.Len()
}

// Channels returns the existing channel ids in sorted order.
func (r *Registry) Channels() []string {
	return r.dir.Snapshot()
}

// ChannelExists reports whether id is currently a channel.
func (r *Registry) ChannelExists(id string) bool {
	return r.dir.Exists(id)
}

// Close removes every connection.
func (r *Registry) Close() {
	for _, c := range r.conns.Clear() {
		c.close()
	}
}

func (r *Registry) drop(c *Conn, err error) {
	log.Printf("dropping connection %s: %v", c.ID, err)
	r.Remove(c)
}

// Stats is a snapshot of the registry for status reporting.
type Stats struct {
	StartupTime     int64        `json:"startup_time"`
	EventsBroadcast uint64       `json:"events_broadcast"`
	Channels        []string     `json:"channels"`
	Connections     []ConnStatus `json:"connections"`
}

// Stats returns a snapshot of channels and connections, oldest connection first.
func (r *Registry) Stats() Stats {
	conns := r.conns.Values()
	cl := make([]ConnStatus, 0, len(conns))
	for _, c := range conns {
		cl = append(cl, c.Status())
	}
	sort.Slice(cl, func(i, j int) bool {
		if cl[i].Created != cl[j].Created {
			return cl[i].Created < cl[j].Created
		}
		return cl[i].ID < cl[j].ID
	})
	return Stats{
		StartupTime:     r.startupTime.Unix(),
		EventsBroadcast: r.eventsBroadcast.Load(),
		Channels:        r.dir.Snapshot(),
		Connections:     cl,
	}
}
