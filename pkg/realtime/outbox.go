package realtime

import (
	"errors"
	"sync"
)

var (
	// ErrOutboxFull is returned by Push when the consumer is lagging and the buffer has no room.
	ErrOutboxFull = errors.New("outbox full")
	// ErrOutboxClosed is returned by Push after Close.
	ErrOutboxClosed = errors.New("outbox closed")
)

// Outbox is a bounded, ordered queue with a single consumer.
// Push never blocks; Close is idempotent and safe to race with Push.
type Outbox[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

// NewOutbox creates an outbox holding at most size pending items.
func NewOutbox[T any](size int) *Outbox[T] {
	if size < 1 {
		size = 1
	}
	return &Outbox[T]{ch: make(chan T, size)}
}

// Push enqueues v behind everything pushed before it.
func (o *Outbox[T]) Push(v T) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrOutboxClosed
	}
	select {
	case o.ch <- v:
		return nil
	default:
		return ErrOutboxFull
	}
}

// C returns the receive side. It is closed once Close has been called and the
// remaining items have been drained.
func (o *Outbox[T]) C() <-chan T {
	return o.ch
}

// Close stops accepting items and closes the channel returned by C.
func (o *Outbox[T]) Close() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
	o.mu.Unlock()
}

// Len returns the number of items waiting to be consumed.
func (o *Outbox[T]) Len() int {
	return len(o.ch)
}
