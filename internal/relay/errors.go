package relay

import "errors"

var (
	// ErrInvalidOrDuplicateChannel is returned when creating a channel with an
	// empty identifier or one that already exists.
	ErrInvalidOrDuplicateChannel = errors.New("missing or invalid channel identifier")
	// ErrUnknownChannel is returned when deleting or publishing to a channel that
	// does not exist.
	ErrUnknownChannel = errors.New("channel doesn't exist")

	// ErrConnClosed is returned when sending to a connection that has been removed.
	ErrConnClosed = errors.New("connection closed")
	// ErrSlowConsumer is returned when a connection's outbound queue is full.
	ErrSlowConsumer = errors.New("connection outbox full")
)
