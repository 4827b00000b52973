package relay

import (
	"chanrelay/internal/debug"
)

// Verb is the fixed-width prefix of an inbound command frame.
type Verb string

const (
	VerbSubscribe   Verb = "sub"
	VerbUnsubscribe Verb = "pop"

	verbLen = 3
)

// Command is a parsed inbound frame: a verb immediately followed by a channel id.
type Command struct {
	Verb    Verb
	Channel string
}

// ParseCommand splits frame into verb and channel. Frames shorter than a verb
// come back with the whole frame as the verb, which matches no handler.
func ParseCommand(frame string) Command {
	if len(frame) < verbLen {
		return Command{Verb: Verb(frame)}
	}
	return Command{Verb: Verb(frame[:verbLen]), Channel: frame[verbLen:]}
}

type commandFunc func(r *Registry, c *Conn, channel string)

var commands = map[Verb]commandFunc{
	VerbSubscribe:   (*Registry).subscribe,
	VerbUnsubscribe: (*Registry).unsubscribe,
}

// Interpret applies one inbound frame to c's subscriptions. Unknown verbs and
// malformed frames are dropped without a reply; a client is never disconnected
// for sending them.
func (r *Registry) Interpret(c *Conn, frame string) {
	cmd := ParseCommand(frame)
	handle, ok := commands[cmd.Verb]
	if !ok {
		handle = ignore
	}
	handle(r, c, cmd.Channel)
}

// subscribe only takes effect if the channel exists; otherwise the command is a no-op.
func (r *Registry) subscribe(c *Conn, channel string) {
	r.locks.RLock(channel)
	defer r.locks.RUnlock(channel)
	if !r.dir.Exists(channel) {
		debug.Debugf("%s: sub %q ignored, no such channel", c.ID, channel)
		return
	}
	c.subs.Add(channel)
}

func (r *Registry) unsubscribe(c *Conn, channel string) {
	c.subs.Remove(channel)
}

func ignore(_ *Registry, c *Conn, _ string) {
	debug.Debugf("%s: unknown command ignored", c.ID)
}
