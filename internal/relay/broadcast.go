package relay

import (
	"chanrelay/internal/debug"
)

// CreateChannel adds id to the directory and advertises it to every connection.
func (r *Registry) CreateChannel(id string) error {
	r.locks.Lock(id)
	var failed []failure
	err := r.dir.Create(id, func() {
		failed = r.fanOut(r.conns.Values(), Event{Type: KindNew, ID: id}, nil)
	})
	r.locks.Unlock(id)
	r.dropAll(failed)
	return err
}

// DeleteChannel removes id from the directory, advertises the deletion to every
// connection and purges id from every subscription table, all inside one
// critical section so no subscribe or publish on id can interleave.
func (r *Registry) DeleteChannel(id string) error {
	r.locks.Lock(id)
	var failed []failure
	err := r.dir.Delete(id, func() {
		failed = r.fanOut(r.conns.Values(), Event{Type: KindDel, ID: id}, func(c *Conn) {
			c.subs.Remove(id)
		})
	})
	r.locks.Unlock(id)
	r.dropAll(failed)
	return err
}

// Publish delivers payload to every connection currently subscribed to channel.
// Per-target failures never fail the call.
func (r *Registry) Publish(channel string, payload any) error {
	r.locks.RLock(channel)
	if !r.dir.Exists(channel) {
		r.locks.RUnlock(channel)
		return ErrUnknownChannel
	}
	targets := r.conns.Filter(func(c *Conn) bool {
		return c.subs.Contains(channel)
	})
	failed := r.fanOut(targets, Event{Type: KindMsg, ID: channel, Msg: payload}, nil)
	r.locks.RUnlock(channel)
	r.dropAll(failed)
	return nil
}

type failure struct {
	conn *Conn
	err  error
}

// fanOut queues ev for each target. Queuing never blocks, so a slow or dead
// target only costs its own delivery; the actual writes run concurrently in the
// per-connection writers. before, if set, runs for each target ahead of queuing.
func (r *Registry) fanOut(targets []*Conn, ev Event, before func(c *Conn)) []failure {
	r.eventsBroadcast.Add(1)
	var failed []failure
	for _, c := range targets {
		if before != nil {
			before(c)
		}
		if err := c.send(ev); err != nil {
			failed = append(failed, failure{conn: c, err: err})
		}
	}
	debug.Debugf("%s %q fanned out to %d connections, %d failed", ev.Type, ev.ID, len(targets), len(failed))
	return failed
}

// dropAll removes failed targets. It must run after all locks are released.
func (r *Registry) dropAll(failed []failure) {
	for _, f := range failed {
		r.drop(f.conn, f.err)
	}
}
