package relay

import (
	"sort"
	"sync"
)

// Directory is the set of channels that currently exist.
//
// Create, Delete and View run their callbacks inside the directory's critical
// section, so whatever a callback does is atomic with respect to other
// directory mutations and snapshots.
type Directory struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{ids: make(map[string]struct{})}
}

// Create adds id and then runs onCreate, if non-nil, before releasing the lock.
func (d *Directory) Create(id string, onCreate func()) error {
	if id == "" {
		return ErrInvalidOrDuplicateChannel
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.ids[id]; ok {
		return ErrInvalidOrDuplicateChannel
	}
	d.ids[id] = struct{}{}
	if onCreate != nil {
		onCreate()
	}
	return nil
}

// Delete removes id and then runs onDelete, if non-nil, before releasing the lock.
func (d *Directory) Delete(id string, onDelete func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.ids[id]; !ok {
		return ErrUnknownChannel
	}
	delete(d.ids, id)
	if onDelete != nil {
		onDelete()
	}
	return nil
}

// Exists reports whether id is currently a channel.
func (d *Directory) Exists(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ids[id]
	return ok
}

// Snapshot returns the current channel ids in sorted order.
func (d *Directory) Snapshot() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sorted()
}

// View runs fn with a snapshot of the channel ids while holding the read lock,
// so no channel can be created or deleted until fn returns.
func (d *Directory) View(fn func(ids []string)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.sorted())
}

func (d *Directory) sorted() []string {
	out := make([]string, 0, len(d.ids))
	for id := range d.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
