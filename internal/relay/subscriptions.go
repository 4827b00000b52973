package relay

import (
	"sort"
	"sync"
)

// Subscriptions is the set of channel ids one connection wants messages for.
type Subscriptions struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func newSubscriptions() *Subscriptions {
	return &Subscriptions{ids: make(map[string]struct{})}
}

// Add records id. Existence of the channel is checked by the caller.
func (s *Subscriptions) Add(id string) {
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
}

// Remove drops id; removing an absent id is a no-op.
func (s *Subscriptions) Remove(id string) {
	s.mu.Lock()
	delete(s.ids, id)
	s.mu.Unlock()
}

// Contains reports whether id is subscribed.
func (s *Subscriptions) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of subscriptions.
func (s *Subscriptions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// List returns the subscribed ids in sorted order.
func (s *Subscriptions) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Subscriptions) clear() {
	s.mu.Lock()
	clear(s.ids)
	s.mu.Unlock()
}
