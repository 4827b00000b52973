package realtime

import "sync"

// Store is a concurrency-safe map of live entries keyed by ID.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewStore creates an empty store.
func NewStore[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]V),
	}
}

// Put adds or replaces the entry for id.
func (s *Store[K, V]) Put(id K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = v
}

// Get returns the entry by ID if it exists.
func (s *Store[K, V]) Get(id K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[id]
	return v, ok
}

// Delete removes the entry for id and returns it, reporting whether it was present.
func (s *Store[K, V]) Delete(id K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	return v, ok
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Values returns a point-in-time copy of all entries. Entries added or removed
// afterwards do not affect the returned slice.
func (s *Store[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]V, 0, len(s.entries))
	for _, v := range s.entries {
		out = append(out, v)
	}
	return out
}

// Filter returns a point-in-time copy of the entries for which keep returns true.
// keep runs under the store's read lock and must not call back into the store.
func (s *Store[K, V]) Filter(keep func(V) bool) []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]V, 0, len(s.entries))
	for _, v := range s.entries {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Clear removes every entry and returns what was removed.
func (s *Store[K, V]) Clear() []V {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]V, 0, len(s.entries))
	for id, v := range s.entries {
		out = append(out, v)
		delete(s.entries, id)
	}
	return out
}
