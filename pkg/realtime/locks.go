package realtime

import (
	"hash/fnv"
	"sync"
)

// KeyLocks serializes work per key using a fixed table of RWMutexes.
// Unrelated keys usually map to different slots and do not block each other.
type KeyLocks struct {
	table []sync.RWMutex
}

// NewKeyLocks creates a lock table with the given number of slots.
func NewKeyLocks(slots int) *KeyLocks {
	if slots < 1 {
		slots = 1
	}
	return &KeyLocks{table: make([]sync.RWMutex, slots)}
}

func (l *KeyLocks) slot(key string) *sync.RWMutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.table[h.Sum32()%uint32(len(l.table))]
}

// Lock acquires the exclusive lock for key.
func (l *KeyLocks) Lock(key string) {
	l.slot(key).Lock()
}

// Unlock releases the exclusive lock for key.
func (l *KeyLocks) Unlock(key string) {
	l.slot(key).Unlock()
}

// RLock acquires the shared lock for key.
func (l *KeyLocks) RLock(key string) {
	l.slot(key).RLock()
}

// RUnlock releases the shared lock for key.
func (l *KeyLocks) RUnlock(key string) {
	l.slot(key).RUnlock()
}
