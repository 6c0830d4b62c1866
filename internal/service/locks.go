package service

import "sync"

// lockTable hands out one mutex per ticket type so reservation
// attempts against the same type are linearized while attempts
// against different types proceed independently.  Locks are created
// lazily and never removed; the working set is bounded by the number
// of ticket types.
type lockTable struct {
    mu    sync.Mutex
    locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
    return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the given key and returns it so the
// caller can defer the unlock.
func (t *lockTable) acquire(key string) *sync.Mutex {
    t.mu.Lock()
    l, ok := t.locks[key]
    if !ok {
        l = &sync.Mutex{}
        t.locks[key] = l
    }
    t.mu.Unlock()
    l.Lock()
    return l
}
