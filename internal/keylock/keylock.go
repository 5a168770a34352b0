package keylock

import "sync"

// Mutex provides critical sections keyed by an id. The booking and ledger
// services use it to serialize check-then-write sequences per room without
// blocking unrelated rooms.
type Mutex struct {
	mu    sync.Mutex
	locks map[uint]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *Mutex {
	return &Mutex{locks: make(map[uint]*entry)}
}

// Lock acquires the section for key and returns its release function.
// Entries are reference counted and removed once the last holder releases.
func (m *Mutex) Lock(key uint) func() {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		m.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}
