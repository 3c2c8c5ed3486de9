package engine

import "sync"

// keyedMutex serializes operations per reminder ID: a reschedule racing a
// cancel for the same ID must not interleave, while different reminders
// proceed in parallel.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	refs int
	mu   sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: map[string]*lockEntry{}}
}

// lock acquires the mutex for id and returns its release func.
func (k *keyedMutex) lock(id string) func() {
	k.mu.Lock()
	e, ok := k.entries[id]
	if !ok {
		e = &lockEntry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, id)
			}
			k.mu.Unlock()
		})
	}
}
