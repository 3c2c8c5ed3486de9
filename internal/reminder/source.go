package reminder

import (
	"context"
	"sync"
)

// MemorySource is an in-process Source, used by tests and by the daemon
// until a remote document store is wired in.
type MemorySource struct {
	mu   sync.RWMutex
	byID map[string]*Reminder
}

func NewMemorySource() *MemorySource {
	return &MemorySource{byID: map[string]*Reminder{}}
}

func (s *MemorySource) Put(r *Reminder) {
	if r == nil || r.ID == "" {
		return
	}
	cp := *r
	s.mu.Lock()
	s.byID[r.ID] = &cp
	s.mu.Unlock()
}

func (s *MemorySource) Delete(id string) {
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
}

func (s *MemorySource) GetByID(_ context.Context, id string) (*Reminder, error) {
	s.mu.RLock()
	r, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemorySource) ListActive(_ context.Context) ([]*Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Reminder, 0, len(s.byID))
	for _, r := range s.byID {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}
