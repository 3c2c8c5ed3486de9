package intents

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and cloudless setups.
type Memory struct {
	mu   sync.Mutex
	rows map[string]Record // key: reminder|target|firesAtMillis
}

func NewMemory() *Memory {
	return &Memory{rows: map[string]Record{}}
}

func key(rec Record) string {
	return fmt.Sprintf("%s|%s|%d", rec.ReminderID, rec.TargetUserID, rec.FiresAt.UnixMilli())
}

func (m *Memory) Put(_ context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.mu.Lock()
	m.rows[key(rec)] = rec
	m.mu.Unlock()
	return nil
}

func (m *Memory) CancelByReminder(_ context.Context, reminderID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, rec := range m.rows {
		if rec.ReminderID == reminderID && rec.Status == StatusPending {
			rec.Status = StatusCancelled
			m.rows[k] = rec
			n++
		}
	}
	return n, nil
}

func (m *Memory) CancelAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, rec := range m.rows {
		if rec.Status == StatusPending {
			rec.Status = StatusCancelled
			m.rows[k] = rec
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListByReminder(_ context.Context, reminderID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, rec := range m.rows {
		if rec.ReminderID == reminderID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiresAt.Before(out[j].FiresAt) })
	return out, nil
}

func (m *Memory) PruneBefore(_ context.Context, cutoff int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, rec := range m.rows {
		if rec.FiresAt.UnixMilli() < cutoff {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }
