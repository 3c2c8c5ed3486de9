// Package local implements channel.Local in-process: one time.Timer per
// pending identifier, with delivery handed to a caller-supplied callback.
// It stands in for the OS notification scheduler in the daemon and in
// tests, and mirrors its contract: at most one pending entry per
// identifier, idempotent cancellation.
package local

import (
	"context"
	"strings"
	"sync"
	"time"

	"remindd/internal/channel"
	"remindd/internal/schedule"
	"remindd/pkg/logx"
)

// DeliverFunc is invoked when a pending notification fires.
type DeliverFunc func(n schedule.Notification)

type Config struct {
	// Grant controls what RequestPermissions reports. The OS prompt is
	// outside this process; the daemon sets this from config.
	Grant bool
}

type Scheduler struct {
	log     logx.Logger
	deliver DeliverFunc

	mu      sync.Mutex
	granted bool
	asked   bool
	pending map[string]schedule.Notification
	timers  map[string]*time.Timer

	badgeMu sync.Mutex
	badge   int
}

func New(cfg Config, log logx.Logger, deliver DeliverFunc) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Scheduler{
		log:     log,
		granted: cfg.Grant,
		pending: map[string]schedule.Notification{},
		timers:  map[string]*time.Timer{},
	}
	if deliver == nil {
		deliver = func(n schedule.Notification) {
			log.Info("notification fired", logx.String("id", n.Identifier), logx.String("title", n.Title))
		}
	}
	s.deliver = deliver
	return s
}

func (s *Scheduler) RequestPermissions(_ context.Context) (bool, error) {
	s.mu.Lock()
	s.asked = true
	granted := s.granted
	s.mu.Unlock()
	if !granted {
		return false, channel.ErrPermissionDenied
	}
	return true, nil
}

func (s *Scheduler) CheckPermissions(_ context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.granted
}

// Schedule arms a timer for the notification. An existing entry with the
// same identifier is replaced; the latest submission wins.
func (s *Scheduler) Schedule(_ context.Context, n schedule.Notification) error {
	id := n.Identifier
	if id == "" {
		return channel.ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	s.pending[id] = n
	s.timers[id] = time.AfterFunc(time.Until(n.FiresAt), func() { s.fire(id) })
	return nil
}

func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	n, ok := s.pending[id]
	delete(s.pending, id)
	delete(s.timers, id)
	s.mu.Unlock()
	if ok {
		s.deliver(n)
	}
}

func (s *Scheduler) Cancel(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(identifier)
	return nil
}

// CancelByReminder removes every entry in the reminder's identifier
// namespace. Safe no-op when nothing is outstanding.
func (s *Scheduler) CancelByReminder(_ context.Context, reminderID string) error {
	prefix := schedule.IdentifierPrefix(reminderID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.pending {
		if strings.HasPrefix(id, prefix) {
			s.dropLocked(id)
		}
	}
	return nil
}

func (s *Scheduler) CancelAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.pending {
		s.dropLocked(id)
	}
	return nil
}

func (s *Scheduler) dropLocked(id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	delete(s.pending, id)
}

func (s *Scheduler) PendingCount(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PendingIdentifiers returns a snapshot of outstanding identifiers.
func (s *Scheduler) PendingIdentifiers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.pending))
	for id := range s.pending {
		out = append(out, id)
	}
	return out
}

func (s *Scheduler) SetBadge(_ context.Context, n int) error {
	s.badgeMu.Lock()
	if n < 0 {
		n = 0
	}
	s.badge = n
	s.badgeMu.Unlock()
	return nil
}

func (s *Scheduler) ClearBadge(ctx context.Context) error { return s.SetBadge(ctx, 0) }

func (s *Scheduler) Badge() int {
	s.badgeMu.Lock()
	defer s.badgeMu.Unlock()
	return s.badge
}

var _ channel.Local = (*Scheduler)(nil)
