// Package badge tracks the device badge count: a cosmetic, local-only UX
// signal. Cloud-channel counts are deliberately not reflected. Failures
// are swallowed; a wrong badge is better than a failed schedule.
package badge

import (
	"context"
	"sync"

	"remindd/internal/channel"
	"remindd/pkg/logx"
)

type Tracker struct {
	log   logx.Logger
	local channel.Local

	mu    sync.Mutex
	count int
}

func NewTracker(local channel.Local, log logx.Logger) *Tracker {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Tracker{log: log, local: local}
}

func (t *Tracker) SetCount(ctx context.Context, n int) {
	if n < 0 {
		n = 0
	}
	t.mu.Lock()
	t.count = n
	t.mu.Unlock()
	if t.local == nil {
		return
	}
	if err := t.local.SetBadge(ctx, n); err != nil {
		t.log.Debug("badge update failed", logx.Int("count", n), logx.Err(err))
	}
}

func (t *Tracker) Clear(ctx context.Context) {
	t.mu.Lock()
	t.count = 0
	t.mu.Unlock()
	if t.local == nil {
		return
	}
	if err := t.local.ClearBadge(ctx); err != nil {
		t.log.Debug("badge clear failed", logx.Err(err))
	}
}

func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
