package intents

import (
	"context"
	"time"

	"remindd/internal/channel"
	"remindd/internal/schedule"
	"remindd/pkg/logx"
)

// Channel adapts a Store to channel.Cloud. Enqueued intents are left
// pending for the relay; no delivery confirmation is read back.
type Channel struct {
	store Store
	log   logx.Logger
}

func NewChannel(store Store, log logx.Logger) *Channel {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Channel{store: store, log: log}
}

func (c *Channel) Enqueue(ctx context.Context, n schedule.Notification) error {
	if c == nil || c.store == nil {
		return ErrDisabled
	}
	return c.store.Put(ctx, Record{
		ReminderID:   n.SourceReminderID,
		TargetUserID: n.TargetUserID,
		FiresAt:      n.FiresAt,
		Title:        n.Title,
		Body:         n.Body,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	})
}

func (c *Channel) CancelByReminder(ctx context.Context, reminderID string) (int, error) {
	if c == nil || c.store == nil {
		return 0, ErrDisabled
	}
	return c.store.CancelByReminder(ctx, reminderID)
}

func (c *Channel) CancelAll(ctx context.Context) (int, error) {
	if c == nil || c.store == nil {
		return 0, ErrDisabled
	}
	return c.store.CancelAll(ctx)
}

var _ channel.Cloud = (*Channel)(nil)
