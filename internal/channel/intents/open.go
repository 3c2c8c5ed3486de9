package intents

import (
	"context"
	"errors"
	"strings"

	"remindd/pkg/logx"
)

// Store is the persistence API behind the cloud channel.
type Store interface {
	Put(ctx context.Context, rec Record) error
	CancelByReminder(ctx context.Context, reminderID string) (int, error)
	CancelAll(ctx context.Context) (int, error)
	ListByReminder(ctx context.Context, reminderID string) ([]Record, error)
	PruneBefore(ctx context.Context, cutoff int64) (int, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if the cloud channel is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, errors.New("unknown intents driver: " + driver)
	}
}
