package intents

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("intent store disabled")

type Status string

const (
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// Config configures the intent store.
//
// Driver values:
//   - "sqlite": SQLite database file
//   - "memory": in-process map (tests, cloudless setups)
//
// If Driver is empty or "none", the cloud channel is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Record is one push intent awaiting the relay. Records are keyed by
// reminder + target + firesAt; re-enqueueing the same key overwrites the
// row instead of duplicating it. Status flips to cancelled on cancel; rows
// are only physically removed by pruning.
type Record struct {
	ID string

	ReminderID   string
	TargetUserID string
	FiresAt      time.Time

	Title string
	Body  string

	Status    Status
	CreatedAt time.Time
}
