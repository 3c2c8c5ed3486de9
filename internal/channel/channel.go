// Package channel defines the two external delivery collaborators the
// engine fans out to: the on-device notification scheduler and the
// cloud-relayed push-intent queue.
package channel

import (
	"context"
	"errors"

	"remindd/internal/schedule"
)

var (
	// ErrPermissionDenied means the OS denied notification permissions.
	// Callers degrade (local-only, best effort), never crash.
	ErrPermissionDenied = errors.New("notification permission denied")

	// ErrUnavailable means an external channel call failed. Callers log,
	// skip the entry and continue the batch.
	ErrUnavailable = errors.New("notification channel unavailable")
)

// Local is the on-device scheduler. It guarantees at-most-one delivery per
// identifier; submitting the same identifier again overwrites the pending
// entry, which makes submit-after-cancel races self-healing.
type Local interface {
	RequestPermissions(ctx context.Context) (bool, error)
	CheckPermissions(ctx context.Context) bool

	Schedule(ctx context.Context, n schedule.Notification) error
	Cancel(ctx context.Context, identifier string) error
	CancelByReminder(ctx context.Context, reminderID string) error
	CancelAll(ctx context.Context) error

	PendingCount(ctx context.Context) int

	SetBadge(ctx context.Context, n int) error
	ClearBadge(ctx context.Context) error
}

// Cloud is the push-relay intent queue for users other than the device
// owner. Enqueue leaves records pending for the relay to consume; the
// engine never waits for relay confirmation. Cancellation is a soft
// status flip, preserving the relay audit trail.
type Cloud interface {
	Enqueue(ctx context.Context, n schedule.Notification) error
	CancelByReminder(ctx context.Context, reminderID string) (int, error)
	CancelAll(ctx context.Context) (int, error)
}
