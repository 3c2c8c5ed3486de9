package reminder

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("reminder not found")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type TimingKind string

const (
	TimingBefore TimingKind = "before"
	TimingAfter  TimingKind = "after"
	TimingExact  TimingKind = "exact"
)

// NotificationTiming translates a due instant into a notification instant.
// Immutable value; OffsetMinutes is always whole minutes.
type NotificationTiming struct {
	Kind          TimingKind `yaml:"kind" json:"kind"`
	OffsetMinutes int        `yaml:"offsetMinutes" json:"offsetMinutes"`
	Label         string     `yaml:"label" json:"label"`
}

// Reminder is a titled task with an optional due date/time, recurrence and
// notification offsets. The engine only reads it at schedule time; it is
// owned and persisted elsewhere.
type Reminder struct {
	ID          string
	Title       string
	Description string

	// DueDate is a calendar date "2006-01-02"; DueTime a local 24h "15:04".
	// Both optional; both kept as strings so one malformed entry can be
	// skipped without poisoning the rest of the schedule.
	DueDate string
	DueTime string

	Priority Priority

	OwnerID     string
	AssigneeIDs []string

	Recurrence *RecurrenceRule
	Timings    []NotificationTiming
}

// DefaultTimings is used when a reminder carries no explicit timings.
func DefaultTimings() []NotificationTiming {
	return []NotificationTiming{
		{Kind: TimingExact, OffsetMinutes: 0, Label: "at due time"},
		{Kind: TimingBefore, OffsetMinutes: 15, Label: "15 minutes before"},
	}
}

// Normalize validates and repairs a reminder at the ingestion boundary so
// the calculator and expander never see degenerate input.
func (r *Reminder) Normalize() error {
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return errors.New("reminder: id is required")
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return errors.New("reminder: title is required")
	}

	switch r.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		r.Priority = PriorityMedium
	}

	if len(r.Timings) == 0 {
		r.Timings = DefaultTimings()
	}
	for i := range r.Timings {
		t := &r.Timings[i]
		switch t.Kind {
		case TimingBefore, TimingAfter, TimingExact:
		default:
			t.Kind = TimingExact
		}
		if t.OffsetMinutes < 0 {
			t.OffsetMinutes = 0
		}
		// exact implies no offset
		if t.Kind == TimingExact {
			t.OffsetMinutes = 0
		}
	}

	if r.Recurrence != nil {
		r.Recurrence.normalize()
	}

	// Drop empty assignee entries and the owner's own id; the owner always
	// gets the local copy.
	if len(r.AssigneeIDs) > 0 {
		out := r.AssigneeIDs[:0]
		for _, id := range r.AssigneeIDs {
			id = strings.TrimSpace(id)
			if id == "" || id == r.OwnerID {
				continue
			}
			out = append(out, id)
		}
		r.AssigneeIDs = out
	}
	return nil
}

// Source rehydrates reminders for deferred actions (snooze, the daily
// refresh sweep). Backed by the remote document store in production.
type Source interface {
	GetByID(ctx context.Context, id string) (*Reminder, error)
	ListActive(ctx context.Context) ([]*Reminder, error)
}
