// Package schedule turns one reminder into the complete set of delivery
// records that should exist right now. The builder is pure: it depends on
// the passed-in "now" only for the strict future filter and performs no I/O.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"remindd/internal/reminder"
	"remindd/internal/timing"
)

const maxTitleRunes = 60

// Build computes every notification for the reminder: the cross product of
// occurrences × timings for the owner's local copies, mirrored per assignee
// per timing (same firing instants, next occurrence) as cloud copies.
//
// Entries at or before now are dropped — the engine never submits an
// instant that already passed. A reminder whose date/time cannot be parsed
// yields an empty set, never an error.
func Build(now time.Time, r *reminder.Reminder) []Notification {
	if r == nil || r.ID == "" {
		return nil
	}

	timings := r.Timings
	if len(timings) == 0 {
		timings = reminder.DefaultTimings()
	}

	base, err := timing.ComputeInstant(now, r.DueDate, r.DueTime, reminder.NotificationTiming{Kind: reminder.TimingExact})
	if err != nil {
		return nil
	}

	occurrences := []time.Time{base}
	if r.Recurrence != nil {
		// Expansion starts at the first occurrence at or after now, so a
		// rebuild of a long-running recurring reminder keeps producing a
		// future window instead of an all-past one.
		occurrences = timing.ExpandUpcoming(base, *r.Recurrence, now)
	}

	var out []Notification
	title := displayTitle(r)

	for _, occ := range occurrences {
		for _, t := range timings {
			fires := applyOffset(occ, t)
			if !fires.After(now) {
				continue
			}
			out = append(out, Notification{
				Identifier:       Identifier(r.ID, t, occ),
				FiresAt:          fires,
				Title:            title,
				Body:             body(r, t, occ),
				Channel:          ChannelLocal,
				TargetUserID:     r.OwnerID,
				SourceReminderID: r.ID,
			})
		}
	}

	// Cloud fan-out: one entry per assignee per timing, mirroring the
	// owner's next occurrence instants rather than the full window.
	if len(r.AssigneeIDs) > 0 && len(occurrences) > 0 {
		next := occurrences[0]
		for _, assignee := range r.AssigneeIDs {
			for _, t := range timings {
				fires := applyOffset(next, t)
				if !fires.After(now) {
					continue
				}
				out = append(out, Notification{
					Identifier:       Identifier(r.ID, t, next) + ":" + assignee,
					FiresAt:          fires,
					Title:            title,
					Body:             body(r, t, next),
					Channel:          ChannelCloud,
					TargetUserID:     assignee,
					SourceReminderID: r.ID,
				})
			}
		}
	}

	return out
}

// BuildSnooze produces the single local entry for a snoozed reminder. It
// lives in the reminder's identifier namespace so a later cancel sweeps it
// up with everything else.
func BuildSnooze(now time.Time, r *reminder.Reminder, delay time.Duration) Notification {
	fires := now.Add(delay)
	body := "Snoozed reminder"
	if d := strings.TrimSpace(r.Description); d != "" {
		body += "\n" + d
	}
	return Notification{
		Identifier:       fmt.Sprintf("%ssnoozed:%d", IdentifierPrefix(r.ID), fires.Unix()),
		FiresAt:          fires,
		Title:            displayTitle(r),
		Body:             body,
		Channel:          ChannelLocal,
		TargetUserID:     r.OwnerID,
		SourceReminderID: r.ID,
	}
}

// Identifier derives the stable per-entry identifier. All identifiers for
// one reminder share the "<id>:" prefix so cancellation can match by
// namespace.
func Identifier(reminderID string, t reminder.NotificationTiming, occurrence time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%d", reminderID, t.Kind, t.OffsetMinutes, occurrence.Unix())
}

// IdentifierPrefix is the namespace shared by every entry of one reminder.
func IdentifierPrefix(reminderID string) string { return reminderID + ":" }

func applyOffset(occ time.Time, t reminder.NotificationTiming) time.Time {
	d := time.Duration(t.OffsetMinutes) * time.Minute
	switch t.Kind {
	case reminder.TimingBefore:
		return occ.Add(-d)
	case reminder.TimingAfter:
		return occ.Add(d)
	default:
		return occ
	}
}

func displayTitle(r *reminder.Reminder) string {
	title := strings.TrimSpace(r.Title)
	if n := []rune(title); len(n) > maxTitleRunes {
		title = string(n[:maxTitleRunes-1]) + "…"
	}
	switch r.Priority {
	case reminder.PriorityHigh:
		return "🚨 " + title
	case reminder.PriorityMedium:
		return "⚠️ " + title
	default:
		return title
	}
}

func body(r *reminder.Reminder, t reminder.NotificationTiming, occ time.Time) string {
	var b string
	switch t.Kind {
	case reminder.TimingBefore:
		switch t.OffsetMinutes {
		case 15:
			b = "Due in 15 minutes"
		case 30:
			b = "Due in 30 minutes"
		case 60:
			b = "Due in 1 hour"
		default:
			b = fmt.Sprintf("Due on %s at %s", timing.FormatDate(occ), timing.FormatTime(occ))
		}
	case reminder.TimingAfter:
		b = fmt.Sprintf("Overdue: was due on %s at %s", timing.FormatDate(occ), timing.FormatTime(occ))
	default:
		b = "Due now"
	}
	if d := strings.TrimSpace(r.Description); d != "" {
		b += "\n" + d
	}
	return b
}
