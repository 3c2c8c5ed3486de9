package timing

import (
	"time"

	"remindd/internal/reminder"
)

// HardCap bounds recurrence expansion when a rule carries no end condition,
// so far-future occurrences are never scheduled unboundedly.
const HardCap = 30

// ExpandOccurrences produces the ordered sequence of occurrence instants
// for a recurrence rule, starting at (and including) the anchor.
//
// Expansion stops at the first occurrence strictly after the rule's end
// date (exclusive), or once capacity occurrences were produced, whichever
// comes first. Degenerate rules clamp and proceed; this never panics and
// never returns an error, only a possibly empty slice.
func ExpandOccurrences(anchor time.Time, rule reminder.RecurrenceRule) []time.Time {
	return ExpandUpcoming(anchor, rule, anchor)
}

// ExpandUpcoming is ExpandOccurrences with occurrences before now skipped,
// so a long-lived recurring reminder always yields a window starting at the
// first occurrence at or after now instead of replaying the anchor-era
// sequence. A maxOccurrences budget still counts from the anchor: a rule
// limited to N occurrences is exhausted after the Nth even when all N are
// already past.
func ExpandUpcoming(anchor time.Time, rule reminder.RecurrenceRule, now time.Time) []time.Time {
	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}

	total := -1 // unbounded
	if rule.MaxOccurrences > 0 {
		total = rule.MaxOccurrences
	}

	// An unparseable end date is ignored rather than failing the expansion.
	var endBound time.Time
	if rule.EndDate != "" {
		if d, err := ParseDate(rule.EndDate); err == nil {
			endBound = d.AddDate(0, 0, 1) // first instant beyond the (inclusive) end day
		}
	}

	out := make([]time.Time, 0, HardCap)
	for n := startIndex(anchor, rule.Pattern, interval, now); ; n++ {
		if total >= 0 && n >= total {
			break
		}
		occ := occurrenceAt(anchor, rule.Pattern, n*interval)
		if !endBound.IsZero() && !occ.Before(endBound) {
			break
		}
		if occ.Before(now) {
			continue
		}
		out = append(out, occ)
		if len(out) == HardCap {
			break
		}
	}
	return out
}

func occurrenceAt(anchor time.Time, pattern reminder.RecurrencePattern, steps int) time.Time {
	switch pattern {
	case reminder.RecurWeekly:
		return anchor.AddDate(0, 0, steps*7)
	case reminder.RecurMonthly:
		return addMonthsClamped(anchor, steps)
	case reminder.RecurYearly:
		return addYearsClamped(anchor, steps)
	default: // daily
		return anchor.AddDate(0, 0, steps)
	}
}

// startIndex estimates where the first occurrence at or after now sits, so
// expansion over an old anchor does not iterate through years of past
// occurrences. The estimate always lands at or before the true index (the
// caller skips the remainder), never beyond it.
func startIndex(anchor time.Time, pattern reminder.RecurrencePattern, interval int, now time.Time) int {
	if !now.After(anchor) {
		return 0
	}
	var steps int
	switch pattern {
	case reminder.RecurWeekly:
		steps = int(now.Sub(anchor)/(24*time.Hour)) / 7
	case reminder.RecurMonthly:
		steps = (now.Year()-anchor.Year())*12 + int(now.Month()) - int(anchor.Month())
	case reminder.RecurYearly:
		steps = now.Year() - anchor.Year()
	default: // daily
		steps = int(now.Sub(anchor) / (24 * time.Hour))
	}
	// One step of slack absorbs DST drift and calendar clamping.
	n := steps/interval - 1
	if n < 0 {
		return 0
	}
	return n
}

// addMonthsClamped adds months preserving the anchor's day-of-month,
// clamping to the last day when the target month is shorter (31 Jan + 1
// month is 28/29 Feb, never an overflow into March). Each step is computed
// from the anchor so the day-of-month never decays across the sequence.
func addMonthsClamped(anchor time.Time, months int) time.Time {
	y, m := anchor.Year(), int(anchor.Month())-1+months
	y += m / 12
	m = m % 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)

	day := anchor.Day()
	if last := daysInMonth(y, month); day > last {
		day = last
	}
	return time.Date(y, month, day, anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
}

// addYearsClamped adds years; a 29 Feb anchor clamps to 28 Feb on
// non-leap target years.
func addYearsClamped(anchor time.Time, years int) time.Time {
	y := anchor.Year() + years
	day := anchor.Day()
	if last := daysInMonth(y, anchor.Month()); day > last {
		day = last
	}
	return time.Date(y, anchor.Month(), day, anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
