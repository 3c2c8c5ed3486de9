package timing

import (
	"testing"
	"time"

	"remindd/internal/reminder"
)

func TestExpandDailyHitsHardCap(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC)
	rule := reminder.RecurrenceRule{Pattern: reminder.RecurDaily, Interval: 1}

	got := ExpandOccurrences(anchor, rule)
	if len(got) != HardCap {
		t.Fatalf("len = %d, want %d", len(got), HardCap)
	}
	for i, occ := range got {
		if i > 0 && occ.Sub(got[i-1]) != 24*time.Hour {
			t.Fatalf("gap %d = %v, want 24h", i, occ.Sub(got[i-1]))
		}
	}
}

func TestExpandIdempotentAndMonotonic(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	rule := reminder.RecurrenceRule{Pattern: reminder.RecurWeekly, Interval: 2, MaxOccurrences: 10}

	a := ExpandOccurrences(anchor, rule)
	b := ExpandOccurrences(anchor, rule)
	if len(a) != len(b) {
		t.Fatalf("re-expansion changed length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("occurrence %d differs: %v vs %v", i, a[i], b[i])
		}
		if i > 0 && !a[i].After(a[i-1]) {
			t.Fatalf("sequence not increasing at %d", i)
		}
	}
}

func TestExpandMonthlyClampsShortMonths(t *testing.T) {
	t.Parallel()
	// 31 Jan monthly must clamp to the last day of Feb, not roll into March,
	// and recover the 31st in March.
	anchor := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)
	rule := reminder.RecurrenceRule{Pattern: reminder.RecurMonthly, Interval: 1, MaxOccurrences: 4}

	got := ExpandOccurrences(anchor, rule)
	want := []time.Time{
		anchor,
		time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC),
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("occurrence %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExpandYearlyLeapDayClamps(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
	rule := reminder.RecurrenceRule{Pattern: reminder.RecurYearly, Interval: 1, MaxOccurrences: 3}

	got := ExpandOccurrences(anchor, rule)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if d := got[1]; d.Month() != time.February || d.Day() != 28 || d.Year() != 2025 {
		t.Fatalf("non-leap year occurrence = %v, want 28 Feb 2025", d)
	}
}

func TestExpandEndDateExclusive(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)
	rule := reminder.RecurrenceRule{Pattern: reminder.RecurDaily, Interval: 1, EndDate: "2025-06-03"}

	got := ExpandOccurrences(anchor, rule)
	// 1st, 2nd and 3rd are on or before the end day; the 4th is beyond it.
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
}

func TestExpandUpcomingRollsWindowForward(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
	rule := reminder.RecurrenceRule{Pattern: reminder.RecurDaily, Interval: 1}

	got := ExpandUpcoming(anchor, rule, now)
	if len(got) != HardCap {
		t.Fatalf("len = %d, want %d", len(got), HardCap)
	}
	// 10 Feb 09:00 already passed; the window starts the next day.
	if want := time.Date(2025, 2, 11, 9, 0, 0, 0, time.UTC); !got[0].Equal(want) {
		t.Fatalf("first occurrence = %v, want %v", got[0], want)
	}
	for i, occ := range got {
		if occ.Before(now) {
			t.Fatalf("occurrence %d = %v is before now", i, occ)
		}
	}
}

func TestExpandUpcomingExhaustedBudget(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rule := reminder.RecurrenceRule{Pattern: reminder.RecurDaily, Interval: 1, MaxOccurrences: 5}

	// All five occurrences are in the past; the series must end, not slide.
	if got := ExpandUpcoming(anchor, rule, now); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestExpandUpcomingKeepsMonthlyClamp(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	rule := reminder.RecurrenceRule{Pattern: reminder.RecurMonthly, Interval: 1}

	got := ExpandUpcoming(anchor, rule, now)
	if len(got) == 0 {
		t.Fatal("no occurrences")
	}
	if want := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC); !got[0].Equal(want) {
		t.Fatalf("first occurrence = %v, want %v", got[0], want)
	}
}

func TestExpandDegenerateInterval(t *testing.T) {
	t.Parallel()
	anchor := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	rule := reminder.RecurrenceRule{Pattern: reminder.RecurDaily, Interval: 0, MaxOccurrences: 3}

	got := ExpandOccurrences(anchor, rule)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[1].Sub(got[0]) != 24*time.Hour {
		t.Fatalf("interval 0 should clamp to 1 day, gap = %v", got[1].Sub(got[0]))
	}
}
