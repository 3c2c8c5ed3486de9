package schedule

import (
	"strings"
	"testing"
	"time"

	"remindd/internal/reminder"
	"remindd/internal/timing"
)

func TestBuildPayRentScenario(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	r := &reminder.Reminder{
		ID:      "rent-1",
		Title:   "Pay rent",
		DueDate: "2025-03-01",
		DueTime: "09:00",
		OwnerID: "alice",
		Timings: []reminder.NotificationTiming{
			{Kind: reminder.TimingBefore, OffsetMinutes: 60},
		},
	}

	got := Build(now, r)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	// 60 whole minutes before 09:00, same day.
	want := time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)
	if !got[0].FiresAt.Equal(want) {
		t.Fatalf("FiresAt = %v, want %v", got[0].FiresAt, want)
	}
	if !strings.Contains(got[0].Body, "Due in 1 hour") {
		t.Fatalf("body %q should contain %q", got[0].Body, "Due in 1 hour")
	}
	if got[0].Channel != ChannelLocal || got[0].TargetUserID != "alice" {
		t.Fatalf("owner copy misrouted: %+v", got[0])
	}
}

func TestBuildStrictFutureFilter(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	r := &reminder.Reminder{
		ID:      "late-1",
		Title:   "Already due",
		DueDate: "2025-01-01",
		DueTime: "11:55", // five minutes ago
		OwnerID: "alice",
		Timings: []reminder.NotificationTiming{{Kind: reminder.TimingExact}},
	}

	if got := Build(now, r); len(got) != 0 {
		t.Fatalf("past-due exact timing produced %d entries, want 0", len(got))
	}
}

func TestBuildDeterministicIdentifiers(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	r := &reminder.Reminder{
		ID:      "det-1",
		Title:   "Water plants",
		DueDate: "2025-02-01",
		DueTime: "18:00",
		OwnerID: "alice",
		Recurrence: &reminder.RecurrenceRule{
			Pattern: reminder.RecurDaily, Interval: 1, MaxOccurrences: 5,
		},
		Timings: []reminder.NotificationTiming{
			{Kind: reminder.TimingExact},
			{Kind: reminder.TimingBefore, OffsetMinutes: 15},
		},
	}

	a := Build(now, r)
	b := Build(now, r)
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("unexpected lengths: %d vs %d", len(a), len(b))
	}
	seen := map[string]bool{}
	for i := range a {
		if a[i].Identifier != b[i].Identifier {
			t.Fatalf("identifier %d not stable: %q vs %q", i, a[i].Identifier, b[i].Identifier)
		}
		if seen[a[i].Identifier] {
			t.Fatalf("duplicate identifier in one batch: %q", a[i].Identifier)
		}
		seen[a[i].Identifier] = true
		if !strings.HasPrefix(a[i].Identifier, IdentifierPrefix(r.ID)) {
			t.Fatalf("identifier %q outside reminder namespace", a[i].Identifier)
		}
	}
}

func TestBuildRecurringCrossProduct(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	r := &reminder.Reminder{
		ID:      "cross-1",
		Title:   "Meds",
		DueDate: "2025-02-01",
		DueTime: "08:00",
		OwnerID: "alice",
		Recurrence: &reminder.RecurrenceRule{
			Pattern: reminder.RecurDaily, Interval: 1, MaxOccurrences: 3,
		},
		Timings: []reminder.NotificationTiming{
			{Kind: reminder.TimingExact},
			{Kind: reminder.TimingBefore, OffsetMinutes: 30},
		},
	}

	got := Build(now, r)
	if len(got) != 6 { // 3 occurrences x 2 timings
		t.Fatalf("len = %d, want 6", len(got))
	}
}

func TestBuildRecurringPastAnchorStaysLive(t *testing.T) {
	t.Parallel()
	// Anchored six weeks before now with no end condition. A rebuild must
	// yield a full future window, not an empty one.
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)
	r := &reminder.Reminder{
		ID:      "live-1",
		Title:   "Vitamins",
		DueDate: "2025-02-01",
		DueTime: "08:00",
		OwnerID: "alice",
		Recurrence: &reminder.RecurrenceRule{
			Pattern: reminder.RecurDaily, Interval: 1,
		},
		Timings: []reminder.NotificationTiming{{Kind: reminder.TimingExact}},
	}

	got := Build(now, r)
	if len(got) != timing.HardCap {
		t.Fatalf("len = %d, want %d", len(got), timing.HardCap)
	}
	if want := time.Date(2025, 3, 16, 8, 0, 0, 0, time.Local); !got[0].FiresAt.Equal(want) {
		t.Fatalf("first entry fires at %v, want %v", got[0].FiresAt, want)
	}
	for i := range got {
		if !got[i].FiresAt.After(now) {
			t.Fatalf("entry %d fires at %v, not in the future", i, got[i].FiresAt)
		}
	}
}

func TestBuildAssigneeFanOut(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	r := &reminder.Reminder{
		ID:          "fan-1",
		Title:       "School run",
		DueDate:     "2025-02-01",
		DueTime:     "08:00",
		OwnerID:     "alice",
		AssigneeIDs: []string{"bob", "carol"},
		Timings:     []reminder.NotificationTiming{{Kind: reminder.TimingExact}},
	}

	got := Build(now, r)
	var localN, cloudN int
	for _, n := range got {
		switch n.Channel {
		case ChannelLocal:
			localN++
			if n.TargetUserID != "alice" {
				t.Fatalf("local entry targets %q, want owner", n.TargetUserID)
			}
		case ChannelCloud:
			cloudN++
			if n.TargetUserID != "bob" && n.TargetUserID != "carol" {
				t.Fatalf("cloud entry targets %q", n.TargetUserID)
			}
			if !n.FiresAt.Equal(got[0].FiresAt) {
				t.Fatalf("cloud copy fires at %v, want mirrored %v", n.FiresAt, got[0].FiresAt)
			}
		}
	}
	if localN != 1 || cloudN != 2 {
		t.Fatalf("local=%d cloud=%d, want 1/2", localN, cloudN)
	}
}

func TestBuildPriorityGlyphAndDescription(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)
	r := &reminder.Reminder{
		ID:          "glyph-1",
		Title:       "Call dentist",
		Description: "Ask about Friday slots",
		Priority:    reminder.PriorityHigh,
		DueDate:     "2025-02-01",
		DueTime:     "10:00",
		OwnerID:     "alice",
		Timings:     []reminder.NotificationTiming{{Kind: reminder.TimingExact}},
	}

	got := Build(now, r)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !strings.HasPrefix(got[0].Title, "🚨 ") {
		t.Fatalf("high priority title %q lacks glyph", got[0].Title)
	}
	if !strings.HasSuffix(got[0].Body, "\nAsk about Friday slots") {
		t.Fatalf("body %q should end with description on a new line", got[0].Body)
	}
}

func TestBuildBadDateYieldsNothing(t *testing.T) {
	t.Parallel()
	r := &reminder.Reminder{
		ID:      "bad-1",
		Title:   "Broken",
		DueDate: "tomorrow-ish",
		OwnerID: "alice",
		Timings: []reminder.NotificationTiming{{Kind: reminder.TimingExact}},
	}
	if got := Build(time.Now(), r); len(got) != 0 {
		t.Fatalf("malformed date produced %d entries, want 0", len(got))
	}
}
