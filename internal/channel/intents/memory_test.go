package intents

import (
	"context"
	"testing"
	"time"

	"remindd/pkg/logx"
)

func rec(rem, target string, at time.Time) Record {
	return Record{ReminderID: rem, TargetUserID: target, FiresAt: at, Title: "t", Status: StatusPending}
}

func TestPutOverwritesSameKey(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()
	at := time.Now().Add(time.Hour)

	_ = m.Put(ctx, rec("r1", "bob", at))
	r2 := rec("r1", "bob", at)
	r2.Title = "updated"
	_ = m.Put(ctx, r2)

	got, err := m.ListByReminder(ctx, "r1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (overwrite by key)", len(got))
	}
	if got[0].Title != "updated" {
		t.Fatalf("title = %q, want %q", got[0].Title, "updated")
	}
}

func TestCancelByReminderIsSoft(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()
	at := time.Now().Add(time.Hour)

	_ = m.Put(ctx, rec("r1", "bob", at))
	_ = m.Put(ctx, rec("r1", "carol", at))
	_ = m.Put(ctx, rec("r2", "bob", at))

	n, err := m.CancelByReminder(ctx, "r1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n != 2 {
		t.Fatalf("cancelled = %d, want 2", n)
	}

	// Soft delete: rows remain, status flipped.
	got, _ := m.ListByReminder(ctx, "r1")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (records preserved)", len(got))
	}
	for _, r := range got {
		if r.Status != StatusCancelled {
			t.Fatalf("status = %q, want cancelled", r.Status)
		}
	}

	// Already-cancelled rows are not counted again.
	if n, _ := m.CancelByReminder(ctx, "r1"); n != 0 {
		t.Fatalf("second cancel = %d, want 0", n)
	}
}

func TestCancelAllAndPrune(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(time.Hour)

	_ = m.Put(ctx, rec("r1", "bob", past))
	_ = m.Put(ctx, rec("r2", "bob", future))

	if n, _ := m.CancelAll(ctx); n != 2 {
		t.Fatalf("cancel all = %d, want 2", n)
	}

	n, err := m.PruneBefore(ctx, time.Now().Add(-24*time.Hour).UnixMilli())
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("pruned = %d, want 1", n)
	}
	if got, _ := m.ListByReminder(ctx, "r1"); len(got) != 0 {
		t.Fatalf("r1 rows = %d after prune, want 0", len(got))
	}
	if got, _ := m.ListByReminder(ctx, "r2"); len(got) != 1 {
		t.Fatalf("r2 rows = %d after prune, want 1", len(got))
	}
}

func TestOpenDisabledDriver(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: ""}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if st != nil {
		t.Fatal("empty driver should disable the store")
	}
	if _, err := Open(Config{Driver: "bogus"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
