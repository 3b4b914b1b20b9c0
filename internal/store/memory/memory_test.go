package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func draft(text string, cents int64) core.Transaction {
	t := core.Expense
	cat := core.CategoryFood
	if cents > 0 {
		t = core.Income
		cat = core.CategorySalary
	}
	return core.Transaction{
		Text:     text,
		Amount:   core.Money{Cents: cents},
		Type:     t,
		Category: cat,
		Date:     core.NewDate(2024, time.January, 5),
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, err := s.Create(ctx, "u1", draft("a", -100))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id2, err := s.Create(ctx, "u1", draft("b", 200))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Fatalf("ids not unique: %q %q", id1, id2)
	}
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	s := New()
	ctx := context.Background()

	var snapshots [][]core.Transaction
	unsub, err := s.Subscribe(ctx, "u1", func(records []core.Transaction) {
		snapshots = append(snapshots, records)
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsub()

	// Initial delivery of the (empty) current set.
	if len(snapshots) != 1 || len(snapshots[0]) != 0 {
		t.Fatalf("expected one empty initial snapshot, got %d", len(snapshots))
	}

	id, err := s.Create(ctx, "u1", draft("a", -100))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := snapshots[len(snapshots)-1]; len(got) != 1 || got[0].ID != id {
		t.Fatalf("create snapshot wrong: %+v", got)
	}

	updated := draft("a2", -300)
	if err := s.Update(ctx, "u1", id, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := snapshots[len(snapshots)-1]
	if len(got) != 1 || got[0].Text != "a2" || got[0].Amount.Cents != -300 || got[0].ID != id {
		t.Fatalf("update snapshot wrong: %+v", got)
	}

	if err := s.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := snapshots[len(snapshots)-1]; len(got) != 0 {
		t.Fatalf("delete snapshot should be empty, got %+v", got)
	}
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	s := New()
	ctx := context.Background()

	calls := 0
	unsub, err := s.Subscribe(ctx, "u1", func([]core.Transaction) { calls++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	unsub()

	if _, err := s.Create(ctx, "u1", draft("a", -100)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if calls != 1 { // only the initial delivery
		t.Fatalf("expected no deliveries after unsubscribe, got %d", calls)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	s := New()
	ctx := context.Background()

	var u2Snapshots int
	if _, err := s.Subscribe(ctx, "u2", func([]core.Transaction) { u2Snapshots++ }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := s.Create(ctx, "u1", draft("a", -100)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u2Snapshots != 1 { // initial only; u1's write must not fan out to u2
		t.Fatalf("cross-user notification: %d", u2Snapshots)
	}
}

func TestUpdateDeleteUnknownID(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Update(ctx, "u1", "nope", draft("a", -100))
	var serr *store.Error
	if !errors.As(err, &serr) || !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "u1", "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRejectsMalformedRecord(t *testing.T) {
	s := New()
	bad := draft("", -100) // empty text violates the data model
	if _, err := s.Create(context.Background(), "u1", bad); err == nil {
		t.Fatalf("expected store error for malformed record")
	}
}
