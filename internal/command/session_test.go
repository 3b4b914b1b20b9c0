package command

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

type fakeWriter struct {
	created []core.Transaction
	updated map[string]core.Transaction
	fail    error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{updated: make(map[string]core.Transaction)}
}

func (w *fakeWriter) Create(_ context.Context, _ string, tx core.Transaction) (string, error) {
	if w.fail != nil {
		return "", w.fail
	}
	w.created = append(w.created, tx)
	return "id-1", nil
}

func (w *fakeWriter) Update(_ context.Context, _ string, id string, tx core.Transaction) error {
	if w.fail != nil {
		return w.fail
	}
	w.updated[id] = tx
	return nil
}

func TestSubmitIdleCreates(t *testing.T) {
	w := newFakeWriter()
	var s Session

	id, err := s.Submit(context.Background(), w, "u1", validDraft())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != "id-1" || len(w.created) != 1 {
		t.Fatalf("expected one create, got id=%q created=%d", id, len(w.created))
	}
	if _, editing := s.Editing(); editing {
		t.Fatalf("session should stay idle after create")
	}
}

func TestSubmitEditingUpdatesAndReturnsToIdle(t *testing.T) {
	w := newFakeWriter()
	var s Session
	s.Begin("abc")

	id, err := s.Submit(context.Background(), w, "u1", validDraft())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != "abc" {
		t.Fatalf("expected update for edit target, got %q", id)
	}
	if len(w.created) != 0 {
		t.Fatalf("editing submit must not create")
	}
	if _, ok := w.updated["abc"]; !ok {
		t.Fatalf("update not issued for abc")
	}
	if _, editing := s.Editing(); editing {
		t.Fatalf("session should be idle after successful submit")
	}
}

func TestSubmitFailureLeavesSessionUnchanged(t *testing.T) {
	w := newFakeWriter()
	var s Session
	s.Begin("abc")

	// Validation failure: no command reaches the writer.
	bad := validDraft()
	bad.Amount = "0"
	if _, err := s.Submit(context.Background(), w, "u1", bad); err == nil {
		t.Fatalf("expected validation error")
	}
	if id, editing := s.Editing(); !editing || id != "abc" {
		t.Fatalf("failed submit must keep the edit target")
	}

	// Store failure: session still editing.
	w.fail = errors.New("boom")
	if _, err := s.Submit(context.Background(), w, "u1", validDraft()); err == nil {
		t.Fatalf("expected store error")
	}
	if id, editing := s.Editing(); !editing || id != "abc" {
		t.Fatalf("store failure must keep the edit target")
	}
}

func TestCancelReturnsToIdle(t *testing.T) {
	var s Session
	s.Begin("abc")
	s.Cancel()
	if _, editing := s.Editing(); editing {
		t.Fatalf("cancel should return to idle")
	}
}

func TestBeginReplacesTarget(t *testing.T) {
	var s Session
	s.Begin("one")
	s.Begin("two")
	if id, _ := s.Editing(); id != "two" {
		t.Fatalf("only one record may be edited at a time, got %q", id)
	}
}
