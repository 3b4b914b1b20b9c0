package command

import (
	"context"

	"fintrack/internal/core"
)

// Writer is the slice of the record store contract a submit needs.
type Writer interface {
	Create(ctx context.Context, userID string, tx core.Transaction) (string, error)
	Update(ctx context.Context, userID, id string, tx core.Transaction) error
}

// Session is the two-state edit machine: Idle -> Editing(id) -> Idle.
// At most one record is being edited at a time. The session is owned by
// whichever caller drives the validator; there is no ambient state.
type Session struct {
	editing string
}

// Editing returns the id currently being edited, if any.
func (s *Session) Editing() (string, bool) {
	return s.editing, s.editing != ""
}

// Begin enters the Editing state for the given record. Beginning a new
// edit replaces any previous target.
func (s *Session) Begin(id string) {
	s.editing = id
}

// Cancel returns to Idle without issuing a command.
func (s *Session) Cancel() {
	s.editing = ""
}

// Submit validates the draft and issues the appropriate command: an
// update for the edit target while Editing, a create otherwise. The
// session returns to Idle only on success; on any error the state and
// the store are left untouched. The record id is returned.
func (s *Session) Submit(ctx context.Context, w Writer, userID string, d Draft) (string, error) {
	tx, err := Validate(d)
	if err != nil {
		return "", err
	}

	if id, ok := s.Editing(); ok {
		if err := w.Update(ctx, userID, id, tx); err != nil {
			return "", err
		}
		s.editing = ""
		return id, nil
	}

	id, err := w.Create(ctx, userID, tx)
	if err != nil {
		return "", err
	}
	return id, nil
}
