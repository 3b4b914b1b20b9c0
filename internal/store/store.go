// Package store defines the record store contract: the external
// persistence boundary that owns the canonical record set for a user
// and pushes full snapshots to subscribers on every change.
package store

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// ErrNotFound is returned when an update or delete names an unknown id.
var ErrNotFound = errors.New("record not found")

type (
	// SnapshotFunc receives the complete current record set for a user.
	// Subscribers must tolerate snapshots arriving out of submission
	// order; the latest delivery always reflects server state.
	SnapshotFunc func(records []core.Transaction)

	// UnsubscribeFunc cancels a subscription.
	UnsubscribeFunc func()

	// Store is the record store contract. All four operations may fail
	// with a *store.Error; a failed command leaves prior state untouched
	// and is never retried by the caller.
	Store interface {
		Subscribe(ctx context.Context, userID string, onSnapshot SnapshotFunc) (UnsubscribeFunc, error)
		Create(ctx context.Context, userID string, tx core.Transaction) (string, error)
		Update(ctx context.Context, userID, id string, tx core.Transaction) error
		Delete(ctx context.Context, userID, id string) error
	}

	// Error wraps a failure at the store boundary. Callers surface it as
	// a generic "could not save" message and can unwrap for the cause.
	Error struct {
		Op  string
		Err error
	}
)

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a store boundary failure for the given operation.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
