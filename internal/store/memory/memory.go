// Package memory implements the record store contract in process
// memory. It backs tests and the zero-configuration default backend.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu      sync.Mutex
	records map[string][]core.Transaction // per user, insertion order
	subs    map[string]map[int]store.SnapshotFunc
	nextSub int
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		records: make(map[string][]core.Transaction),
		subs:    make(map[string]map[int]store.SnapshotFunc),
	}
}

// Subscribe registers a snapshot consumer for the user and immediately
// delivers the current record set, so a new subscriber never starts
// from an empty ledger while data exists.
func (s *Store) Subscribe(_ context.Context, userID string, onSnapshot store.SnapshotFunc) (store.UnsubscribeFunc, error) {
	s.mu.Lock()
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]store.SnapshotFunc)
	}
	token := s.nextSub
	s.nextSub++
	s.subs[userID][token] = onSnapshot
	snapshot := s.snapshotLocked(userID)
	s.mu.Unlock()

	onSnapshot(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.subs[userID], token)
		s.mu.Unlock()
	}, nil
}

// Create assigns an id, appends the record and fans out the new snapshot.
func (s *Store) Create(_ context.Context, userID string, tx core.Transaction) (string, error) {
	tx.ID = uuid.NewString()
	if err := tx.Validate(); err != nil {
		return "", store.NewError("create", err)
	}

	s.mu.Lock()
	s.records[userID] = append(s.records[userID], tx)
	snapshot, subs := s.fanoutLocked(userID)
	s.mu.Unlock()

	deliver(subs, snapshot)
	return tx.ID, nil
}

// Update replaces all mutable fields of the record atomically; the id
// and the record's position in the set are preserved.
func (s *Store) Update(_ context.Context, userID, id string, tx core.Transaction) error {
	tx.ID = id
	if err := tx.Validate(); err != nil {
		return store.NewError("update", err)
	}

	s.mu.Lock()
	records := s.records[userID]
	idx := -1
	for i := range records {
		if records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return store.NewError("update", store.ErrNotFound)
	}
	records[idx] = tx
	snapshot, subs := s.fanoutLocked(userID)
	s.mu.Unlock()

	deliver(subs, snapshot)
	return nil
}

// Delete removes the record permanently. No tombstone remains.
func (s *Store) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	records := s.records[userID]
	idx := -1
	for i := range records {
		if records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return store.NewError("delete", store.ErrNotFound)
	}
	s.records[userID] = append(records[:idx], records[idx+1:]...)
	snapshot, subs := s.fanoutLocked(userID)
	s.mu.Unlock()

	deliver(subs, snapshot)
	return nil
}

func (s *Store) snapshotLocked(userID string) []core.Transaction {
	records := s.records[userID]
	out := make([]core.Transaction, len(records))
	copy(out, records)
	return out
}

func (s *Store) fanoutLocked(userID string) ([]core.Transaction, []store.SnapshotFunc) {
	snapshot := s.snapshotLocked(userID)
	subs := make([]store.SnapshotFunc, 0, len(s.subs[userID]))
	for _, fn := range s.subs[userID] {
		subs = append(subs, fn)
	}
	return snapshot, subs
}

// deliver runs outside the store lock so subscribers may call back into
// the store.
func deliver(subs []store.SnapshotFunc, snapshot []core.Transaction) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
