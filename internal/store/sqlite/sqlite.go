// Package sqlite implements the record store contract on a local SQLite
// database. Every successful write reloads the user's full record set
// and fans it out to local subscribers, so the snapshot contract holds
// without any diffing.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	db *sql.DB

	mu      sync.Mutex
	subs    map[string]map[int]store.SnapshotFunc
	nextSub int
}

var _ store.Store = (*Store)(nil)

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:   db,
		subs: make(map[string]map[int]store.SnapshotFunc),
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Subscribe registers a snapshot consumer and immediately delivers the
// current record set.
func (s *Store) Subscribe(ctx context.Context, userID string, onSnapshot store.SnapshotFunc) (store.UnsubscribeFunc, error) {
	snapshot, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		return nil, store.NewError("subscribe", err)
	}

	s.mu.Lock()
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]store.SnapshotFunc)
	}
	token := s.nextSub
	s.nextSub++
	s.subs[userID][token] = onSnapshot
	s.mu.Unlock()

	onSnapshot(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.subs[userID], token)
		s.mu.Unlock()
	}, nil
}

func (s *Store) Create(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	tx.ID = uuid.NewString()
	if err := tx.Validate(); err != nil {
		return "", store.NewError("create", err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, text, amount_cents, type, category, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, userID, tx.Text, tx.Amount.Cents, string(tx.Type), string(tx.Category), tx.Date.String())
	if err != nil {
		return "", store.NewError("create", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"text", tx.Text,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)

	s.notify(ctx, userID)
	return tx.ID, nil
}

func (s *Store) Update(ctx context.Context, userID, id string, tx core.Transaction) error {
	tx.ID = id
	if err := tx.Validate(); err != nil {
		return store.NewError("update", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET text = ?, amount_cents = ?, type = ?, category = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		tx.Text, tx.Amount.Cents, string(tx.Type), string(tx.Category), tx.Date.String(), id, userID)
	if err != nil {
		return store.NewError("update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.NewError("update", store.ErrNotFound)
	}

	s.notify(ctx, userID)
	return nil
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return store.NewError("delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.NewError("delete", store.ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	s.notify(ctx, userID)
	return nil
}

// Get returns a single record. Used by the export worker, which only
// receives record ids over the queue.
func (s *Store) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, text, amount_cents, type, category, date
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, store.NewError("get", store.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, store.NewError("get", err)
	}
	return tx, nil
}

// loadSnapshot reads the full record set in insertion order, which is
// the tie-break order the ledger's month selection relies on.
func (s *Store) loadSnapshot(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, amount_cents, type, category, date
		 FROM transactions WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		tx       core.Transaction
		cents    int64
		typ      string
		category string
		date     string
	)
	if err := row.Scan(&tx.ID, &tx.Text, &cents, &typ, &category, &date); err != nil {
		return core.Transaction{}, err
	}
	tx.Amount = core.Money{Cents: cents}
	tx.Type = core.Type(typ)
	tx.Category = core.Category(category)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	tx.Date = d
	return tx, nil
}

// notify reloads the snapshot and fans it out. A reload failure only
// logs: the write itself already succeeded and the next notification
// will carry the current state.
func (s *Store) notify(ctx context.Context, userID string) {
	snapshot, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Snapshot reload failed", "user_id", userID, "error", err)
		return
	}

	s.mu.Lock()
	subs := make([]store.SnapshotFunc, 0, len(s.subs[userID]))
	for _, fn := range s.subs[userID] {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
