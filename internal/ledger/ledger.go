// Package ledger holds the latest full snapshot of a user's transaction
// records and answers derived read queries against it.
//
// The ledger is push-fed: the record store hands it the complete current
// record set on every change via ReplaceAll. No diffing is performed and
// no entry from a previous snapshot survives a replacement.
package ledger

import (
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
)

const (
	FilterAll     Filter = "all"
	FilterIncome  Filter = "income"
	FilterExpense Filter = "expense"
)

type (
	// Filter narrows a record sequence by transaction type.
	Filter string

	// Summary carries the headline figures for a record set.
	// TotalExpense is the magnitude of all spending, so
	// TotalBalance = TotalIncome - TotalExpense always holds.
	Summary struct {
		TotalBalance core.Money
		TotalIncome  core.Money
		TotalExpense core.Money
	}

	// Ledger is the in-memory holder of the current snapshot.
	// ReplaceAll is the only mutation entry point; queries are read-only
	// and safe to call freely between store notifications.
	Ledger struct {
		mu      sync.RWMutex
		records []core.Transaction
	}
)

// Valid reports whether f is a known filter value.
func (f Filter) Valid() bool {
	return f == FilterAll || f == FilterIncome || f == FilterExpense
}

func New() *Ledger {
	return &Ledger{}
}

// ReplaceAll replaces the entire record set with the given snapshot.
// Previously derived aggregates are implicitly invalidated since every
// query recomputes from the current set.
func (l *Ledger) ReplaceAll(records []core.Transaction) {
	fresh := make([]core.Transaction, len(records))
	copy(fresh, records)

	l.mu.Lock()
	l.records = fresh
	l.mu.Unlock()
}

// Records returns a copy of the current snapshot in store order.
func (l *Ledger) Records() []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]core.Transaction, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records in the current snapshot.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Summarize computes the headline figures over the entire record set.
// The scope is deliberately not month-filtered; see SelectForMonth for
// the filtered record list.
func (l *Ledger) Summarize() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Summarize(l.records)
}

// Summarize computes totals over the given records. Classification
// trusts the sign of the amount rather than the declared type, so a
// malformed record with a type/sign mismatch still lands on exactly one
// side of the balance.
func Summarize(records []core.Transaction) Summary {
	var income, expense int64
	for _, tx := range records {
		if tx.Amount.Cents >= 0 {
			income += tx.Amount.Cents
		} else {
			expense += -tx.Amount.Cents
		}
	}
	return Summary{
		TotalBalance: core.Money{Cents: income - expense},
		TotalIncome:  core.Money{Cents: income},
		TotalExpense: core.Money{Cents: expense},
	}
}

// SelectForMonth returns the records whose date falls in the given
// calendar month, most recent first. Records sharing a date keep their
// snapshot order, so the result is deterministic.
func (l *Ledger) SelectForMonth(year int, month time.Month) []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range l.records {
		if tx.Date.InMonth(year, month) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// FilterByType keeps only records matching the filter. FilterAll is the
// identity; unknown filters behave like FilterAll.
func FilterByType(records []core.Transaction, f Filter) []core.Transaction {
	if f == FilterAll || !f.Valid() {
		return records
	}
	want := core.Income
	if f == FilterExpense {
		want = core.Expense
	}
	var out []core.Transaction
	for _, tx := range records {
		if tx.Type == want {
			out = append(out, tx)
		}
	}
	return out
}

// CategoryBreakdown sums absolute amounts per category for the expense
// records in the given sequence. Categories without an occurrence are
// absent from the result.
func CategoryBreakdown(records []core.Transaction) map[core.Category]core.Money {
	out := make(map[core.Category]core.Money)
	for _, tx := range records {
		if tx.Type != core.Expense {
			continue
		}
		sum := out[tx.Category]
		sum.Cents += tx.Amount.Abs().Cents
		out[tx.Category] = sum
	}
	return out
}
