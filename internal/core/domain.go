package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense Type = "expense"
	Income  Type = "income"
)

type (
	// Type classifies a transaction as money leaving or entering the account.
	Type string

	// Date is a calendar day without a time component.
	Date struct {
		time.Time
	}

	// Money is an exact amount in integer cents. Negative cents mean an
	// expense, positive cents an income.
	Money struct {
		Cents int64
	}

	// Transaction is one income or expense entry. ID is assigned by the
	// record store on creation and is immutable afterwards.
	Transaction struct {
		ID       string
		Text     string
		Amount   Money
		Type     Type
		Category Category
		Date     Date
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrEmptyText     = errors.New("empty description")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == Expense || t == Income
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// InMonth reports whether the date falls in the given calendar month.
func (d Date) InMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// Validate checks the data-model invariants of a stored transaction.
// Records failing these rules are rejected by the command validator and
// never reach the store through the normal write path.
func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(tx.Text)) == 0 {
		return ErrEmptyText
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	// type = expense <=> amount < 0
	if tx.Type == Expense && tx.Amount.Cents > 0 {
		return ErrInvalidAmount
	}
	if tx.Type == Income && tx.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !ValidCategory(tx.Type, tx.Category) {
		return ErrUnknownCategory
	}
	return nil
}
