// Package command validates proposed create/update commands before they
// are allowed to reach the record store.
package command

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

const (
	MissingField    ErrorKind = "missing_field"
	InvalidAmount   ErrorKind = "invalid_amount"
	InvalidCategory ErrorKind = "invalid_category"
)

type (
	// ErrorKind identifies which validation rule failed.
	ErrorKind string

	// ValidationError reports the first rule a draft violated. Local
	// state is never changed by a failed validation.
	ValidationError struct {
		Kind  ErrorKind
		Field string
	}

	// Draft is a proposed transaction as supplied by a caller. Amount is
	// an unsigned decimal magnitude; the sign is derived from Type and
	// never supplied directly.
	Draft struct {
		Text     string
		Amount   string
		Type     core.Type
		Category core.Category
		Date     string // YYYY-MM-DD
	}
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s (%s)", e.Kind, e.Field)
}

// Message returns the user-facing description of the failure.
func (e *ValidationError) Message() string {
	switch e.Kind {
	case MissingField:
		return "Please fill in the " + e.Field + " field"
	case InvalidAmount:
		return "Amount must be a positive number"
	case InvalidCategory:
		return "Please pick a valid category"
	default:
		return "Invalid input"
	}
}

// Validate checks a draft against the field-level rules, first failure
// winning, and returns the normalized transaction: the amount is stored
// signed (negative for expenses), all other fields pass through.
//
// The returned transaction carries no ID; the record store assigns one
// on creation.
func Validate(d Draft) (core.Transaction, error) {
	if strings.TrimSpace(d.Text) == "" {
		return core.Transaction{}, &ValidationError{Kind: MissingField, Field: "text"}
	}
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return core.Transaction{}, &ValidationError{Kind: MissingField, Field: "date"}
	}

	cents, err := core.ParseDecimalToCents(d.Amount)
	if err != nil {
		return core.Transaction{}, &ValidationError{Kind: InvalidAmount, Field: "amount"}
	}

	// The UI only offers valid options, but programmatic callers get the
	// same enforcement.
	if !core.ValidCategory(d.Type, d.Category) {
		return core.Transaction{}, &ValidationError{Kind: InvalidCategory, Field: "category"}
	}

	if d.Type == core.Expense {
		cents = -cents
	}
	return core.Transaction{
		Text:     strings.TrimSpace(d.Text),
		Amount:   core.Money{Cents: cents},
		Type:     d.Type,
		Category: d.Category,
		Date:     date,
	}, nil
}
