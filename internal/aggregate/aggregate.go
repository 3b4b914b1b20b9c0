// Package aggregate composes ledger primitives into the values a
// display surface needs for one (year, month, type filter) selection.
package aggregate

import (
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type (
	// CategoryAmount is one row of the expense breakdown.
	CategoryAmount struct {
		Category core.Category
		Amount   core.Money
	}

	// View is everything a display surface renders for one selection.
	View struct {
		Year    int
		Month   time.Month
		Filter  ledger.Filter
		Summary ledger.Summary
		// Records are the month's transactions after the type filter,
		// date descending.
		Records []core.Transaction
		// ByCategory is the expense breakdown of the month selection,
		// sorted by category name.
		ByCategory []CategoryAmount
	}
)

// Build derives the view for the given selection. Pure function of its
// inputs: no hidden state, safe to call repeatedly and concurrently.
//
// The summary spans the entire record set while the record list and the
// breakdown are month-filtered. The asymmetry is intentional and matches
// the product behavior.
func Build(records []core.Transaction, year int, month time.Month, filter ledger.Filter) View {
	l := ledger.New()
	l.ReplaceAll(records)

	monthly := l.SelectForMonth(year, month)
	filtered := ledger.FilterByType(monthly, filter)

	return View{
		Year:       year,
		Month:      month,
		Filter:     filter,
		Summary:    l.Summarize(),
		Records:    filtered,
		ByCategory: sortedBreakdown(ledger.CategoryBreakdown(filtered)),
	}
}

func sortedBreakdown(sums map[core.Category]core.Money) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(sums))
	for category, amount := range sums {
		out = append(out, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Category < out[j].Category
	})
	return out
}
