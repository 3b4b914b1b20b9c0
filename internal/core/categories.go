package core

import "errors"

// Category names a fixed spending or earning bucket. The expense and
// income enumerations are disjoint.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryRent          Category = "Rent"
	CategoryTransport     Category = "Transport"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategoryMisc          Category = "Misc"

	CategorySalary      Category = "Salary"
	CategoryBusiness    Category = "Business"
	CategoryInvestments Category = "Investments"
	CategoryGifts       Category = "Gifts"
	CategoryOther       Category = "Other"
)

var ErrUnknownCategory = errors.New("unknown category for transaction type")

var expenseCategories = []Category{
	CategoryFood,
	CategoryRent,
	CategoryTransport,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryHealth,
	CategoryMisc,
}

var incomeCategories = []Category{
	CategorySalary,
	CategoryBusiness,
	CategoryInvestments,
	CategoryGifts,
	CategoryOther,
}

// Categories returns the enumeration for the given transaction type, in
// display order. The returned slice must not be mutated.
func Categories(t Type) []Category {
	switch t {
	case Expense:
		return expenseCategories
	case Income:
		return incomeCategories
	default:
		return nil
	}
}

// ValidCategory reports whether c belongs to the enumeration for t.
func ValidCategory(t Type, c Category) bool {
	for _, known := range Categories(t) {
		if known == c {
			return true
		}
	}
	return false
}
