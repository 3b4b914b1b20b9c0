package core

import "testing"

func TestCategoriesDisjoint(t *testing.T) {
	seen := map[Category]Type{}
	for _, c := range Categories(Expense) {
		seen[c] = Expense
	}
	for _, c := range Categories(Income) {
		if prev, ok := seen[c]; ok {
			t.Fatalf("category %q appears in both %s and income enumerations", c, prev)
		}
	}
}

func TestValidCategory(t *testing.T) {
	if !ValidCategory(Expense, CategoryFood) {
		t.Fatalf("Food should be a valid expense category")
	}
	if ValidCategory(Income, CategoryFood) {
		t.Fatalf("Food should not be a valid income category")
	}
	if !ValidCategory(Income, CategorySalary) {
		t.Fatalf("Salary should be a valid income category")
	}
	if ValidCategory(Expense, "Lottery") {
		t.Fatalf("unknown category accepted")
	}
	if Categories("transfer") != nil {
		t.Fatalf("unknown type should have no categories")
	}
}
