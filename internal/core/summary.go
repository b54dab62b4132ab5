package core

import (
	"sort"
	"strings"
	"time"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthlyAggregate is the per-month view of a user's ledger. It is rebuilt
// on every request.
type MonthlyAggregate struct {
	Month          Month
	TotalIncome    Money // >= 0
	TotalExpense   Money // <= 0
	CategoryTotals map[string]Money
}

// Net is income plus the (negative) expense total.
func (a MonthlyAggregate) Net() Money {
	return a.TotalIncome.Add(a.TotalExpense)
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Month      Month
	Income     Money
	Expense    Money
	Net        Money
	ByCategory []CategoryAmount // expense categories, largest first
}

// BudgetStatus compares a budget with the spending recorded in one month.
type BudgetStatus struct {
	Budget    Budget
	Spent     Money // >= 0
	Remaining Money // negative once exceeded
	Exceeded  bool
}

// NewBudgetStatus computes the status of b given the absolute spent amount.
func NewBudgetStatus(b Budget, spent Money) BudgetStatus {
	spent = spent.Abs()
	remaining := b.MonthlyLimit.Sub(spent)
	return BudgetStatus{
		Budget:    b,
		Spent:     spent,
		Remaining: remaining,
		Exceeded:  remaining.Cents < 0,
	}
}

// InsightDigest is the set of insights generated for one user and month.
type InsightDigest struct {
	UserID      int64
	Month       Month
	Insights    []string
	GeneratedAt time.Time
}

// SortedCategoryAmounts turns a category map into a slice ordered by
// absolute amount descending, ties broken by case-insensitive name.
func SortedCategoryAmounts(totals map[string]Money) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Amount.Abs().Cents, out[j].Amount.Abs().Cents
		if ai != aj {
			return ai > aj
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
