package insights

import (
	"context"

	"fintrack/internal/core"
)

// AggregationProvider answers monthly sums over a user's ledger.
//
// TotalIncome is >= 0 and TotalExpense is <= 0. CategoryTotals serves one
// kind view per call: expense sums are <= 0, income sums are >= 0. Every
// entry dated inside [month.Start, month.End) lands in exactly one category.
type AggregationProvider interface {
	TotalIncome(ctx context.Context, userID int64, month core.Month) (core.Money, error)
	TotalExpense(ctx context.Context, userID int64, month core.Month) (core.Money, error)
	CategoryTotals(ctx context.Context, userID int64, month core.Month, kind core.Kind) (map[string]core.Money, error)
}

// Aggregate collects the expense view of one month into a MonthlyAggregate.
func Aggregate(ctx context.Context, p AggregationProvider, userID int64, month core.Month) (core.MonthlyAggregate, error) {
	income, err := p.TotalIncome(ctx, userID, month)
	if err != nil {
		return core.MonthlyAggregate{}, err
	}
	expense, err := p.TotalExpense(ctx, userID, month)
	if err != nil {
		return core.MonthlyAggregate{}, err
	}
	totals, err := p.CategoryTotals(ctx, userID, month, core.Expense)
	if err != nil {
		return core.MonthlyAggregate{}, err
	}
	return core.MonthlyAggregate{
		Month:          month,
		TotalIncome:    income,
		TotalExpense:   expense,
		CategoryTotals: totals,
	}, nil
}
