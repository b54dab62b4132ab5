// Package insights turns two months of ledger aggregates into short
// advisory messages about spending and savings.
//
// The Engine compares the requested month with the one before it. Rules run
// in a fixed order (category changes, overall trend, savings, top category
// share) and every rule appends zero or more messages. The Engine keeps no
// state between calls and does no I/O of its own besides asking its
// AggregationProvider for sums.
package insights

import (
	"context"
	"sort"

	"fintrack/internal/core"
)

// Engine generates insights for one user and month at a time. It is safe
// for concurrent use.
type Engine struct {
	provider   AggregationProvider
	thresholds Thresholds
}

func NewEngine(provider AggregationProvider, thresholds Thresholds) *Engine {
	return &Engine{provider: provider, thresholds: thresholds}
}

// Thresholds returns the rule configuration in use.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Generate returns the insights for userID in month current. Provider
// errors are returned as they are.
func (e *Engine) Generate(ctx context.Context, userID int64, current core.Month) ([]string, error) {
	prev := current.Prev()

	currentTotals, err := e.provider.CategoryTotals(ctx, userID, current, core.Expense)
	if err != nil {
		return nil, err
	}
	prevTotals, err := e.provider.CategoryTotals(ctx, userID, prev, core.Expense)
	if err != nil {
		return nil, err
	}

	if signedSum(currentTotals) == 0 && signedSum(prevTotals) == 0 {
		return []string{msgNotEnoughData}, nil
	}

	spend := newSpendComparison(currentTotals, prevTotals)

	var out []string
	out = e.categoryChanges(out, spend)
	out = e.overallTrend(out, spend)

	out, err = e.savings(ctx, out, userID, current, prev)
	if err != nil {
		return nil, err
	}

	out = e.topCategoryShares(out, spend)

	if len(out) == 0 {
		out = append(out, msgSimilarSpend)
	}
	return out, nil
}

func (e *Engine) categoryChanges(out []string, s spendComparison) []string {
	floor := e.thresholds.MinCategoryAmount.Cents
	for _, key := range s.keys {
		curr, prev := s.current[key], s.previous[key]
		if curr < floor && prev < floor {
			continue
		}
		label := s.labels[key]
		switch {
		case prev > 0 && curr > 0:
			ratio := float64(curr-prev) / float64(prev)
			if ratio >= e.thresholds.CategoryChange {
				out = append(out, categoryIncreased(label, ratio, curr, prev))
			} else if ratio <= -e.thresholds.CategoryChange {
				out = append(out, categoryDecreased(label, ratio, curr, prev))
			}
		case prev == 0 && curr > 0:
			out = append(out, categoryStarted(label, curr))
		case prev > 0 && curr == 0:
			out = append(out, categoryStopped(label, prev))
		}
	}
	return out
}

func (e *Engine) overallTrend(out []string, s spendComparison) []string {
	totalCurr, totalPrev := s.currentTotal(), s.previousTotal()
	if totalPrev <= 0 || totalCurr <= 0 {
		return out
	}
	ratio := float64(totalCurr-totalPrev) / float64(totalPrev)
	if ratio >= e.thresholds.OverallSpend {
		out = append(out, overallIncreased(ratio, totalCurr, totalPrev))
	} else if ratio <= -e.thresholds.OverallSpend {
		out = append(out, overallDecreased(ratio, totalCurr, totalPrev))
	}
	return out
}

func (e *Engine) savings(ctx context.Context, out []string, userID int64, current, prev core.Month) ([]string, error) {
	currIncome, err := e.provider.TotalIncome(ctx, userID, current)
	if err != nil {
		return nil, err
	}
	prevIncome, err := e.provider.TotalIncome(ctx, userID, prev)
	if err != nil {
		return nil, err
	}
	currExpense, err := e.provider.TotalExpense(ctx, userID, current)
	if err != nil {
		return nil, err
	}
	prevExpense, err := e.provider.TotalExpense(ctx, userID, prev)
	if err != nil {
		return nil, err
	}

	// Expense totals are already negative.
	currNet := currIncome.Cents + currExpense.Cents
	prevNet := prevIncome.Cents + prevExpense.Cents

	if currIncome.Cents > 0 {
		rate := float64(currNet) / float64(currIncome.Cents)
		switch {
		case rate < 0:
			out = append(out, overspent(currNet))
		case rate < e.thresholds.TargetSavingsRate:
			out = append(out, savedBelowTarget(rate, e.thresholds.TargetSavingsRate))
		default:
			out = append(out, savedOnTarget(rate))
		}
	} else if currNet > 0 {
		// Only reachable when the provider reports a positive expense total,
		// which means part of the ledger is not being tracked as income.
		out = append(out, untrackedIncome(currNet))
	}

	if currNet == 0 && prevNet == 0 {
		return out, nil
	}
	switch {
	case prevNet != 0:
		change := float64(currNet-prevNet) / float64(abs(prevNet))
		if change >= e.thresholds.SavingsChange {
			out = append(out, savingsImproved(change, currNet, prevNet))
		} else if change <= -e.thresholds.SavingsChange {
			out = append(out, savingsDropped(change, currNet, prevNet))
		}
	case currNet > 0:
		out = append(out, startedSaving(currNet))
	case currNet < 0:
		out = append(out, startedOverspending(currNet))
	}
	return out, nil
}

func (e *Engine) topCategoryShares(out []string, s spendComparison) []string {
	total := s.currentTotal()
	if len(s.current) == 0 || total <= 0 {
		return out
	}

	ranked := make([]string, 0, len(s.current))
	for key := range s.current {
		ranked = append(ranked, key)
	}
	sort.Slice(ranked, func(i, j int) bool {
		ai, aj := s.current[ranked[i]], s.current[ranked[j]]
		if ai != aj {
			return ai > aj
		}
		return ranked[i] < ranked[j]
	})

	limit := min(e.thresholds.TopCategoryCount, len(ranked))
	for _, key := range ranked[:limit] {
		amount := s.current[key]
		share := float64(amount) / float64(total)
		if amount >= e.thresholds.MinCategoryAmount.Cents && share >= e.thresholds.TopCategoryShare {
			out = append(out, topCategoryShare(s.labels[key], share, amount))
		}
	}
	return out
}

func signedSum(totals map[string]core.Money) int64 {
	var sum int64
	for _, m := range totals {
		sum += m.Cents
	}
	return sum
}
