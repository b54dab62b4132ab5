package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/ledger"
)

// BudgetStore is the subset of a ledger backend budgets need.
type BudgetStore interface {
	ledger.BudgetStore
	insights.AggregationProvider
}

// BudgetService manages per-category monthly limits.
type BudgetService struct {
	store BudgetStore
}

func NewBudgetService(store BudgetStore) *BudgetService {
	return &BudgetService{store: store}
}

// Set creates the budget for category or replaces its limit. Category names
// match case-insensitively.
func (s *BudgetService) Set(ctx context.Context, userID int64, category string, limit core.Money) (core.Budget, error) {
	b := core.Budget{UserID: userID, Category: category, MonthlyLimit: limit}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.store.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return saved, nil
}

func (s *BudgetService) List(ctx context.Context, userID int64) ([]core.Budget, error) {
	if userID <= 0 {
		return nil, core.ErrInvalidUser
	}
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// Status compares every budget of the user with the month's expenses.
func (s *BudgetService) Status(ctx context.Context, userID int64, month core.Month) ([]core.BudgetStatus, error) {
	budgets, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return []core.BudgetStatus{}, nil
	}

	totals, err := s.store.CategoryTotals(ctx, userID, month, core.Expense)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	spent := make(map[string]core.Money, len(totals))
	for name, amount := range totals {
		key := core.CategoryKey(name)
		spent[key] = spent[key].Add(amount)
	}

	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, core.NewBudgetStatus(b, spent[core.CategoryKey(b.Category)]))
	}
	return out, nil
}
