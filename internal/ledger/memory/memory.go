// Package memory is an in-process ledger used for tests and demo runs.
// Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type Store struct {
	mu        sync.Mutex
	nextID    int64
	items     []core.Transaction
	budgets   []core.Budget
	recurring []core.RecurringTransaction
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// CreateTransaction stores the entry and returns its id.
func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.items = append(s.items, t)
	return t.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(t.UserID, t.ID)
	if i < 0 {
		return ledger.ErrNotFound
	}
	s.items[i] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(userID, id)
	if i < 0 {
		return ledger.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(userID, id)
	if i < 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return s.items[i], nil
}

func (s *Store) indexOf(userID, id int64) int {
	for i, t := range s.items {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}

func (s *Store) ListTransactions(_ context.Context, userID int64, month core.Month) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.items {
		if t.UserID == userID && month.Contains(t.Date) {
			out = append(out, t)
		}
	}
	newestFirst(out)
	return out, nil
}

func (s *Store) RecentTransactions(_ context.Context, userID int64, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	newestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newestFirst(items []core.Transaction) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date.Time) {
			return items[i].Date.After(items[j].Date.Time)
		}
		return items[i].ID > items[j].ID
	})
}

func (s *Store) UsedCategories(_ context.Context, userID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, t := range s.items {
		if t.UserID == userID {
			names = append(names, t.Category)
		}
	}
	names = ledger.MergeCategories(nil, names)
	sort.Strings(names)
	return names, nil
}

func (s *Store) ListUserIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[int64]struct{}{}
	var ids []int64
	for _, t := range s.items {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		ids = append(ids, t.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// TotalIncome sums positive amounts for the month.
func (s *Store) TotalIncome(_ context.Context, userID int64, month core.Month) (core.Money, error) {
	return s.sum(userID, month, core.Income), nil
}

// TotalExpense sums negative amounts for the month.
func (s *Store) TotalExpense(_ context.Context, userID int64, month core.Month) (core.Money, error) {
	return s.sum(userID, month, core.Expense), nil
}

func (s *Store) sum(userID int64, month core.Month, kind core.Kind) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, t := range s.items {
		if t.UserID == userID && month.Contains(t.Date) && t.Kind() == kind {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// CategoryTotals groups the month's entries of one kind by category. Names
// differing only by case share a bucket labelled with the first spelling
// recorded.
func (s *Store) CategoryTotals(_ context.Context, userID int64, month core.Month, kind core.Kind) (map[string]core.Money, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	labels := map[string]string{}
	sums := map[string]core.Money{}
	for _, t := range s.items {
		if t.UserID != userID || !month.Contains(t.Date) || t.Kind() != kind {
			continue
		}
		key := core.CategoryKey(t.Category)
		if _, ok := labels[key]; !ok {
			labels[key] = t.Category
		}
		sums[key] = sums[key].Add(t.Amount)
	}
	out := make(map[string]core.Money, len(sums))
	for key, total := range sums {
		out[labels[key]] = total
	}
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := core.CategoryKey(b.Category)
	for i, existing := range s.budgets {
		if existing.UserID == b.UserID && core.CategoryKey(existing.Category) == key {
			s.budgets[i].MonthlyLimit = b.MonthlyLimit
			return s.budgets[i], nil
		}
	}
	b.ID = s.id()
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) ListBudgets(_ context.Context, userID int64) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return core.CategoryKey(out[i].Category) < core.CategoryKey(out[j].Category)
	})
	return out, nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.budgets {
		if b.ID == id && b.UserID == userID {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) CreateRecurring(_ context.Context, rt core.RecurringTransaction) (int64, error) {
	if err := rt.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.ID = s.id()
	s.recurring = append(s.recurring, rt)
	return rt.ID, nil
}

func (s *Store) ListRecurring(_ context.Context, userID int64) ([]core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurringTransaction
	for _, rt := range s.recurring {
		if rt.UserID == userID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (s *Store) ListActiveRecurring(_ context.Context, d core.Date) ([]core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurringTransaction
	for _, rt := range s.recurring {
		if rt.StartDate.After(d.Time) {
			continue
		}
		if !rt.EndDate.IsEmpty() && rt.EndDate.Before(d.Time) {
			continue
		}
		out = append(out, rt)
	}
	return out, nil
}

func (s *Store) MarkRecurringExecuted(_ context.Context, id int64, d core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recurring {
		if s.recurring[i].ID == id {
			s.recurring[i].LastExecution = d
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) DeleteRecurring(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rt := range s.recurring {
		if rt.ID == id && rt.UserID == userID {
			s.recurring = append(s.recurring[:i], s.recurring[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}
