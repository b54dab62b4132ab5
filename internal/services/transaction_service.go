package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/ledger"
)

// EventPublisher announces ledger changes to downstream consumers.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// TransactionStore is the subset of a ledger backend the transaction service needs.
type TransactionStore interface {
	ledger.TransactionWriter
	ledger.TransactionReader
	insights.AggregationProvider
}

// TransactionService orchestrates ledger writes across storage and AMQP
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
	defaults  []string
}

// NewTransactionService wires a store with an optional publisher. defaults is
// the category list offered before the user records anything.
func NewTransactionService(store TransactionStore, publisher EventPublisher, defaults []string) *TransactionService {
	if defaults == nil {
		defaults = core.DefaultCategories
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		defaults:  defaults,
	}
}

// Create validates and saves t, then publishes a created event.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(t.UserID, t.Date.Month(), amqp.ActionCreated, id))
	return id, nil
}

// Update replaces the transaction identified by t.ID and t.UserID. Both the
// old and the new month are announced when the date moved.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	old, err := s.store.GetTransaction(ctx, t.UserID, t.ID)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(t.UserID, t.Date.Month(), amqp.ActionUpdated, t.ID))
	if old.Date.Month() != t.Date.Month() {
		s.publish(ctx, amqp.NewLedgerEvent(t.UserID, old.Date.Month(), amqp.ActionUpdated, t.ID))
	}
	return nil
}

// Delete removes a user's transaction and publishes a deleted event.
func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	old, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(userID, old.Date.Month(), amqp.ActionDeleted, id))
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *TransactionService) List(ctx context.Context, userID int64, month core.Month) ([]core.Transaction, error) {
	if userID <= 0 {
		return nil, core.ErrInvalidUser
	}
	items, err := s.store.ListTransactions(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

func (s *TransactionService) Recent(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	if userID <= 0 {
		return nil, core.ErrInvalidUser
	}
	items, err := s.store.RecentTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return items, nil
}

// Overview summarizes one month: income, expense, net and the expense
// categories ordered by amount.
func (s *TransactionService) Overview(ctx context.Context, userID int64, month core.Month) (core.MonthOverview, error) {
	if userID <= 0 {
		return core.MonthOverview{}, core.ErrInvalidUser
	}
	agg, err := insights.Aggregate(ctx, s.store, userID, month)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("aggregate month: %w", err)
	}
	return core.MonthOverview{
		Month:      month,
		Income:     agg.TotalIncome,
		Expense:    agg.TotalExpense,
		Net:        agg.Net(),
		ByCategory: core.SortedCategoryAmounts(agg.CategoryTotals),
	}, nil
}

// Categories returns the default categories followed by any the user added.
func (s *TransactionService) Categories(ctx context.Context, userID int64) ([]string, error) {
	if userID <= 0 {
		return nil, core.ErrInvalidUser
	}
	used, err := s.store.UsedCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("used categories: %w", err)
	}
	return ledger.MergeCategories(s.defaults, used), nil
}

func (s *TransactionService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping ledger event",
			"user_id", ev.UserID, "month", ev.Month)
		return
	}
	// The write already succeeded; a lost event only delays the next digest.
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"user_id", ev.UserID,
			"month", ev.Month,
			"action", ev.Action,
			"error", err)
	}
}
