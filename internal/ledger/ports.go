package ledger

import (
	"context"
	"errors"

	"fintrack/internal/core"
	"fintrack/internal/insights"
)

// ErrNotFound is returned when a user-scoped lookup matches no row.
var ErrNotFound = errors.New("not found")

// Ports for ledger backends.
type (
	TransactionWriter interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
		// UpdateTransaction replaces the row matching t.ID and t.UserID.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id int64) error
	}

	TransactionReader interface {
		GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
		// ListTransactions returns the month's entries, newest first.
		ListTransactions(ctx context.Context, userID int64, month core.Month) ([]core.Transaction, error)
		// RecentTransactions returns up to limit entries, newest first.
		RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
		// UsedCategories lists the distinct categories the user has recorded.
		UsedCategories(ctx context.Context, userID int64) ([]string, error)
	}

	BudgetStore interface {
		// UpsertBudget inserts or replaces the limit for the category,
		// matching names case-insensitively.
		UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
		DeleteBudget(ctx context.Context, userID, id int64) error
	}

	RecurringStore interface {
		CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (int64, error)
		ListRecurring(ctx context.Context, userID int64) ([]core.RecurringTransaction, error)
		// ListActiveRecurring returns templates whose date range covers d.
		ListActiveRecurring(ctx context.Context, d core.Date) ([]core.RecurringTransaction, error)
		MarkRecurringExecuted(ctx context.Context, id int64, d core.Date) error
		DeleteRecurring(ctx context.Context, userID, id int64) error
	}

	UserLister interface {
		ListUserIDs(ctx context.Context) ([]int64, error)
	}

	// Store is the full set of operations a ledger backend provides.
	Store interface {
		TransactionWriter
		TransactionReader
		BudgetStore
		RecurringStore
		UserLister
		insights.AggregationProvider
	}
)
