package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	path    string
	queries *Queries
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		path:    dbPath,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Path returns the database file location.
func (r *SQLiteRepository) Path() string {
	return r.path
}

func monthRange(userID int64, m core.Month) DateRangeParams {
	return DateRangeParams{
		UserID: userID,
		Start:  m.Start().Format(time.DateOnly),
		End:    m.End().Format(time.DateOnly),
	}
}

// CreateTransaction implements ledger.TransactionWriter
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		UserID:        t.UserID,
		Date:          t.Date.String(),
		Title:         t.Title,
		AmountCents:   t.Amount.Cents,
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Notes:         t.Notes,
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"user_id", t.UserID,
		"amount_cents", t.Amount.Cents,
		"category", t.Category,
		"date", t.Date.String())

	return id, nil
}

// UpdateTransaction implements ledger.TransactionWriter
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		Date:          t.Date.String(),
		Title:         t.Title,
		AmountCents:   t.Amount.Cents,
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Notes:         t.Notes,
		ID:            t.ID,
		UserID:        t.UserID,
	})
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// DeleteTransaction implements ledger.TransactionWriter
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return toCoreTransaction(row)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, month core.Month) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsInRange(ctx, monthRange(userID, month))
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", month, err)
	}
	return toCoreTransactions(rows)
}

func (r *SQLiteRepository) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := r.queries.ListRecentTransactions(ctx, userID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	return toCoreTransactions(rows)
}

func (r *SQLiteRepository) UsedCategories(ctx context.Context, userID int64) ([]string, error) {
	cats, err := r.queries.GetUsedCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get used categories: %w", err)
	}
	return cats, nil
}

func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	ids, err := r.queries.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

// TotalIncome implements insights.AggregationProvider
func (r *SQLiteRepository) TotalIncome(ctx context.Context, userID int64, month core.Month) (core.Money, error) {
	total, err := r.queries.GetIncomeTotal(ctx, monthRange(userID, month))
	if err != nil {
		return core.Money{}, fmt.Errorf("get income total: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// TotalExpense implements insights.AggregationProvider
func (r *SQLiteRepository) TotalExpense(ctx context.Context, userID int64, month core.Month) (core.Money, error) {
	total, err := r.queries.GetExpenseTotal(ctx, monthRange(userID, month))
	if err != nil {
		return core.Money{}, fmt.Errorf("get expense total: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// CategoryTotals implements insights.AggregationProvider
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, userID int64, month core.Month, kind core.Kind) (map[string]core.Money, error) {
	var (
		sums []CategoryTotal
		err  error
	)
	switch kind {
	case core.Income:
		sums, err = r.queries.GetIncomeCategorySums(ctx, monthRange(userID, month))
	case core.Expense:
		sums, err = r.queries.GetExpenseCategorySums(ctx, monthRange(userID, month))
	default:
		return nil, kind.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("get %s category sums: %w", kind, err)
	}

	out := make(map[string]core.Money, len(sums))
	for _, cs := range sums {
		out[cs.Category] = core.Money{Cents: cs.TotalAmount}
	}
	return out, nil
}

// UpsertBudget implements ledger.BudgetStore
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	row, err := r.queries.UpsertBudget(ctx, UpsertBudgetParams{
		UserID:            b.UserID,
		Category:          b.Category,
		MonthlyLimitCents: b.MonthlyLimit.Cents,
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return toCoreBudget(row), nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, len(rows))
	for i, row := range rows {
		out[i] = toCoreBudget(row)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteBudget(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// CreateRecurring implements ledger.RecurringStore
func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (int64, error) {
	if err := rt.Validate(); err != nil {
		return 0, err
	}
	id, err := r.queries.CreateRecurring(ctx, CreateRecurringParams{
		UserID:         rt.UserID,
		StartDate:      rt.StartDate.String(),
		EndDate:        nullDate(rt.EndDate),
		RepetitionType: string(rt.Every),
		Title:          rt.Title,
		AmountCents:    rt.Amount.Cents,
		Category:       rt.Category,
	})
	if err != nil {
		return 0, fmt.Errorf("create recurring transaction: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context, userID int64) ([]core.RecurringTransaction, error) {
	rows, err := r.queries.ListRecurring(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	return toCoreRecurring(rows)
}

func (r *SQLiteRepository) ListActiveRecurring(ctx context.Context, d core.Date) ([]core.RecurringTransaction, error) {
	rows, err := r.queries.ListActiveRecurring(ctx, d.String())
	if err != nil {
		return nil, fmt.Errorf("list active recurring transactions: %w", err)
	}
	return toCoreRecurring(rows)
}

func (r *SQLiteRepository) MarkRecurringExecuted(ctx context.Context, id int64, d core.Date) error {
	n, err := r.queries.MarkRecurringExecuted(ctx, d.String(), id)
	if err != nil {
		return fmt.Errorf("mark recurring executed: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteRecurring(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func toCoreTransaction(row Transaction) (core.Transaction, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d has bad date %q: %w", row.ID, row.Date, err)
	}
	return core.Transaction{
		ID:            row.ID,
		UserID:        row.UserID,
		Date:          d,
		Title:         row.Title,
		Amount:        core.Money{Cents: row.AmountCents},
		Category:      row.Category,
		PaymentMethod: row.PaymentMethod,
		Notes:         row.Notes,
	}, nil
}

func toCoreTransactions(rows []Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCoreTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func toCoreBudget(row Budget) core.Budget {
	return core.Budget{
		ID:           row.ID,
		UserID:       row.UserID,
		Category:     row.Category,
		MonthlyLimit: core.Money{Cents: row.MonthlyLimitCents},
	}
}

func toCoreRecurring(rows []RecurringTransaction) ([]core.RecurringTransaction, error) {
	out := make([]core.RecurringTransaction, 0, len(rows))
	for _, row := range rows {
		start, err := core.ParseDate(row.StartDate)
		if err != nil {
			return nil, fmt.Errorf("recurring %d has bad start date: %w", row.ID, err)
		}
		end, err := core.ParseDate(row.EndDate.String)
		if err != nil {
			return nil, fmt.Errorf("recurring %d has bad end date: %w", row.ID, err)
		}
		last, err := core.ParseDate(row.LastExecutionDate.String)
		if err != nil {
			return nil, fmt.Errorf("recurring %d has bad execution date: %w", row.ID, err)
		}
		out = append(out, core.RecurringTransaction{
			ID:            row.ID,
			UserID:        row.UserID,
			StartDate:     start,
			EndDate:       end,
			LastExecution: last,
			Every:         core.RepetitionTypes(row.RepetitionType),
			Title:         row.Title,
			Amount:        core.Money{Cents: row.AmountCents},
			Category:      row.Category,
		})
	}
	return out, nil
}

func nullDate(d core.Date) sql.NullString {
	if d.IsEmpty() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
