package storage

import (
	"context"
	"database/sql"
)

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (user_id, date, title, amount_cents, category, payment_method, notes)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateTransactionParams struct {
	UserID        int64
	Date          string
	Title         string
	AmountCents   int64
	Category      string
	PaymentMethod string
	Notes         string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID,
		arg.Date,
		arg.Title,
		arg.AmountCents,
		arg.Category,
		arg.PaymentMethod,
		arg.Notes,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateTransaction = `-- name: UpdateTransaction :execrows
UPDATE transactions
SET date = ?, title = ?, amount_cents = ?, category = ?, payment_method = ?, notes = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ?
`

type UpdateTransactionParams struct {
	Date          string
	Title         string
	AmountCents   int64
	Category      string
	PaymentMethod string
	Notes         string
	ID            int64
	UserID        int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Date,
		arg.Title,
		arg.AmountCents,
		arg.Category,
		arg.PaymentMethod,
		arg.Notes,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const transactionColumns = `id, user_id, date, title, amount_cents, category, payment_method, notes`

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id, userID int64) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id, userID)
	var i Transaction
	err := scanTransaction(row, &i)
	return i, err
}

const listTransactionsInRange = `-- name: ListTransactionsInRange :many
SELECT ` + transactionColumns + ` FROM transactions
WHERE user_id = ? AND date >= ? AND date < ?
ORDER BY date DESC, id DESC
`

type DateRangeParams struct {
	UserID int64
	Start  string
	End    string
}

func (q *Queries) ListTransactionsInRange(ctx context.Context, arg DateRangeParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsInRange, arg.UserID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

const listRecentTransactions = `-- name: ListRecentTransactions :many
SELECT ` + transactionColumns + ` FROM transactions
WHERE user_id = ?
ORDER BY date DESC, id DESC
LIMIT ?
`

func (q *Queries) ListRecentTransactions(ctx context.Context, userID int64, limit int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listRecentTransactions, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner, i *Transaction) error {
	return row.Scan(
		&i.ID,
		&i.UserID,
		&i.Date,
		&i.Title,
		&i.AmountCents,
		&i.Category,
		&i.PaymentMethod,
		&i.Notes,
	)
}

func collectTransactions(rows *sql.Rows) ([]Transaction, error) {
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := scanTransaction(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getIncomeTotal = `-- name: GetIncomeTotal :one
SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
WHERE user_id = ? AND date >= ? AND date < ? AND amount_cents > 0
`

func (q *Queries) GetIncomeTotal(ctx context.Context, arg DateRangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getIncomeTotal, arg.UserID, arg.Start, arg.End)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const getExpenseTotal = `-- name: GetExpenseTotal :one
SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
WHERE user_id = ? AND date >= ? AND date < ? AND amount_cents < 0
`

func (q *Queries) GetExpenseTotal(ctx context.Context, arg DateRangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getExpenseTotal, arg.UserID, arg.Start, arg.End)
	var total int64
	err := row.Scan(&total)
	return total, err
}

// The bare category column takes its value from the row picked by MIN(id),
// so each bucket is labelled with the first spelling recorded.
const getIncomeCategorySums = `-- name: GetIncomeCategorySums :many
SELECT category, SUM(amount_cents) AS total_amount, MIN(id) AS first_id FROM transactions
WHERE user_id = ? AND date >= ? AND date < ? AND amount_cents > 0
GROUP BY category COLLATE NOCASE
`

const getExpenseCategorySums = `-- name: GetExpenseCategorySums :many
SELECT category, SUM(amount_cents) AS total_amount, MIN(id) AS first_id FROM transactions
WHERE user_id = ? AND date >= ? AND date < ? AND amount_cents < 0
GROUP BY category COLLATE NOCASE
`

func (q *Queries) GetIncomeCategorySums(ctx context.Context, arg DateRangeParams) ([]CategoryTotal, error) {
	return q.categorySums(ctx, getIncomeCategorySums, arg)
}

func (q *Queries) GetExpenseCategorySums(ctx context.Context, arg DateRangeParams) ([]CategoryTotal, error) {
	return q.categorySums(ctx, getExpenseCategorySums, arg)
}

func (q *Queries) categorySums(ctx context.Context, query string, arg DateRangeParams) ([]CategoryTotal, error) {
	rows, err := q.db.QueryContext(ctx, query, arg.UserID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryTotal
	for rows.Next() {
		var i CategoryTotal
		var firstID int64
		if err := rows.Scan(&i.Category, &i.TotalAmount, &firstID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getUsedCategories = `-- name: GetUsedCategories :many
SELECT category FROM transactions
WHERE user_id = ?
GROUP BY category COLLATE NOCASE
ORDER BY category COLLATE NOCASE
`

func (q *Queries) GetUsedCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getUsedCategories, userID)
	if err != nil {
		return nil, err
	}
	return collectStrings(rows)
}

const listUserIDs = `-- name: ListUserIDs :many
SELECT DISTINCT user_id FROM transactions ORDER BY user_id
`

func (q *Queries) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listUserIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var items []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertBudget = `-- name: UpsertBudget :one
INSERT INTO budgets (user_id, category, monthly_limit_cents)
VALUES (?, ?, ?)
ON CONFLICT (user_id, category) DO UPDATE SET monthly_limit_cents = excluded.monthly_limit_cents
RETURNING id, user_id, category, monthly_limit_cents
`

type UpsertBudgetParams struct {
	UserID            int64
	Category          string
	MonthlyLimitCents int64
}

func (q *Queries) UpsertBudget(ctx context.Context, arg UpsertBudgetParams) (Budget, error) {
	row := q.db.QueryRowContext(ctx, upsertBudget, arg.UserID, arg.Category, arg.MonthlyLimitCents)
	var i Budget
	err := row.Scan(&i.ID, &i.UserID, &i.Category, &i.MonthlyLimitCents)
	return i, err
}

const listBudgets = `-- name: ListBudgets :many
SELECT id, user_id, category, monthly_limit_cents FROM budgets
WHERE user_id = ?
ORDER BY category
`

func (q *Queries) ListBudgets(ctx context.Context, userID int64) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		var i Budget
		if err := rows.Scan(&i.ID, &i.UserID, &i.Category, &i.MonthlyLimitCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteBudget = `-- name: DeleteBudget :execrows
DELETE FROM budgets WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteBudget(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBudget, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createRecurring = `-- name: CreateRecurring :one
INSERT INTO recurring_transactions (user_id, start_date, end_date, repetition_type, title, amount_cents, category)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateRecurringParams struct {
	UserID         int64
	StartDate      string
	EndDate        sql.NullString
	RepetitionType string
	Title          string
	AmountCents    int64
	Category       string
}

func (q *Queries) CreateRecurring(ctx context.Context, arg CreateRecurringParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createRecurring,
		arg.UserID,
		arg.StartDate,
		arg.EndDate,
		arg.RepetitionType,
		arg.Title,
		arg.AmountCents,
		arg.Category,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const recurringColumns = `id, user_id, start_date, end_date, repetition_type, title, amount_cents, category, last_execution_date`

const listRecurring = `-- name: ListRecurring :many
SELECT ` + recurringColumns + ` FROM recurring_transactions
WHERE user_id = ?
ORDER BY start_date, id
`

func (q *Queries) ListRecurring(ctx context.Context, userID int64) ([]RecurringTransaction, error) {
	rows, err := q.db.QueryContext(ctx, listRecurring, userID)
	if err != nil {
		return nil, err
	}
	return collectRecurring(rows)
}

const listActiveRecurring = `-- name: ListActiveRecurring :many
SELECT ` + recurringColumns + ` FROM recurring_transactions
WHERE start_date <= ? AND (end_date IS NULL OR end_date >= ?)
ORDER BY id
`

func (q *Queries) ListActiveRecurring(ctx context.Context, date string) ([]RecurringTransaction, error) {
	rows, err := q.db.QueryContext(ctx, listActiveRecurring, date, date)
	if err != nil {
		return nil, err
	}
	return collectRecurring(rows)
}

func collectRecurring(rows *sql.Rows) ([]RecurringTransaction, error) {
	defer rows.Close()
	var items []RecurringTransaction
	for rows.Next() {
		var i RecurringTransaction
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.StartDate,
			&i.EndDate,
			&i.RepetitionType,
			&i.Title,
			&i.AmountCents,
			&i.Category,
			&i.LastExecutionDate,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markRecurringExecuted = `-- name: MarkRecurringExecuted :execrows
UPDATE recurring_transactions SET last_execution_date = ? WHERE id = ?
`

func (q *Queries) MarkRecurringExecuted(ctx context.Context, date string, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markRecurringExecuted, date, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteRecurring = `-- name: DeleteRecurring :execrows
DELETE FROM recurring_transactions WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteRecurring(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRecurring, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
