package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// TransactionCreator persists a materialized occurrence.
type TransactionCreator interface {
	Create(ctx context.Context, t core.Transaction) (int64, error)
}

// RecurringProcessor materializes due recurring transactions into the ledger
type RecurringProcessor struct {
	store   ledger.RecurringStore
	creator TransactionCreator
}

func NewRecurringProcessor(store ledger.RecurringStore, creator TransactionCreator) *RecurringProcessor {
	return &RecurringProcessor{
		store:   store,
		creator: creator,
	}
}

// CreateTemplate validates and stores a recurring transaction.
func (p *RecurringProcessor) CreateTemplate(ctx context.Context, rt core.RecurringTransaction) (int64, error) {
	if err := rt.Validate(); err != nil {
		return 0, err
	}
	id, err := p.store.CreateRecurring(ctx, rt)
	if err != nil {
		return 0, fmt.Errorf("create recurring: %w", err)
	}
	return id, nil
}

func (p *RecurringProcessor) ListTemplates(ctx context.Context, userID int64) ([]core.RecurringTransaction, error) {
	if userID <= 0 {
		return nil, core.ErrInvalidUser
	}
	items, err := p.store.ListRecurring(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	return items, nil
}

func (p *RecurringProcessor) DeleteTemplate(ctx context.Context, userID, id int64) error {
	if err := p.store.DeleteRecurring(ctx, userID, id); err != nil {
		return fmt.Errorf("delete recurring: %w", err)
	}
	return nil
}

// ProcessDue creates one transaction dated today for every active template
// that is due at now, and returns how many were created. A failing template
// is logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.creator == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	active, err := p.store.ListActiveRecurring(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list active recurring: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(active),
		"processing_date", today.String())

	processed := 0
	for _, rt := range active {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		checker, err := GetDuenessChecker(rt.Every)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping recurring transaction",
				"recurring_id", rt.ID,
				"error", err)
			continue
		}
		if !checker.IsDue(rt.LastExecution.Time, now, rt.StartDate) {
			continue
		}

		if _, err := p.creator.Create(ctx, rt.Occurrence(today)); err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
				"recurring_id", rt.ID,
				"title", rt.Title,
				"error", err)
			continue
		}

		if err := p.store.MarkRecurringExecuted(ctx, rt.ID, today); err != nil {
			// The occurrence exists; the next run may create it again.
			slog.ErrorContext(ctx, "Failed to update last execution date",
				"recurring_id", rt.ID,
				"error", err)
		}

		processed++
		slog.InfoContext(ctx, "Created transaction from recurring template",
			"recurring_id", rt.ID,
			"user_id", rt.UserID,
			"amount_cents", rt.Amount.Cents,
			"frequency", rt.Every)
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"processed", processed,
		"total_checked", len(active))

	return processed, nil
}
