package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger/memory"
)

func TestRecurringProcessorProcessDue(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	pub := &recordingPublisher{}
	txs := NewTransactionService(store, pub, nil)
	p := NewRecurringProcessor(store, txs)

	rent := core.RecurringTransaction{
		UserID:    1,
		StartDate: core.NewDate(2024, 1, 31),
		Every:     core.Monthly,
		Title:     "Rent",
		Amount:    core.Money{Cents: -90000},
		Category:  "Bills",
	}
	if _, err := p.CreateTemplate(ctx, rent); err != nil {
		t.Fatalf("create template: %v", err)
	}
	future := rent
	future.StartDate = core.NewDate(2024, 6, 1)
	if _, err := p.CreateTemplate(ctx, future); err != nil {
		t.Fatalf("create future template: %v", err)
	}

	feb := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
	n, err := p.ProcessDue(ctx, feb)
	if err != nil || n != 1 {
		t.Fatalf("expected one occurrence, got %d err=%v", n, err)
	}
	if n, _ := p.ProcessDue(ctx, feb.Add(time.Hour)); n != 0 {
		t.Fatalf("second pass in the same month created %d", n)
	}

	list, err := txs.List(ctx, 1, core.NewMonth(2024, time.February))
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected ledger: %+v err=%v", list, err)
	}
	got := list[0]
	if got.Date.String() != "2024-02-29" || got.Amount.Cents != -90000 || got.Notes != "recurring" || got.Category != "Bills" {
		t.Fatalf("unexpected occurrence: %+v", got)
	}
	if len(pub.events) != 1 || pub.events[0].Month != "2024-02" {
		t.Fatalf("occurrence must publish a ledger event, got %+v", pub.events)
	}

	templates, err := p.ListTemplates(ctx, 1)
	if err != nil || len(templates) != 2 || templates[0].LastExecution.String() != "2024-02-29" {
		t.Fatalf("unexpected templates: %+v err=%v", templates, err)
	}

	if n, _ := p.ProcessDue(ctx, time.Date(2024, 3, 30, 9, 0, 0, 0, time.UTC)); n != 0 {
		t.Fatalf("march 30 is before the 31st, created %d", n)
	}
	if n, _ := p.ProcessDue(ctx, time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC)); n != 1 {
		t.Fatalf("march 31 should be due, created %d", n)
	}
}

func TestRecurringProcessorTemplates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := NewRecurringProcessor(store, NewTransactionService(store, nil, nil))

	bad := core.RecurringTransaction{UserID: 1, StartDate: core.NewDate(2024, 1, 1), Every: "hourly", Amount: core.Money{Cents: 100}, Category: "Salary"}
	if _, err := p.CreateTemplate(ctx, bad); !errors.Is(err, core.ErrInvalidRepetition) {
		t.Fatalf("expected ErrInvalidRepetition, got %v", err)
	}
	if _, err := p.ListTemplates(ctx, 0); !errors.Is(err, core.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}

	bad.Every = core.Weekly
	id, err := p.CreateTemplate(ctx, bad)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := p.DeleteTemplate(ctx, 1, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := p.DeleteTemplate(ctx, 1, id); err == nil {
		t.Fatal("expected error deleting twice")
	}
}

func TestRecurringProcessorNotInitialized(t *testing.T) {
	if _, err := NewRecurringProcessor(nil, nil).ProcessDue(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error from uninitialized processor")
	}
}
