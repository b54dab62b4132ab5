package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("round trip mismatch: %s", d)
	}
	if d, err := ParseDate(""); err != nil || !d.IsEmpty() {
		t.Fatalf("empty input should give zero date, got %v %v", d, err)
	}
	if _, err := ParseDate("2024-13-01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err != nil {
		t.Fatalf("negative amounts are expenses, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(Money{Cents: 500}) != Income {
		t.Fatalf("positive amount should be income")
	}
	if KindOf(Money{Cents: -500}) != Expense {
		t.Fatalf("negative amount should be an expense")
	}
	tx := Transaction{Amount: Money{Cents: -1}}
	if tx.Kind() != Expense {
		t.Fatalf("transaction kind mismatch")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:   1,
		Date:     NewDate(2025, 1, 1),
		Title:    "ok",
		Amount:   Money{Cents: -100},
		Category: "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"no user", func(tx *Transaction) { tx.UserID = 0 }, ErrInvalidUser},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"blank category", func(tx *Transaction) { tx.Category = "  " }, ErrEmptyCategory},
		{"long title", func(tx *Transaction) { tx.Title = strings.Repeat("x", MaxTitleLength+1) }, ErrTitleTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{UserID: 1, Category: "Food", MonthlyLimit: Money{Cents: 30000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.MonthlyLimit = Money{Cents: 0}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	bad = good
	bad.Category = ""
	if err := bad.Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestRecurringTransactionValidate(t *testing.T) {
	good := RecurringTransaction{
		UserID:    1,
		StartDate: NewDate(2025, 1, 31),
		Every:     Monthly,
		Title:     "Rent",
		Amount:    Money{Cents: -90000},
		Category:  "Bills",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []RecurringTransaction{
		func() RecurringTransaction { r := good; r.Every = "hourly"; return r }(),
		func() RecurringTransaction { r := good; r.EndDate = NewDate(2024, 12, 1); return r }(),
		func() RecurringTransaction { r := good; r.Amount = Money{}; return r }(),
		func() RecurringTransaction { r := good; r.StartDate = Date{}; return r }(),
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestOccurrence(t *testing.T) {
	r := RecurringTransaction{UserID: 3, Title: "Gym", Amount: Money{Cents: -2500}, Category: "Entertainment"}
	tx := r.Occurrence(NewDate(2025, 3, 1))
	if tx.UserID != 3 || tx.Amount.Cents != -2500 || tx.Category != "Entertainment" {
		t.Fatalf("unexpected occurrence %+v", tx)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("occurrence should be valid: %v", err)
	}
}
