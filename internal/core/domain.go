package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Monthly RepetitionTypes = "monthly"
	Yearly  RepetitionTypes = "yearly"
	Weekly  RepetitionTypes = "weekly"
	Daily   RepetitionTypes = "daily"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// MaxTitleLength bounds Transaction.Title and RecurringTransaction.Title.
const MaxTitleLength = 200

// DefaultCategories are offered to every user before they record anything.
var DefaultCategories = []string{
	"Food",
	"Transport",
	"Entertainment",
	"Bills",
	"Subscriptions",
	"Salary",
	"Others",
}

type (
	RepetitionTypes string

	// Kind tells income and expense entries apart. It is derived from the
	// sign of an amount and never stored.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one signed ledger entry. Positive amounts are income,
	// negative amounts are expenses.
	Transaction struct {
		ID            int64
		UserID        int64
		Date          Date
		Title         string
		Amount        Money
		Category      string
		PaymentMethod string
		Notes         string
	}

	// Budget is a monthly spending limit for one category.
	Budget struct {
		ID           int64
		UserID       int64
		Category     string
		MonthlyLimit Money
	}

	RecurringTransaction struct {
		ID            int64
		UserID        int64
		StartDate     Date
		EndDate       Date // zero means open ended
		LastExecution Date // zero until the first materialization
		Every         RepetitionTypes
		Title         string
		Amount        Money
		Category      string
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidUser       = errors.New("invalid user id")
	ErrInvalidLimit      = errors.New("budget limit must be positive")
	ErrInvalidRepetition = errors.New("invalid repetition type")
	ErrEmptyCategory     = errors.New("empty category")
	ErrTitleTooLong      = errors.New("title too long (max 200 characters)")
	ErrInvalidDateRange  = errors.New("end date must be after start date")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the calendar month the date falls in.
func (d Date) Month() Month {
	return MonthOf(d.Time)
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Validate rejects zero amounts. The sign is meaningful and allowed.
func (m Money) Validate() error {
	if m.Cents == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// KindOf returns Income for positive amounts and Expense otherwise.
func KindOf(m Money) Kind {
	if m.Cents > 0 {
		return Income
	}
	return Expense
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return errors.New("invalid kind: " + string(k))
}

// Kind reports whether the transaction is income or an expense.
func (t Transaction) Kind() Kind {
	return KindOf(t.Amount)
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return ErrInvalidUser
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if b.UserID <= 0 {
		return ErrInvalidUser
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.MonthlyLimit.Cents <= 0 {
		return ErrInvalidLimit
	}
	return nil
}

func (rt RecurringTransaction) Validate() error {
	if rt.UserID <= 0 {
		return ErrInvalidUser
	}
	if err := rt.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	if !rt.EndDate.IsZero() {
		if err := rt.EndDate.Validate(); err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		if rt.EndDate.Before(rt.StartDate.Time) {
			return ErrInvalidDateRange
		}
	}

	switch rt.Every {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return ErrInvalidRepetition
	}

	if len(rt.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(rt.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Occurrence builds the ledger entry produced by the template on date d.
func (rt RecurringTransaction) Occurrence(d Date) Transaction {
	return Transaction{
		UserID:   rt.UserID,
		Date:     d,
		Title:    rt.Title,
		Amount:   rt.Amount,
		Category: rt.Category,
		Notes:    "recurring",
	}
}

// CategoryKey is the case-insensitive identity of a category name.
func CategoryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
