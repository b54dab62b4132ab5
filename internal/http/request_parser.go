// Package http provides the JSON API server and its handlers.
//
// This file implements parsing and validation of query parameters, path
// values and JSON request bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const (
	maxBodyBytes       = 1 << 20
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// badRequestError marks input that could not be read at all, as opposed to
// input that was read but failed validation.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// ParseUserID reads the required positive "user" query parameter.
func ParseUserID(query url.Values) (int64, error) {
	v := strings.TrimSpace(query.Get("user"))
	if v == "" {
		return 0, badRequest("missing user parameter")
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, badRequest("malformed user parameter %q", v)
	}
	if id <= 0 {
		return 0, core.ErrInvalidUser
	}
	return id, nil
}

// ParseMonthParam reads the optional "month" query parameter (YYYY-MM),
// defaulting to the month of now.
func ParseMonthParam(query url.Values, now time.Time) (core.Month, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return core.MonthOf(now), nil
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return core.Month{}, badRequest("malformed month parameter %q", v)
	}
	return m, nil
}

// ParseLimit reads the optional "limit" query parameter, clamped to
// [1, maxRecentLimit].
func ParseLimit(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return defaultRecentLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("malformed limit parameter %q", v)
	}
	switch {
	case n < 1:
		return 1, nil
	case n > maxRecentLimit:
		return maxRecentLimit, nil
	}
	return n, nil
}

// ParsePathID reads the positive integer path value "id".
func ParsePathID(r *http.Request) (int64, error) {
	v := r.PathValue("id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("malformed id %q", v)
	}
	return id, nil
}

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields and trailing data are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}
		return badRequest("malformed JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod returns a 405 response when r.Method is none of methods.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// transactionRequest is the body of POST /api/transactions and
// PUT /api/transactions/{id}. Amount is a signed decimal string; negative
// values are expenses.
type transactionRequest struct {
	UserID        int64  `json:"user_id"`
	Date          string `json:"date"`
	Title         string `json:"title"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

// Transaction converts the request into a ledger entry. A missing date means
// today.
func (req transactionRequest) Transaction(now time.Time) (core.Transaction, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	if date.IsEmpty() {
		date = core.NewDate(now.Year(), int(now.Month()), now.Day())
	}
	return core.Transaction{
		UserID:        req.UserID,
		Date:          date,
		Title:         sanitizeInput(req.Title),
		Amount:        amount,
		Category:      sanitizeInput(req.Category),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Notes:         sanitizeInput(req.Notes),
	}, nil
}

type budgetRequest struct {
	UserID   int64  `json:"user_id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

func (req budgetRequest) MonthlyLimit() (core.Money, error) {
	m, err := core.ParsePositiveAmount(req.Limit)
	if err != nil {
		return core.Money{}, core.ErrInvalidLimit
	}
	return m, nil
}

type recurringRequest struct {
	UserID    int64  `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Every     string `json:"every"`
	Title     string `json:"title"`
	Amount    string `json:"amount"`
	Category  string `json:"category"`
}

func (req recurringRequest) Recurring() (core.RecurringTransaction, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	end, err := core.ParseDate(req.EndDate)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	return core.RecurringTransaction{
		UserID:    req.UserID,
		StartDate: start,
		EndDate:   end,
		Every:     core.RepetitionTypes(strings.ToLower(strings.TrimSpace(req.Every))),
		Title:     sanitizeInput(req.Title),
		Amount:    amount,
		Category:  sanitizeInput(req.Category),
	}, nil
}
