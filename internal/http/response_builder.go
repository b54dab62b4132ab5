// Package http provides the JSON API server and its handlers.
//
// This file implements the builder for JSON responses and the wire shapes
// of ledger entities.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes only
// the status line.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a response carrying {"error": message}.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// MethodNotAllowedError creates a 405 response listing the allowed methods.
func MethodNotAllowedError(allowedMethods string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}

var validationErrors = []error{
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrInvalidDate,
	core.ErrInvalidDateRange,
	core.ErrInvalidAmount,
	core.ErrInvalidUser,
	core.ErrInvalidLimit,
	core.ErrInvalidRepetition,
	core.ErrEmptyCategory,
	core.ErrTitleTooLong,
}

// errorFor maps a service error onto a response: validation failures are
// 422, missing rows 404, malformed requests 400 and anything else 500. The
// 500 body never carries the underlying error text.
func errorFor(err error) *JSONResponseBuilder {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad):
		return BadRequestError(bad.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return NotFoundError("not found")
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return UnprocessableEntityError(err.Error())
		}
	}
	return InternalServerError("internal error")
}

type transactionResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	Date          string `json:"date"`
	Title         string `json:"title"`
	Amount        string `json:"amount"`
	AmountCents   int64  `json:"amount_cents"`
	Kind          string `json:"kind"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		Date:          t.Date.String(),
		Title:         t.Title,
		Amount:        t.Amount.String(),
		AmountCents:   t.Amount.Cents,
		Kind:          string(t.Kind()),
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Notes:         t.Notes,
	}
}

func newTransactionList(items []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(items))
	for _, t := range items {
		out = append(out, newTransactionResponse(t))
	}
	return out
}

type categoryAmountResponse struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

type overviewResponse struct {
	UserID     int64                    `json:"user_id"`
	Month      string                   `json:"month"`
	Income     string                   `json:"income"`
	Expense    string                   `json:"expense"`
	Net        string                   `json:"net"`
	NetCents   int64                    `json:"net_cents"`
	ByCategory []categoryAmountResponse `json:"by_category"`
}

func newOverviewResponse(userID int64, ov core.MonthOverview) overviewResponse {
	rows := make([]categoryAmountResponse, 0, len(ov.ByCategory))
	for _, c := range ov.ByCategory {
		rows = append(rows, categoryAmountResponse{
			Name:        c.Name,
			Amount:      c.Amount.String(),
			AmountCents: c.Amount.Cents,
		})
	}
	return overviewResponse{
		UserID:     userID,
		Month:      ov.Month.String(),
		Income:     ov.Income.String(),
		Expense:    ov.Expense.String(),
		Net:        ov.Net.String(),
		NetCents:   ov.Net.Cents,
		ByCategory: rows,
	}
}

type budgetResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

func newBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:       b.ID,
		UserID:   b.UserID,
		Category: b.Category,
		Limit:    b.MonthlyLimit.String(),
	}
}

type budgetStatusResponse struct {
	budgetResponse
	Spent     string `json:"spent"`
	Remaining string `json:"remaining"`
	Exceeded  bool   `json:"exceeded"`
}

func newBudgetStatusList(items []core.BudgetStatus) []budgetStatusResponse {
	out := make([]budgetStatusResponse, 0, len(items))
	for _, s := range items {
		out = append(out, budgetStatusResponse{
			budgetResponse: newBudgetResponse(s.Budget),
			Spent:          s.Spent.String(),
			Remaining:      s.Remaining.String(),
			Exceeded:       s.Exceeded,
		})
	}
	return out
}

type recurringResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date,omitempty"`
	LastExecution string `json:"last_execution,omitempty"`
	Every         string `json:"every"`
	Title         string `json:"title"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
}

func newRecurringList(items []core.RecurringTransaction) []recurringResponse {
	out := make([]recurringResponse, 0, len(items))
	for _, rt := range items {
		out = append(out, recurringResponse{
			ID:            rt.ID,
			UserID:        rt.UserID,
			StartDate:     rt.StartDate.String(),
			EndDate:       rt.EndDate.String(),
			LastExecution: rt.LastExecution.String(),
			Every:         string(rt.Every),
			Title:         rt.Title,
			Amount:        rt.Amount.String(),
			Category:      rt.Category,
		})
	}
	return out
}

type insightsResponse struct {
	UserID   int64    `json:"user_id"`
	Month    string   `json:"month"`
	Insights []string `json:"insights"`
}

type idResponse struct {
	ID int64 `json:"id"`
}
