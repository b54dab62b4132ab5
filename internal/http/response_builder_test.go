package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/7").
		Body(idResponse{ID: 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Header().Get("Location") != "/api/transactions/7" {
		t.Error("custom header not set")
	}
	if strings.TrimSpace(w.Body.String()) != `{"id":7}` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilderNoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("Content-Type") != "" {
		t.Fatal("empty responses carry no Content-Type")
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", badRequest("malformed id %q", "x"), http.StatusBadRequest},
		{"not found", fmt.Errorf("get transaction: %w", ledger.ErrNotFound), http.StatusNotFound},
		{"validation", core.ErrEmptyCategory, http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("invalid start date: %w", core.ErrInvalidDate), http.StatusUnprocessableEntity},
		{"date range", core.ErrInvalidDateRange, http.StatusUnprocessableEntity},
		{"provider failure", errors.New("disk I/O error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			errorFor(tt.err).Write(w)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusInternalServerError && strings.Contains(w.Body.String(), "disk") {
				t.Fatal("500 responses must not leak the underlying error")
			}
		})
	}
}

func TestNewOverviewResponse(t *testing.T) {
	ov := core.MonthOverview{
		Month:   core.NewMonth(2024, 3),
		Income:  core.Money{Cents: 250000},
		Expense: core.Money{Cents: -12345},
		Net:     core.Money{Cents: 237655},
		ByCategory: []core.CategoryAmount{
			{Name: "Rent", Amount: core.Money{Cents: -10000}},
			{Name: "Food", Amount: core.Money{Cents: -2345}},
		},
	}
	got := newOverviewResponse(9, ov)
	if got.Month != "2024-03" || got.Expense != "-123.45" || got.Net != "2376.55" {
		t.Fatalf("unexpected overview %+v", got)
	}
	if len(got.ByCategory) != 2 || got.ByCategory[0].Name != "Rent" || got.ByCategory[1].AmountCents != -2345 {
		t.Fatalf("unexpected categories %+v", got.ByCategory)
	}
}
