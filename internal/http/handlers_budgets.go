package http

import (
	"context"
	"net/http"

	"fintrack/internal/log"
)

// handleBudgets reports budget statuses for a month (GET) or sets a
// category limit (PUT).
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.budgetStatus(w, r)
	case http.MethodPut:
		s.setBudget(w, r)
	default:
		MethodNotAllowedError("GET, PUT").Write(w)
	}
}

func (s *Server) budgetStatus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID, err := ParseUserID(query)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	month, err := ParseMonthParam(query, s.now())
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	statuses, err := s.budgets.Status(ctx, userID, month)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"user_id": userID,
		"month":   month.String(),
		"budgets": newBudgetStatusList(statuses),
	}).Write(w)
}

func (s *Server) setBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	limit, err := req.MonthlyLimit()
	if err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	b, err := s.budgets.Set(ctx, req.UserID, sanitizeInput(req.Category), limit)
	if err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}

	s.logger.InfoContext(r.Context(), "Budget set",
		log.FieldUserID, b.UserID,
		log.FieldCategory, b.Category,
		"limit_cents", b.MonthlyLimit.Cents)
	NewJSONResponse().Body(newBudgetResponse(b)).Write(w)
}

// handleBudget deletes one budget.
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	id, err := ParsePathID(r)
	if err != nil {
		s.writeError(w, r, err, log.OpDelete)
		return
	}
	userID, err := ParseUserID(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, log.OpDelete)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := s.budgets.Delete(ctx, userID, id); err != nil {
		s.writeError(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
