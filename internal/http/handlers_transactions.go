package http

import (
	"context"
	"net/http"
	"sync/atomic"

	"fintrack/internal/log"
)

// handleTransactions lists a month of transactions (GET) or records one (POST).
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
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
	items, err := s.transactions.List(ctx, userID, month)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(newTransactionList(items)).Write(w)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}
	t, err := req.Transaction(s.now())
	if err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	id, err := s.transactions.Create(ctx, t)
	if err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}

	s.recordWrite(r, log.OpCreate, t.UserID, id, t.Amount.Cents, t.Category)
	NewJSONResponse().Status(http.StatusCreated).Body(idResponse{ID: id}).Write(w)
}

// handleRecentTransactions returns the newest transactions of a user.
func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	query := r.URL.Query()
	userID, err := ParseUserID(query)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	limit, err := ParseLimit(query)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	items, err := s.transactions.Recent(ctx, userID, limit)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(newTransactionList(items)).Write(w)
}

// handleTransaction reads, replaces or deletes one transaction.
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPut, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	id, err := ParsePathID(r)
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTransaction(w, r, id)
	case http.MethodPut:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	}
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	userID, err := ParseUserID(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	t, err := s.transactions.Get(ctx, userID, id)
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Body(newTransactionResponse(t)).Write(w)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	var req transactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	t, err := req.Transaction(s.now())
	if err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	t.ID = id

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := s.transactions.Update(ctx, t); err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}

	s.recordWrite(r, log.OpUpdate, t.UserID, id, t.Amount.Cents, t.Category)
	NewJSONResponse().Body(newTransactionResponse(t)).Write(w)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	userID, err := ParseUserID(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, log.OpDelete)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := s.transactions.Delete(ctx, userID, id); err != nil {
		s.writeError(w, r, err, log.OpDelete)
		return
	}

	s.recordWrite(r, log.OpDelete, userID, id, 0, "")
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleOverview summarizes one month for a user.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	query := r.URL.Query()
	userID, err := ParseUserID(query)
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	month, err := ParseMonthParam(query, s.now())
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	ov, err := s.transactions.Overview(ctx, userID, month)
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Body(newOverviewResponse(userID, ov)).Write(w)
}

// handleCategories returns the categories offered to a user, served from
// the category cache when possible.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	userID, err := ParseUserID(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}

	cats, err := s.categories(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"user_id":    userID,
		"categories": cats,
	}).Write(w)
}

func (s *Server) categories(ctx context.Context, userID int64) ([]string, error) {
	key := categoryCacheKey(userID)
	if cats, ok := s.categoryCache.Get(key); ok {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		s.logger.DebugContext(ctx, "Category cache hit", log.FieldUserID, userID)
		return append([]string(nil), cats...), nil
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	cats, err := s.transactions.Categories(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.categoryCache.Set(key, append([]string(nil), cats...))
	return cats, nil
}

// recordWrite invalidates the user's cached categories and logs the write.
func (s *Server) recordWrite(r *http.Request, op string, userID, id, amountCents int64, category string) {
	atomic.AddInt64(&s.appMetrics.writes, 1)
	s.invalidateCategories(userID)
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogTransactionWritten(r.Context(), op, userID, id, amountCents, category)
}

