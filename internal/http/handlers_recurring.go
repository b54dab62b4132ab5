package http

import (
	"context"
	"net/http"

	"fintrack/internal/log"
)

// handleRecurringTemplates lists (GET) or creates (POST) recurring
// transaction templates.
func (s *Server) handleRecurringTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRecurring(w, r)
	case http.MethodPost:
		s.createRecurring(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listRecurring(w http.ResponseWriter, r *http.Request) {
	userID, err := ParseUserID(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	items, err := s.recurring.ListTemplates(ctx, userID)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(newRecurringList(items)).Write(w)
}

func (s *Server) createRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}
	rt, err := req.Recurring()
	if err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	id, err := s.recurring.CreateTemplate(ctx, rt)
	if err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}

	s.logger.InfoContext(r.Context(), "Recurring template created",
		log.FieldUserID, rt.UserID,
		"recurring_id", id,
		"frequency", rt.Every,
		log.FieldAmountCents, rt.Amount.Cents)
	NewJSONResponse().Status(http.StatusCreated).Body(idResponse{ID: id}).Write(w)
}

// handleRecurringTemplate deletes one template.
func (s *Server) handleRecurringTemplate(w http.ResponseWriter, r *http.Request) {
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
	if err := s.recurring.DeleteTemplate(ctx, userID, id); err != nil {
		s.writeError(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
