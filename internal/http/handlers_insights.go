package http

import (
	"context"
	"net/http"

	"fintrack/internal/log"
)

// handleInsights generates the insight messages for a user and month.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	query := r.URL.Query()
	userID, err := ParseUserID(query)
	if err != nil {
		s.writeError(w, r, err, log.OpGenerate)
		return
	}
	month, err := ParseMonthParam(query, s.now())
	if err != nil {
		s.writeError(w, r, err, log.OpGenerate)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	digest, err := s.insights.Build(ctx, userID, month)
	if err != nil {
		s.writeError(w, r, err, log.OpGenerate)
		return
	}

	insights := digest.Insights
	if insights == nil {
		insights = []string{}
	}
	s.logger.DebugContext(r.Context(), "Insights generated",
		log.FieldUserID, userID,
		log.FieldMonth, month.String(),
		log.FieldInsights, len(insights))
	NewJSONResponse().Body(insightsResponse{
		UserID:   userID,
		Month:    month.String(),
		Insights: insights,
	}).Write(w)
}
