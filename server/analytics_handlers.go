package server

import (
	"net/http"
	"strconv"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analytics.DashboardStats(r.Context(), userIDFromContext(r.Context()), isAdmin(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	periodDays := 30
	if raw := r.URL.Query().Get("period_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			writeError(w, http.StatusBadRequest, "period_days must be between 1 and 365")
			return
		}
		periodDays = parsed
	}

	metrics, err := s.analytics.PerformanceMetrics(r.Context(), userIDFromContext(r.Context()), isAdmin(r), periodDays)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleDealPipeline(w http.ResponseWriter, r *http.Request) {
	pipeline, err := s.analytics.DealPipeline(r.Context(), userIDFromContext(r.Context()), isAdmin(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline)
}
