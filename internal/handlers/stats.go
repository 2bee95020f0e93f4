package handlers

import (
	"net/http"

	"hybridrag/internal/service"
)

// StatsHandler reports index coverage.
type StatsHandler struct {
	svc service.RetrievalService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc service.RetrievalService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// ServeHTTP handles GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to compute stats")
		return
	}
	writeJSON(ctx, w, http.StatusOK, stats)
}
