package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"admission-analytics/internal/analytics"
	"admission-analytics/internal/database"

	"github.com/go-chi/chi/v5/middleware"
)

// SnapshotSource reads the current analytics snapshot. Both the store and
// the snapshot cache satisfy it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*analytics.AdmissionAnalytics, error)
}

// AnalyticsHandler serves the admission analytics snapshot
type AnalyticsHandler struct {
	source SnapshotSource
	logger *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(source SnapshotSource, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{source: source, logger: logger}
}

// GetAdmissions handles GET /api/v1/analytics/admissions
func (h *AnalyticsHandler) GetAdmissions(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.source.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to read admission analytics",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()))

		if errors.Is(err, database.ErrNoSnapshot) {
			writeError(w, http.StatusInternalServerError, "analytics snapshot not available")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read admission analytics")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
