package handlers

import (
	"log/slog"
	"net/http"

	"admission-analytics/internal/cache"
	"admission-analytics/internal/database"
)

// CacheStatsSource reports snapshot cache statistics
type CacheStatsSource interface {
	GetStats() cache.CacheStats
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *database.DB
	cache  CacheStatsSource
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. stats may be nil, in which
// case the response carries no cache section.
func NewHealthHandler(db *database.DB, stats CacheStatsSource, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, cache: stats, logger: logger}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string       `json:"status"`
	Database string       `json:"database"`
	Message  string       `json:"message,omitempty"`
	Cache    *CacheHealth `json:"cache,omitempty"`
}

// CacheHealth is the snapshot cache section of the health response
type CacheHealth struct {
	Enabled bool   `json:"enabled"`
	TTL     string `json:"ttl"`
	Cached  bool   `json:"cached"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:   "healthy",
		Database: "ok",
	}

	if h.cache != nil {
		stats := h.cache.GetStats()
		response.Cache = &CacheHealth{
			Enabled: !stats.Disabled,
			TTL:     stats.TTL.String(),
			Cached:  stats.Cached,
			Hits:    stats.Hits,
			Misses:  stats.Misses,
		}
	}

	// Check database health
	if err := h.db.IsHealthy(); err != nil {
		h.logger.Warn("Health check failed", "error", err)
		response.Status = "unhealthy"
		response.Database = "error"
		response.Message = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
