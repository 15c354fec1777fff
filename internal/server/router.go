package server

import (
	"log/slog"
	"net/http"
	"time"

	"admission-analytics/internal/cache"
	"admission-analytics/internal/database"
	"admission-analytics/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds the knobs that shape the HTTP surface
type RouterConfig struct {
	// ResponseDelay is applied to every /api/v1 route
	ResponseDelay time.Duration

	// CacheTTL keeps the stored snapshot in memory; zero reads the store on
	// every request
	CacheTTL time.Duration
}

// NewRouter builds the chi router with middleware and all API routes
func NewRouter(db *database.DB, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	snapshots := cache.NewManager(db.Analytics, cfg.CacheTTL)
	analyticsHandler := handlers.NewAnalyticsHandler(snapshots, logger)
	healthHandler := handlers.NewHealthHandler(db, snapshots, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))
	r.Use(CORSMiddleware)
	r.Use(ContentTypeMiddleware)
	r.Use(SecurityMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found","code":404}`))
	})

	r.Get("/api/health", healthHandler.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ResponseDelayMiddleware(cfg.ResponseDelay))
		r.Get("/analytics/admissions", analyticsHandler.GetAdmissions)
	})

	return r
}
