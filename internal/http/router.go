package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hybridrag/internal/handlers"
	"hybridrag/internal/metrics"
	"hybridrag/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Service service.RetrievalService
	// HealthChecks maps a dependency name to its pinger.
	HealthChecks map[string]handlers.Pinger
	// Metrics may be nil, in which case /metrics is not served.
	Metrics *metrics.Collector
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(Metrics(deps.Metrics))
	r.Use(CORS)

	documentsHandler := handlers.NewDocumentsHandler(deps.Service)

	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", documentsHandler.List)
			r.Post("/", documentsHandler.Ingest)
			r.Get("/{id}", documentsHandler.Get)
			r.Delete("/{id}", documentsHandler.Delete)
		})
		r.Method(http.MethodPost, "/index", handlers.NewIndexHandler(deps.Service))
		r.Method(http.MethodPost, "/query", handlers.NewQueryHandler(deps.Service))
		r.Method(http.MethodGet, "/stats", handlers.NewStatsHandler(deps.Service))
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.HealthChecks))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}
