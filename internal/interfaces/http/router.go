// Package http assembles the HTTP interface: routing, middleware, and the
// server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemRxn-Core/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemRxn-Core/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	ReactionHandler *handlers.ReactionHandler
	HealthHandler   *handlers.HealthHandler

	// Middleware
	CORS    *middleware.CORSConfig
	Logging *middleware.LoggingConfig

	// Infrastructure
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration.  It wires global middleware, public health endpoints, and
// the API v1 resource groups into a single http.Handler suitable for use
// with http.Server.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		logCfg := middleware.DefaultLoggingConfig()
		if cfg.Logging != nil {
			logCfg = *cfg.Logging
		}
		r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
	}

	// --- Public health endpoints ---
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	// --- Metrics endpoint; expected to sit behind an internal firewall ---
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		registerReactionRoutes(api, cfg.ReactionHandler)
	})

	return r
}

// registerReactionRoutes mounts reaction resource endpoints under /reactions.
func registerReactionRoutes(r chi.Router, h *handlers.ReactionHandler) {
	if h == nil {
		return
	}
	r.Route("/reactions", func(rr chi.Router) {
		rr.Get("/", h.List)
		rr.Post("/", h.Create)

		// Stateless computation endpoints
		rr.Post("/validate", h.ValidateLabel)
		rr.Post("/validate/attributes", h.ValidateAttributes)
		rr.Post("/multiplicity", h.ResolveMultiplicity)

		rr.Route("/{reactionID}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Delete("/", h.Delete)

			item.Post("/balance", h.CheckBalance)
			item.Get("/atommap", h.GetAtomMap)
			item.Post("/family", h.DetermineFamily)
		})
	})
}
