// Package api provides the HTTP API for FareScout.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/farescout/farescout/internal/api/handler"
	"github.com/farescout/farescout/internal/api/middleware"
	"github.com/farescout/farescout/internal/savedsearch"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	TokenValidator     middleware.TokenValidator
	SearchService      handler.SearchRunner
	SavedSearchService *savedsearch.Service
	DB                 handler.Pinger
	ProviderName       string
	ProviderCircuit    handler.CircuitReporter
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "farescout-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.ProviderName, cfg.ProviderCircuit)
	searchHandler := handler.NewSearchHandler(cfg.SearchService)
	savedSearchHandler := handler.NewSavedSearchHandler(cfg.SavedSearchService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.TokenValidator)

	// Create rate limit middleware for different endpoint categories
	searchRateLimit := middleware.RateLimitByUser(middleware.SearchRateLimit)     // 10 req/min
	standardRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Search endpoint (authenticated) - fans out provider requests,
		// so it gets the strictest rate limit
		r.With(authMiddleware, searchRateLimit).Post("/search", searchHandler.Search)

		// Saved search endpoints (authenticated) - user-based rate limiting
		r.Route("/me/searches", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", savedSearchHandler.ListSavedSearches)
			r.Post("/", savedSearchHandler.CreateSavedSearch)
			r.Route("/{searchId}", func(r chi.Router) {
				r.Get("/", savedSearchHandler.GetSavedSearch)
				r.Put("/", savedSearchHandler.UpdateSavedSearch)
				r.Delete("/", savedSearchHandler.DeleteSavedSearch)
			})
		})
	})

	return r
}
