// Package main provides the entrypoint for the FareScout API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/farescout/farescout/internal/api"
	"github.com/farescout/farescout/internal/api/middleware"
	"github.com/farescout/farescout/internal/auth"
	"github.com/farescout/farescout/internal/database"
	"github.com/farescout/farescout/internal/journey/dbrest"
	"github.com/farescout/farescout/internal/provider/resilience"
	"github.com/farescout/farescout/internal/savedsearch"
	"github.com/farescout/farescout/internal/search"
	"github.com/farescout/farescout/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "farescout-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting FareScout API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)

	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT service for token validation
	jwtConfig := auth.JWTConfigFromEnv()
	if jwtConfig.SigningKey == "" {
		jwtConfig.SigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	jwtService := auth.NewJWTService(jwtConfig)
	log.Info().Msg("auth service initialized")

	// Initialize the journey provider behind a resilient HTTP client
	providerClient := resilience.NewClient(resilience.DefaultClientConfig(dbrest.ProviderName))
	provider := dbrest.NewClient(dbrest.ClientConfig{
		BaseURL:    os.Getenv("DBREST_BASE_URL"),
		APIKey:     os.Getenv("DBREST_API_KEY"),
		HTTPClient: providerClient,
		Logger:     log,
	})
	log.Info().Str("provider", provider.Name()).Msg("journey provider initialized")

	// Initialize search service
	searchService := search.NewService(search.ServiceConfig{
		Provider: provider,
		Logger:   log,
		Config:   search.ConfigFromEnv(),
	})
	log.Info().Msg("search service initialized")

	// Initialize saved search repository and service
	savedSearchRepo := savedsearch.NewPostgresRepository(pool)
	savedSearchService := savedsearch.NewService(savedSearchRepo)
	log.Info().Msg("saved search service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		TokenValidator:     jwtService,
		SearchService:      searchService,
		SavedSearchService: savedSearchService,
		DB:                 pool,
		ProviderName:       provider.Name(),
		ProviderCircuit:    providerClient,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Multi-date searches can run for minutes
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
