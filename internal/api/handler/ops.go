// Package handler provides HTTP handlers for the FareScout API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/farescout/farescout/internal/api/models"
	"github.com/farescout/farescout/internal/api/response"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CircuitReporter exposes the state of a provider circuit breaker.
type CircuitReporter interface {
	CircuitBreakerState() gobreaker.State
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version      string
	buildTime    string
	db           Pinger
	providerName string
	circuit      CircuitReporter
}

// NewOpsHandler creates a new OpsHandler. The db and circuit arguments
// may be nil, in which case the corresponding checks are skipped.
func NewOpsHandler(version, buildTime string, db Pinger, providerName string, circuit CircuitReporter) *OpsHandler {
	return &OpsHandler{
		version:      version,
		buildTime:    buildTime,
		db:           db,
		providerName: providerName,
		circuit:      circuit,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"postgres": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	postgres := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			detail := err.Error()
			postgres.Status = models.HealthStatusFail
			postgres.Detail = &detail
			status.Status = models.HealthStatusDegraded
		}
	}
	status.Subsystems = append(status.Subsystems, postgres)

	if h.providerName != "" {
		provider := models.ProviderStatus{
			Provider: h.providerName,
			Status:   models.HealthStatusOK,
		}
		if h.circuit != nil {
			state := h.circuit.CircuitBreakerState()
			provider.CircuitState = state.String()
			if state == gobreaker.StateOpen {
				provider.Status = models.HealthStatusFail
				status.Status = models.HealthStatusDegraded
			}
		}
		status.Providers = append(status.Providers, provider)
	}

	response.JSON(w, r, http.StatusOK, status)
}
