package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/emrecodespace/setur-assessment/shared/platform/database/mongodb"
	"github.com/emrecodespace/setur-assessment/shared/platform/database/redis"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

// HealthServer provides health check endpoints for monitoring and orchestration
type HealthServer struct {
	db        *mongodb.Connection
	cache     *redis.Connection
	logger    logging.Logger
	metrics   metrics.Metrics
	startTime time.Time
}

// NewHealthServer creates a new health server
func NewHealthServer(db *mongodb.Connection, cache *redis.Connection, logger logging.Logger, metrics metrics.Metrics) *HealthServer {
	return &HealthServer{
		db:        db,
		cache:     cache,
		logger:    logger,
		metrics:   metrics,
		startTime: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	CheckedAt time.Time    `json:"checked_at"`
}

// HealthResponse represents the complete health check response
type HealthResponse struct {
	Status     HealthStatus               `json:"status"`
	Service    string                     `json:"service"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// HandleHealthCheck checks all components
func (h *HealthServer) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	components := map[string]ComponentHealth{
		"mongodb": h.checkDatabase(ctx),
		"redis":   h.checkCache(ctx),
	}

	status := HealthStatusHealthy
	for _, component := range components {
		if component.Status == HealthStatusUnhealthy {
			status = HealthStatusUnhealthy
			break
		}
	}

	statusCode := http.StatusOK
	if status == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	h.writeJSONResponse(w, statusCode, HealthResponse{
		Status:     status,
		Service:    "contact-service",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(h.startTime).String(),
		Components: components,
	})
}

// HandleReadinessCheck checks only the critical dependency, the document
// store. The cache is optional, a dead Redis degrades to recomputation.
func (h *HealthServer) HandleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	database := h.checkDatabase(r.Context())

	statusCode := http.StatusOK
	status := HealthStatusHealthy
	if database.Status == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
		status = HealthStatusUnhealthy
	}

	h.writeJSONResponse(w, statusCode, HealthResponse{
		Status:    status,
		Service:   "contact-service",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
	})
}

// HandleLivenessCheck reports that the process is up
func (h *HealthServer) HandleLivenessCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, HealthResponse{
		Status:    HealthStatusHealthy,
		Service:   "contact-service",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).String(),
	})
}

// HandleMetrics exposes collected metrics in JSON format
func (h *HealthServer) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service":   "contact-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	}

	if metricsData, ok := h.metrics.(interface{ GetMetrics() map[string]interface{} }); ok {
		response["metrics"] = metricsData.GetMetrics()
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

func (h *HealthServer) checkDatabase(ctx context.Context) ComponentHealth {
	if h.db == nil {
		return ComponentHealth{
			Status:    HealthStatusUnhealthy,
			Message:   "mongodb connection not initialized",
			CheckedAt: time.Now().UTC(),
		}
	}

	if err := h.db.HealthCheck(ctx); err != nil {
		return ComponentHealth{
			Status:    HealthStatusUnhealthy,
			Message:   fmt.Sprintf("mongodb ping failed: %v", err),
			CheckedAt: time.Now().UTC(),
		}
	}

	return ComponentHealth{
		Status:    HealthStatusHealthy,
		Message:   "mongodb connection healthy",
		CheckedAt: time.Now().UTC(),
	}
}

func (h *HealthServer) checkCache(ctx context.Context) ComponentHealth {
	if h.cache == nil {
		return ComponentHealth{
			Status:    HealthStatusUnhealthy,
			Message:   "redis connection not initialized",
			CheckedAt: time.Now().UTC(),
		}
	}

	if err := h.cache.HealthCheck(ctx); err != nil {
		return ComponentHealth{
			Status:    HealthStatusUnhealthy,
			Message:   fmt.Sprintf("redis ping failed: %v", err),
			CheckedAt: time.Now().UTC(),
		}
	}

	return ComponentHealth{
		Status:    HealthStatusHealthy,
		Message:   "redis connection healthy",
		CheckedAt: time.Now().UTC(),
	}
}

func (h *HealthServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(context.Background(), "Failed to encode health response", err)
	}
}
