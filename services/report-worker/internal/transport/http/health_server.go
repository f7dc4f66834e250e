package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/emrecodespace/setur-assessment/shared/platform/messaging/rabbitmq"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

// HealthServer exposes the worker's liveness and readiness over HTTP. The
// worker has no API surface of its own; this server exists for orchestration.
type HealthServer struct {
	server    *http.Server
	broker    *rabbitmq.Connection
	logger    logging.Logger
	metrics   metrics.Metrics
	startTime time.Time
}

// NewHealthServer creates the worker health server
func NewHealthServer(host string, port int, broker *rabbitmq.Connection, logger logging.Logger, m metrics.Metrics) *HealthServer {
	h := &HealthServer{
		broker:    broker,
		logger:    logger,
		metrics:   m,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/ready", h.handleHealth)
	mux.HandleFunc("/live", h.handleLive)
	mux.HandleFunc("/metrics", h.handleMetrics)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return h
}

// Start starts the health server
func (h *HealthServer) Start(ctx context.Context) error {
	h.logger.Info(ctx, "Starting health server", map[string]interface{}{
		"address": h.server.Addr,
	})

	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	return nil
}

// Stop gracefully stops the health server
func (h *HealthServer) Stop(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

func (h *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	if h.broker == nil || h.broker.IsClosed() {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	h.writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "report-worker",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	})
}

func (h *HealthServer) handleLive(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "report-worker",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service":   "report-worker",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	}

	if metricsData, ok := h.metrics.(interface{ GetMetrics() map[string]interface{} }); ok {
		response["metrics"] = metricsData.GetMetrics()
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(context.Background(), "Failed to encode health response", err)
	}
}
