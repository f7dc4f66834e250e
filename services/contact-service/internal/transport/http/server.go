package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/config"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/transport/http/handlers"
	customMiddleware "github.com/emrecodespace/setur-assessment/services/contact-service/internal/transport/http/middleware"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

// Server represents the HTTP server
type Server struct {
	server         *http.Server
	router         *chi.Mux
	logger         logging.Logger
	metrics        metrics.Metrics
	contactHandler *handlers.ContactHandler
	reportHandler  *handlers.ReportHandler
	healthServer   *HealthServer
	config         config.ServerConfig
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	contactHandler *handlers.ContactHandler,
	reportHandler *handlers.ReportHandler,
	healthServer *HealthServer,
	logger logging.Logger,
	metrics metrics.Metrics,
) *Server {
	server := &Server{
		logger:         logger,
		metrics:        metrics,
		contactHandler: contactHandler,
		reportHandler:  reportHandler,
		healthServer:   healthServer,
		config:         cfg,
	}

	server.setupRoutes()
	server.setupServer()

	return server
}

func (s *Server) setupRoutes() {
	s.router = chi.NewRouter()

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Use(customMiddleware.LoggingMiddleware(s.logger))
	s.router.Use(customMiddleware.TracingMiddleware("contact-service"))
	s.router.Use(customMiddleware.MetricsMiddleware(s.metrics))

	s.router.Get("/health", s.healthServer.HandleHealthCheck)
	s.router.Get("/ready", s.healthServer.HandleReadinessCheck)
	s.router.Get("/live", s.healthServer.HandleLivenessCheck)
	s.router.Get("/metrics", s.healthServer.HandleMetrics)

	s.router.Route("/api/contacts", func(r chi.Router) {
		r.Get("/", s.contactHandler.ListPersons)
		r.Post("/", s.contactHandler.CreatePerson)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.contactHandler.GetPerson)
			r.Delete("/", s.contactHandler.DeletePerson)
			r.Post("/infos", s.contactHandler.AddContactInfo)
			r.Delete("/infos/{infoId}", s.contactHandler.RemoveContactInfo)
		})
	})

	// Aggregation endpoint consumed by the report worker.
	s.router.Get("/reports", s.reportHandler.GetLocationReport)

	s.logger.Info(nil, "Contact routes configured", map[string]interface{}{
		"routes": []string{
			"GET /api/contacts",
			"POST /api/contacts",
			"GET /api/contacts/{id}",
			"DELETE /api/contacts/{id}",
			"POST /api/contacts/{id}/infos",
			"DELETE /api/contacts/{id}/infos/{infoId}",
			"GET /reports",
		},
	})
}

func (s *Server) setupServer() {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting HTTP server", map[string]interface{}{
		"address": s.server.Addr,
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info(ctx, "Stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(ctx, "Failed to gracefully shutdown HTTP server", err)
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info(ctx, "HTTP server stopped successfully")
	return nil
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *chi.Mux {
	return s.router
}
