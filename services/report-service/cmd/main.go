package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/emrecodespace/setur-assessment/services/report-service/internal/config"
	reportQueue "github.com/emrecodespace/setur-assessment/services/report-service/internal/messaging/rabbitmq"
	"github.com/emrecodespace/setur-assessment/services/report-service/internal/repository/postgres"
	"github.com/emrecodespace/setur-assessment/services/report-service/internal/repository/postgres/migrations"
	"github.com/emrecodespace/setur-assessment/services/report-service/internal/service"
	"github.com/emrecodespace/setur-assessment/services/report-service/internal/transport/http"
	"github.com/emrecodespace/setur-assessment/services/report-service/internal/transport/http/handlers"
	postgresDB "github.com/emrecodespace/setur-assessment/shared/platform/database/postgres"
	"github.com/emrecodespace/setur-assessment/shared/platform/messaging/rabbitmq"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/tracing"
)

const (
	serviceName    = "report-service"
	serviceVersion = "1.0.0"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewServiceLogger(serviceName, serviceVersion, cfg.Observability.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info(ctx, "Starting Report Service", map[string]interface{}{
		"version": serviceVersion,
	})

	m, err := metrics.NewMetrics(serviceName)
	if err != nil {
		logger.Error(ctx, "Failed to create metrics", err)
		os.Exit(1)
	}

	var tracer tracing.Tracer
	if cfg.Observability.TracingEnabled {
		tracer, err = tracing.NewTracer(serviceName, serviceVersion, cfg.Observability.OTELEndpoint)
		if err != nil {
			logger.Error(ctx, "Failed to create tracer", err)
			os.Exit(1)
		}
	} else {
		tracer = tracing.NewNoOpTracer()
	}
	defer tracer.Close()

	dbConn, err := postgresDB.NewConnection(postgresDB.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectTimeout:  30 * time.Second,
	}, logger)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	migrator := migrations.NewMigrator(dbConn.DB)
	if err := migrator.Up(ctx); err != nil {
		logger.Error(ctx, "Failed to run database migrations", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Database migrations completed")

	// Blocks until the broker is reachable, retrying on a fixed delay.
	brokerConn, err := rabbitmq.Connect(ctx, rabbitmq.Config{
		Host:           cfg.RabbitMQ.Host,
		Port:           cfg.RabbitMQ.Port,
		User:           cfg.RabbitMQ.User,
		Password:       cfg.RabbitMQ.Password,
		ReconnectDelay: cfg.RabbitMQ.ReconnectDelay,
	}, logger)
	if err != nil {
		logger.Error(ctx, "Failed to connect to RabbitMQ", err)
		os.Exit(1)
	}
	defer brokerConn.Close()

	reportRepo := postgres.NewReportRepository(dbConn.DB)
	publisher := reportQueue.NewReportPublisher(brokerConn, cfg.RabbitMQ.QueueName, logger)
	reportService := service.NewReportService(reportRepo, publisher, logger, m)

	reportHandler := handlers.NewReportHandler(reportService, logger)
	healthServer := http.NewHealthServer(dbConn.DB, brokerConn, logger, m)
	httpServer := http.NewServer(cfg.Server, reportHandler, healthServer, logger, m)

	var wg sync.WaitGroup
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.Start(ctx); err != nil {
			logger.Error(ctx, "HTTP server failed", err)
		}
	}()

	logger.Info(ctx, "Report Service started successfully", map[string]interface{}{
		"http_address": fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		"queue":        cfg.RabbitMQ.QueueName,
	})

	<-shutdownCh
	logger.Info(ctx, "Shutdown signal received, stopping service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Failed to stop HTTP server", err)
	}

	wg.Wait()

	logger.Info(ctx, "Report Service stopped successfully")
}
