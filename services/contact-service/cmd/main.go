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

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/config"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/repository/mongodb"
	redisCache "github.com/emrecodespace/setur-assessment/services/contact-service/internal/repository/redis"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/service"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/transport/http"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/transport/http/handlers"
	mongoDB "github.com/emrecodespace/setur-assessment/shared/platform/database/mongodb"
	redisDB "github.com/emrecodespace/setur-assessment/shared/platform/database/redis"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/tracing"
)

const (
	serviceName    = "contact-service"
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

	logger.Info(ctx, "Starting Contact Service", map[string]interface{}{
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

	mongoConn, err := mongoDB.NewConnection(mongoDB.Config{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		ConnectTimeout: cfg.MongoDB.ConnectTimeout,
		QueryTimeout:   cfg.MongoDB.QueryTimeout,
		MaxPoolSize:    cfg.MongoDB.MaxPoolSize,
		MinPoolSize:    cfg.MongoDB.MinPoolSize,
		MaxIdleTime:    cfg.MongoDB.MaxIdleTime,
	}, logger)
	if err != nil {
		logger.Error(ctx, "Failed to connect to MongoDB", err)
		os.Exit(1)
	}
	defer mongoConn.Close()

	redisConn, err := redisDB.NewConnection(redisDB.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, logger)
	if err != nil {
		logger.Error(ctx, "Failed to connect to Redis", err)
		os.Exit(1)
	}
	defer redisConn.Close()

	contactRepo, err := mongodb.NewContactRepository(mongoConn.Database, logger)
	if err != nil {
		logger.Error(ctx, "Failed to create contact repository", err)
		os.Exit(1)
	}

	reportCache := redisCache.NewReportCache(redisConn.Client, cfg.Redis.ReportTTL, logger)

	contactService := service.NewContactService(contactRepo, reportCache, logger, m)
	reportService := service.NewReportService(contactRepo, reportCache, logger, m)

	contactHandler := handlers.NewContactHandler(contactService, logger)
	reportHandler := handlers.NewReportHandler(reportService, logger)
	healthServer := http.NewHealthServer(mongoConn, redisConn, logger, m)
	httpServer := http.NewServer(cfg.Server, contactHandler, reportHandler, healthServer, logger, m)

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

	logger.Info(ctx, "Contact Service started successfully", map[string]interface{}{
		"http_address": fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		"database":     cfg.MongoDB.Database,
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

	logger.Info(ctx, "Contact Service stopped successfully")
}
