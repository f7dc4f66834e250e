package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/emrecodespace/setur-assessment/services/report-worker/internal/clients"
	"github.com/emrecodespace/setur-assessment/services/report-worker/internal/config"
	workerHTTP "github.com/emrecodespace/setur-assessment/services/report-worker/internal/transport/http"
	"github.com/emrecodespace/setur-assessment/services/report-worker/internal/worker"
	"github.com/emrecodespace/setur-assessment/shared/platform/messaging/rabbitmq"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/tracing"
)

const (
	serviceName    = "report-worker"
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

	logger.Info(ctx, "Starting Report Worker", map[string]interface{}{
		"version": serviceVersion,
		"queue":   cfg.RabbitMQ.QueueName,
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

	contactClient := clients.NewContactClient(cfg.Clients.ContactServiceURL, cfg.Clients.RequestTimeout, logger)
	reportClient := clients.NewReportClient(cfg.Clients.ReportServiceURL, cfg.Clients.RequestTimeout, logger)
	processor := worker.NewProcessor(contactClient, reportClient, logger, m)

	consumer := rabbitmq.NewConsumer(brokerConn, logger, m)

	healthServer := workerHTTP.NewHealthServer(cfg.Health.Host, cfg.Health.Port, brokerConn, logger, m)

	var wg sync.WaitGroup
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	// The subscription loop is the worker's only job: one long-lived
	// goroutine owning the cancellation context, joined at shutdown.
	subscription, err := consumer.Subscribe(ctx, cfg.RabbitMQ.QueueName, processor.Process)
	if err != nil {
		logger.Error(ctx, "Failed to subscribe to queue", err)
		os.Exit(1)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-subscription.Done()
		logger.Info(ctx, "Queue subscription ended")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := healthServer.Start(ctx); err != nil {
			logger.Error(ctx, "Health server failed", err)
		}
	}()

	logger.Info(ctx, "Report Worker started successfully", map[string]interface{}{
		"queue":           cfg.RabbitMQ.QueueName,
		"contact_service": cfg.Clients.ContactServiceURL,
		"report_service":  cfg.Clients.ReportServiceURL,
	})

	<-shutdownCh
	logger.Info(ctx, "Shutdown signal received, stopping worker...")

	// Cancelling the context stops the subscription loop. In-flight
	// deliveries are not drained; unacked messages return to the queue.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := healthServer.Stop(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Failed to stop health server", err)
	}

	wg.Wait()

	logger.Info(ctx, "Report Worker stopped successfully")
}
