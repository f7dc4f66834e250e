package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/repository/interfaces"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

// ReportService serves the location aggregation over the directory,
// cache-aside: read through the cache, recompute from the full directory on
// a miss.
type ReportService struct {
	repo    interfaces.ContactRepository
	cache   interfaces.ReportCache
	logger  logging.Logger
	metrics metrics.Metrics
	tracer  trace.Tracer
}

// NewReportService creates a new report service
func NewReportService(
	repo interfaces.ContactRepository,
	cache interfaces.ReportCache,
	logger logging.Logger,
	metrics metrics.Metrics,
) *ReportService {
	return &ReportService{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("contact-service"),
	}
}

// GetLocationReport returns the per-location statistics over the whole
// directory. A cache read failure falls back to recomputation rather than
// failing the request.
func (s *ReportService) GetLocationReport(ctx context.Context) ([]domain.LocationReport, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.GetLocationReport")
	defer span.End()

	cached, err := s.cache.Get(ctx)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn(ctx, "Report cache read failed, recomputing", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if cached != nil {
		s.metrics.IncrementCounter("location_report_cache_hit", nil)
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, nil
	}
	s.metrics.IncrementCounter("location_report_cache_miss", nil)

	persons, err := s.repo.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		s.logger.Error(ctx, "Failed to load directory for report", err)
		return nil, err
	}

	report := domain.BuildLocationReport(persons)
	span.SetAttributes(
		attribute.Bool("cache_hit", false),
		attribute.Int("row_count", len(report)),
	)

	if err := s.cache.Set(ctx, report); err != nil {
		s.logger.Warn(ctx, "Failed to cache location report", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return report, nil
}
