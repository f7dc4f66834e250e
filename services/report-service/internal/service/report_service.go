package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emrecodespace/setur-assessment/services/report-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/report-service/internal/repository/interfaces"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

// MessagePublisher defines the interface for enqueueing report requests
type MessagePublisher interface {
	PublishReportRequested(ctx context.Context, reportID uuid.UUID) error
}

// DetailRow is one per-location statistic submitted at finalization
type DetailRow struct {
	Location         string
	PersonCount      int
	PhoneNumberCount int
}

// ReportService handles report business logic
type ReportService struct {
	repo      interfaces.ReportRepository
	publisher MessagePublisher
	logger    logging.Logger
	metrics   metrics.Metrics
	tracer    trace.Tracer
}

// NewReportService creates a new report service with all dependencies
func NewReportService(
	repo interfaces.ReportRepository,
	publisher MessagePublisher,
	logger logging.Logger,
	metrics metrics.Metrics,
) *ReportService {
	return &ReportService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    otel.Tracer("report-service"),
	}
}

// CreateReport persists a new preparing report and enqueues a message
// referencing its id. If persistence fails nothing is published. If
// publishing fails after persistence the call fails but the row remains:
// an orphaned preparing report that no worker will ever complete. There is
// no outbox compensating for that gap.
func (s *ReportService) CreateReport(ctx context.Context) (*domain.Report, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.CreateReport")
	defer span.End()

	report := domain.NewReport()
	span.SetAttributes(attribute.String("report_id", report.ID.String()))

	if err := s.repo.Create(ctx, report); err != nil {
		span.RecordError(err)
		s.logger.Error(ctx, "Failed to persist report", err)
		s.metrics.IncrementCounter("report_create_failed", map[string]string{"stage": "persist"})
		return nil, errors.Wrap(err, "failed to create report")
	}

	if err := s.publisher.PublishReportRequested(ctx, report.ID); err != nil {
		span.RecordError(err)
		s.logger.Error(ctx, "Failed to publish report request", err, map[string]interface{}{
			"report_id": report.ID,
		})
		s.metrics.IncrementCounter("report_create_failed", map[string]string{"stage": "publish"})
		return nil, errors.Wrap(err, "failed to publish report request")
	}

	s.logger.Info(ctx, "Report created", map[string]interface{}{
		"report_id": report.ID,
		"status":    report.Status,
	})
	s.metrics.IncrementCounter("report_created", nil)

	return report, nil
}

// GetReports returns all reports, newest first
func (s *ReportService) GetReports(ctx context.Context) ([]*domain.Report, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.GetReports")
	defer span.End()

	reports, err := s.repo.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("report_count", len(reports)))
	return reports, nil
}

// GetReportDetails returns the detail rows of a report. A report that is
// unknown or still preparing yields an empty slice, not an error.
func (s *ReportService) GetReportDetails(ctx context.Context, reportID uuid.UUID) ([]domain.ReportDetail, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.GetReportDetails")
	defer span.End()

	span.SetAttributes(attribute.String("report_id", reportID.String()))

	details, err := s.repo.GetDetailsByReportID(ctx, reportID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return details, nil
}

// AddReportDetails finalizes a preparing report with the supplied rows.
// Called by the worker once the aggregation result is available. Safe under
// queue redelivery: a second call for the same report finds no preparing row
// and gets a not-found error with zero mutations.
func (s *ReportService) AddReportDetails(ctx context.Context, reportID uuid.UUID, rows []DetailRow) error {
	ctx, span := s.tracer.Start(ctx, "ReportService.AddReportDetails")
	defer span.End()

	span.SetAttributes(
		attribute.String("report_id", reportID.String()),
		attribute.Int("detail_count", len(rows)),
	)

	details := make([]domain.ReportDetail, len(rows))
	for i, row := range rows {
		details[i] = domain.ReportDetail{
			ID:               uuid.New(),
			ReportID:         reportID,
			Location:         row.Location,
			PersonCount:      row.PersonCount,
			PhoneNumberCount: row.PhoneNumberCount,
		}
	}

	if err := s.repo.FinalizeIfPreparing(ctx, reportID, details); err != nil {
		span.RecordError(err)
		if errors.IsNotFound(err) {
			s.logger.Warn(ctx, "Finalize rejected, report not preparing", map[string]interface{}{
				"report_id": reportID,
			})
			s.metrics.IncrementCounter("report_finalize_rejected", nil)
			return err
		}
		s.logger.Error(ctx, "Failed to finalize report", err, map[string]interface{}{
			"report_id": reportID,
		})
		return errors.Wrap(err, "failed to finalize report")
	}

	s.logger.Info(ctx, "Report finalized", map[string]interface{}{
		"report_id":    reportID,
		"detail_count": len(details),
	})
	s.metrics.IncrementCounter("report_finalized", nil)

	return nil
}

// HealthCheck verifies the service's backing store
func (s *ReportService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
