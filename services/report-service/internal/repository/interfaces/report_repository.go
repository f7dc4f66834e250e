package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/emrecodespace/setur-assessment/services/report-service/internal/domain"
)

// ReportRepository defines the persistence contract for reports.
type ReportRepository interface {
	// Create persists a new report.
	Create(ctx context.Context, report *domain.Report) error

	// GetAll returns all reports ordered by request time, newest first.
	GetAll(ctx context.Context) ([]*domain.Report, error)

	// GetDetailsByReportID returns the detail rows of a report. The result is
	// empty when the report is unknown or still preparing.
	GetDetailsByReportID(ctx context.Context, reportID uuid.UUID) ([]domain.ReportDetail, error)

	// FinalizeIfPreparing atomically transitions the report from preparing to
	// completed and persists the supplied detail rows in the same transaction.
	// Returns a not-found error, with no mutation, when no preparing report
	// with the given id exists. An unknown id and an already completed report
	// are indistinguishable to the caller.
	FinalizeIfPreparing(ctx context.Context, reportID uuid.UUID, details []domain.ReportDetail) error

	// HealthCheck verifies the repository backing store is reachable.
	HealthCheck(ctx context.Context) error
}
