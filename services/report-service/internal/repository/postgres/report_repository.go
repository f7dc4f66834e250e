package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emrecodespace/setur-assessment/services/report-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/report-service/internal/repository/interfaces"
	platformError "github.com/emrecodespace/setur-assessment/shared/platform/errors"
)

// ReportRepository implements the ReportRepository interface using PostgreSQL
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) interfaces.ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

// Create persists a new report row
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (id, status, requested_at)
		VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, report.ID, report.Status, report.RequestedAt)
	if err != nil {
		return platformError.Wrap(err, "failed to insert report")
	}

	return nil
}

// GetAll retrieves all reports, newest first
func (r *ReportRepository) GetAll(ctx context.Context) ([]*domain.Report, error) {
	query := `
		SELECT id, status, requested_at
		FROM reports
		ORDER BY requested_at DESC`

	reports := []*domain.Report{}
	err := r.db.SelectContext(ctx, &reports, query)
	if err != nil {
		return nil, platformError.Wrap(err, "failed to get reports")
	}

	return reports, nil
}

// GetDetailsByReportID retrieves the detail rows of a report. An unknown id
// and a report that is still preparing both yield an empty slice.
func (r *ReportRepository) GetDetailsByReportID(ctx context.Context, reportID uuid.UUID) ([]domain.ReportDetail, error) {
	query := `
		SELECT id, report_id, location, person_count, phone_number_count
		FROM report_details
		WHERE report_id = $1`

	details := []domain.ReportDetail{}
	err := r.db.SelectContext(ctx, &details, query, reportID)
	if err != nil {
		return nil, platformError.Wrap(err, "failed to get report details")
	}

	return details, nil
}

// FinalizeIfPreparing transitions a preparing report to completed and inserts
// its detail rows in one transaction. The status transition is a single
// conditional UPDATE gated on both the id and the preparing status, so two
// concurrent finalize calls for the same report cannot both succeed: the
// loser sees zero affected rows and gets a not-found error. The same guard
// rejects a redelivered finalize for an already completed report without
// touching its existing detail rows.
func (r *ReportRepository) FinalizeIfPreparing(ctx context.Context, reportID uuid.UUID, details []domain.ReportDetail) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return platformError.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE reports
		SET status = $2
		WHERE id = $1 AND status = $3`

	result, err := tx.ExecContext(ctx, updateQuery, reportID, domain.StatusCompleted, domain.StatusPreparing)
	if err != nil {
		return platformError.Wrap(err, "failed to update report status")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return platformError.Wrap(err, "failed to get affected rows")
	}
	if rowsAffected == 0 {
		return platformError.NewNotFound("no preparing report found with the given id")
	}

	if len(details) > 0 {
		detailQuery := `
			INSERT INTO report_details (id, report_id, location, person_count, phone_number_count)
			VALUES ($1, $2, $3, $4, $5)`

		for _, detail := range details {
			_, err = tx.ExecContext(ctx, detailQuery,
				detail.ID, reportID, detail.Location, detail.PersonCount, detail.PhoneNumberCount)
			if err != nil {
				return platformError.Wrap(err, "failed to insert report detail")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return platformError.Wrap(err, "failed to commit finalize transaction")
	}

	return nil
}

// HealthCheck verifies database connectivity
func (r *ReportRepository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return platformError.Wrap(err, "report repository ping failed")
	}
	return nil
}
