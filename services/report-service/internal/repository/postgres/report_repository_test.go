package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrecodespace/setur-assessment/services/report-service/internal/domain"
	platformError "github.com/emrecodespace/setur-assessment/shared/platform/errors"
)

func newMockRepository(t *testing.T) (*ReportRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return &ReportRepository{db: db}, mock
}

func TestReportRepository_Create(t *testing.T) {
	repo, mock := newMockRepository(t)

	report := domain.NewReport()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reports")).
		WithArgs(report.ID, report.Status, report.RequestedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), report)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_GetAll(t *testing.T) {
	repo, mock := newMockRepository(t)

	first := uuid.New()
	second := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "status", "requested_at"}).
		AddRow(second, "completed", now).
		AddRow(first, "preparing", now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status, requested_at")).
		WillReturnRows(rows)

	reports, err := repo.GetAll(context.Background())

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, second, reports[0].ID)
	assert.Equal(t, domain.StatusCompleted, reports[0].Status)
	assert.Equal(t, domain.StatusPreparing, reports[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_GetDetailsByReportID_Empty(t *testing.T) {
	repo, mock := newMockRepository(t)

	reportID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, report_id, location, person_count, phone_number_count")).
		WithArgs(reportID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "report_id", "location", "person_count", "phone_number_count"}))

	details, err := repo.GetDetailsByReportID(context.Background(), reportID)

	require.NoError(t, err)
	assert.Empty(t, details)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_FinalizeIfPreparing_Success(t *testing.T) {
	repo, mock := newMockRepository(t)

	reportID := uuid.New()
	details := []domain.ReportDetail{
		{ID: uuid.New(), ReportID: reportID, Location: "Istanbul", PersonCount: 2, PhoneNumberCount: 2},
		{ID: uuid.New(), ReportID: reportID, Location: "Ankara", PersonCount: 1, PhoneNumberCount: 2},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports")).
		WithArgs(reportID, domain.StatusCompleted, domain.StatusPreparing).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for _, d := range details {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_details")).
			WithArgs(d.ID, reportID, d.Location, d.PersonCount, d.PhoneNumberCount).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	err := repo.FinalizeIfPreparing(context.Background(), reportID, details)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_FinalizeIfPreparing_NotPreparing(t *testing.T) {
	repo, mock := newMockRepository(t)

	reportID := uuid.New()

	// Zero affected rows: unknown id or already completed. Either way the
	// transaction rolls back and no detail insert happens.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports")).
		WithArgs(reportID, domain.StatusCompleted, domain.StatusPreparing).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.FinalizeIfPreparing(context.Background(), reportID, []domain.ReportDetail{
		{ID: uuid.New(), ReportID: reportID, Location: "Izmir", PersonCount: 1, PhoneNumberCount: 1},
	})

	require.Error(t, err)
	assert.True(t, platformError.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_FinalizeIfPreparing_EmptyDetails(t *testing.T) {
	repo, mock := newMockRepository(t)

	reportID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports")).
		WithArgs(reportID, domain.StatusCompleted, domain.StatusPreparing).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.FinalizeIfPreparing(context.Background(), reportID, nil)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
