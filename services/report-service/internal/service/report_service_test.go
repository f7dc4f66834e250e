package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrecodespace/setur-assessment/services/report-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

type fakeRepository struct {
	reports   []*domain.Report
	details   map[uuid.UUID][]domain.ReportDetail
	createErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{details: make(map[uuid.UUID][]domain.ReportDetail)}
}

func (f *fakeRepository) Create(ctx context.Context, report *domain.Report) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeRepository) GetAll(ctx context.Context) ([]*domain.Report, error) {
	return f.reports, nil
}

func (f *fakeRepository) GetDetailsByReportID(ctx context.Context, reportID uuid.UUID) ([]domain.ReportDetail, error) {
	return f.details[reportID], nil
}

func (f *fakeRepository) FinalizeIfPreparing(ctx context.Context, reportID uuid.UUID, details []domain.ReportDetail) error {
	for _, report := range f.reports {
		if report.ID == reportID && report.Status == domain.StatusPreparing {
			report.Status = domain.StatusCompleted
			f.details[reportID] = details
			return nil
		}
	}
	return errors.NewNotFound("no preparing report found with the given id")
}

func (f *fakeRepository) HealthCheck(ctx context.Context) error {
	return nil
}

type fakePublisher struct {
	published []uuid.UUID
	err       error
}

func (f *fakePublisher) PublishReportRequested(ctx context.Context, reportID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, reportID)
	return nil
}

func newTestService(repo *fakeRepository, pub *fakePublisher) *ReportService {
	return NewReportService(repo, pub, logging.NewNoOpLogger(), metrics.NewNoOpMetrics())
}

func TestCreateReport_PersistsPreparingAndPublishesOnce(t *testing.T) {
	repo := newFakeRepository()
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	report, err := svc.CreateReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, report.Status)
	require.Len(t, repo.reports, 1)
	require.Len(t, pub.published, 1)
	assert.Equal(t, report.ID, pub.published[0])
}

func TestCreateReport_PersistFailurePublishesNothing(t *testing.T) {
	repo := newFakeRepository()
	repo.createErr = errors.NewInternal("db down")
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	_, err := svc.CreateReport(context.Background())

	require.Error(t, err)
	assert.Empty(t, pub.published)
}

func TestCreateReport_PublishFailureLeavesOrphanedRow(t *testing.T) {
	repo := newFakeRepository()
	pub := &fakePublisher{err: errors.NewExternal("broker unavailable")}
	svc := newTestService(repo, pub)

	_, err := svc.CreateReport(context.Background())

	require.Error(t, err)
	// The row stays behind in preparing state; there is no compensation.
	require.Len(t, repo.reports, 1)
	assert.Equal(t, domain.StatusPreparing, repo.reports[0].Status)
}

func TestAddReportDetails_FinalizesPreparingReport(t *testing.T) {
	repo := newFakeRepository()
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	report, err := svc.CreateReport(context.Background())
	require.NoError(t, err)

	rows := []DetailRow{
		{Location: "Istanbul", PersonCount: 2, PhoneNumberCount: 2},
		{Location: "Ankara", PersonCount: 1, PhoneNumberCount: 2},
	}

	err = svc.AddReportDetails(context.Background(), report.ID, rows)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, repo.reports[0].Status)

	details, err := svc.GetReportDetails(context.Background(), report.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	for _, detail := range details {
		assert.Equal(t, report.ID, detail.ReportID)
		assert.NotEqual(t, uuid.Nil, detail.ID)
	}
}

func TestAddReportDetails_SecondCallIsRejectedWithoutMutation(t *testing.T) {
	repo := newFakeRepository()
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	report, err := svc.CreateReport(context.Background())
	require.NoError(t, err)

	rows := []DetailRow{{Location: "Izmir", PersonCount: 1, PhoneNumberCount: 3}}

	require.NoError(t, svc.AddReportDetails(context.Background(), report.ID, rows))

	firstPass, err := svc.GetReportDetails(context.Background(), report.ID)
	require.NoError(t, err)

	err = svc.AddReportDetails(context.Background(), report.ID, rows)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	secondPass, err := svc.GetReportDetails(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, firstPass, secondPass)
}

func TestAddReportDetails_UnknownReportIsNotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakePublisher{})

	err := svc.AddReportDetails(context.Background(), uuid.New(), []DetailRow{
		{Location: "Bursa", PersonCount: 1, PhoneNumberCount: 1},
	})

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetReportDetails_EmptyWhilePreparing(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakePublisher{})

	report, err := svc.CreateReport(context.Background())
	require.NoError(t, err)

	details, err := svc.GetReportDetails(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Empty(t, details)
}
