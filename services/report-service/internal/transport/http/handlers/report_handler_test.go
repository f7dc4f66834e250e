package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrecodespace/setur-assessment/services/report-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/report-service/internal/service"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

type stubRepository struct {
	reports []*domain.Report
	details map[uuid.UUID][]domain.ReportDetail
}

func newStubRepository() *stubRepository {
	return &stubRepository{details: make(map[uuid.UUID][]domain.ReportDetail)}
}

func (s *stubRepository) Create(ctx context.Context, report *domain.Report) error {
	s.reports = append(s.reports, report)
	return nil
}

func (s *stubRepository) GetAll(ctx context.Context) ([]*domain.Report, error) {
	return s.reports, nil
}

func (s *stubRepository) GetDetailsByReportID(ctx context.Context, reportID uuid.UUID) ([]domain.ReportDetail, error) {
	return s.details[reportID], nil
}

func (s *stubRepository) FinalizeIfPreparing(ctx context.Context, reportID uuid.UUID, details []domain.ReportDetail) error {
	for _, report := range s.reports {
		if report.ID == reportID && report.Status == domain.StatusPreparing {
			report.Status = domain.StatusCompleted
			s.details[reportID] = details
			return nil
		}
	}
	return errors.NewNotFound("no preparing report found with the given id")
}

func (s *stubRepository) HealthCheck(ctx context.Context) error { return nil }

type stubPublisher struct{}

func (s *stubPublisher) PublishReportRequested(ctx context.Context, reportID uuid.UUID) error {
	return nil
}

func newTestRouter(repo *stubRepository) *chi.Mux {
	logger := logging.NewNoOpLogger()
	svc := service.NewReportService(repo, &stubPublisher{}, logger, metrics.NewNoOpMetrics())
	handler := NewReportHandler(svc, logger)

	router := chi.NewRouter()
	router.Route("/api/reports", func(r chi.Router) {
		r.Get("/", handler.ListReports)
		r.Post("/create", handler.CreateReport)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/details", handler.GetReportDetails)
			r.Post("/details", handler.AddReportDetails)
		})
	})
	return router
}

func TestCreateReportEndpoint(t *testing.T) {
	repo := newStubRepository()
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/create", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domain.StatusPreparing), body.Status)
	assert.NotEmpty(t, body.ID)
	require.Len(t, repo.reports, 1)
}

func TestListReportsEndpoint(t *testing.T) {
	repo := newStubRepository()
	repo.reports = []*domain.Report{domain.NewReport(), domain.NewReport()}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body []ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}

func TestGetReportDetailsEndpoint_EmptyWhilePreparing(t *testing.T) {
	repo := newStubRepository()
	report := domain.NewReport()
	repo.reports = []*domain.Report{report}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/"+report.ID.String()+"/details", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetReportDetailsEndpoint_InvalidID(t *testing.T) {
	router := newTestRouter(newStubRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/reports/not-a-uuid/details", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusBadRequest, envelope.StatusCode)
	assert.NotEmpty(t, envelope.Error)
}

func TestAddReportDetailsEndpoint_FinalizesAndExposesDetails(t *testing.T) {
	repo := newStubRepository()
	report := domain.NewReport()
	repo.reports = []*domain.Report{report}
	router := newTestRouter(repo)

	payload := []AddDetailRequest{
		{Location: "Istanbul", PersonCount: 2, PhoneNumberCount: 2},
		{Location: "Ankara", PersonCount: 1, PhoneNumberCount: 2},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/"+report.ID.String()+"/details", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusCompleted, report.Status)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/"+report.ID.String()+"/details", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var details []ReportDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.Len(t, details, 2)
}

func TestAddReportDetailsEndpoint_SecondCallReturns404(t *testing.T) {
	repo := newStubRepository()
	report := domain.NewReport()
	repo.reports = []*domain.Report{report}
	router := newTestRouter(repo)

	payload := []AddDetailRequest{{Location: "Izmir", PersonCount: 1, PhoneNumberCount: 1}}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	first := httptest.NewRequest(http.MethodPost, "/api/reports/"+report.ID.String()+"/details", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/reports/"+report.ID.String()+"/details", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, second)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var envelope ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusNotFound, envelope.StatusCode)
}

func TestAddReportDetailsEndpoint_UnknownIDReturns404(t *testing.T) {
	router := newTestRouter(newStubRepository())

	payload := []AddDetailRequest{{Location: "Bursa", PersonCount: 1, PhoneNumberCount: 1}}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/"+uuid.NewString()+"/details", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
