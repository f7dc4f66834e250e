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

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/service"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

type stubRepository struct {
	persons map[uuid.UUID]*domain.Person
}

func newStubRepository() *stubRepository {
	return &stubRepository{persons: make(map[uuid.UUID]*domain.Person)}
}

func (s *stubRepository) Create(ctx context.Context, person *domain.Person) error {
	s.persons[person.ID] = person
	return nil
}

func (s *stubRepository) GetAll(ctx context.Context) ([]*domain.Person, error) {
	persons := make([]*domain.Person, 0, len(s.persons))
	for _, person := range s.persons {
		persons = append(persons, person)
	}
	return persons, nil
}

func (s *stubRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	person, ok := s.persons[id]
	if !ok {
		return nil, errors.NewNotFound("person not found")
	}
	return person, nil
}

func (s *stubRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.persons[id]; !ok {
		return errors.NewNotFound("person not found")
	}
	delete(s.persons, id)
	return nil
}

func (s *stubRepository) AddContactInfo(ctx context.Context, personID uuid.UUID, info domain.ContactInfo) error {
	person, ok := s.persons[personID]
	if !ok {
		return errors.NewNotFound("person not found")
	}
	person.ContactInfos = append(person.ContactInfos, info)
	return nil
}

func (s *stubRepository) RemoveContactInfo(ctx context.Context, personID, infoID uuid.UUID) error {
	person, ok := s.persons[personID]
	if !ok {
		return errors.NewNotFound("person not found")
	}
	for i, info := range person.ContactInfos {
		if info.ID == infoID {
			person.ContactInfos = append(person.ContactInfos[:i], person.ContactInfos[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFound("contact info not found")
}

func (s *stubRepository) HealthCheck(ctx context.Context) error { return nil }

type stubCache struct{}

func (s *stubCache) Get(ctx context.Context) ([]domain.LocationReport, error) { return nil, nil }
func (s *stubCache) Set(ctx context.Context, _ []domain.LocationReport) error { return nil }
func (s *stubCache) Invalidate(ctx context.Context) error                     { return nil }

func newTestRouter(repo *stubRepository) *chi.Mux {
	logger := logging.NewNoOpLogger()
	m := metrics.NewNoOpMetrics()
	cache := &stubCache{}

	contactHandler := NewContactHandler(service.NewContactService(repo, cache, logger, m), logger)
	reportHandler := NewReportHandler(service.NewReportService(repo, cache, logger, m), logger)

	router := chi.NewRouter()
	router.Route("/api/contacts", func(r chi.Router) {
		r.Get("/", contactHandler.ListPersons)
		r.Post("/", contactHandler.CreatePerson)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", contactHandler.GetPerson)
			r.Delete("/", contactHandler.DeletePerson)
			r.Post("/infos", contactHandler.AddContactInfo)
			r.Delete("/infos/{infoId}", contactHandler.RemoveContactInfo)
		})
	})
	router.Get("/reports", reportHandler.GetLocationReport)
	return router
}

func TestCreatePersonEndpoint(t *testing.T) {
	repo := newStubRepository()
	router := newTestRouter(repo)

	body, err := json.Marshal(CreatePersonRequest{FirstName: "Ayse", LastName: "Yilmaz", Company: "Acme"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/contacts", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var response PersonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Ayse", response.FirstName)
	assert.NotEmpty(t, response.ID)
	require.Len(t, repo.persons, 1)
}

func TestCreatePersonEndpoint_MissingFirstNameReturns400(t *testing.T) {
	router := newTestRouter(newStubRepository())

	body, err := json.Marshal(CreatePersonRequest{LastName: "Yilmaz"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/contacts", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusBadRequest, envelope.StatusCode)
	assert.NotEmpty(t, envelope.Error)
}

func TestGetPersonEndpoint(t *testing.T) {
	repo := newStubRepository()
	person := domain.NewPerson("Ayse", "Yilmaz", "Acme")
	person.ContactInfos = []domain.ContactInfo{
		domain.NewContactInfo(domain.InfoTypePhone, "+90 555 000 0001"),
	}
	repo.persons[person.ID] = person
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/contacts/"+person.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response PersonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, person.ID.String(), response.ID)
	require.Len(t, response.ContactInfos, 1)
	assert.Equal(t, "phone", response.ContactInfos[0].Type)
}

func TestGetPersonEndpoint_UnknownIDReturns404(t *testing.T) {
	router := newTestRouter(newStubRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/contacts/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPersonEndpoint_InvalidIDReturns400(t *testing.T) {
	router := newTestRouter(newStubRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/contacts/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePersonEndpoint(t *testing.T) {
	repo := newStubRepository()
	person := domain.NewPerson("Ayse", "Yilmaz", "Acme")
	repo.persons[person.ID] = person
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/contacts/"+person.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.persons)
}

func TestAddContactInfoEndpoint(t *testing.T) {
	repo := newStubRepository()
	person := domain.NewPerson("Ayse", "Yilmaz", "Acme")
	repo.persons[person.ID] = person
	router := newTestRouter(repo)

	body, err := json.Marshal(AddContactInfoRequest{Type: "location", Content: "Istanbul"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/contacts/"+person.ID.String()+"/infos", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var response ContactInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "location", response.Type)
	require.Len(t, person.ContactInfos, 1)
}

func TestAddContactInfoEndpoint_UnknownTypeReturns400(t *testing.T) {
	repo := newStubRepository()
	person := domain.NewPerson("Ayse", "Yilmaz", "Acme")
	repo.persons[person.ID] = person
	router := newTestRouter(repo)

	body, err := json.Marshal(AddContactInfoRequest{Type: "fax", Content: "555"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/contacts/"+person.ID.String()+"/infos", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, person.ContactInfos)
}

func TestRemoveContactInfoEndpoint(t *testing.T) {
	repo := newStubRepository()
	person := domain.NewPerson("Ayse", "Yilmaz", "Acme")
	info := domain.NewContactInfo(domain.InfoTypeEmail, "ayse@example.com")
	person.ContactInfos = []domain.ContactInfo{info}
	repo.persons[person.ID] = person
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/contacts/"+person.ID.String()+"/infos/"+info.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, person.ContactInfos)
}

func TestRemoveContactInfoEndpoint_UnknownInfoReturns404(t *testing.T) {
	repo := newStubRepository()
	person := domain.NewPerson("Ayse", "Yilmaz", "Acme")
	repo.persons[person.ID] = person
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/contacts/"+person.ID.String()+"/infos/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLocationReportEndpoint(t *testing.T) {
	repo := newStubRepository()
	person := domain.NewPerson("Ayse", "Yilmaz", "Acme")
	person.ContactInfos = []domain.ContactInfo{
		domain.NewContactInfo(domain.InfoTypeLocation, "Istanbul"),
		domain.NewContactInfo(domain.InfoTypePhone, "+90 555 000 0001"),
		domain.NewContactInfo(domain.InfoTypePhone, "+90 555 000 0002"),
	}
	repo.persons[person.ID] = person
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response []LocationReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, LocationReportResponse{Location: "Istanbul", PersonCount: 1, PhoneCount: 2}, response[0])
}

func TestGetLocationReportEndpoint_EmptyDirectory(t *testing.T) {
	router := newTestRouter(newStubRepository())

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
