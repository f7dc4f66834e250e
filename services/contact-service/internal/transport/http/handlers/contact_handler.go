package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/service"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/tracing"
)

// ContactHandler handles HTTP requests for the contact directory
type ContactHandler struct {
	contactService *service.ContactService
	logger         logging.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *service.ContactService, logger logging.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// CreatePerson handles POST /api/contacts
func (h *ContactHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tracing.AddSpanAttributes(ctx,
		tracing.HTTPMethodKey.String(r.Method),
		tracing.HTTPURLKey.String(r.URL.String()),
	)

	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid JSON payload", err)
		return
	}

	person, err := h.contactService.CreatePerson(ctx, req.FirstName, req.LastName, req.Company)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, h.convertPersonToResponse(person))
}

// ListPersons handles GET /api/contacts
func (h *ContactHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	persons, err := h.contactService.GetPersons(ctx)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := make([]PersonResponse, len(persons))
	for i, person := range persons {
		response[i] = h.convertPersonToResponse(person)
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// GetPerson handles GET /api/contacts/{id}
func (h *ContactHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	personID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid person id", err)
		return
	}

	tracing.AddSpanAttributes(ctx, tracing.PersonIDKey.String(personID.String()))

	person, err := h.contactService.GetPerson(ctx, personID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, h.convertPersonToResponse(person))
}

// DeletePerson handles DELETE /api/contacts/{id}
func (h *ContactHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	personID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid person id", err)
		return
	}

	tracing.AddSpanAttributes(ctx, tracing.PersonIDKey.String(personID.String()))

	if err := h.contactService.DeletePerson(ctx, personID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddContactInfo handles POST /api/contacts/{id}/infos
func (h *ContactHandler) AddContactInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	personID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid person id", err)
		return
	}

	tracing.AddSpanAttributes(ctx, tracing.PersonIDKey.String(personID.String()))

	var req AddContactInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid JSON payload", err)
		return
	}

	info, err := h.contactService.AddContactInfo(ctx, personID, req.Type, req.Content)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, ContactInfoResponse{
		ID:      info.ID.String(),
		Type:    string(info.Type),
		Content: info.Content,
	})
}

// RemoveContactInfo handles DELETE /api/contacts/{id}/infos/{infoId}
func (h *ContactHandler) RemoveContactInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	personID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid person id", err)
		return
	}

	infoID, err := uuid.Parse(chi.URLParam(r, "infoId"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid contact info id", err)
		return
	}

	tracing.AddSpanAttributes(ctx, tracing.PersonIDKey.String(personID.String()))

	if err := h.contactService.RemoveContactInfo(ctx, personID, infoID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) convertPersonToResponse(person *domain.Person) PersonResponse {
	infos := make([]ContactInfoResponse, len(person.ContactInfos))
	for i, info := range person.ContactInfos {
		infos[i] = ContactInfoResponse{
			ID:      info.ID.String(),
			Type:    string(info.Type),
			Content: info.Content,
		}
	}

	return PersonResponse{
		ID:           person.ID.String(),
		FirstName:    person.FirstName,
		LastName:     person.LastName,
		Company:      person.Company,
		ContactInfos: infos,
	}
}

func (h *ContactHandler) respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	if err := WriteJSON(w, statusCode, payload); err != nil {
		h.logger.Error(nil, "Failed to write JSON response", err)
	}
}

func (h *ContactHandler) respondWithError(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		h.logger.Error(nil, message, err)
	}
	if writeErr := WriteError(w, statusCode, message); writeErr != nil {
		h.logger.Error(nil, "Failed to write error response", writeErr)
	}
}

func (h *ContactHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsNotFound(err):
		h.respondWithError(w, http.StatusNotFound, "resource not found", err)
	case errors.IsValidation(err):
		h.respondWithError(w, http.StatusBadRequest, err.Error(), err)
	case errors.IsConflict(err):
		h.respondWithError(w, http.StatusConflict, "conflict error", err)
	case errors.IsExternal(err):
		h.respondWithError(w, http.StatusBadGateway, "external service error", err)
	default:
		h.logger.Error(nil, "Internal server error", err)
		h.respondWithError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
