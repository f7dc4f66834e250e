package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/emrecodespace/setur-assessment/services/report-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/report-service/internal/service"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/tracing"
)

// ReportHandler handles HTTP requests for reports
type ReportHandler struct {
	reportService *service.ReportService
	logger        logging.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService, logger logging.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// CreateReport handles POST /api/reports/create
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tracing.AddSpanAttributes(ctx,
		tracing.HTTPMethodKey.String(r.Method),
		tracing.HTTPURLKey.String(r.URL.String()),
	)

	report, err := h.reportService.CreateReport(ctx)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, h.convertReportToResponse(report))
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reports, err := h.reportService.GetReports(ctx)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := make([]ReportResponse, len(reports))
	for i, report := range reports {
		response[i] = h.convertReportToResponse(report)
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// GetReportDetails handles GET /api/reports/{id}/details
func (h *ReportHandler) GetReportDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid report id", err)
		return
	}

	tracing.AddSpanAttributes(ctx, tracing.ReportIDKey.String(reportID.String()))

	details, err := h.reportService.GetReportDetails(ctx, reportID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := make([]ReportDetailResponse, len(details))
	for i, detail := range details {
		response[i] = ReportDetailResponse{
			Location:         detail.Location,
			PersonCount:      detail.PersonCount,
			PhoneNumberCount: detail.PhoneNumberCount,
		}
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// AddReportDetails handles POST /api/reports/{id}/details. Internal endpoint,
// called by the worker to finalize a preparing report.
func (h *ReportHandler) AddReportDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid report id", err)
		return
	}

	tracing.AddSpanAttributes(ctx, tracing.ReportIDKey.String(reportID.String()))

	var req []AddDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error(ctx, "Failed to decode report details", err)
		h.respondWithError(w, http.StatusBadRequest, "invalid JSON payload", err)
		return
	}

	rows := make([]service.DetailRow, len(req))
	for i, detail := range req {
		rows[i] = service.DetailRow{
			Location:         detail.Location,
			PersonCount:      detail.PersonCount,
			PhoneNumberCount: detail.PhoneNumberCount,
		}
	}

	if err := h.reportService.AddReportDetails(ctx, reportID, rows); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":     reportID,
		"status": string(domain.StatusCompleted),
	})
}

func (h *ReportHandler) convertReportToResponse(report *domain.Report) ReportResponse {
	return ReportResponse{
		ID:          report.ID.String(),
		Status:      string(report.Status),
		RequestedAt: report.RequestedAt.Format(time.RFC3339),
	}
}

func (h *ReportHandler) respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	if err := WriteJSON(w, statusCode, payload); err != nil {
		h.logger.Error(nil, "Failed to write JSON response", err)
	}
}

func (h *ReportHandler) respondWithError(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		h.logger.Error(nil, message, err)
	}
	if writeErr := WriteError(w, statusCode, message); writeErr != nil {
		h.logger.Error(nil, "Failed to write error response", writeErr)
	}
}

func (h *ReportHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsNotFound(err):
		h.respondWithError(w, http.StatusNotFound, "resource not found", err)
	case errors.IsValidation(err):
		h.respondWithError(w, http.StatusBadRequest, "validation error", err)
	case errors.IsConflict(err):
		h.respondWithError(w, http.StatusConflict, "conflict error", err)
	case errors.IsExternal(err):
		h.respondWithError(w, http.StatusBadGateway, "external service error", err)
	default:
		h.logger.Error(nil, "Internal server error", err)
		h.respondWithError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
