package handlers

import (
	"net/http"

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/service"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/tracing"
)

// ReportHandler serves the location aggregation endpoint consumed by the
// report worker
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

// GetLocationReport handles GET /reports
func (h *ReportHandler) GetLocationReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tracing.AddSpanAttributes(ctx,
		tracing.HTTPMethodKey.String(r.Method),
		tracing.HTTPURLKey.String(r.URL.String()),
	)

	report, err := h.reportService.GetLocationReport(ctx)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := make([]LocationReportResponse, len(report))
	for i, row := range report {
		response[i] = LocationReportResponse{
			Location:    row.Location,
			PersonCount: row.PersonCount,
			PhoneCount:  row.PhoneCount,
		}
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error(nil, "Failed to write JSON response", err)
	}
}

func (h *ReportHandler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.IsExternal(err):
		statusCode = http.StatusBadGateway
		message = "external service error"
	default:
		h.logger.Error(nil, "Internal server error", err)
	}

	if writeErr := WriteError(w, statusCode, message); writeErr != nil {
		h.logger.Error(nil, "Failed to write error response", writeErr)
	}
}
