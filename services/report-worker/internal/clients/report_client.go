package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
)

// ReportDetail is one finalization row in the report service's wire contract
type ReportDetail struct {
	Location         string `json:"location"`
	PersonCount      int    `json:"personCount"`
	PhoneNumberCount int    `json:"phoneNumberCount"`
}

// ReportClient submits finalization rows to the report service
type ReportClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// NewReportClient creates a new report service client
func NewReportClient(baseURL string, timeout time.Duration, logger logging.Logger) *ReportClient {
	return &ReportClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// AddReportDetails calls POST /api/reports/{id}/details. A 404 means no
// preparing report with that id exists; the response does not say whether
// the id is unknown or the report was already completed.
func (c *ReportClient) AddReportDetails(ctx context.Context, reportID string, details []ReportDetail) error {
	url := fmt.Sprintf("%s/api/reports/%s/details", c.baseURL, reportID)

	body, err := json.Marshal(details)
	if err != nil {
		return errors.Wrap(err, "failed to marshal report details")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build finalize request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewExternal(fmt.Sprintf("report service unreachable: %v", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		c.logger.Debug(ctx, "Report details submitted", map[string]interface{}{
			"report_id":    reportID,
			"detail_count": len(details),
		})
		return nil
	case http.StatusNotFound:
		return errors.NewNotFound("no preparing report found with the given id")
	default:
		return errors.NewExternal(fmt.Sprintf("report service returned status %d", resp.StatusCode))
	}
}
