package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
)

// LocationReport is one aggregation row as served by the contact service.
// Its wire contract names the phone statistic phoneCount; the report side
// names the same statistic phoneNumberCount. The two contracts are decoupled
// on purpose and the worker maps between them.
type LocationReport struct {
	Location    string `json:"location"`
	PersonCount int    `json:"personCount"`
	PhoneCount  int    `json:"phoneCount"`
}

// ContactClient fetches location aggregations from the contact service
type ContactClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// NewContactClient creates a new contact service client
func NewContactClient(baseURL string, timeout time.Duration, logger logging.Logger) *ContactClient {
	return &ContactClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GetLocationReports calls GET /reports on the contact service
func (c *ContactClient) GetLocationReports(ctx context.Context) ([]LocationReport, error) {
	url := c.baseURL + "/reports"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build aggregation request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternal(fmt.Sprintf("contact service unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternal(fmt.Sprintf("contact service returned status %d", resp.StatusCode))
	}

	var reports []LocationReport
	if err := json.NewDecoder(resp.Body).Decode(&reports); err != nil {
		return nil, errors.Wrap(err, "failed to decode aggregation response")
	}

	c.logger.Debug(ctx, "Location reports fetched", map[string]interface{}{
		"row_count": len(reports),
	})

	return reports, nil
}
