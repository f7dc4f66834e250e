package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrecodespace/setur-assessment/services/report-worker/internal/clients"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

type fakeFetcher struct {
	rows []clients.LocationReport
	err  error
}

func (f *fakeFetcher) GetLocationReports(ctx context.Context) ([]clients.LocationReport, error) {
	return f.rows, f.err
}

type fakeFinalizer struct {
	err      error
	calls    int
	reportID string
	details  []clients.ReportDetail
}

func (f *fakeFinalizer) AddReportDetails(ctx context.Context, reportID string, details []clients.ReportDetail) error {
	f.calls++
	f.reportID = reportID
	f.details = details
	return f.err
}

func newTestProcessor(fetcher *fakeFetcher, finalizer *fakeFinalizer) *Processor {
	return NewProcessor(fetcher, finalizer, logging.NewNoOpLogger(), metrics.NewNoOpMetrics())
}

func messageBody(t *testing.T, id string) []byte {
	t.Helper()
	body, err := json.Marshal(QueueMessage{ID: id})
	require.NoError(t, err)
	return body
}

func TestProcess_SuccessMapsRowsIntoFinalizeContract(t *testing.T) {
	fetcher := &fakeFetcher{rows: []clients.LocationReport{
		{Location: "Istanbul", PersonCount: 2, PhoneCount: 2},
		{Location: "Ankara", PersonCount: 1, PhoneCount: 2},
	}}
	finalizer := &fakeFinalizer{}
	processor := newTestProcessor(fetcher, finalizer)

	reportID := uuid.NewString()
	err := processor.Process(context.Background(), messageBody(t, reportID))

	require.NoError(t, err)
	assert.Equal(t, 1, finalizer.calls)
	assert.Equal(t, reportID, finalizer.reportID)
	require.Len(t, finalizer.details, 2)
	// phoneCount on the contact side becomes phoneNumberCount on the report side.
	assert.Equal(t, clients.ReportDetail{Location: "Istanbul", PersonCount: 2, PhoneNumberCount: 2}, finalizer.details[0])
	assert.Equal(t, clients.ReportDetail{Location: "Ankara", PersonCount: 1, PhoneNumberCount: 2}, finalizer.details[1])
}

func TestProcess_MalformedPayloadFails(t *testing.T) {
	finalizer := &fakeFinalizer{}
	processor := newTestProcessor(&fakeFetcher{}, finalizer)

	err := processor.Process(context.Background(), []byte("not json"))

	require.Error(t, err)
	assert.Zero(t, finalizer.calls)
}

func TestProcess_InvalidReportIDFails(t *testing.T) {
	finalizer := &fakeFinalizer{}
	processor := newTestProcessor(&fakeFetcher{}, finalizer)

	err := processor.Process(context.Background(), messageBody(t, "not-a-uuid"))

	require.Error(t, err)
	assert.Zero(t, finalizer.calls)
}

func TestProcess_FetchFailureSkipsFinalize(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.NewExternal("contact service unreachable")}
	finalizer := &fakeFinalizer{}
	processor := newTestProcessor(fetcher, finalizer)

	err := processor.Process(context.Background(), messageBody(t, uuid.NewString()))

	require.Error(t, err)
	assert.Zero(t, finalizer.calls)
}

func TestProcess_FinalizeFailurePropagates(t *testing.T) {
	fetcher := &fakeFetcher{rows: []clients.LocationReport{{Location: "Izmir", PersonCount: 1, PhoneCount: 1}}}
	finalizer := &fakeFinalizer{err: errors.NewNotFound("no preparing report found with the given id")}
	processor := newTestProcessor(fetcher, finalizer)

	err := processor.Process(context.Background(), messageBody(t, uuid.NewString()))

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestProcess_EmptyAggregationStillFinalizes(t *testing.T) {
	finalizer := &fakeFinalizer{}
	processor := newTestProcessor(&fakeFetcher{}, finalizer)

	err := processor.Process(context.Background(), messageBody(t, uuid.NewString()))

	require.NoError(t, err)
	assert.Equal(t, 1, finalizer.calls)
	assert.Empty(t, finalizer.details)
}
