package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
)

func TestContactClient_GetLocationReports(t *testing.T) {
	rows := []LocationReport{
		{Location: "Istanbul", PersonCount: 2, PhoneCount: 2},
		{Location: "Ankara", PersonCount: 1, PhoneCount: 2},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/reports", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	client := NewContactClient(server.URL, 5*time.Second, logging.NewNoOpLogger())

	got, err := client.GetLocationReports(context.Background())

	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestContactClient_GetLocationReports_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewContactClient(server.URL, 5*time.Second, logging.NewNoOpLogger())

	_, err := client.GetLocationReports(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsExternal(err))
}

func TestContactClient_GetLocationReports_Unreachable(t *testing.T) {
	client := NewContactClient("http://127.0.0.1:1", time.Second, logging.NewNoOpLogger())

	_, err := client.GetLocationReports(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsExternal(err))
}

func TestReportClient_AddReportDetails(t *testing.T) {
	reportID := "2f1f9a47-8a3e-4ec2-9f6d-90cf5b4a6f11"

	var received []ReportDetail
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/reports/"+reportID+"/details", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewReportClient(server.URL, 5*time.Second, logging.NewNoOpLogger())

	details := []ReportDetail{{Location: "Istanbul", PersonCount: 2, PhoneNumberCount: 2}}
	err := client.AddReportDetails(context.Background(), reportID, details)

	require.NoError(t, err)
	assert.Equal(t, details, received)
}

func TestReportClient_AddReportDetails_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewReportClient(server.URL, 5*time.Second, logging.NewNoOpLogger())

	err := client.AddReportDetails(context.Background(), "unknown", nil)

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestReportClient_AddReportDetails_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewReportClient(server.URL, 5*time.Second, logging.NewNoOpLogger())

	err := client.AddReportDetails(context.Background(), "some-id", nil)

	require.Error(t, err)
	assert.True(t, errors.IsExternal(err))
}
