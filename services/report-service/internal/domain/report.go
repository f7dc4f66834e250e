package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus represents the lifecycle state of a report.
type ReportStatus string

const (
	StatusPreparing ReportStatus = "preparing"
	StatusCompleted ReportStatus = "completed"
)

// Report is one request to compute location statistics. It is created in
// StatusPreparing and moves to StatusCompleted exactly once, when the worker
// submits the computed detail rows. There are no other transitions.
type Report struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Status      ReportStatus `json:"status" db:"status"`
	RequestedAt time.Time    `json:"requested_at" db:"requested_at"`
}

// ReportDetail is one per-location statistic row belonging to a completed
// report. Detail rows are written as a batch at finalization and never
// individually mutated afterward.
type ReportDetail struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ReportID         uuid.UUID `json:"report_id" db:"report_id"`
	Location         string    `json:"location" db:"location"`
	PersonCount      int       `json:"person_count" db:"person_count"`
	PhoneNumberCount int       `json:"phone_number_count" db:"phone_number_count"`
}

// NewReport creates a report in its initial state.
func NewReport() *Report {
	return &Report{
		ID:          uuid.New(),
		Status:      StatusPreparing,
		RequestedAt: time.Now().UTC(),
	}
}

// IsPreparing reports whether the report still awaits finalization.
func (r *Report) IsPreparing() bool {
	return r.Status == StatusPreparing
}
