package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emrecodespace/setur-assessment/services/report-worker/internal/clients"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

// QueueMessage is the queue payload: the id of the report to finalize
type QueueMessage struct {
	ID string `json:"id"`
}

// AggregationFetcher fetches the location aggregation from the contact service
type AggregationFetcher interface {
	GetLocationReports(ctx context.Context) ([]clients.LocationReport, error)
}

// ReportFinalizer submits finalization rows to the report service
type ReportFinalizer interface {
	AddReportDetails(ctx context.Context, reportID string, details []clients.ReportDetail) error
}

// Processor handles one queue delivery end to end: decode the message, fetch
// the aggregation, map the rows into the report service's contract, finalize.
// Any failure makes Process return an error, which the consumer turns into a
// nack with requeue. There is no retry cap, so a message that can never
// succeed (malformed payload, or an id with no preparing report) is
// redelivered forever. Known poison-message loop, preserved deliberately.
type Processor struct {
	contacts AggregationFetcher
	reports  ReportFinalizer
	logger   logging.Logger
	metrics  metrics.Metrics
	tracer   trace.Tracer
}

// NewProcessor creates a new delivery processor
func NewProcessor(
	contacts AggregationFetcher,
	reports ReportFinalizer,
	logger logging.Logger,
	metrics metrics.Metrics,
) *Processor {
	return &Processor{
		contacts: contacts,
		reports:  reports,
		logger:   logger,
		metrics:  metrics,
		tracer:   otel.Tracer("report-worker"),
	}
}

// Process handles one delivery. Returns nil only when both the aggregation
// fetch and the finalize call succeeded. Safe to run concurrently for
// different report ids; a single id is protected by the report store's
// conditional write, not by any locking here.
func (p *Processor) Process(ctx context.Context, body []byte) error {
	ctx, span := p.tracer.Start(ctx, "Processor.Process")
	defer span.End()

	var message QueueMessage
	if err := json.Unmarshal(body, &message); err != nil {
		span.RecordError(err)
		p.logger.Error(ctx, "Failed to decode queue message", err)
		p.metrics.IncrementCounter("worker_message_decode_failed", nil)
		return errors.Wrap(err, "failed to decode queue message")
	}

	reportID, err := uuid.Parse(message.ID)
	if err != nil {
		span.RecordError(err)
		p.logger.Error(ctx, "Queue message carries an invalid report id", err, map[string]interface{}{
			"raw_id": message.ID,
		})
		p.metrics.IncrementCounter("worker_message_decode_failed", nil)
		return errors.Wrap(err, "invalid report id in queue message")
	}

	span.SetAttributes(attribute.String("report_id", reportID.String()))

	rows, err := p.contacts.GetLocationReports(ctx)
	if err != nil {
		span.RecordError(err)
		p.logger.Error(ctx, "Failed to fetch location aggregation", err, map[string]interface{}{
			"report_id": reportID,
		})
		p.metrics.IncrementCounter("worker_aggregation_fetch_failed", nil)
		return err
	}

	details := make([]clients.ReportDetail, len(rows))
	for i, row := range rows {
		details[i] = clients.ReportDetail{
			Location:         row.Location,
			PersonCount:      row.PersonCount,
			PhoneNumberCount: row.PhoneCount,
		}
	}

	if err := p.reports.AddReportDetails(ctx, reportID.String(), details); err != nil {
		span.RecordError(err)
		p.logger.Error(ctx, "Failed to finalize report", err, map[string]interface{}{
			"report_id": reportID,
		})
		p.metrics.IncrementCounter("worker_finalize_failed", nil)
		return err
	}

	p.logger.Info(ctx, "Report processed", map[string]interface{}{
		"report_id":    reportID,
		"detail_count": len(details),
	})
	p.metrics.IncrementCounter("worker_report_processed", nil)

	return nil
}
