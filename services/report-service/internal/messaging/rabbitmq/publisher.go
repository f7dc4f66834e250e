package rabbitmq

import (
	"context"

	"github.com/google/uuid"

	"github.com/emrecodespace/setur-assessment/shared/platform/messaging/rabbitmq"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
)

// QueueMessage is the only payload crossing the queue: the id of the report
// to finalize. No versioning field, no other metadata.
type QueueMessage struct {
	ID string `json:"id"`
}

// ReportPublisher publishes report requests to the work queue.
type ReportPublisher struct {
	publisher *rabbitmq.Publisher
	queueName string
	logger    logging.Logger
}

// NewReportPublisher creates a publisher bound to the report queue.
func NewReportPublisher(conn *rabbitmq.Connection, queueName string, logger logging.Logger) *ReportPublisher {
	return &ReportPublisher{
		publisher: rabbitmq.NewPublisher(conn, logger),
		queueName: queueName,
		logger:    logger,
	}
}

// PublishReportRequested enqueues a message referencing the report id.
func (p *ReportPublisher) PublishReportRequested(ctx context.Context, reportID uuid.UUID) error {
	message := QueueMessage{ID: reportID.String()}

	if err := p.publisher.Publish(ctx, p.queueName, message); err != nil {
		return err
	}

	p.logger.Info(ctx, "Report request published", map[string]interface{}{
		"report_id": reportID,
		"queue":     p.queueName,
	})

	return nil
}
