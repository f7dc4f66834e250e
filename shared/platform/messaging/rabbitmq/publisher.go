package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
)

// Publisher publishes JSON messages to named queues.
type Publisher struct {
	conn   *Connection
	logger logging.Logger
}

// NewPublisher creates a new publisher on an established connection.
func NewPublisher(conn *Connection, logger logging.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// Publish marshals payload as JSON and publishes it to the named queue via
// the default exchange. The queue is declared on every publish so either
// side of the pipeline can start first.
func (p *Publisher) Publish(ctx context.Context, queue string, payload interface{}) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to open channel")
	}
	defer ch.Close()

	if _, err := declareQueue(ch, queue); err != nil {
		return errors.Wrap(err, "failed to declare queue")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message payload")
	}

	err = ch.PublishWithContext(ctx,
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		p.logger.Error(ctx, "Failed to publish message", err, map[string]interface{}{
			"queue": queue,
		})
		return errors.Wrap(err, "failed to publish message")
	}

	p.logger.Debug(ctx, "Message published", map[string]interface{}{
		"queue": queue,
		"bytes": len(body),
	})

	return nil
}
