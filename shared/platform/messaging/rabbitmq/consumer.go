package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

// Handler processes one delivery. A nil return acknowledges the delivery;
// any error (or panic) negatively acknowledges it with requeue, so the
// broker redelivers until the handler eventually succeeds. There is no
// retry cap and no dead-letter routing: a permanently failing message
// loops forever. Known limitation, kept to match the producer side's
// at-least-once expectations.
type Handler func(ctx context.Context, body []byte) error

// Consumer consumes deliveries from named queues with explicit acks.
type Consumer struct {
	conn    *Connection
	logger  logging.Logger
	metrics metrics.Metrics
}

// NewConsumer creates a new consumer on an established connection.
func NewConsumer(conn *Connection, logger logging.Logger, m metrics.Metrics) *Consumer {
	return &Consumer{conn: conn, logger: logger, metrics: m}
}

// Subscription is a cancellable queue subscription.
type Subscription struct {
	channel *amqp.Channel
	done    chan struct{}
}

// Done is closed once the subscription's dispatch loop has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close cancels the subscription by closing its channel.
func (s *Subscription) Close() error {
	return s.channel.Close()
}

// Subscribe declares the queue and starts dispatching its deliveries to
// handler. Deliveries are dispatched concurrently; no prefetch limit is
// configured, so the broker decides how many are in flight at once.
// The subscription ends when ctx is cancelled or the channel closes.
func (c *Consumer) Subscribe(ctx context.Context, queue string, handler Handler) (*Subscription, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open channel")
	}

	if _, err := declareQueue(ch, queue); err != nil {
		ch.Close()
		return nil, errors.Wrap(err, "failed to declare queue")
	}

	deliveries, err := ch.Consume(
		queue,
		"",    // consumer tag
		false, // autoAck: acks are explicit
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, errors.Wrap(err, "failed to start consuming")
	}

	c.logger.Info(ctx, "Queue subscription started", map[string]interface{}{
		"queue": queue,
	})

	sub := &Subscription{channel: ch, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer ch.Close()

		for {
			select {
			case <-ctx.Done():
				c.logger.Info(context.Background(), "Queue subscription stopped", map[string]interface{}{
					"queue": queue,
				})
				return
			case delivery, ok := <-deliveries:
				if !ok {
					c.logger.Warn(ctx, "Delivery channel closed", map[string]interface{}{
						"queue": queue,
					})
					return
				}
				go c.dispatch(ctx, queue, delivery, handler)
			}
		}
	}()

	return sub, nil
}

// dispatch runs the handler for one delivery and settles it. Panics are
// treated like handler errors and converted to a requeue.
func (c *Consumer) dispatch(ctx context.Context, queue string, delivery amqp.Delivery, handler Handler) {
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		c.settle(ctx, queue, delivery, err)
	}()

	err = handler(ctx, delivery.Body)
}

func (c *Consumer) settle(ctx context.Context, queue string, delivery amqp.Delivery, handlerErr error) {
	if handlerErr != nil {
		c.logger.Error(ctx, "Message processing failed, requeueing", handlerErr, map[string]interface{}{
			"queue":        queue,
			"delivery_tag": delivery.DeliveryTag,
			"redelivered":  delivery.Redelivered,
		})
		c.metrics.IncrementCounter("queue_message_requeued", map[string]string{"queue": queue})

		if err := delivery.Nack(false, true); err != nil {
			c.logger.Error(ctx, "Failed to nack delivery", err, map[string]interface{}{
				"queue":        queue,
				"delivery_tag": delivery.DeliveryTag,
			})
		}
		return
	}

	c.metrics.IncrementCounter("queue_message_acked", map[string]string{"queue": queue})

	if err := delivery.Ack(false); err != nil {
		c.logger.Error(ctx, "Failed to ack delivery", err, map[string]interface{}{
			"queue":        queue,
			"delivery_tag": delivery.DeliveryTag,
		})
	}
}
