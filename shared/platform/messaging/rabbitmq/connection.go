package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
)

// Config holds RabbitMQ connection configuration.
type Config struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	ReconnectDelay time.Duration `json:"reconnect_delay"`
}

// DefaultConfig returns a default RabbitMQ configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           5672,
		User:           "guest",
		Password:       "guest",
		ReconnectDelay: 5 * time.Second,
	}
}

// URL returns the AMQP connection string.
func (c Config) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Password, c.Host, c.Port)
}

// Connection manages an AMQP connection to the broker.
type Connection struct {
	conn   *amqp.Connection
	config Config
	logger logging.Logger
}

// Connect dials the broker, retrying on a fixed delay until it succeeds or
// ctx is cancelled. There is no attempt cap: an unreachable broker only
// delays startup, it never fails it.
func Connect(ctx context.Context, config Config, logger logging.Logger) (*Connection, error) {
	delay := config.ReconnectDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}

	for {
		conn, err := amqp.Dial(config.URL())
		if err == nil {
			logger.Info(ctx, "RabbitMQ connection established", map[string]interface{}{
				"host": config.Host,
				"port": config.Port,
			})
			return &Connection{conn: conn, config: config, logger: logger}, nil
		}

		logger.Warn(ctx, "RabbitMQ broker unreachable, retrying", map[string]interface{}{
			"host":  config.Host,
			"port":  config.Port,
			"delay": delay.String(),
			"error": err.Error(),
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Channel opens a new channel on the connection.
func (c *Connection) Channel() (*amqp.Channel, error) {
	if c.conn == nil || c.conn.IsClosed() {
		return nil, fmt.Errorf("rabbitmq connection is closed")
	}
	return c.conn.Channel()
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	if c.conn != nil && !c.conn.IsClosed() {
		err := c.conn.Close()
		if err != nil {
			c.logger.Error(context.Background(), "Failed to close RabbitMQ connection", err)
			return err
		}
		c.logger.Info(context.Background(), "RabbitMQ connection closed")
	}
	return nil
}

// IsClosed reports whether the connection is closed.
func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

// declareQueue declares the named queue with the settings every participant
// uses. Queues and messages are deliberately non-durable: a broker restart
// may drop unconsumed messages. Known limitation, kept for simplicity.
func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		false, // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}
