package rabbitmq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

// fakeAcknowledger records settlement calls made through amqp.Delivery.
type fakeAcknowledger struct {
	acks     int
	nacks    int
	requeues []bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacks++
	f.requeues = append(f.requeues, requeue)
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacks++
	f.requeues = append(f.requeues, requeue)
	return nil
}

func newTestConsumer() *Consumer {
	return NewConsumer(nil, logging.NewNoOpLogger(), metrics.NewNoOpMetrics())
}

func newTestDelivery(ack *fakeAcknowledger, body string) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		Body:         []byte(body),
	}
}

func TestDispatch_HandlerSuccessAcks(t *testing.T) {
	consumer := newTestConsumer()
	ack := &fakeAcknowledger{}

	var received []byte
	handler := func(ctx context.Context, body []byte) error {
		received = body
		return nil
	}

	consumer.dispatch(context.Background(), "report-requests", newTestDelivery(ack, `{"id":"abc"}`), handler)

	assert.Equal(t, []byte(`{"id":"abc"}`), received)
	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 0, ack.nacks)
}

func TestDispatch_HandlerErrorNacksWithRequeue(t *testing.T) {
	consumer := newTestConsumer()
	ack := &fakeAcknowledger{}

	handler := func(ctx context.Context, body []byte) error {
		return errors.NewExternal("aggregation fetch failed")
	}

	consumer.dispatch(context.Background(), "report-requests", newTestDelivery(ack, "{}"), handler)

	assert.Equal(t, 0, ack.acks)
	require.Equal(t, 1, ack.nacks)
	assert.Equal(t, []bool{true}, ack.requeues)
}

func TestDispatch_HandlerPanicNacksWithRequeue(t *testing.T) {
	consumer := newTestConsumer()
	ack := &fakeAcknowledger{}

	handler := func(ctx context.Context, body []byte) error {
		panic("unexpected payload shape")
	}

	require.NotPanics(t, func() {
		consumer.dispatch(context.Background(), "report-requests", newTestDelivery(ack, "{}"), handler)
	})

	assert.Equal(t, 0, ack.acks)
	require.Equal(t, 1, ack.nacks)
	assert.Equal(t, []bool{true}, ack.requeues)
}

func TestDispatch_SettlesExactlyOncePerDelivery(t *testing.T) {
	consumer := newTestConsumer()
	ack := &fakeAcknowledger{}

	handler := func(ctx context.Context, body []byte) error { return nil }

	consumer.dispatch(context.Background(), "report-requests", newTestDelivery(ack, "{}"), handler)
	consumer.dispatch(context.Background(), "report-requests", newTestDelivery(ack, "{}"), handler)

	assert.Equal(t, 2, ack.acks)
	assert.Equal(t, 0, ack.nacks)
}
