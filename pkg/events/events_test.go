package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateolafalce/padelpro/internal/entity"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error { return nil }

func sampleEvent() *entity.ReservationEvent {
	return &entity.ReservationEvent{
		ID:            "ev-1",
		Type:          entity.EventReservationCreated,
		ReservationID: 12,
		Court:         "Cancha 1",
		Date:          "2025-12-20",
		TimeRange:     "18:00-19:00",
		Amount:        15000,
		At:            time.Date(2025, 12, 19, 10, 0, 0, 0, time.UTC),
	}
}

func TestRabbitMQPublishUsesTypeAsRoutingKey(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitMQPublisher{channel: ch, exchange: "padelpro.reservas"}

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, "padelpro.reservas", ch.exchange)
	assert.Equal(t, "reserva.creada", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, "ev-1", ch.msg.MessageId)

	var decoded entity.ReservationEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, int64(12), decoded.ReservationID)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitMQPublishError(t *testing.T) {
	p := &RabbitMQPublisher{channel: &fakeChannel{err: errors.New("channel closed")}, exchange: "x"}
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
	assert.Error(t, p.Publish(context.Background(), nil))
}

func TestKafkaPublishKeysByReservation(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "padelpro-reservas"}

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("12"), w.msgs[0].Key)
	assert.Equal(t, "type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, []byte("reserva.creada"), w.msgs[0].Headers[0].Value)
}

func TestKafkaPublishError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("leader not available")}, topic: "t"}
	err := p.Publish(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
