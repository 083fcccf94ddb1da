package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/pkg/logger"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	pub := newKafkaPublisher(w, "catalog.events", discard())

	ctx := logger.WithRequestID(context.Background(), "req-42")
	err := pub.Publish(ctx, ports.CatalogEvent{
		Type:        ports.EventProductPublished,
		AggregateID: "prod-1",
		Data:        map[string]string{"name": "Pattachitra Scroll"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "catalog.events", msg.Topic)
	assert.Equal(t, "prod-1", string(msg.Key))
	assert.Equal(t, ports.EventProductPublished, header(msg, "event_type"))
	assert.Equal(t, "req-42", header(msg, "correlation_id"))

	event, err := UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "prod-1", event.AggregateID)
	assert.Equal(t, Source, event.Source)
	assert.JSONEq(t, `{"name":"Pattachitra Scroll"}`, string(event.Data))
	assert.NotEmpty(t, event.EventID)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	pub := newKafkaPublisher(w, "catalog.events", discard())

	err := pub.Publish(context.Background(), ports.CatalogEvent{Type: ports.EventProductDeleted, AggregateID: "p"})
	assert.ErrorContains(t, err, "broker down")

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}

func TestNoopPublisher(t *testing.T) {
	pub := NewNoopPublisher(discard())
	assert.NoError(t, pub.Publish(context.Background(), ports.CatalogEvent{Type: "x"}))
	assert.NoError(t, pub.Close())
}
