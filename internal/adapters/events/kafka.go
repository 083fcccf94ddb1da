// internal/adapters/events/kafka.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/pkg/logger"
)

// Source identifies this service in event envelopes.
const Source = "cultureconnect-api"

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements ports.EventPublisher over a kafka-go writer
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to cfg.Topic
func NewKafkaPublisher(cfg ProducerConfig, logger *slog.Logger) *KafkaPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(w, cfg.Topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		logger: logger.With(slog.String("publisher", "kafka")),
	}
}

// Publish wraps e in an envelope keyed by its aggregate ID
func (p *KafkaPublisher) Publish(ctx context.Context, e ports.CatalogEvent) error {
	event, err := NewEvent(e.Type, e.AggregateID, Source, e.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	event.CorrelationID = logger.RequestID(ctx)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(Source)},
		},
	}
	if event.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key: "correlation_id", Value: []byte(event.CorrelationID),
		})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", p.topic),
			slog.String("event_type", e.Type),
			slog.String("error", err.Error()))
		return fmt.Errorf("publish %s to %s: %w", e.Type, p.topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("event_type", e.Type),
		slog.String("aggregate_id", e.AggregateID))
	return nil
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events; it is used when Kafka is disabled
type NoopPublisher struct {
	logger *slog.Logger
}

var _ ports.EventPublisher = (*NoopPublisher)(nil)

// NewNoopPublisher creates a publisher that only logs
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.With(slog.String("publisher", "noop"))}
}

// Publish logs the event at debug level
func (p *NoopPublisher) Publish(ctx context.Context, e ports.CatalogEvent) error {
	p.logger.DebugContext(ctx, "event dropped",
		slog.String("event_type", e.Type),
		slog.String("aggregate_id", e.AggregateID))
	return nil
}

// Close is a no-op
func (p *NoopPublisher) Close() error { return nil }
