// Package kafka publishes document events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"khata/internal/config"
	"khata/internal/domain"
	"khata/internal/events"
	"khata/internal/logging"
	"khata/internal/port"
)

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher implements port.EventPublisher.
type Publisher struct {
	writer MessageWriter
	logger *zap.Logger
}

var _ port.EventPublisher = (*Publisher)(nil)

// NewWriter builds a kafka-go writer for the configured brokers and topic.
func NewWriter(cfg config.KafkaConfig, logger *zap.Logger) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafkago.RequireOne,
		Logger:       logging.NewPrintfAdapter(logger),
		ErrorLogger:  logging.NewErrorPrintfAdapter(logger),
	}
}

// NewPublisher creates a publisher over w.
func NewPublisher(w MessageWriter, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: w, logger: logger.Named("events.kafka")}
}

// PublishDocumentSubmitted keys the message by tenant so one tenant's events
// stay ordered on a single partition.
func (p *Publisher) PublishDocumentSubmitted(ctx context.Context, doc *domain.Document) error {
	event := events.NewDocumentSubmitted(doc, logging.RequestID(ctx))
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events.kafka encode: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(doc.TenantID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Stringer("document_id", doc.ID),
			zap.Error(err))
		return fmt.Errorf("events.kafka publish: %w", err)
	}

	p.logger.Info("event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Stringer("document_id", doc.ID))
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	p.logger.Info("closing kafka publisher")
	return p.writer.Close()
}
