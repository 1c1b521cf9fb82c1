// Package noop is the event publisher used when no broker is configured.
package noop

import (
	"context"

	"go.uber.org/zap"

	"khata/internal/domain"
	"khata/internal/port"
)

type publisher struct {
	logger *zap.Logger
}

// NewPublisher returns a publisher that only logs.
func NewPublisher(logger *zap.Logger) port.EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &publisher{logger: logger.Named("events.noop")}
}

func (p *publisher) PublishDocumentSubmitted(_ context.Context, doc *domain.Document) error {
	p.logger.Debug("document submitted",
		zap.Stringer("document_id", doc.ID),
		zap.String("number", doc.Number))
	return nil
}

func (p *publisher) Close() error { return nil }
