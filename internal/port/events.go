package port

import (
	"context"

	"khata/internal/domain"
)

// EventPublisher emits domain events to downstream consumers.
type EventPublisher interface {
	PublishDocumentSubmitted(ctx context.Context, doc *domain.Document) error
	Close() error
}
