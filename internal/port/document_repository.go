package port

import (
	"context"

	"github.com/google/uuid"

	"khata/internal/domain"
)

// DocumentRepository defines the contract for submitted document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	Update(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, tenantID, docID uuid.UUID) (*domain.Document, error)
	// ListBatch pages through every tenant's documents ordered by id, starting after afterID.
	ListBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.Document, error)
}
