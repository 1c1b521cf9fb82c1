package port

import (
	"context"

	"github.com/google/uuid"

	"khata/internal/domain"
)

// DraftStore holds drafts for the length of an editing session.
// Get returns domain.ErrDraftNotFound for missing, expired or foreign-tenant drafts.
type DraftStore interface {
	Get(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error)
	Save(ctx context.Context, draft *domain.Draft) error
	Delete(ctx context.Context, tenantID, draftID uuid.UUID) error
	Ping(ctx context.Context) error
}
