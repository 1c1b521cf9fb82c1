package port

import (
	"context"

	"github.com/google/uuid"

	"khata/internal/domain"
)

// TenantSettingsRepository defines the contract for tenant GST configuration.
type TenantSettingsRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*domain.TenantSettings, error)
	Upsert(ctx context.Context, settings *domain.TenantSettings) error
}

// DutyLedgerRepository defines the contract for the tenant duty/tax master.
// All query methods include tenantID to enforce tenant isolation at the data layer.
type DutyLedgerRepository interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.DutyLedger, error)
	Upsert(ctx context.Context, ledger *domain.DutyLedger) error
}

// StockCatalog defines the contract for stock item lookups and upserts.
type StockCatalog interface {
	FindByNames(ctx context.Context, tenantID uuid.UUID, names []string) ([]domain.StockItem, error)
	Upsert(ctx context.Context, tenantID uuid.UUID, docType domain.DocType, movements []domain.StockMovement) error
}

// PartyDirectory defines the contract for vendor/customer lookups.
type PartyDirectory interface {
	GetByID(ctx context.Context, tenantID, partyID uuid.UUID) (*domain.Party, error)
}

// CashbookRepository defines the contract for cashbook entries tied to documents.
type CashbookRepository interface {
	UpsertForDocument(ctx context.Context, entry *domain.CashbookEntry) error
	DeleteForDocument(ctx context.Context, tenantID, documentID uuid.UUID) error
}
