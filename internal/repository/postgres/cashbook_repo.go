package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khata/internal/domain"
	"khata/internal/port"
)

type cashbookRepo struct {
	db *sqlx.DB
}

// NewCashbookRepo creates a new PostgreSQL-backed CashbookRepository.
func NewCashbookRepo(db *sqlx.DB) port.CashbookRepository {
	return &cashbookRepo{db: db}
}

// UpsertForDocument keeps exactly one entry per document.
func (r *cashbookRepo) UpsertForDocument(ctx context.Context, e *domain.CashbookEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now().UTC()
	query := `INSERT INTO cashbook_entries (id, tenant_id, document_id, entry_date, direction, amount, narration, created_at)
		VALUES (:id, :tenant_id, :document_id, :entry_date, :direction, :amount, :narration, :created_at)
		ON CONFLICT (document_id) DO UPDATE SET
			entry_date = EXCLUDED.entry_date, direction = EXCLUDED.direction,
			amount = EXCLUDED.amount, narration = EXCLUDED.narration`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("cashbookRepo.UpsertForDocument: %w", err)
	}
	return nil
}

func (r *cashbookRepo) DeleteForDocument(ctx context.Context, tenantID, documentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM cashbook_entries WHERE tenant_id = $1 AND document_id = $2", tenantID, documentID)
	if err != nil {
		return fmt.Errorf("cashbookRepo.DeleteForDocument: %w", err)
	}
	return nil
}
