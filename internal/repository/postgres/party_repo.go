package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khata/internal/domain"
	"khata/internal/port"
)

type partyRepo struct {
	db *sqlx.DB
}

// NewPartyRepo creates a new PostgreSQL-backed PartyDirectory.
func NewPartyRepo(db *sqlx.DB) port.PartyDirectory {
	return &partyRepo{db: db}
}

func (r *partyRepo) GetByID(ctx context.Context, tenantID, partyID uuid.UUID) (*domain.Party, error) {
	var p domain.Party
	err := r.db.GetContext(ctx, &p,
		`SELECT id, tenant_id, name, gstin, state, is_vendor, created_at
		 FROM parties WHERE id = $1 AND tenant_id = $2`, partyID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPartyNotFound
		}
		return nil, fmt.Errorf("partyRepo.GetByID: %w", err)
	}
	return &p, nil
}
