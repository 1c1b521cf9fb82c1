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

const dutyLedgerColumns = `id, tenant_id, name, kind, gst_head, calc_method, rate_percent,
	fixed_amount, apply_on, is_default, sort_order, created_at, updated_at`

type dutyLedgerRepo struct {
	db *sqlx.DB
}

// NewDutyLedgerRepo creates a new PostgreSQL-backed DutyLedgerRepository.
func NewDutyLedgerRepo(db *sqlx.DB) port.DutyLedgerRepository {
	return &dutyLedgerRepo{db: db}
}

func (r *dutyLedgerRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.DutyLedger, error) {
	var ledgers []domain.DutyLedger
	err := r.db.SelectContext(ctx, &ledgers,
		`SELECT `+dutyLedgerColumns+` FROM duty_ledgers WHERE tenant_id = $1 ORDER BY sort_order, name`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("dutyLedgerRepo.ListByTenant: %w", err)
	}
	return ledgers, nil
}

func (r *dutyLedgerRepo) Upsert(ctx context.Context, l *domain.DutyLedger) error {
	now := time.Now().UTC()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	query := `INSERT INTO duty_ledgers (` + dutyLedgerColumns + `)
		VALUES (:id, :tenant_id, :name, :kind, :gst_head, :calc_method, :rate_percent,
			:fixed_amount, :apply_on, :is_default, :sort_order, :created_at, :updated_at)
		ON CONFLICT (tenant_id, name) DO UPDATE SET
			kind = EXCLUDED.kind, gst_head = EXCLUDED.gst_head, calc_method = EXCLUDED.calc_method,
			rate_percent = EXCLUDED.rate_percent, fixed_amount = EXCLUDED.fixed_amount,
			apply_on = EXCLUDED.apply_on, is_default = EXCLUDED.is_default,
			sort_order = EXCLUDED.sort_order, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, l); err != nil {
		return fmt.Errorf("dutyLedgerRepo.Upsert: %w", err)
	}
	return nil
}
