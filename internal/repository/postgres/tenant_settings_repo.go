package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khata/internal/domain"
	"khata/internal/port"
)

type tenantSettingsRepo struct {
	db *sqlx.DB
}

// NewTenantSettingsRepo creates a new PostgreSQL-backed TenantSettingsRepository.
func NewTenantSettingsRepo(db *sqlx.DB) port.TenantSettingsRepository {
	return &tenantSettingsRepo{db: db}
}

func (r *tenantSettingsRepo) Get(ctx context.Context, tenantID uuid.UUID) (*domain.TenantSettings, error) {
	var s domain.TenantSettings
	err := r.db.GetContext(ctx, &s,
		"SELECT tenant_id, gst_enabled, gst_type, updated_at FROM tenant_settings WHERE tenant_id = $1", tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("tenantSettingsRepo.Get: %w", err)
	}
	return &s, nil
}

func (r *tenantSettingsRepo) Upsert(ctx context.Context, s *domain.TenantSettings) error {
	s.UpdatedAt = time.Now().UTC()
	s.GSTType = s.GSTType.Normalize()
	query := `INSERT INTO tenant_settings (tenant_id, gst_enabled, gst_type, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id) DO UPDATE
		SET gst_enabled = EXCLUDED.gst_enabled, gst_type = EXCLUDED.gst_type, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, s.TenantID, s.GSTEnabled, s.GSTType, s.UpdatedAt); err != nil {
		return fmt.Errorf("tenantSettingsRepo.Upsert: %w", err)
	}
	return nil
}
