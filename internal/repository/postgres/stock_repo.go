package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khata/internal/domain"
	"khata/internal/port"
)

type stockRepo struct {
	db *sqlx.DB
}

// NewStockRepo creates a new PostgreSQL-backed StockCatalog.
func NewStockRepo(db *sqlx.DB) port.StockCatalog {
	return &stockRepo{db: db}
}

// FindByNames matches catalog entries case-insensitively.
func (r *stockRepo) FindByNames(ctx context.Context, tenantID uuid.UUID, names []string) ([]domain.StockItem, error) {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			lowered = append(lowered, n)
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT id, tenant_id, name, hsn_code, sales_rate, purchase_rate, tax_rate_percent,
			quantity_on_hand, updated_at
		 FROM stock_items WHERE tenant_id = ? AND lower(name) IN (?)`, tenantID, lowered)
	if err != nil {
		return nil, fmt.Errorf("stockRepo.FindByNames build: %w", err)
	}
	var items []domain.StockItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("stockRepo.FindByNames: %w", err)
	}
	return items, nil
}

// Upsert records the latest rate for each item and moves quantity on hand:
// purchases add stock, sales remove it. A zero rate leaves the stored rates
// alone, so a line removed on edit only moves quantity.
func (r *stockRepo) Upsert(ctx context.Context, tenantID uuid.UUID, docType domain.DocType, movements []domain.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rateColumn := "sales_rate"
	if docType == domain.DocTypePurchaseBill {
		rateColumn = "purchase_rate"
	}
	query := fmt.Sprintf(`INSERT INTO stock_items (id, tenant_id, name, hsn_code, %[1]s, tax_rate_percent, quantity_on_hand, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, lower(name)) DO UPDATE SET
			hsn_code = CASE WHEN EXCLUDED.hsn_code <> '' THEN EXCLUDED.hsn_code ELSE stock_items.hsn_code END,
			%[1]s = CASE WHEN EXCLUDED.%[1]s <> 0 THEN EXCLUDED.%[1]s ELSE stock_items.%[1]s END,
			tax_rate_percent = CASE WHEN EXCLUDED.%[1]s <> 0 THEN EXCLUDED.tax_rate_percent ELSE stock_items.tax_rate_percent END,
			quantity_on_hand = stock_items.quantity_on_hand + EXCLUDED.quantity_on_hand,
			updated_at = EXCLUDED.updated_at`, rateColumn)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("stockRepo.Upsert begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, m := range movements {
		delta := m.QuantityDelta
		if docType == domain.DocTypeSalesInvoice {
			delta = delta.Neg()
		}
		if _, err := tx.ExecContext(ctx, query,
			uuid.New(), tenantID, strings.TrimSpace(m.Name), m.HSNCode, m.Rate, m.TaxRatePercent, delta, now); err != nil {
			return fmt.Errorf("stockRepo.Upsert %q: %w", m.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("stockRepo.Upsert commit: %w", err)
	}
	return nil
}
