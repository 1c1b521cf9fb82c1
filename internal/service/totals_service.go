package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"khata/internal/domain"
	"khata/internal/metrics"
	"khata/internal/port"
	"khata/internal/totals"
)

// ChangeInput is the wire form of a totals change.
type ChangeInput struct {
	Kind   string        `json:"kind"`
	DutyID uuid.UUID     `json:"duty_id"`
	Value  domain.Number `json:"value"`
}

// PreviewInput is a complete document state to recompute without storing it.
// A nil GST uses the tenant's configuration.
type PreviewInput struct {
	LineItems       []domain.LineItem `json:"line_items"`
	Duties          []domain.DutyLine `json:"duties"`
	GST             *domain.GSTConfig `json:"gst"`
	TaxableSubtotal domain.Number     `json:"taxable_subtotal"`
	GSTPool         domain.Number     `json:"gst_pool"`
	Change          ChangeInput       `json:"change"`
}

// PreviewResult carries the priced line items alongside the totals.
type PreviewResult struct {
	LineItems []domain.LineItem     `json:"line_items"`
	Totals    domain.DocumentTotals `json:"totals"`
}

// TotalsService exposes the engine and the duty master without a draft.
type TotalsService interface {
	Preview(ctx context.Context, tenantID uuid.UUID, input PreviewInput) (*PreviewResult, error)
	ListDutyLedgers(ctx context.Context, tenantID uuid.UUID) ([]domain.DutyLedger, error)
}

type totalsService struct {
	settings port.TenantSettingsRepository
	ledgers  port.DutyLedgerRepository
	metrics  *metrics.Recorder
}

// NewTotalsService creates a new TotalsService implementation.
func NewTotalsService(settings port.TenantSettingsRepository, ledgers port.DutyLedgerRepository, rec *metrics.Recorder) TotalsService {
	return &totalsService{settings: settings, ledgers: ledgers, metrics: rec}
}

func (s *totalsService) Preview(ctx context.Context, tenantID uuid.UUID, input PreviewInput) (*PreviewResult, error) {
	kind, ok := totals.ParseChangeKind(input.Change.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidChange, input.Change.Kind)
	}
	change := totals.Change{Kind: kind, DutyID: input.Change.DutyID, Value: input.Change.Value.Decimal}

	var gst domain.GSTConfig
	if input.GST != nil {
		gst = domain.GSTConfig{Enabled: input.GST.Enabled, Type: input.GST.Type.Normalize()}
	} else {
		cfg, err := loadGSTConfig(ctx, s.settings, tenantID)
		if err != nil {
			return nil, err
		}
		gst = cfg
	}

	start := time.Now()
	items := totals.PriceLineItems(input.LineItems)
	t := totals.Recompute(totals.Input{
		LineItems:       items,
		Duties:          input.Duties,
		GST:             gst,
		TaxableSubtotal: input.TaxableSubtotal.Decimal,
		GSTPool:         input.GSTPool.Decimal,
	}, change)
	s.metrics.ObserveRecompute(kind.String(), time.Since(start))

	return &PreviewResult{LineItems: items, Totals: t}, nil
}

func (s *totalsService) ListDutyLedgers(ctx context.Context, tenantID uuid.UUID) ([]domain.DutyLedger, error) {
	ledgers, err := s.ledgers.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if ledgers == nil {
		ledgers = []domain.DutyLedger{}
	}
	return ledgers, nil
}
