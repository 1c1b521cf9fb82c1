package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"khata/internal/domain"
	"khata/internal/logging"
	"khata/internal/metrics"
	"khata/internal/port"
	"khata/internal/totals"
)

// OpenDraftInput is the DTO for starting a new document.
type OpenDraftInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	DocType  domain.DocType
	DutyIDs  []uuid.UUID
}

// UpdateHeaderInput is the DTO for editing a draft's identity fields.
// Nil fields are left unchanged.
type UpdateHeaderInput struct {
	Number     *string
	DocDate    *time.Time
	PartyID    *uuid.UUID
	ClearParty bool
	PartyName  *string
	Paid       *bool
	Notes      *string
}

// OverrideTarget names the value a user typed over.
type OverrideTarget string

const (
	OverrideTaxableSubtotal OverrideTarget = "taxable_subtotal"
	OverrideGSTTotal        OverrideTarget = "gst_total"
	OverrideDuty            OverrideTarget = "duty"
)

// OverrideInput is the DTO for a manual override.
type OverrideInput struct {
	Target OverrideTarget
	DutyID uuid.UUID
	Value  domain.Number
}

// DraftService manages document editing sessions and feeds every edit through
// the totals engine.
type DraftService interface {
	Open(ctx context.Context, input OpenDraftInput) (*domain.Draft, error)
	OpenDocument(ctx context.Context, tenantID, userID, documentID uuid.UUID) (*domain.Draft, error)
	Get(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error)
	UpdateLineItems(ctx context.Context, tenantID, draftID uuid.UUID, items []domain.LineItem) (*domain.Draft, error)
	UpdateHeader(ctx context.Context, tenantID, draftID uuid.UUID, input UpdateHeaderInput) (*domain.Draft, error)
	Override(ctx context.Context, tenantID, draftID uuid.UUID, input OverrideInput) (*domain.Draft, error)
	SetDuties(ctx context.Context, tenantID, draftID uuid.UUID, dutyIDs []uuid.UUID) (*domain.Draft, error)
	Reset(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error)
	Submit(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Document, error)
	Discard(ctx context.Context, tenantID, draftID uuid.UUID) error
}

type draftService struct {
	settings  port.TenantSettingsRepository
	ledgers   port.DutyLedgerRepository
	stock     port.StockCatalog
	parties   port.PartyDirectory
	docs      port.DocumentRepository
	cashbook  port.CashbookRepository
	drafts    port.DraftStore
	publisher port.EventPublisher
	metrics   *metrics.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewDraftService creates a new DraftService implementation. rec may be nil.
func NewDraftService(
	settings port.TenantSettingsRepository,
	ledgers port.DutyLedgerRepository,
	stock port.StockCatalog,
	parties port.PartyDirectory,
	docs port.DocumentRepository,
	cashbook port.CashbookRepository,
	drafts port.DraftStore,
	publisher port.EventPublisher,
	rec *metrics.Recorder,
	logger *zap.Logger,
) DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &draftService{
		settings:  settings,
		ledgers:   ledgers,
		stock:     stock,
		parties:   parties,
		docs:      docs,
		cashbook:  cashbook,
		drafts:    drafts,
		publisher: publisher,
		metrics:   rec,
		logger:    logger.Named("draft"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *draftService) Open(ctx context.Context, input OpenDraftInput) (*domain.Draft, error) {
	if !input.DocType.Valid() {
		return nil, domain.ErrInvalidDocType
	}
	gst, err := loadGSTConfig(ctx, s.settings, input.TenantID)
	if err != nil {
		return nil, err
	}
	master, err := s.ledgers.ListByTenant(ctx, input.TenantID)
	if err != nil {
		return nil, fmt.Errorf("draft.Open ledgers: %w", err)
	}
	duties, err := selectDuties(master, nil, input.DutyIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	draft := &domain.Draft{
		ID:        uuid.New(),
		TenantID:  input.TenantID,
		UserID:    input.UserID,
		DocType:   input.DocType,
		DocDate:   now.Truncate(24 * time.Hour),
		GST:       gst,
		LineItems: []domain.LineItem{},
		Duties:    duties,
		CreatedAt: now,
	}
	s.recompute(draft, totals.NoChange())
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	s.log(ctx).Info("draft opened",
		zap.Stringer("draft_id", draft.ID),
		zap.String("doc_type", string(draft.DocType)),
		zap.Int("duties", len(draft.Duties)))
	return draft, nil
}

// OpenDocument starts an edit session on a stored document. The stored totals
// are a cache of the last submit and are discarded: everything is recomputed
// from the line items with every override back to automatic.
func (s *draftService) OpenDocument(ctx context.Context, tenantID, userID, documentID uuid.UUID) (*domain.Draft, error) {
	doc, err := s.docs.GetByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	duties := make([]domain.DutyLine, len(doc.Duties))
	copy(duties, doc.Duties)
	for i := range duties {
		duties[i].ManuallyOverridden = false
		duties[i].Amount = decimal.Zero
	}
	items := make([]domain.LineItem, len(doc.LineItems))
	copy(items, doc.LineItems)

	now := s.now()
	docID := doc.ID
	draft := &domain.Draft{
		ID:         uuid.New(),
		TenantID:   tenantID,
		UserID:     userID,
		DocumentID: &docID,
		DocType:    doc.DocType,
		Number:     doc.Number,
		DocDate:    doc.DocDate,
		PartyID:    doc.PartyID,
		PartyName:  doc.PartyName,
		Paid:       doc.Paid,
		Notes:      doc.Notes,
		GST:        domain.GSTConfig{Enabled: doc.GSTEnabled, Type: doc.GSTType.Normalize()},
		LineItems:  items,
		Duties:     duties,
		CreatedAt:  now,
	}
	s.recompute(draft, totals.NoChange())
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	if !draft.Totals.GrandTotal.Equal(doc.GrandTotal) {
		s.log(ctx).Info("stored totals differ from recomputation",
			zap.Stringer("document_id", doc.ID),
			zap.Stringer("stored", doc.GrandTotal),
			zap.Stringer("recomputed", draft.Totals.GrandTotal))
	}
	return draft, nil
}

func (s *draftService) Get(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error) {
	return s.drafts.Get(ctx, tenantID, draftID)
}

func (s *draftService) UpdateLineItems(ctx context.Context, tenantID, draftID uuid.UUID, items []domain.LineItem) (*domain.Draft, error) {
	draft, err := s.drafts.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.LineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
		out[i].Name = strings.TrimSpace(out[i].Name)
	}
	s.prefillFromStock(ctx, draft, out)

	draft.LineItems = out
	s.recompute(draft, totals.LineItemsEdited())
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// prefillFromStock fills rate, tax rate and HSN code from the catalog for items
// whose rate was left blank. Catalog failures only cost the convenience.
func (s *draftService) prefillFromStock(ctx context.Context, draft *domain.Draft, items []domain.LineItem) {
	var names []string
	for i := range items {
		if items[i].Name != "" && items[i].Rate.IsZero() {
			names = append(names, items[i].Name)
		}
	}
	if len(names) == 0 {
		return
	}
	catalog, err := s.stock.FindByNames(ctx, draft.TenantID, names)
	if err != nil {
		s.log(ctx).Warn("stock lookup failed", zap.Stringer("draft_id", draft.ID), zap.Error(err))
		return
	}
	byName := make(map[string]*domain.StockItem, len(catalog))
	for i := range catalog {
		byName[strings.ToLower(catalog[i].Name)] = &catalog[i]
	}
	for i := range items {
		it := &items[i]
		entry, ok := byName[strings.ToLower(it.Name)]
		if !ok || !it.Rate.IsZero() {
			continue
		}
		it.Rate = domain.NumberOf(entry.RateFor(draft.DocType))
		if it.TaxRatePercent.IsZero() {
			it.TaxRatePercent = domain.NumberOf(entry.TaxRatePercent)
		}
		if it.HSNCode == "" {
			it.HSNCode = entry.HSNCode
		}
	}
}

// UpdateHeader edits identity fields. Switching the party re-derives the
// totals from the line items; duty overrides stay in place.
func (s *draftService) UpdateHeader(ctx context.Context, tenantID, draftID uuid.UUID, input UpdateHeaderInput) (*domain.Draft, error) {
	draft, err := s.drafts.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}

	if input.Number != nil {
		draft.Number = strings.TrimSpace(*input.Number)
	}
	if input.DocDate != nil {
		draft.DocDate = *input.DocDate
	}
	if input.Notes != nil {
		draft.Notes = *input.Notes
	}
	if input.Paid != nil {
		draft.Paid = *input.Paid
	}

	partySwitched := false
	switch {
	case input.PartyID != nil:
		if draft.PartyID == nil || *draft.PartyID != *input.PartyID {
			party, err := s.parties.GetByID(ctx, tenantID, *input.PartyID)
			if err != nil {
				return nil, err
			}
			id := party.ID
			draft.PartyID = &id
			draft.PartyName = party.Name
			partySwitched = true
		}
	case input.ClearParty:
		partySwitched = draft.PartyID != nil
		draft.PartyID = nil
		draft.PartyName = ""
	}
	if input.PartyName != nil && draft.PartyID == nil {
		draft.PartyName = strings.TrimSpace(*input.PartyName)
	}

	if partySwitched {
		s.recompute(draft, totals.NoChange())
	}
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *draftService) Override(ctx context.Context, tenantID, draftID uuid.UUID, input OverrideInput) (*domain.Draft, error) {
	var change totals.Change
	switch input.Target {
	case OverrideTaxableSubtotal:
		change = totals.OverrideTaxableSubtotal(input.Value.Decimal)
	case OverrideGSTTotal:
		change = totals.OverrideGSTTotal(input.Value.Decimal)
	case OverrideDuty:
		if input.DutyID == uuid.Nil {
			return nil, fmt.Errorf("%w: duty_id is required", domain.ErrInvalidOverride)
		}
		change = totals.OverrideDuty(input.DutyID, input.Value.Decimal)
	default:
		return nil, domain.ErrInvalidOverride
	}

	draft, err := s.drafts.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	s.recompute(draft, change)
	s.metrics.IncOverride(string(input.Target))
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SetDuties re-selects the optional ledgers. Defaults are always present and
// lines already on the draft keep their snapshot and override state.
func (s *draftService) SetDuties(ctx context.Context, tenantID, draftID uuid.UUID, dutyIDs []uuid.UUID) (*domain.Draft, error) {
	draft, err := s.drafts.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	master, err := s.ledgers.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("draft.SetDuties ledgers: %w", err)
	}
	duties, err := selectDuties(master, draft.Duties, dutyIDs)
	if err != nil {
		return nil, err
	}

	draft.Duties = duties
	s.recompute(draft, totals.NoChange())
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Reset returns every override to automatic and recomputes from the items.
func (s *draftService) Reset(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error) {
	draft, err := s.drafts.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	for i := range draft.Duties {
		draft.Duties[i].ManuallyOverridden = false
	}
	s.recompute(draft, totals.NoChange())
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Submit stores the draft as a document with the totals the user last saw.
// Once the document is stored, stock, cashbook and event failures are logged
// and do not fail the call.
func (s *draftService) Submit(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Document, error) {
	draft, err := s.drafts.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	if missing := draft.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDraftIncomplete, strings.Join(missing, ", "))
	}

	var previous domain.LineItemList
	doc := &domain.Document{}
	if draft.DocumentID != nil {
		existing, err := s.docs.GetByID(ctx, tenantID, *draft.DocumentID)
		if err != nil {
			return nil, err
		}
		previous = existing.LineItems
		doc = existing
	} else {
		doc.ID = uuid.New()
		doc.TenantID = tenantID
		doc.DocType = draft.DocType
		doc.CreatedBy = draft.UserID
	}
	wasPaid := draft.DocumentID != nil && doc.Paid

	doc.Number = draft.Number
	doc.DocDate = draft.DocDate
	doc.PartyID = draft.PartyID
	doc.PartyName = draft.PartyName
	doc.Paid = draft.Paid
	doc.Notes = draft.Notes
	doc.GSTEnabled = draft.GST.Enabled
	doc.GSTType = draft.GST.Type.Normalize()
	doc.LineItems = domain.LineItemList(draft.LineItems)
	doc.Duties = domain.DutyLineList(draft.Duties)
	doc.ApplyTotals(&draft.Totals)

	if draft.DocumentID != nil {
		err = s.docs.Update(ctx, doc)
	} else {
		err = s.docs.Create(ctx, doc)
	}
	if err != nil {
		s.metrics.IncSubmit(string(draft.DocType), "error")
		return nil, err
	}

	s.syncStock(ctx, doc, previous)
	s.syncCashbook(ctx, doc, wasPaid)
	if err := s.publisher.PublishDocumentSubmitted(ctx, doc); err != nil {
		s.sideEffectFailed(ctx, "event", doc, err)
	}
	if err := s.drafts.Delete(ctx, tenantID, draftID); err != nil {
		s.sideEffectFailed(ctx, "draft_cleanup", doc, err)
	}

	s.metrics.IncSubmit(string(doc.DocType), "ok")
	s.log(ctx).Info("document submitted",
		zap.Stringer("document_id", doc.ID),
		zap.String("number", doc.Number),
		zap.Stringer("grand_total", doc.GrandTotal))
	return doc, nil
}

func (s *draftService) Discard(ctx context.Context, tenantID, draftID uuid.UUID) error {
	return s.drafts.Delete(ctx, tenantID, draftID)
}

// syncStock moves the catalog by the difference between the submitted items
// and the items of the previous submission of the same document.
func (s *draftService) syncStock(ctx context.Context, doc *domain.Document, previous domain.LineItemList) {
	movements := stockMovements(doc.LineItems, previous)
	if len(movements) == 0 {
		return
	}
	if err := s.stock.Upsert(ctx, doc.TenantID, doc.DocType, movements); err != nil {
		s.sideEffectFailed(ctx, "stock", doc, err)
	}
}

func (s *draftService) syncCashbook(ctx context.Context, doc *domain.Document, wasPaid bool) {
	if !doc.Paid {
		if wasPaid {
			if err := s.cashbook.DeleteForDocument(ctx, doc.TenantID, doc.ID); err != nil {
				s.sideEffectFailed(ctx, "cashbook", doc, err)
			}
		}
		return
	}
	entry := &domain.CashbookEntry{
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		EntryDate:  doc.DocDate,
		Direction:  domain.CashDirectionFor(doc.DocType),
		Amount:     doc.GrandTotal,
		Narration:  cashbookNarration(doc),
	}
	if err := s.cashbook.UpsertForDocument(ctx, entry); err != nil {
		s.sideEffectFailed(ctx, "cashbook", doc, err)
	}
}

func (s *draftService) sideEffectFailed(ctx context.Context, step string, doc *domain.Document, err error) {
	s.metrics.IncSideEffectFailure(step)
	s.log(ctx).Error("submit side effect failed",
		zap.String("step", step),
		zap.Stringer("document_id", doc.ID),
		zap.Error(err))
}

func (s *draftService) recompute(draft *domain.Draft, change totals.Change) {
	start := time.Now()
	totals.Apply(draft, change)
	s.metrics.ObserveRecompute(change.Kind.String(), time.Since(start))
}

func (s *draftService) save(ctx context.Context, draft *domain.Draft) error {
	draft.Revision++
	draft.UpdatedAt = s.now()
	if err := s.drafts.Save(ctx, draft); err != nil {
		return fmt.Errorf("draft.save: %w", err)
	}
	return nil
}

func (s *draftService) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, s.logger)
}

// loadGSTConfig reads the tenant's GST mode. Tenants without a settings row
// get intra-state GST.
func loadGSTConfig(ctx context.Context, repo port.TenantSettingsRepository, tenantID uuid.UUID) (domain.GSTConfig, error) {
	settings, err := repo.Get(ctx, tenantID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.GSTConfig{Enabled: true, Type: domain.GSTTypeCGSTSGST}, nil
	}
	if err != nil {
		return domain.GSTConfig{}, fmt.Errorf("loading tenant settings: %w", err)
	}
	return settings.GST(), nil
}

// selectDuties builds the duty lines for a draft: every default ledger plus
// the selected ones, in master order. Lines already on the draft are reused;
// document-only lines survive when selected.
func selectDuties(master []domain.DutyLedger, current []domain.DutyLine, selected []uuid.UUID) ([]domain.DutyLine, error) {
	want := make(map[uuid.UUID]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}
	existing := make(map[uuid.UUID]domain.DutyLine, len(current))
	for _, d := range current {
		existing[d.ID] = d
	}

	out := make([]domain.DutyLine, 0, len(master))
	placed := make(map[uuid.UUID]bool, len(master))
	for i := range master {
		l := &master[i]
		if !l.IsDefault && !want[l.ID] {
			continue
		}
		if line, ok := existing[l.ID]; ok {
			out = append(out, line)
		} else {
			out = append(out, domain.DutyLineFromLedger(l))
		}
		placed[l.ID] = true
	}
	for _, d := range current {
		if want[d.ID] && !placed[d.ID] {
			d.Source = domain.DutySourceDocument
			out = append(out, d)
			placed[d.ID] = true
		}
	}
	for _, id := range selected {
		if !placed[id] {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDutyLedger, id)
		}
	}
	return out, nil
}

func stockMovements(items, previous domain.LineItemList) []domain.StockMovement {
	type acc struct {
		m domain.StockMovement
	}
	byName := map[string]*acc{}
	var order []string
	touch := func(name string) *acc {
		key := strings.ToLower(strings.TrimSpace(name))
		a, ok := byName[key]
		if !ok {
			a = &acc{m: domain.StockMovement{Name: strings.TrimSpace(name), QuantityDelta: decimal.Zero}}
			byName[key] = a
			order = append(order, key)
		}
		return a
	}
	for _, it := range previous {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		a := touch(it.Name)
		a.m.QuantityDelta = a.m.QuantityDelta.Sub(it.Quantity.Decimal)
	}
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		a := touch(it.Name)
		a.m.QuantityDelta = a.m.QuantityDelta.Add(it.Quantity.Decimal)
		a.m.HSNCode = it.HSNCode
		a.m.Rate = it.Rate.Decimal
		a.m.TaxRatePercent = it.TaxRatePercent.Decimal
	}

	out := make([]domain.StockMovement, 0, len(order))
	for _, key := range order {
		a := byName[key]
		if a.m.QuantityDelta.IsZero() && a.m.Rate.IsZero() {
			continue
		}
		out = append(out, a.m)
	}
	return out
}

func cashbookNarration(doc *domain.Document) string {
	label := "Sales invoice"
	if doc.DocType == domain.DocTypePurchaseBill {
		label = "Purchase bill"
	}
	return fmt.Sprintf("%s %s, %s", label, doc.Number, doc.PartyName)
}
