package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"khata/internal/domain"
	"khata/internal/metrics"
	"khata/internal/service"
	"khata/internal/totals"
	"khata/mocks"
)

type draftDeps struct {
	settings  *mocks.MockTenantSettingsRepo
	ledgers   *mocks.MockDutyLedgerRepo
	stock     *mocks.MockStockCatalog
	parties   *mocks.MockPartyDirectory
	docs      *mocks.MockDocumentRepo
	cashbook  *mocks.MockCashbookRepo
	drafts    *mocks.MockDraftStore
	publisher *mocks.MockEventPublisher
	metrics   *metrics.Recorder
}

func newDraftService() (service.DraftService, *draftDeps) {
	d := &draftDeps{
		settings:  new(mocks.MockTenantSettingsRepo),
		ledgers:   new(mocks.MockDutyLedgerRepo),
		stock:     new(mocks.MockStockCatalog),
		parties:   new(mocks.MockPartyDirectory),
		docs:      new(mocks.MockDocumentRepo),
		cashbook:  new(mocks.MockCashbookRepo),
		drafts:    new(mocks.MockDraftStore),
		publisher: new(mocks.MockEventPublisher),
		metrics:   metrics.New(),
	}
	svc := service.NewDraftService(d.settings, d.ledgers, d.stock, d.parties, d.docs,
		d.cashbook, d.drafts, d.publisher, d.metrics, nil)
	return svc, d
}

func num(s string) domain.Number {
	return domain.ParseNumber(s)
}

func decEq(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func gstHead(h domain.GSTHead) *domain.GSTHead { return &h }

// masterLedgers returns default CGST and SGST lines plus an optional 10% freight charge.
func masterLedgers(tenantID uuid.UUID) []domain.DutyLedger {
	return []domain.DutyLedger{
		{ID: uuid.New(), TenantID: tenantID, Name: "CGST", Kind: domain.DutyKindGSTComponent, GSTHead: gstHead(domain.GSTHeadCGST),
			CalcMethod: domain.CalcMethodPercentage, ApplyOn: domain.ApplyOnTaxableSubtotal, IsDefault: true, SortOrder: 1},
		{ID: uuid.New(), TenantID: tenantID, Name: "SGST", Kind: domain.DutyKindGSTComponent, GSTHead: gstHead(domain.GSTHeadSGST),
			CalcMethod: domain.CalcMethodPercentage, ApplyOn: domain.ApplyOnTaxableSubtotal, IsDefault: true, SortOrder: 2},
		{ID: uuid.New(), TenantID: tenantID, Name: "Freight", Kind: domain.DutyKindCharge,
			CalcMethod: domain.CalcMethodPercentage, RatePercent: decimal.NewFromInt(10), ApplyOn: domain.ApplyOnTaxableSubtotal, SortOrder: 3},
	}
}

// storedDraft builds an intra-state draft carrying CGST, SGST and freight lines.
func storedDraft(tenantID uuid.UUID) (*domain.Draft, []domain.DutyLedger) {
	master := masterLedgers(tenantID)
	duties := make([]domain.DutyLine, 0, len(master))
	for i := range master {
		duties = append(duties, domain.DutyLineFromLedger(&master[i]))
	}
	return &domain.Draft{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    uuid.New(),
		DocType:   domain.DocTypeSalesInvoice,
		DocDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		GST:       domain.GSTConfig{Enabled: true, Type: domain.GSTTypeCGSTSGST},
		LineItems: []domain.LineItem{},
		Duties:    duties,
	}, master
}

func widget(qty string) domain.LineItem {
	return domain.LineItem{ID: "w1", Name: "Widget", Quantity: num(qty), Rate: num("100"), TaxRatePercent: num("18")}
}

// --- Open ---

func TestDraftService_Open_Success(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	master := masterLedgers(tenantID)

	d.settings.On("Get", mock.Anything, tenantID).Return(nil, domain.ErrNotFound)
	d.ledgers.On("ListByTenant", mock.Anything, tenantID).Return(master, nil)
	d.drafts.On("Save", mock.Anything, mock.AnythingOfType("*domain.Draft")).Return(nil)

	draft, err := svc.Open(context.Background(), service.OpenDraftInput{
		TenantID: tenantID,
		UserID:   uuid.New(),
		DocType:  domain.DocTypeSalesInvoice,
		DutyIDs:  []uuid.UUID{master[2].ID},
	})

	require.NoError(t, err)
	assert.Equal(t, tenantID, draft.TenantID)
	assert.True(t, draft.GST.Enabled)
	assert.Equal(t, domain.GSTTypeCGSTSGST, draft.GST.Type)
	require.Len(t, draft.Duties, 3)
	assert.Equal(t, "Freight", draft.Duties[2].Name)
	assert.Equal(t, domain.DutySourceMaster, draft.Duties[2].Source)
	assert.Equal(t, 1, draft.Revision)
	assert.True(t, draft.Totals.GrandTotal.IsZero())
	d.drafts.AssertExpectations(t)
}

func TestDraftService_Open_DefaultsOnly(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()

	d.settings.On("Get", mock.Anything, tenantID).Return(&domain.TenantSettings{
		TenantID: tenantID, GSTEnabled: true, GSTType: domain.GSTTypeIGST,
	}, nil)
	d.ledgers.On("ListByTenant", mock.Anything, tenantID).Return(masterLedgers(tenantID), nil)
	d.drafts.On("Save", mock.Anything, mock.Anything).Return(nil)

	draft, err := svc.Open(context.Background(), service.OpenDraftInput{
		TenantID: tenantID,
		DocType:  domain.DocTypePurchaseBill,
	})

	require.NoError(t, err)
	assert.Len(t, draft.Duties, 2)
	assert.Equal(t, domain.GSTTypeIGST, draft.GST.Type)
}

func TestDraftService_Open_InvalidDocType(t *testing.T) {
	svc, d := newDraftService()

	draft, err := svc.Open(context.Background(), service.OpenDraftInput{
		TenantID: uuid.New(),
		DocType:  "quotation",
	})

	assert.Nil(t, draft)
	assert.ErrorIs(t, err, domain.ErrInvalidDocType)
	d.drafts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDraftService_Open_UnknownDuty(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()

	d.settings.On("Get", mock.Anything, tenantID).Return(nil, domain.ErrNotFound)
	d.ledgers.On("ListByTenant", mock.Anything, tenantID).Return(masterLedgers(tenantID), nil)

	draft, err := svc.Open(context.Background(), service.OpenDraftInput{
		TenantID: tenantID,
		DocType:  domain.DocTypeSalesInvoice,
		DutyIDs:  []uuid.UUID{uuid.New()},
	})

	assert.Nil(t, draft)
	assert.ErrorIs(t, err, domain.ErrUnknownDutyLedger)
}

func TestDraftService_Open_SettingsFailure(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()

	d.settings.On("Get", mock.Anything, tenantID).Return(nil, errors.New("connection refused"))

	_, err := svc.Open(context.Background(), service.OpenDraftInput{TenantID: tenantID, DocType: domain.DocTypeSalesInvoice})

	assert.Error(t, err)
	d.ledgers.AssertNotCalled(t, "ListByTenant", mock.Anything, mock.Anything)
}

// --- OpenDocument ---

func TestDraftService_OpenDocument_RecomputesAndClearsOverrides(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	base, _ := storedDraft(tenantID)

	duties := base.Duties
	duties[0].ManuallyOverridden = true
	duties[0].Amount = decimal.NewFromInt(500)
	doc := &domain.Document{
		ID:         uuid.New(),
		TenantID:   tenantID,
		DocType:    domain.DocTypeSalesInvoice,
		Number:     "INV-7",
		PartyName:  "Acme Traders",
		GSTEnabled: true,
		GSTType:    domain.GSTTypeCGSTSGST,
		LineItems:  domain.LineItemList{widget("10")},
		Duties:     domain.DutyLineList(duties),
		GrandTotal: decimal.NewFromInt(9999),
	}
	d.docs.On("GetByID", mock.Anything, tenantID, doc.ID).Return(doc, nil)
	d.drafts.On("Save", mock.Anything, mock.Anything).Return(nil)

	draft, err := svc.OpenDocument(context.Background(), tenantID, uuid.New(), doc.ID)

	require.NoError(t, err)
	require.NotNil(t, draft.DocumentID)
	assert.Equal(t, doc.ID, *draft.DocumentID)
	assert.Equal(t, "INV-7", draft.Number)
	for _, line := range draft.Duties {
		assert.False(t, line.ManuallyOverridden, line.Name)
	}
	// 1000 + 90 + 90 + freight 100
	decEq(t, "1280", draft.Totals.GrandTotal, "grand total")
	decEq(t, "90", draft.Totals.CGST, "cgst")
	assert.True(t, doc.Duties[0].ManuallyOverridden, "stored document must not be mutated")
}

func TestDraftService_OpenDocument_NotFound(t *testing.T) {
	svc, d := newDraftService()
	tenantID, docID := uuid.New(), uuid.New()

	d.docs.On("GetByID", mock.Anything, tenantID, docID).Return(nil, domain.ErrDocumentNotFound)

	draft, err := svc.OpenDocument(context.Background(), tenantID, uuid.New(), docID)

	assert.Nil(t, draft)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

// --- UpdateLineItems ---

func TestDraftService_UpdateLineItems_RecomputesWithStockPrefill(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.stock.On("FindByNames", mock.Anything, tenantID, []string{"Bolt"}).Return([]domain.StockItem{
		{Name: "bolt", HSNCode: "7318", SalesRate: decimal.NewFromInt(50), PurchaseRate: decimal.NewFromInt(40), TaxRatePercent: decimal.NewFromInt(18)},
	}, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	got, err := svc.UpdateLineItems(context.Background(), tenantID, draft.ID, []domain.LineItem{
		widget("10"),
		{Name: "  Bolt ", Quantity: num("2")},
	})

	require.NoError(t, err)
	require.Len(t, got.LineItems, 2)
	bolt := got.LineItems[1]
	assert.NotEmpty(t, bolt.ID)
	assert.Equal(t, "Bolt", bolt.Name)
	assert.Equal(t, "7318", bolt.HSNCode)
	decEq(t, "50", bolt.Rate.Decimal, "bolt rate")
	decEq(t, "100", bolt.TaxableAmount, "bolt taxable")

	// subtotal 1100, GST 198, freight 110
	decEq(t, "1100", got.Totals.TaxableSubtotal, "subtotal")
	decEq(t, "99", got.Totals.CGST, "cgst")
	decEq(t, "99", got.Totals.SGST, "sgst")
	decEq(t, "110", got.Totals.DutyTotal, "duty total")
	decEq(t, "1408", got.Totals.GrandTotal, "grand total")
	d.stock.AssertExpectations(t)
}

func TestDraftService_UpdateLineItems_StockFailureIsNotFatal(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.stock.On("FindByNames", mock.Anything, tenantID, mock.Anything).Return(nil, errors.New("timeout"))
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	got, err := svc.UpdateLineItems(context.Background(), tenantID, draft.ID, []domain.LineItem{
		widget("10"),
		{Name: "Unknown", Quantity: num("3")},
	})

	require.NoError(t, err)
	decEq(t, "1000", got.Totals.TaxableSubtotal, "subtotal")
}

func TestDraftService_UpdateLineItems_SkipsCatalogWhenRatesTyped(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	_, err := svc.UpdateLineItems(context.Background(), tenantID, draft.ID, []domain.LineItem{widget("1")})

	require.NoError(t, err)
	d.stock.AssertNotCalled(t, "FindByNames", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftService_UpdateLineItems_DraftNotFound(t *testing.T) {
	svc, d := newDraftService()
	tenantID, draftID := uuid.New(), uuid.New()

	d.drafts.On("Get", mock.Anything, tenantID, draftID).Return(nil, domain.ErrDraftNotFound)

	got, err := svc.UpdateLineItems(context.Background(), tenantID, draftID, nil)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

// --- Override ---

func TestDraftService_Override_DutyStaysPinnedAcrossItemEdits(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, master := storedDraft(tenantID)
	draft.LineItems = []domain.LineItem{widget("10")}
	freightID := master[2].ID

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	got, err := svc.Override(context.Background(), tenantID, draft.ID, service.OverrideInput{
		Target: service.OverrideDuty,
		DutyID: freightID,
		Value:  num("25"),
	})
	require.NoError(t, err)
	decEq(t, "25", got.Duties[2].Amount, "freight")
	assert.True(t, got.Duties[2].ManuallyOverridden)

	got, err = svc.UpdateLineItems(context.Background(), tenantID, draft.ID, []domain.LineItem{widget("20")})
	require.NoError(t, err)
	decEq(t, "25", got.Duties[2].Amount, "freight after edit")
	decEq(t, "2385", got.Totals.GrandTotal, "grand total")
	assert.Equal(t, 1.0, counterTotal(t, d.metrics, "khata_overrides_total"))
}

func TestDraftService_Override_TaxableSubtotal(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)
	draft.LineItems = []domain.LineItem{widget("10")}

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	got, err := svc.Override(context.Background(), tenantID, draft.ID, service.OverrideInput{
		Target: service.OverrideTaxableSubtotal,
		Value:  num("2000"),
	})

	require.NoError(t, err)
	decEq(t, "2000", got.Totals.TaxableSubtotal, "subtotal")
	decEq(t, "200", got.Duties[2].Amount, "freight")
}

func TestDraftService_Override_DutyRequiresID(t *testing.T) {
	svc, d := newDraftService()

	got, err := svc.Override(context.Background(), uuid.New(), uuid.New(), service.OverrideInput{
		Target: service.OverrideDuty,
		Value:  num("10"),
	})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrInvalidOverride)
	d.drafts.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftService_Override_UnknownTarget(t *testing.T) {
	svc, _ := newDraftService()

	_, err := svc.Override(context.Background(), uuid.New(), uuid.New(), service.OverrideInput{
		Target: "grand_total",
		Value:  num("10"),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidOverride)
}

// --- UpdateHeader ---

func TestDraftService_UpdateHeader_PartySwitchRecomputes(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)
	draft.LineItems = []domain.LineItem{widget("10")}
	draft.Totals.TaxableSubtotal = decimal.NewFromInt(2000)

	party := &domain.Party{ID: uuid.New(), TenantID: tenantID, Name: "Acme Traders"}
	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.parties.On("GetByID", mock.Anything, tenantID, party.ID).Return(party, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	number := " INV-42 "
	got, err := svc.UpdateHeader(context.Background(), tenantID, draft.ID, service.UpdateHeaderInput{
		Number:  &number,
		PartyID: &party.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "INV-42", got.Number)
	assert.Equal(t, "Acme Traders", got.PartyName)
	decEq(t, "1000", got.Totals.TaxableSubtotal, "subtotal")
}

func TestDraftService_UpdateHeader_NoRecomputeWithoutPartySwitch(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)
	draft.LineItems = []domain.LineItem{widget("10")}
	draft.Totals.TaxableSubtotal = decimal.NewFromInt(2000)

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	name, paid := "Walk-in customer", true
	got, err := svc.UpdateHeader(context.Background(), tenantID, draft.ID, service.UpdateHeaderInput{
		PartyName: &name,
		Paid:      &paid,
	})

	require.NoError(t, err)
	assert.Equal(t, "Walk-in customer", got.PartyName)
	assert.True(t, got.Paid)
	decEq(t, "2000", got.Totals.TaxableSubtotal, "subtotal")
	d.parties.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftService_UpdateHeader_ClearPartyDropsName(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)
	partyID := uuid.New()
	draft.Number = "INV-7"
	draft.PartyID = &partyID
	draft.PartyName = "Acme Traders"

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	got, err := svc.UpdateHeader(context.Background(), tenantID, draft.ID, service.UpdateHeaderInput{ClearParty: true})

	require.NoError(t, err)
	assert.Nil(t, got.PartyID)
	assert.Empty(t, got.PartyName)
	assert.Equal(t, []string{"party_name"}, got.MissingFields())
	d.parties.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftService_UpdateHeader_ClearPartyWithReplacementName(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)
	partyID := uuid.New()
	draft.PartyID = &partyID
	draft.PartyName = "Acme Traders"

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	name := " Walk-in customer "
	got, err := svc.UpdateHeader(context.Background(), tenantID, draft.ID, service.UpdateHeaderInput{
		ClearParty: true,
		PartyName:  &name,
	})

	require.NoError(t, err)
	assert.Nil(t, got.PartyID)
	assert.Equal(t, "Walk-in customer", got.PartyName)
}

func TestDraftService_Submit_AfterClearingPartyIsIncomplete(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)
	partyID := uuid.New()
	draft.Number = "INV-7"
	draft.PartyID = &partyID
	draft.PartyName = "Acme Traders"

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	_, err := svc.UpdateHeader(context.Background(), tenantID, draft.ID, service.UpdateHeaderInput{ClearParty: true})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), tenantID, draft.ID)

	assert.ErrorIs(t, err, domain.ErrDraftIncomplete)
	d.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDraftService_UpdateHeader_UnknownParty(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)
	partyID := uuid.New()

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.parties.On("GetByID", mock.Anything, tenantID, partyID).Return(nil, domain.ErrPartyNotFound)

	_, err := svc.UpdateHeader(context.Background(), tenantID, draft.ID, service.UpdateHeaderInput{PartyID: &partyID})

	assert.ErrorIs(t, err, domain.ErrPartyNotFound)
	d.drafts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// --- SetDuties / Reset ---

func TestDraftService_SetDuties_KeepsOverriddenLines(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, master := storedDraft(tenantID)
	draft.LineItems = []domain.LineItem{widget("10")}
	draft.Duties[2].Amount = decimal.NewFromInt(7)
	draft.Duties[2].ManuallyOverridden = true

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.ledgers.On("ListByTenant", mock.Anything, tenantID).Return(master, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	got, err := svc.SetDuties(context.Background(), tenantID, draft.ID, []uuid.UUID{master[2].ID})

	require.NoError(t, err)
	require.Len(t, got.Duties, 3)
	decEq(t, "7", got.Duties[2].Amount, "freight")
	assert.True(t, got.Duties[2].ManuallyOverridden)
}

func TestDraftService_SetDuties_DropsUnselected(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, master := storedDraft(tenantID)
	draft.LineItems = []domain.LineItem{widget("10")}

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.ledgers.On("ListByTenant", mock.Anything, tenantID).Return(master, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	got, err := svc.SetDuties(context.Background(), tenantID, draft.ID, nil)

	require.NoError(t, err)
	assert.Len(t, got.Duties, 2)
	decEq(t, "1180", got.Totals.GrandTotal, "grand total")
}

func TestDraftService_SetDuties_KeepsDocumentOnlyLine(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, master := storedDraft(tenantID)
	retired := draft.Duties[2]
	master = master[:2]

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.ledgers.On("ListByTenant", mock.Anything, tenantID).Return(master, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	got, err := svc.SetDuties(context.Background(), tenantID, draft.ID, []uuid.UUID{retired.ID})

	require.NoError(t, err)
	require.Len(t, got.Duties, 3)
	assert.Equal(t, domain.DutySourceDocument, got.Duties[2].Source)
}

func TestDraftService_Reset_ClearsOverrides(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft, _ := storedDraft(tenantID)
	draft.LineItems = []domain.LineItem{widget("10")}
	draft.Duties[0].Amount = decimal.NewFromInt(1)
	draft.Duties[0].ManuallyOverridden = true
	draft.Totals.TaxableSubtotal = decimal.NewFromInt(5000)

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)

	got, err := svc.Reset(context.Background(), tenantID, draft.ID)

	require.NoError(t, err)
	assert.False(t, got.Duties[0].ManuallyOverridden)
	decEq(t, "90", got.Totals.CGST, "cgst")
	decEq(t, "1000", got.Totals.TaxableSubtotal, "subtotal")
}

// --- Submit ---

func submittable(tenantID uuid.UUID) *domain.Draft {
	draft, _ := storedDraft(tenantID)
	draft.Number = "INV-1"
	draft.PartyName = "Acme Traders"
	draft.LineItems = []domain.LineItem{widget("10")}
	totals.Apply(draft, totals.NoChange())
	return draft
}

func TestDraftService_Submit_NewPaidDocument(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft := submittable(tenantID)
	draft.Paid = true

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.drafts.On("Save", mock.Anything, draft).Return(nil)
	_, err := svc.Override(context.Background(), tenantID, draft.ID, service.OverrideInput{
		Target: service.OverrideGSTTotal,
		Value:  num("175.5"),
	})
	require.NoError(t, err)

	d.docs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	d.stock.On("Upsert", mock.Anything, tenantID, domain.DocTypeSalesInvoice, mock.MatchedBy(func(m []domain.StockMovement) bool {
		return len(m) == 1 && m[0].Name == "Widget" && m[0].QuantityDelta.Equal(decimal.NewFromInt(10))
	})).Return(nil)
	d.cashbook.On("UpsertForDocument", mock.Anything, mock.MatchedBy(func(e *domain.CashbookEntry) bool {
		return e.Direction == domain.CashIn && e.Amount.Equal(decimal.NewFromInt(1276)) &&
			e.Narration == "Sales invoice INV-1, Acme Traders"
	})).Return(nil)
	d.publisher.On("PublishDocumentSubmitted", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	d.drafts.On("Delete", mock.Anything, tenantID, draft.ID).Return(nil)

	doc, err := svc.Submit(context.Background(), tenantID, draft.ID)

	require.NoError(t, err)
	assert.Equal(t, tenantID, doc.TenantID)
	assert.Equal(t, draft.UserID, doc.CreatedBy)
	// 1000 + 175.5 + freight 100 = 1275.5 -> 1276; the GST override survives submit
	decEq(t, "175.5", doc.GSTTotal, "gst total")
	decEq(t, "1276", doc.GrandTotal, "grand total")
	decEq(t, "0.5", doc.RoundOff, "round off")
	d.docs.AssertExpectations(t)
	d.stock.AssertExpectations(t)
	d.cashbook.AssertExpectations(t)
	d.publisher.AssertExpectations(t)
	d.drafts.AssertExpectations(t)
}

func TestDraftService_Submit_ExistingDocumentMovesStockByDelta(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft := submittable(tenantID)
	draft.LineItems = []domain.LineItem{widget("8")}
	existing := &domain.Document{
		ID:        uuid.New(),
		TenantID:  tenantID,
		DocType:   domain.DocTypeSalesInvoice,
		Number:    "INV-1",
		Paid:      true,
		LineItems: domain.LineItemList{widget("5")},
	}
	draft.DocumentID = &existing.ID

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.docs.On("GetByID", mock.Anything, tenantID, existing.ID).Return(existing, nil)
	d.docs.On("Update", mock.Anything, existing).Return(nil)
	d.stock.On("Upsert", mock.Anything, tenantID, domain.DocTypeSalesInvoice, mock.MatchedBy(func(m []domain.StockMovement) bool {
		return len(m) == 1 && m[0].QuantityDelta.Equal(decimal.NewFromInt(3))
	})).Return(nil)
	d.cashbook.On("DeleteForDocument", mock.Anything, tenantID, existing.ID).Return(nil)
	d.publisher.On("PublishDocumentSubmitted", mock.Anything, existing).Return(nil)
	d.drafts.On("Delete", mock.Anything, tenantID, draft.ID).Return(nil)

	doc, err := svc.Submit(context.Background(), tenantID, draft.ID)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, doc.ID)
	assert.False(t, doc.Paid)
	d.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.stock.AssertExpectations(t)
	d.cashbook.AssertExpectations(t)
}

func TestDraftService_Submit_Incomplete(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft := submittable(tenantID)
	draft.Number = ""
	draft.PartyName = " "

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)

	doc, err := svc.Submit(context.Background(), tenantID, draft.ID)

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrDraftIncomplete)
	assert.Contains(t, err.Error(), "number, party_name")
	d.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDraftService_Submit_DuplicateNumber(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft := submittable(tenantID)

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.docs.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateDocumentNumber)

	doc, err := svc.Submit(context.Background(), tenantID, draft.ID)

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrDuplicateDocumentNumber)
	d.drafts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	d.publisher.AssertNotCalled(t, "PublishDocumentSubmitted", mock.Anything, mock.Anything)
}

func TestDraftService_Submit_SideEffectFailuresDoNotFail(t *testing.T) {
	svc, d := newDraftService()
	tenantID := uuid.New()
	draft := submittable(tenantID)
	draft.Paid = true

	d.drafts.On("Get", mock.Anything, tenantID, draft.ID).Return(draft, nil)
	d.docs.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.stock.On("Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("stock down"))
	d.cashbook.On("UpsertForDocument", mock.Anything, mock.Anything).Return(errors.New("cashbook down"))
	d.publisher.On("PublishDocumentSubmitted", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	d.drafts.On("Delete", mock.Anything, tenantID, draft.ID).Return(nil)

	doc, err := svc.Submit(context.Background(), tenantID, draft.ID)

	require.NoError(t, err)
	assert.NotNil(t, doc)
	count, err := testutil.GatherAndCount(d.metrics.Registry(), "khata_submit_side_effect_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDraftService_Discard(t *testing.T) {
	svc, d := newDraftService()
	tenantID, draftID := uuid.New(), uuid.New()

	d.drafts.On("Delete", mock.Anything, tenantID, draftID).Return(nil)

	assert.NoError(t, svc.Discard(context.Background(), tenantID, draftID))
	d.drafts.AssertExpectations(t)
}

// counterTotal sums every series of a counter family in the recorder's registry.
func counterTotal(t *testing.T, rec *metrics.Recorder, name string) float64 {
	t.Helper()
	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
