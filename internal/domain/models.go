package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantSettings holds the GST configuration of a tenant.
type TenantSettings struct {
	TenantID   uuid.UUID `db:"tenant_id" json:"tenant_id"`
	GSTEnabled bool      `db:"gst_enabled" json:"gst_enabled"`
	GSTType    GSTType   `db:"gst_type" json:"gst_type"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GST returns the engine-facing configuration.
func (s *TenantSettings) GST() GSTConfig {
	return GSTConfig{Enabled: s.GSTEnabled, Type: s.GSTType.Normalize()}
}

// GSTConfig is the GST mode a document is computed under.
type GSTConfig struct {
	Enabled bool    `json:"gst_enabled"`
	Type    GSTType `json:"gst_type"`
}

// DutyLedger is a tenant's master definition of a duty or tax.
type DutyLedger struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	TenantID    uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	Name        string          `db:"name" json:"name"`
	Kind        DutyKind        `db:"kind" json:"kind"`
	GSTHead     *GSTHead        `db:"gst_head" json:"gst_head,omitempty"`
	CalcMethod  CalcMethod      `db:"calc_method" json:"calc_method"`
	RatePercent decimal.Decimal `db:"rate_percent" json:"rate_percent"`
	FixedAmount decimal.Decimal `db:"fixed_amount" json:"fixed_amount"`
	ApplyOn     ApplyOn         `db:"apply_on" json:"apply_on"`
	IsDefault   bool            `db:"is_default" json:"is_default"`
	SortOrder   int             `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Party is a vendor or customer from the party directory.
type Party struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Name      string    `db:"name" json:"name"`
	GSTIN     string    `db:"gstin" json:"gstin"`
	State     string    `db:"state" json:"state"`
	IsVendor  bool      `db:"is_vendor" json:"is_vendor"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StockItem is a stock catalog entry used to pre-fill line items.
type StockItem struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	TenantID       uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	Name           string          `db:"name" json:"name"`
	HSNCode        string          `db:"hsn_code" json:"hsn_code"`
	SalesRate      decimal.Decimal `db:"sales_rate" json:"sales_rate"`
	PurchaseRate   decimal.Decimal `db:"purchase_rate" json:"purchase_rate"`
	TaxRatePercent decimal.Decimal `db:"tax_rate_percent" json:"tax_rate_percent"`
	QuantityOnHand decimal.Decimal `db:"quantity_on_hand" json:"quantity_on_hand"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// RateFor returns the catalog rate relevant to the document type.
func (s *StockItem) RateFor(t DocType) decimal.Decimal {
	if t == DocTypePurchaseBill {
		return s.PurchaseRate
	}
	return s.SalesRate
}

// StockMovement is an upsert of one item name into the stock catalog.
type StockMovement struct {
	Name           string
	HSNCode        string
	Rate           decimal.Decimal
	TaxRatePercent decimal.Decimal
	QuantityDelta  decimal.Decimal
}

// Document is a submitted sales invoice or purchase bill. The totals columns
// are a cache of the last submitted computation; editing recomputes them.
type Document struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	TenantID        uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	DocType         DocType         `db:"doc_type" json:"doc_type"`
	Number          string          `db:"number" json:"number"`
	DocDate         time.Time       `db:"doc_date" json:"doc_date"`
	PartyID         *uuid.UUID      `db:"party_id" json:"party_id"`
	PartyName       string          `db:"party_name" json:"party_name"`
	Paid            bool            `db:"paid" json:"paid"`
	Notes           string          `db:"notes" json:"notes"`
	GSTEnabled      bool            `db:"gst_enabled" json:"gst_enabled"`
	GSTType         GSTType         `db:"gst_type" json:"gst_type"`
	LineItems       LineItemList    `db:"line_items" json:"line_items"`
	Duties          DutyLineList    `db:"duties" json:"duties"`
	TaxableSubtotal decimal.Decimal `db:"taxable_subtotal" json:"taxable_subtotal"`
	GSTTotal        decimal.Decimal `db:"gst_total" json:"gst_total"`
	CGST            decimal.Decimal `db:"cgst" json:"cgst"`
	SGST            decimal.Decimal `db:"sgst" json:"sgst"`
	IGST            decimal.Decimal `db:"igst" json:"igst"`
	DutyTotal       decimal.Decimal `db:"duty_total" json:"duty_total"`
	RoundOff        decimal.Decimal `db:"round_off" json:"round_off"`
	GrandTotal      decimal.Decimal `db:"grand_total" json:"grand_total"`
	CreatedBy       uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// ApplyTotals copies computed totals into the document's cached columns.
func (d *Document) ApplyTotals(t *DocumentTotals) {
	d.TaxableSubtotal = t.TaxableSubtotal
	d.GSTTotal = t.GSTTotal
	d.CGST = t.CGST
	d.SGST = t.SGST
	d.IGST = t.IGST
	d.DutyTotal = t.DutyTotal
	d.RoundOff = t.RoundOff
	d.GrandTotal = t.GrandTotal
}

// CashbookEntry is the cash movement recorded for a paid document.
type CashbookEntry struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	TenantID   uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	DocumentID uuid.UUID       `db:"document_id" json:"document_id"`
	EntryDate  time.Time       `db:"entry_date" json:"entry_date"`
	Direction  CashDirection   `db:"direction" json:"direction"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Narration  string          `db:"narration" json:"narration"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
