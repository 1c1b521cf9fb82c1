package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one row of a document. TaxableAmount and GrossAmount are derived
// from the inputs on every recompute and are never trusted when loaded.
type LineItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	HSNCode        string          `json:"hsn_code"`
	Quantity       Number          `json:"quantity"`
	Rate           Number          `json:"rate"`
	TaxRatePercent Number          `json:"tax_rate_percent"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
}

// UnmarshalJSON reads the derived amounts as leniently as the inputs, so an
// editor echoing a cleared field back does not fail the request.
func (l *LineItem) UnmarshalJSON(data []byte) error {
	type lineItem LineItem
	aux := struct {
		*lineItem
		TaxableAmount Number `json:"taxable_amount"`
		GrossAmount   Number `json:"gross_amount"`
	}{lineItem: (*lineItem)(l), TaxableAmount: NumberOf(l.TaxableAmount), GrossAmount: NumberOf(l.GrossAmount)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.TaxableAmount = aux.TaxableAmount.Decimal
	l.GrossAmount = aux.GrossAmount.Decimal
	return nil
}

// DutyLine is a document's snapshot of a duty/tax ledger. ManuallyOverridden
// is editing-session state: it survives recomputes of the same draft and is
// cleared whenever a draft is loaded fresh.
type DutyLine struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	Kind               DutyKind        `json:"kind"`
	GSTHead            GSTHead         `json:"gst_head,omitempty"`
	CalcMethod         CalcMethod      `json:"calc_method"`
	RatePercent        Number          `json:"rate_percent"`
	FixedAmount        Number          `json:"fixed_amount"`
	ApplyOn            ApplyOn         `json:"apply_on"`
	Source             DutySource      `json:"source"`
	Amount             decimal.Decimal `json:"amount"`
	ManuallyOverridden bool            `json:"manually_overridden"`
}

// UnmarshalJSON reads Amount leniently. For an overridden line the amount is
// the user's typed value, so a blank or malformed entry reads as zero.
func (d *DutyLine) UnmarshalJSON(data []byte) error {
	type dutyLine DutyLine
	aux := struct {
		*dutyLine
		Amount Number `json:"amount"`
	}{dutyLine: (*dutyLine)(d), Amount: NumberOf(d.Amount)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.Amount = aux.Amount.Decimal
	return nil
}

// Head returns the GST component the line carries, falling back to its name
// when the ledger did not record one. Non-GST lines return "".
func (d *DutyLine) Head() GSTHead {
	if d.Kind != DutyKindGSTComponent {
		return ""
	}
	if d.GSTHead != "" {
		return d.GSTHead
	}
	name := strings.ToUpper(d.Name)
	switch {
	case strings.Contains(name, "IGST"):
		return GSTHeadIGST
	case strings.Contains(name, "CGST"):
		return GSTHeadCGST
	case strings.Contains(name, "SGST"), strings.Contains(name, "UTGST"):
		return GSTHeadSGST
	}
	return ""
}

// DutyLineFromLedger snapshots a master ledger onto a document.
func DutyLineFromLedger(l *DutyLedger) DutyLine {
	line := DutyLine{
		ID:          l.ID,
		Name:        l.Name,
		Kind:        l.Kind,
		CalcMethod:  l.CalcMethod,
		RatePercent: NumberOf(l.RatePercent),
		FixedAmount: NumberOf(l.FixedAmount),
		ApplyOn:     l.ApplyOn,
		Source:      DutySourceMaster,
	}
	if l.GSTHead != nil {
		line.GSTHead = *l.GSTHead
	}
	return line
}

// DocumentTotals is the complete computed summary of a document. GSTPool is
// the GST derived from the items (or typed over them) before component lines
// are resolved; GSTTotal differs from it only when a component line is overridden.
type DocumentTotals struct {
	TaxableSubtotal decimal.Decimal `json:"taxable_subtotal"`
	GSTPool         decimal.Decimal `json:"gst_pool"`
	GSTTotal        decimal.Decimal `json:"gst_total"`
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
	Duties          []DutyLine      `json:"duties"`
	DutyTotal       decimal.Decimal `json:"duty_total"`
	RunningTotal    decimal.Decimal `json:"running_total"`
	RoundOff        decimal.Decimal `json:"round_off"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
}

// Draft is an unsaved document held for the duration of one editing session.
type Draft struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	UserID     uuid.UUID      `json:"user_id"`
	DocumentID *uuid.UUID     `json:"document_id,omitempty"`
	DocType    DocType        `json:"doc_type"`
	Number     string         `json:"number"`
	DocDate    time.Time      `json:"doc_date"`
	PartyID    *uuid.UUID     `json:"party_id,omitempty"`
	PartyName  string         `json:"party_name"`
	Paid       bool           `json:"paid"`
	Notes      string         `json:"notes"`
	GST        GSTConfig      `json:"gst"`
	LineItems  []LineItem     `json:"line_items"`
	Duties     []DutyLine     `json:"duties"`
	Totals     DocumentTotals `json:"totals"`
	Revision   int            `json:"revision"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// MissingFields lists the identity fields a draft needs before it can be submitted.
func (d *Draft) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(d.Number) == "" {
		missing = append(missing, "number")
	}
	if strings.TrimSpace(d.PartyName) == "" {
		missing = append(missing, "party_name")
	}
	return missing
}

// LineItemList is stored as a JSONB column.
type LineItemList []LineItem

// Value implements driver.Valuer.
func (l LineItemList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *LineItemList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// DutyLineList is stored as a JSONB column. Override flags are session state
// and are not written.
type DutyLineList []DutyLine

// Value implements driver.Valuer.
func (l DutyLineList) Value() (driver.Value, error) {
	out := make([]DutyLine, len(l))
	copy(out, l)
	for i := range out {
		out[i].ManuallyOverridden = false
	}
	return json.Marshal(out)
}

// Scan implements sql.Scanner.
func (l *DutyLineList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	return json.Unmarshal(data, dst)
}
