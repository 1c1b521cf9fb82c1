// Package totals computes the monetary summary of a sales invoice or purchase
// bill: taxable subtotal, GST split, cascading duties, round-off and grand total.
//
// The engine is pure. Everything it needs, including which duty lines the user
// has overridden, arrives in the Input and leaves in the returned totals.
package totals

import (
	"github.com/shopspring/decimal"

	"khata/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
	half    = decimal.New(5, -1)
)

// roundOffPlaces is the precision round-off is stored at.
const roundOffPlaces = 2

// Input is the draft state the engine reads. TaxableSubtotal and GSTPool are
// the values currently in effect, which the override changes keep or replace.
type Input struct {
	LineItems       []domain.LineItem
	Duties          []domain.DutyLine
	GST             domain.GSTConfig
	TaxableSubtotal decimal.Decimal
	GSTPool         decimal.Decimal
}

// InputFromDraft builds the engine input from a stored draft.
func InputFromDraft(d *domain.Draft) Input {
	return Input{
		LineItems:       d.LineItems,
		Duties:          d.Duties,
		GST:             d.GST,
		TaxableSubtotal: d.Totals.TaxableSubtotal,
		GSTPool:         d.Totals.GSTPool,
	}
}

// Apply recomputes a draft in place: line items get fresh derived amounts,
// duties take the resolved lines and Totals the new summary.
func Apply(d *domain.Draft, change Change) {
	d.LineItems = PriceLineItems(d.LineItems)
	t := Recompute(InputFromDraft(d), change)
	d.Duties = t.Duties
	d.Totals = t
}

// PriceLineItems returns a copy of items with TaxableAmount and GrossAmount derived.
func PriceLineItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i := range items {
		item := items[i]
		item.TaxableAmount = item.Quantity.Mul(item.Rate.Decimal)
		item.GrossAmount = item.TaxableAmount.Add(lineGST(&item))
		out[i] = item
	}
	return out
}

func lineGST(item *domain.LineItem) decimal.Decimal {
	return item.TaxableAmount.Mul(item.TaxRatePercent.Decimal).Div(hundred)
}

// Recompute derives a fully consistent DocumentTotals from in. It never fails:
// malformed inputs have already been read as zero.
//
// Order matters and is fixed: subtotal and GST pool, then GST component lines,
// then every other duty in list order, each NetTotal duty seeing the running
// total of everything resolved before it. Rounding happens once, at the end.
func Recompute(in Input, change Change) domain.DocumentTotals {
	subtotal, pool := in.TaxableSubtotal, in.GSTPool
	switch {
	case change.derivesFromItems():
		subtotal, pool = sumLineItems(in.LineItems)
	case change.Kind == TaxableSubtotalOverridden:
		subtotal = change.Value
	case change.Kind == GSTTotalOverridden:
		pool = change.Value
	}

	duties := make([]domain.DutyLine, len(in.Duties))
	copy(duties, in.Duties)
	if change.Kind == DutyOverridden {
		overrideDuty(duties, change)
	}

	t := domain.DocumentTotals{TaxableSubtotal: subtotal, GSTPool: pool}
	t.CGST, t.SGST, t.IGST, t.GSTTotal = resolveGST(duties, in.GST, pool)

	running := subtotal.Add(t.GSTTotal)
	dutyTotal := decimal.Zero
	for i := range duties {
		d := &duties[i]
		if d.Kind == domain.DutyKindGSTComponent {
			continue
		}
		if !d.ManuallyOverridden {
			d.Amount = dutyAmount(d, subtotal, running)
		}
		running = running.Add(d.Amount)
		dutyTotal = dutyTotal.Add(d.Amount)
	}

	t.Duties = duties
	t.DutyTotal = dutyTotal
	t.RunningTotal = running
	t.GrandTotal = roundHalfUp(running)
	t.RoundOff = t.GrandTotal.Sub(running).Round(roundOffPlaces)
	return t
}

func sumLineItems(items []domain.LineItem) (subtotal, gst decimal.Decimal) {
	subtotal, gst = decimal.Zero, decimal.Zero
	for i := range items {
		item := items[i]
		item.TaxableAmount = item.Quantity.Mul(item.Rate.Decimal)
		subtotal = subtotal.Add(item.TaxableAmount)
		gst = gst.Add(lineGST(&item))
	}
	return subtotal, gst
}

// overrideDuty pins the matching line. Unknown ids are ignored.
func overrideDuty(duties []domain.DutyLine, change Change) {
	for i := range duties {
		d := &duties[i]
		if d.ID != change.DutyID {
			continue
		}
		d.Amount = change.Value
		if d.Kind == domain.DutyKindDeduction {
			d.Amount = change.Value.Abs().Neg()
		}
		d.ManuallyOverridden = true
		return
	}
}

// resolveGST fills the GST component lines from the pool and returns the split.
// When the active mode has component lines on the draft, their amounts are
// the split and gstTotal is their sum; otherwise the pool is split directly.
// Only the first line of each head receives the automatic share.
func resolveGST(duties []domain.DutyLine, cfg domain.GSTConfig, pool decimal.Decimal) (cgst, sgst, igst, total decimal.Decimal) {
	mode := cfg.Type.Normalize()
	share := pool.Div(two)

	auto := map[domain.GSTHead]decimal.Decimal{}
	if cfg.Enabled {
		if mode == domain.GSTTypeIGST {
			auto[domain.GSTHeadIGST] = pool
		} else {
			auto[domain.GSTHeadCGST] = share
			auto[domain.GSTHeadSGST] = share
		}
	}

	seen := map[domain.GSTHead]bool{}
	sums := map[domain.GSTHead]decimal.Decimal{}
	for i := range duties {
		d := &duties[i]
		if d.Kind != domain.DutyKindGSTComponent {
			continue
		}
		head := d.Head()
		if !d.ManuallyOverridden {
			d.Amount = decimal.Zero
			if amt, ok := auto[head]; ok && !seen[head] {
				d.Amount = amt
			}
		}
		seen[head] = true
		if cfg.Enabled && headActive(mode, head) {
			sums[head] = sums[head].Add(d.Amount)
		}
	}

	pick := func(head domain.GSTHead, fallback decimal.Decimal) decimal.Decimal {
		if v, ok := sums[head]; ok {
			return v
		}
		return fallback
	}

	cgst, sgst, igst = decimal.Zero, decimal.Zero, decimal.Zero
	if mode == domain.GSTTypeIGST {
		igst = pick(domain.GSTHeadIGST, pool)
		return cgst, sgst, igst, igst
	}
	cgst = pick(domain.GSTHeadCGST, share)
	sgst = pick(domain.GSTHeadSGST, share)
	return cgst, sgst, igst, cgst.Add(sgst)
}

func headActive(mode domain.GSTType, head domain.GSTHead) bool {
	if mode == domain.GSTTypeIGST {
		return head == domain.GSTHeadIGST
	}
	return head == domain.GSTHeadCGST || head == domain.GSTHeadSGST
}

// dutyAmount computes a charge or deduction. Deductions always subtract,
// whatever sign the ledger stored.
func dutyAmount(d *domain.DutyLine, subtotal, running decimal.Decimal) decimal.Decimal {
	base := subtotal
	if d.ApplyOn == domain.ApplyOnNetTotal {
		base = running
	}
	pct := base.Mul(d.RatePercent.Decimal).Div(hundred)

	var raw decimal.Decimal
	switch d.CalcMethod {
	case domain.CalcMethodFixed:
		raw = d.FixedAmount.Decimal
	case domain.CalcMethodBoth:
		raw = pct.Add(d.FixedAmount.Decimal)
	default:
		raw = pct
	}

	if d.Kind == domain.DutyKindDeduction {
		return raw.Abs().Neg()
	}
	return raw
}

// roundHalfUp rounds to the nearest whole unit, halves toward positive infinity.
func roundHalfUp(v decimal.Decimal) decimal.Decimal {
	return v.Add(half).Floor()
}
