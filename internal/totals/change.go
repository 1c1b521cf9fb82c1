package totals

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChangeKind tags what the user just edited.
type ChangeKind int

const (
	// FullRecompute derives everything from the line items. It is the zero
	// value, used on load and when the party is switched.
	FullRecompute ChangeKind = iota
	LineItemsChanged
	TaxableSubtotalOverridden
	GSTTotalOverridden
	DutyOverridden
)

func (k ChangeKind) String() string {
	switch k {
	case LineItemsChanged:
		return "line_items_changed"
	case TaxableSubtotalOverridden:
		return "taxable_subtotal_overridden"
	case GSTTotalOverridden:
		return "gst_total_overridden"
	case DutyOverridden:
		return "duty_overridden"
	default:
		return "full_recompute"
	}
}

// ParseChangeKind reads the snake_case name produced by String. An empty
// name is a full recompute.
func ParseChangeKind(s string) (ChangeKind, bool) {
	switch s {
	case "", "full_recompute":
		return FullRecompute, true
	case "line_items_changed":
		return LineItemsChanged, true
	case "taxable_subtotal_overridden":
		return TaxableSubtotalOverridden, true
	case "gst_total_overridden":
		return GSTTotalOverridden, true
	case "duty_overridden":
		return DutyOverridden, true
	}
	return FullRecompute, false
}

// Change describes the edit that triggered a recompute. Value is the typed
// amount for the override kinds; DutyID is set only for DutyOverridden.
type Change struct {
	Kind   ChangeKind
	DutyID uuid.UUID
	Value  decimal.Decimal
}

// NoChange requests a full recompute.
func NoChange() Change { return Change{Kind: FullRecompute} }

// LineItemsEdited signals an added, removed or edited line item.
func LineItemsEdited() Change { return Change{Kind: LineItemsChanged} }

// OverrideTaxableSubtotal freezes the taxable subtotal at v.
func OverrideTaxableSubtotal(v decimal.Decimal) Change {
	return Change{Kind: TaxableSubtotalOverridden, Value: v}
}

// OverrideGSTTotal freezes the GST total at v.
func OverrideGSTTotal(v decimal.Decimal) Change {
	return Change{Kind: GSTTotalOverridden, Value: v}
}

// OverrideDuty pins one duty line's amount at v for the rest of the session.
func OverrideDuty(id uuid.UUID, v decimal.Decimal) Change {
	return Change{Kind: DutyOverridden, DutyID: id, Value: v}
}

// derivesFromItems reports whether the change rebuilds subtotal and GST from the items.
func (c Change) derivesFromItems() bool {
	return c.Kind == FullRecompute || c.Kind == LineItemsChanged
}
