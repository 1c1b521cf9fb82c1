package domain

import "strings"

// UserRole defines the role hierarchy within a tenant.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// DocType distinguishes the two editable document kinds.
type DocType string

const (
	DocTypeSalesInvoice DocType = "sales_invoice"
	DocTypePurchaseBill DocType = "purchase_bill"
)

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	return t == DocTypeSalesInvoice || t == DocTypePurchaseBill
}

// DutyKind classifies a duty/tax ledger line.
type DutyKind string

const (
	DutyKindCharge       DutyKind = "charge"
	DutyKindDeduction    DutyKind = "deduction"
	DutyKindGSTComponent DutyKind = "gst_component"
)

// CalcMethod is how a duty line derives its raw amount.
type CalcMethod string

const (
	CalcMethodPercentage CalcMethod = "percentage"
	CalcMethodFixed      CalcMethod = "fixed"
	CalcMethodBoth       CalcMethod = "both"
)

// ApplyOn selects the base a percentage duty is computed against.
type ApplyOn string

const (
	ApplyOnTaxableSubtotal ApplyOn = "taxable_subtotal"
	ApplyOnNetTotal        ApplyOn = "net_total"
)

// GSTType is the tenant-level GST mode. Exactly one is active per document.
type GSTType string

const (
	GSTTypeCGSTSGST GSTType = "CGST-SGST"
	GSTTypeIGST     GSTType = "IGST"
)

// Normalize maps unknown or empty values to the intra-state mode.
func (t GSTType) Normalize() GSTType {
	if strings.EqualFold(string(t), string(GSTTypeIGST)) {
		return GSTTypeIGST
	}
	return GSTTypeCGSTSGST
}

// GSTHead identifies which GST component a duty line carries.
type GSTHead string

const (
	GSTHeadCGST GSTHead = "CGST"
	GSTHeadSGST GSTHead = "SGST"
	GSTHeadIGST GSTHead = "IGST"
)

// DutySource records where a duty line's rate and fixed values came from.
type DutySource string

const (
	DutySourceMaster   DutySource = "master"
	DutySourceDocument DutySource = "document"
)

// CashDirection is the flow of money recorded in the cashbook.
type CashDirection string

const (
	CashIn  CashDirection = "in"
	CashOut CashDirection = "out"
)

// CashDirectionFor returns the cashbook direction a paid document produces.
func CashDirectionFor(t DocType) CashDirection {
	if t == DocTypePurchaseBill {
		return CashOut
	}
	return CashIn
}
