package handler

import (
	"github.com/google/uuid"

	"khata/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// OpenDraftRequest represents the open draft request body.
type OpenDraftRequest struct {
	DocType domain.DocType `json:"doc_type" binding:"required" example:"sales_invoice"`
	DutyIDs []uuid.UUID    `json:"duty_ids"`
}

// UpdateLineItemsRequest replaces every line item of a draft.
type UpdateLineItemsRequest struct {
	LineItems []domain.LineItem `json:"line_items"`
}

// UpdateHeaderRequest edits identity fields. Omitted fields are unchanged.
type UpdateHeaderRequest struct {
	Number     *string    `json:"number" example:"INV-2026-0042"`
	DocDate    *string    `json:"doc_date" example:"2026-04-01"`
	PartyID    *uuid.UUID `json:"party_id"`
	ClearParty bool       `json:"clear_party"`
	PartyName  *string    `json:"party_name" example:"Acme Traders"`
	Paid       *bool      `json:"paid"`
	Notes      *string    `json:"notes"`
}

// SetDutiesRequest selects the optional duty ledgers on a draft.
type SetDutiesRequest struct {
	DutyIDs []uuid.UUID `json:"duty_ids"`
}

// OverrideRequest types a value over a computed amount.
type OverrideRequest struct {
	Target string        `json:"target" binding:"required" example:"gst_total"`
	DutyID uuid.UUID     `json:"duty_id"`
	Value  domain.Number `json:"value" swaggertype:"string" example:"175.50"`
}

// --- Response Types ---

// Response is the generic success envelope.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody is the error envelope.
type ErrorResponseBody struct {
	Success bool     `json:"success" example:"false"`
	Error   APIError `json:"error"`
}
