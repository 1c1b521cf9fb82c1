// Package events defines the domain events emitted when documents are submitted.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
)

// EventType names a published event.
type EventType string

const (
	EventTypeDocumentSubmitted EventType = "document.submitted"
)

// DocumentEvent is the payload consumers such as ledgers and reports receive.
type DocumentEvent struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	DocumentID    uuid.UUID       `json:"document_id"`
	DocType       domain.DocType  `json:"doc_type"`
	Number        string          `json:"number"`
	DocDate       time.Time       `json:"doc_date"`
	PartyName     string          `json:"party_name"`
	Paid          bool            `json:"paid"`
	TaxableTotal  decimal.Decimal `json:"taxable_subtotal"`
	GSTTotal      decimal.Decimal `json:"gst_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// NewDocumentSubmitted builds the event for a stored document.
func NewDocumentSubmitted(doc *domain.Document, correlationID string) *DocumentEvent {
	return &DocumentEvent{
		ID:            "evt_" + uuid.NewString(),
		Type:          EventTypeDocumentSubmitted,
		TenantID:      doc.TenantID,
		DocumentID:    doc.ID,
		DocType:       doc.DocType,
		Number:        doc.Number,
		DocDate:       doc.DocDate,
		PartyName:     doc.PartyName,
		Paid:          doc.Paid,
		TaxableTotal:  doc.TaxableSubtotal,
		GSTTotal:      doc.GSTTotal,
		GrandTotal:    doc.GrandTotal,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}
