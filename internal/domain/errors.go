package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrDraftNotFound           = errors.New("draft not found")
	ErrDocumentNotFound        = errors.New("document not found")
	ErrPartyNotFound           = errors.New("party not found")
	ErrDraftIncomplete         = errors.New("draft is missing required fields")
	ErrInvalidDocType          = errors.New("invalid document type")
	ErrInvalidOverride         = errors.New("invalid override target")
	ErrInvalidChange           = errors.New("invalid change kind")
	ErrUnknownDutyLedger       = errors.New("duty ledger not found for tenant")
	ErrDuplicateDocumentNumber = errors.New("document number already exists")
)
