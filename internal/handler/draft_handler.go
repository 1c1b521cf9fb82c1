package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"khata/internal/service"
)

const docDateLayout = "2006-01-02"

// DraftHandler handles document editing session endpoints.
type DraftHandler struct {
	draftService service.DraftService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(draftService service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// Open handles POST /api/v1/drafts
// @Summary Open a draft
// @Description Start an editing session for a new sales invoice or purchase bill
// @Tags drafts
// @Accept json
// @Produce json
// @Param request body OpenDraftRequest true "Document type and optional duty ledgers"
// @Success 201 {object} Response{data=domain.Draft} "Draft opened"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 422 {object} ErrorResponseBody "Unknown duty ledger"
// @Security BearerAuth
// @Router /drafts [post]
func (h *DraftHandler) Open(c *gin.Context) {
	tenantID, userID, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var req OpenDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	draft, err := h.draftService.Open(c.Request.Context(), service.OpenDraftInput{
		TenantID: tenantID,
		UserID:   userID,
		DocType:  req.DocType,
		DutyIDs:  req.DutyIDs,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, draft)
}

// OpenDocument handles POST /api/v1/documents/:id/drafts
// @Summary Edit a stored document
// @Description Start an editing session on a submitted document; totals are recomputed with every override back to automatic
// @Tags drafts
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 201 {object} Response{data=domain.Draft} "Draft opened"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/drafts [post]
func (h *DraftHandler) OpenDocument(c *gin.Context) {
	tenantID, userID, ok := extractAuthContext(c)
	if !ok {
		return
	}
	docID, ok := parseID(c, "id", "document")
	if !ok {
		return
	}

	draft, err := h.draftService.OpenDocument(c.Request.Context(), tenantID, userID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, draft)
}

// Get handles GET /api/v1/drafts/:id
// @Summary Get a draft
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Success 200 {object} Response{data=domain.Draft} "Draft"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Draft not found or expired"
// @Security BearerAuth
// @Router /drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	draftID, ok := parseID(c, "id", "draft")
	if !ok {
		return
	}

	draft, err := h.draftService.Get(c.Request.Context(), tenantID, draftID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, draft)
}

// UpdateLineItems handles PUT /api/v1/drafts/:id/line-items
// @Summary Replace line items
// @Description Replace the draft's line items and recompute. Subtotal and GST return to automatic; duty overrides stay.
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Param request body UpdateLineItemsRequest true "Line items"
// @Success 200 {object} Response{data=domain.Draft} "Recomputed draft"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Draft not found or expired"
// @Security BearerAuth
// @Router /drafts/{id}/line-items [put]
func (h *DraftHandler) UpdateLineItems(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	draftID, ok := parseID(c, "id", "draft")
	if !ok {
		return
	}

	var req UpdateLineItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	draft, err := h.draftService.UpdateLineItems(c.Request.Context(), tenantID, draftID, req.LineItems)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, draft)
}

// UpdateHeader handles PUT /api/v1/drafts/:id/header
// @Summary Edit draft header
// @Description Edit number, date, party, paid flag or notes. Switching the party recomputes the totals.
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Param request body UpdateHeaderRequest true "Fields to update"
// @Success 200 {object} Response{data=domain.Draft} "Updated draft"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Draft or party not found"
// @Security BearerAuth
// @Router /drafts/{id}/header [put]
func (h *DraftHandler) UpdateHeader(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	draftID, ok := parseID(c, "id", "draft")
	if !ok {
		return
	}

	var req UpdateHeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	input := service.UpdateHeaderInput{
		Number:     req.Number,
		PartyID:    req.PartyID,
		ClearParty: req.ClearParty,
		PartyName:  req.PartyName,
		Paid:       req.Paid,
		Notes:      req.Notes,
	}
	if req.DocDate != nil {
		date, err := time.Parse(docDateLayout, *req.DocDate)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "doc_date must be YYYY-MM-DD")
			return
		}
		input.DocDate = &date
	}

	draft, err := h.draftService.UpdateHeader(c.Request.Context(), tenantID, draftID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, draft)
}

// SetDuties handles PUT /api/v1/drafts/:id/duties
// @Summary Select duty ledgers
// @Description Choose the optional duty ledgers; default ledgers are always applied
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Param request body SetDutiesRequest true "Selected duty ledger IDs"
// @Success 200 {object} Response{data=domain.Draft} "Recomputed draft"
// @Failure 404 {object} ErrorResponseBody "Draft not found or expired"
// @Failure 422 {object} ErrorResponseBody "Unknown duty ledger"
// @Security BearerAuth
// @Router /drafts/{id}/duties [put]
func (h *DraftHandler) SetDuties(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	draftID, ok := parseID(c, "id", "draft")
	if !ok {
		return
	}

	var req SetDutiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	draft, err := h.draftService.SetDuties(c.Request.Context(), tenantID, draftID, req.DutyIDs)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, draft)
}

// Override handles POST /api/v1/drafts/:id/overrides
// @Summary Override a computed amount
// @Description Type over the taxable subtotal, the GST total or one duty line
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Param request body OverrideRequest true "Override target and value"
// @Success 200 {object} Response{data=domain.Draft} "Recomputed draft"
// @Failure 400 {object} ErrorResponseBody "Invalid override"
// @Failure 404 {object} ErrorResponseBody "Draft not found or expired"
// @Security BearerAuth
// @Router /drafts/{id}/overrides [post]
func (h *DraftHandler) Override(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	draftID, ok := parseID(c, "id", "draft")
	if !ok {
		return
	}

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	draft, err := h.draftService.Override(c.Request.Context(), tenantID, draftID, service.OverrideInput{
		Target: service.OverrideTarget(req.Target),
		DutyID: req.DutyID,
		Value:  req.Value,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, draft)
}

// Reset handles POST /api/v1/drafts/:id/reset
// @Summary Reset overrides
// @Description Return every override to automatic and recompute from the line items
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Success 200 {object} Response{data=domain.Draft} "Recomputed draft"
// @Failure 404 {object} ErrorResponseBody "Draft not found or expired"
// @Security BearerAuth
// @Router /drafts/{id}/reset [post]
func (h *DraftHandler) Reset(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	draftID, ok := parseID(c, "id", "draft")
	if !ok {
		return
	}

	draft, err := h.draftService.Reset(c.Request.Context(), tenantID, draftID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, draft)
}

// Submit handles POST /api/v1/drafts/:id/submit
// @Summary Submit a draft
// @Description Store the draft as a document with the totals last shown
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Success 201 {object} Response{data=domain.Document} "Document stored"
// @Failure 404 {object} ErrorResponseBody "Draft not found or expired"
// @Failure 409 {object} ErrorResponseBody "Document number already exists"
// @Failure 422 {object} ErrorResponseBody "Draft is missing required fields"
// @Security BearerAuth
// @Router /drafts/{id}/submit [post]
func (h *DraftHandler) Submit(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	draftID, ok := parseID(c, "id", "draft")
	if !ok {
		return
	}

	doc, err := h.draftService.Submit(c.Request.Context(), tenantID, draftID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// Discard handles DELETE /api/v1/drafts/:id
// @Summary Discard a draft
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Success 200 {object} Response "Draft discarded"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Security BearerAuth
// @Router /drafts/{id} [delete]
func (h *DraftHandler) Discard(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	draftID, ok := parseID(c, "id", "draft")
	if !ok {
		return
	}

	if err := h.draftService.Discard(c.Request.Context(), tenantID, draftID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "draft discarded"})
}
