package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"khata/internal/service"
)

// TotalsHandler serves the stateless totals endpoints.
type TotalsHandler struct {
	totalsService service.TotalsService
}

// NewTotalsHandler creates a new TotalsHandler.
func NewTotalsHandler(totalsService service.TotalsService) *TotalsHandler {
	return &TotalsHandler{totalsService: totalsService}
}

// Preview handles POST /api/v1/totals/preview
// @Summary Preview document totals
// @Description Recompute totals for a complete document state without storing anything
// @Tags totals
// @Accept json
// @Produce json
// @Param request body service.PreviewInput true "Document state and the change that triggered the recompute"
// @Success 200 {object} Response{data=service.PreviewResult} "Computed totals"
// @Failure 400 {object} ErrorResponseBody "Invalid change kind"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /totals/preview [post]
func (h *TotalsHandler) Preview(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.PreviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.totalsService.Preview(c.Request.Context(), tenantID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// ListDutyLedgers handles GET /api/v1/duty-ledgers
// @Summary List duty ledgers
// @Description List the tenant's duty and tax master in application order
// @Tags totals
// @Produce json
// @Success 200 {object} Response{data=[]domain.DutyLedger,meta=PagMeta} "Duty ledgers"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /duty-ledgers [get]
func (h *TotalsHandler) ListDutyLedgers(c *gin.Context) {
	tenantID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	ledgers, err := h.totalsService.ListDutyLedgers(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, ledgers, len(ledgers))
}
