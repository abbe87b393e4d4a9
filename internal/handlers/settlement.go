// internal/handlers/settlement.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harvestx/harvestx-backend/internal/services"
	"github.com/harvestx/harvestx-backend/internal/utils"
)

type SettlementHandler struct {
	settlementService *services.SettlementService
}

func NewSettlementHandler(settlementService *services.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// GET /requests/:id/deposit-info
func (h *SettlementHandler) GetDepositInfo(c *gin.Context) {
	caller, ok := parseCallerID(c)
	if !ok {
		return
	}

	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	info, err := h.settlementService.GetDepositInfo(caller, requestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, info)
}

// POST /requests/:id/settle
func (h *SettlementHandler) Settle(c *gin.Context) {
	caller, ok := parseCallerID(c)
	if !ok {
		return
	}

	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	trade, err := h.settlementService.Settle(c.Request.Context(), caller, requestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, trade)
}
