// internal/handlers/request.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harvestx/harvestx-backend/internal/services"
	"github.com/harvestx/harvestx-backend/internal/utils"
)

type RequestHandler struct {
	requestService *services.RequestService
}

func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// POST /requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	investorID, ok := parseCallerID(c)
	if !ok {
		return
	}

	var req services.CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	request, err := h.requestService.CreateRequest(investorID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, request)
}

// GET /requests/mine
func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	investorID, ok := parseCallerID(c)
	if !ok {
		return
	}

	requests, err := h.requestService.ListRequestsForInvestor(investorID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, requests)
}

// POST /requests/:id/respond
func (h *RequestHandler) RespondToRequest(c *gin.Context) {
	farmerID, ok := parseCallerID(c)
	if !ok {
		return
	}

	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body struct {
		Accept bool `json:"accept"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	request, err := h.requestService.Respond(farmerID, &services.RespondToRequestInput{
		RequestID: requestID,
		Accept:    body.Accept,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}
