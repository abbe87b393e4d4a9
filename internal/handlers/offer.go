// internal/handlers/offer.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harvestx/harvestx-backend/internal/models"
	"github.com/harvestx/harvestx-backend/internal/services"
	"github.com/harvestx/harvestx-backend/internal/utils"
)

type OfferHandler struct {
	offerService   *services.OfferService
	requestService *services.RequestService
	storageService *services.StorageService
	shareLedger    *services.ShareLedgerService
}

func NewOfferHandler(offerService *services.OfferService, requestService *services.RequestService, storageService *services.StorageService, shareLedger *services.ShareLedgerService) *OfferHandler {
	return &OfferHandler{
		offerService:   offerService,
		requestService: requestService,
		storageService: storageService,
		shareLedger:    shareLedger,
	}
}

// GET /offers
func (h *OfferHandler) ListOffers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	offers, total, err := h.offerService.ListActiveOffers(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(offers, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	farmerID, ok := parseCallerID(c)
	if !ok {
		return
	}

	var req services.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	offer, err := h.offerService.CreateOffer(farmerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, offer)
}

// GET /offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	offer, err := h.offerService.GetOffer(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, offer)
}

// GET /offers/mine
func (h *OfferHandler) ListMyOffers(c *gin.Context) {
	farmerID, ok := parseCallerID(c)
	if !ok {
		return
	}

	offers, err := h.offerService.ListOffersByFarmer(farmerID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, offers)
}

// GET /offers/:id/requests
func (h *OfferHandler) ListOfferRequests(c *gin.Context) {
	callerID, ok := parseCallerID(c)
	if !ok {
		return
	}

	offerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	requests, err := h.requestService.ListRequestsForOffer(callerID, offerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, requests)
}

// GET /offers/:id/holders
func (h *OfferHandler) ListOfferHolders(c *gin.Context) {
	offerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tokenID := models.ShareTokenID(offerID)
	supply, err := h.shareLedger.TotalSupply(tokenID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	balances, err := h.shareLedger.HolderBalances(tokenID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token_id":     tokenID,
		"total_supply": supply,
		"holders":      balances,
	})
}

// POST /offers/:id/documents
func (h *OfferHandler) UploadDocument(c *gin.Context) {
	callerID, ok := parseCallerID(c)
	if !ok {
		return
	}

	offerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file upload", err.Error())
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions("harvest_documents")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	offer, err := h.offerService.AttachDocument(offerID, callerID, result.URL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"upload": result,
		"offer":  offer,
	})
}

// parseCallerID reads the authenticated user's ID as a UUID, writing
// the error envelope on failure.
func parseCallerID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, ok := callerID(c)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}

	return userID, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name+" parameter", nil)
		return uuid.Nil, false
	}
	return id, true
}
