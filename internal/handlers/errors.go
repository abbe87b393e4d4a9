// internal/handlers/errors.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestx/harvestx-backend/internal/services"
	"github.com/harvestx/harvestx-backend/internal/utils"
)

// respondServiceError maps a service error kind to its HTTP status and
// writes the error envelope. Unknown errors become opaque 500s.
func respondServiceError(c *gin.Context, err error) {
	appErr, ok := services.AsAppError(err)
	if !ok {
		utils.InternalErrorResponse(c, "")
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case services.ErrNotFound:
		status = http.StatusNotFound
	case services.ErrAuthenticationRequired:
		status = http.StatusUnauthorized
	case services.ErrRoleDenied, services.ErrResourceOwnerMismatch:
		status = http.StatusForbidden
	case services.ErrAlreadyDecided, services.ErrInsufficientAvailability,
		services.ErrSettlementInProgress, services.ErrInsufficientShareBalance:
		status = http.StatusConflict
	case services.ErrPaymentNotReceived:
		status = http.StatusPaymentRequired
	case services.ErrInvalidOffer, services.ErrRequestExpired, services.ErrValidation:
		status = http.StatusBadRequest
	}

	details := gin.H{}
	if appErr.EntityID != "" {
		details["entity_id"] = appErr.EntityID
	}

	utils.ErrorResponse(c, status, string(appErr.Kind), appErr.Message, details)
}

// callerID extracts the authenticated user's ID, writing the 401
// envelope itself when the context has none.
func callerID(c *gin.Context) (string, bool) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return "", false
	}
	return userID, true
}
