// internal/services/request_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harvestx/harvestx-backend/internal/metrics"
	"github.com/harvestx/harvestx-backend/internal/models"
	"github.com/harvestx/harvestx-backend/internal/utils"
)

// RequestService owns the investment request workflow: Pending ->
// Accepted | Rejected, decided exactly once and only by the offer's
// farmer. Acceptance re-validates offer availability under a row lock;
// the optimistic check at creation time can be invalidated by
// intervening acceptances of other requests against the same offer.
type RequestService struct {
	db            *gorm.DB
	notifications *NotificationService
}

type CreateInvestmentRequest struct {
	OfferID           uuid.UUID `json:"offer_id" validate:"required"`
	RequestedQuantity int64     `json:"requested_quantity" validate:"required,gt=0"`
	OfferedPricePerKg float64   `json:"offered_price_per_kg" validate:"required,gt=0"`
	Message           string    `json:"message" validate:"max=2000"`
}

type RespondToRequestInput struct {
	RequestID uuid.UUID `json:"request_id" validate:"required"`
	Accept    bool      `json:"accept"`
}

func NewRequestService(db *gorm.DB, notifications *NotificationService) *RequestService {
	return &RequestService{
		db:            db,
		notifications: notifications,
	}
}

// CreateRequest files an investor proposal against an active offer and
// eagerly derives its escrow sub-account. The availability check here
// is optimistic; acceptance repeats it atomically.
func (s *RequestService) CreateRequest(investorID uuid.UUID, req *CreateInvestmentRequest) (*models.InvestmentRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewAppError(ErrValidation, "", "validation failed: %v", err)
	}

	investor, err := loadActiveUser(s.db, investorID)
	if err != nil {
		return nil, err
	}

	if !investor.HasRole(models.UserRoleInvestor, models.UserRoleAdmin) {
		return nil, NewAppError(ErrRoleDenied, investorID.String(),
			"only investors and admins can file investment requests")
	}

	var offer models.InvestmentOffer
	err = s.db.First(&offer, "id = ?", req.OfferID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewAppError(ErrNotFound, req.OfferID.String(), "offer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if offer.Status != models.OfferStatusActive {
		return nil, NewAppError(ErrInvalidOffer, offer.ID.String(), "offer is not active")
	}
	if offer.AvailableQuantity < req.RequestedQuantity {
		return nil, NewAppError(ErrInvalidOffer, offer.ID.String(),
			"requested %d kg but only %d kg available", req.RequestedQuantity, offer.AvailableQuantity)
	}

	totalOffered := float64(req.RequestedQuantity) * req.OfferedPricePerKg
	if offer.MinimumInvestment > 0 && totalOffered < offer.MinimumInvestment {
		return nil, NewAppError(ErrInvalidOffer, offer.ID.String(),
			"total offered %.2f is below the minimum investment %.2f", totalOffered, offer.MinimumInvestment)
	}

	now := time.Now()
	request := &models.InvestmentRequest{
		OfferID:           req.OfferID,
		InvestorID:        investorID,
		RequestedQuantity: req.RequestedQuantity,
		OfferedPricePerKg: req.OfferedPricePerKg,
		TotalOffered:      totalOffered,
		Message:           req.Message,
		Status:            models.RequestStatusPending,
		ExpiresAt:         now.Add(models.RequestTTL),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		return ensureEscrowAccount(tx, request.ID)
	})
	if err != nil {
		return nil, err
	}

	metrics.RequestsCreated.Inc()

	if s.notifications != nil {
		go s.notifications.NotifyRequestCreated(offer.FarmerID, request)
	}

	return request, nil
}

// ListRequestsForOffer returns an offer's requests to its owner.
func (s *RequestService) ListRequestsForOffer(callerID, offerID uuid.UUID) ([]models.InvestmentRequest, error) {
	var offer models.InvestmentOffer
	err := s.db.First(&offer, "id = ?", offerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewAppError(ErrNotFound, offerID.String(), "offer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if offer.FarmerID != callerID {
		return nil, NewAppError(ErrResourceOwnerMismatch, offerID.String(),
			"caller does not own this offer")
	}

	var requests []models.InvestmentRequest
	err = s.db.Where("offer_id = ?", offerID).
		Preload("Investor").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	return requests, nil
}

// ListRequestsForInvestor returns the caller's own requests.
func (s *RequestService) ListRequestsForInvestor(investorID uuid.UUID) ([]models.InvestmentRequest, error) {
	var requests []models.InvestmentRequest
	err := s.db.Where("investor_id = ?", investorID).
		Preload("Offer").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch investor requests: %w", err)
	}
	return requests, nil
}

// Respond decides a pending request. Rejection touches only the
// request. Acceptance decrements offer availability, completes the
// offer at zero and records a Confirmed transaction, all in one
// database transaction so a failed re-check leaves nothing behind.
func (s *RequestService) Respond(callerID uuid.UUID, input *RespondToRequestInput) (*models.InvestmentRequest, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, NewAppError(ErrValidation, "", "validation failed: %v", err)
	}

	var request models.InvestmentRequest
	err := s.db.First(&request, "id = ?", input.RequestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewAppError(ErrNotFound, input.RequestID.String(), "request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	var offer models.InvestmentOffer
	if err := s.db.First(&offer, "id = ?", request.OfferID).Error; err != nil {
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}

	if offer.FarmerID != callerID {
		return nil, NewAppError(ErrResourceOwnerMismatch, request.ID.String(),
			"caller does not own the offer behind this request")
	}

	if request.Status != models.RequestStatusPending {
		return nil, NewAppError(ErrAlreadyDecided, request.ID.String(),
			"request already %s", request.Status)
	}

	if request.Expired(time.Now()) {
		return nil, NewAppError(ErrRequestExpired, request.ID.String(),
			"request expired at %s", request.ExpiresAt.Format(time.RFC3339))
	}

	if !input.Accept {
		request.Status = models.RequestStatusRejected
		if err := s.db.Save(&request).Error; err != nil {
			return nil, fmt.Errorf("failed to reject request: %w", err)
		}

		metrics.RequestsResponded.WithLabelValues("rejected").Inc()
		if s.notifications != nil {
			go s.notifications.NotifyRequestDecided(&request, false)
		}
		return &request, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		lockedTx := tx
		if tx.Dialector.Name() == "postgres" {
			lockedTx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var live models.InvestmentOffer
		if err := lockedTx.First(&live, "id = ?", offer.ID).Error; err != nil {
			return fmt.Errorf("failed to lock offer: %w", err)
		}

		// Second check: another acceptance may have drained the offer
		// since this request was filed.
		if live.Status != models.OfferStatusActive || live.AvailableQuantity < request.RequestedQuantity {
			return NewAppError(ErrInsufficientAvailability, live.ID.String(),
				"offer has %d kg available, request needs %d", live.AvailableQuantity, request.RequestedQuantity)
		}

		live.AvailableQuantity -= request.RequestedQuantity
		if live.AvailableQuantity == 0 {
			live.Status = models.OfferStatusCompleted
		}
		if err := tx.Save(&live).Error; err != nil {
			return fmt.Errorf("failed to update offer availability: %w", err)
		}

		trade := &models.Transaction{
			OfferID:     live.ID,
			RequestID:   request.ID,
			FarmerID:    live.FarmerID,
			InvestorID:  request.InvestorID,
			Quantity:    request.RequestedQuantity,
			PricePerKg:  request.OfferedPricePerKg,
			TotalAmount: request.TotalOffered,
			Status:      models.TransactionStatusConfirmed,
		}
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		request.Status = models.RequestStatusAccepted
		if err := tx.Save(&request).Error; err != nil {
			return fmt.Errorf("failed to accept request: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RequestsResponded.WithLabelValues("accepted").Inc()
	if s.notifications != nil {
		go s.notifications.NotifyRequestDecided(&request, true)
	}

	return &request, nil
}

// ensureEscrowAccount derives and stores the request's deposit
// sub-account. Idempotent: the derivation is deterministic, so a
// pre-existing row is always identical to what would be written.
func ensureEscrowAccount(tx *gorm.DB, requestID uuid.UUID) error {
	escrow := models.EscrowAccount{
		RequestID:  requestID,
		Subaccount: utils.EscrowSubaccountHex(requestID.String()),
	}

	err := tx.Where(models.EscrowAccount{RequestID: requestID}).
		Attrs(models.EscrowAccount{Subaccount: escrow.Subaccount}).
		FirstOrCreate(&escrow).Error
	if err != nil {
		return fmt.Errorf("failed to store escrow account: %w", err)
	}

	return nil
}
