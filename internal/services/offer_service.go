// internal/services/offer_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harvestx/harvestx-backend/internal/metrics"
	"github.com/harvestx/harvestx-backend/internal/models"
	"github.com/harvestx/harvestx-backend/internal/utils"
)

// OfferService owns the offer registry. Creating an offer also mints
// the batch share pool, so a listing and its ledger never exist
// half-initialized.
type OfferService struct {
	db          *gorm.DB
	shareLedger *ShareLedgerService
}

type CreateOfferRequest struct {
	ProductName       string              `json:"product_name" validate:"required,min=2,max=255"`
	ProductType       models.ProductType  `json:"product_type" validate:"required"`
	QualityGrade      models.QualityGrade `json:"quality_grade" validate:"required"`
	Description       string              `json:"description" validate:"max=5000"`
	Location          string              `json:"location" validate:"required,max=255"`
	HarvestDate       string              `json:"harvest_date" validate:"required,harvest_date"`
	TotalQuantity     int64               `json:"total_quantity" validate:"required,gt=0"`
	PricePerKg        float64             `json:"price_per_kg" validate:"required,gt=0"`
	MinimumInvestment float64             `json:"minimum_investment" validate:"min=0"`
}

func NewOfferService(db *gorm.DB, shareLedger *ShareLedgerService) *OfferService {
	return &OfferService{
		db:          db,
		shareLedger: shareLedger,
	}
}

// CreateOffer lists a harvest batch. The offer row, the batch token
// and the farmer's initial share balance are written as one unit.
func (s *OfferService) CreateOffer(farmerID uuid.UUID, req *CreateOfferRequest) (*models.InvestmentOffer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewAppError(ErrValidation, "", "validation failed: %v", err)
	}

	farmer, err := loadActiveUser(s.db, farmerID)
	if err != nil {
		return nil, err
	}

	if !farmer.HasRole(models.UserRoleFarmer, models.UserRoleAdmin) {
		return nil, NewAppError(ErrRoleDenied, farmerID.String(),
			"only farmers and admins can list harvest batches")
	}

	offer := &models.InvestmentOffer{
		FarmerID:          farmerID,
		ProductName:       req.ProductName,
		ProductType:       req.ProductType,
		QualityGrade:      req.QualityGrade,
		Description:       req.Description,
		Location:          req.Location,
		HarvestDate:       req.HarvestDate,
		TotalQuantity:     req.TotalQuantity,
		AvailableQuantity: req.TotalQuantity,
		PricePerKg:        req.PricePerKg,
		MinimumInvestment: req.MinimumInvestment,
		Status:            models.OfferStatusActive,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(offer).Error; err != nil {
			return fmt.Errorf("failed to create offer: %w", err)
		}

		return s.shareLedger.InitializeBatch(tx, offer.ID, farmerID, req.TotalQuantity)
	})
	if err != nil {
		return nil, err
	}

	metrics.OffersCreated.Inc()
	return offer, nil
}

// ListActiveOffers returns the open marketplace, newest first.
func (s *OfferService) ListActiveOffers(params utils.PaginationParams) ([]models.InvestmentOffer, int64, error) {
	query := s.db.Model(&models.InvestmentOffer{}).
		Where("status = ?", models.OfferStatusActive).
		Preload("Farmer")

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("product_name LIKE ? OR location LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	allowedSortFields := []string{"created_at", "price_per_kg", "available_quantity", "harvest_date"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var offers []models.InvestmentOffer
	if err := query.Find(&offers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch offers: %w", err)
	}

	return offers, total, nil
}

// ListOffersByFarmer returns every offer a farmer owns, any status.
func (s *OfferService) ListOffersByFarmer(farmerID uuid.UUID) ([]models.InvestmentOffer, error) {
	var offers []models.InvestmentOffer
	err := s.db.Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch farmer offers: %w", err)
	}
	return offers, nil
}

func (s *OfferService) GetOffer(id uuid.UUID) (*models.InvestmentOffer, error) {
	var offer models.InvestmentOffer
	err := s.db.Preload("Farmer").First(&offer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewAppError(ErrNotFound, id.String(), "offer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &offer, nil
}

// AttachDocument records an uploaded document URL on an offer. Only
// the owning farmer may attach.
func (s *OfferService) AttachDocument(offerID, callerID uuid.UUID, url string) (*models.InvestmentOffer, error) {
	offer, err := s.GetOffer(offerID)
	if err != nil {
		return nil, err
	}

	if offer.FarmerID != callerID {
		return nil, NewAppError(ErrResourceOwnerMismatch, offerID.String(),
			"caller does not own this offer")
	}

	offer.Documents = append(offer.Documents, url)
	if err := s.db.Model(offer).Update("documents", offer.Documents).Error; err != nil {
		return nil, fmt.Errorf("failed to attach document: %w", err)
	}

	return offer, nil
}
