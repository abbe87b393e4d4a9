// internal/services/offer_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvestx/harvestx-backend/internal/models"
)

func TestCreateOfferMintsSharePool(t *testing.T) {
	db := setupTestDB(t)
	farmer := createTestUser(t, db, models.UserRoleFarmer)
	ledger := NewShareLedgerService(db)

	offer := createTestOffer(t, db, farmer.ID, 100)

	assert.Equal(t, models.OfferStatusActive, offer.Status)
	assert.Equal(t, int64(100), offer.TotalQuantity)
	assert.Equal(t, int64(100), offer.AvailableQuantity)

	tokenID := models.ShareTokenID(offer.ID)

	supply, err := ledger.TotalSupply(tokenID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), supply)

	balance, err := ledger.BalanceOf(tokenID, farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}

func TestCreateOfferRejectsNonFarmer(t *testing.T) {
	db := setupTestDB(t)
	investor := createTestUser(t, db, models.UserRoleInvestor)
	offerService := NewOfferService(db, NewShareLedgerService(db))

	_, err := offerService.CreateOffer(investor.ID, &CreateOfferRequest{
		ProductName:   "Mangoes",
		ProductType:   models.ProductTypeFruits,
		QualityGrade:  models.QualityGradeOrganic,
		Location:      "Maharashtra",
		HarvestDate:   "2026-05-15",
		TotalQuantity: 50,
		PricePerKg:    4.0,
	})

	require.Error(t, err)
	assert.Equal(t, ErrRoleDenied, KindOf(err))
}

func TestCreateOfferValidation(t *testing.T) {
	db := setupTestDB(t)
	farmer := createTestUser(t, db, models.UserRoleFarmer)
	offerService := NewOfferService(db, NewShareLedgerService(db))

	_, err := offerService.CreateOffer(farmer.ID, &CreateOfferRequest{
		ProductName:   "Wheat",
		ProductType:   models.ProductTypeGrains,
		QualityGrade:  models.QualityGradeStandard,
		Location:      "Haryana",
		HarvestDate:   "november 2026",
		TotalQuantity: 10,
		PricePerKg:    1.2,
	})

	require.Error(t, err)
	assert.Equal(t, ErrValidation, KindOf(err))
}

func TestListActiveOffersExcludesCompleted(t *testing.T) {
	db := setupTestDB(t)
	farmer := createTestUser(t, db, models.UserRoleFarmer)
	offerService := NewOfferService(db, NewShareLedgerService(db))

	active := createTestOffer(t, db, farmer.ID, 100)
	completed := createTestOffer(t, db, farmer.ID, 50)
	require.NoError(t, db.Model(&models.InvestmentOffer{}).
		Where("id = ?", completed.ID).
		Update("status", models.OfferStatusCompleted).Error)

	offers, total, err := offerService.ListActiveOffers(testPaginationParams())
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, offers, 1)
	assert.Equal(t, active.ID, offers[0].ID)
}

func TestAttachDocumentOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	farmer := createTestUser(t, db, models.UserRoleFarmer)
	other := createTestUser(t, db, models.UserRoleFarmer)
	offerService := NewOfferService(db, NewShareLedgerService(db))

	offer := createTestOffer(t, db, farmer.ID, 100)

	_, err := offerService.AttachDocument(offer.ID, other.ID, "https://cdn.example.com/cert.pdf")
	require.Error(t, err)
	assert.Equal(t, ErrResourceOwnerMismatch, KindOf(err))

	updated, err := offerService.AttachDocument(offer.ID, farmer.ID, "https://cdn.example.com/cert.pdf")
	require.NoError(t, err)
	assert.Contains(t, updated.Documents, "https://cdn.example.com/cert.pdf")
}
