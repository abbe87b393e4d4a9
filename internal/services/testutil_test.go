// internal/services/testutil_test.go
package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/harvestx/harvestx-backend/internal/config"
	"github.com/harvestx/harvestx-backend/internal/models"
	"github.com/harvestx/harvestx-backend/internal/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.InvestmentOffer{},
		&models.InvestmentRequest{},
		&models.Transaction{},
		&models.BatchToken{},
		&models.ShareBalance{},
		&models.EscrowAccount{},
	)
	require.NoError(t, err)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Ledger: config.LedgerConfig{
			GatewayURL:     "http://127.0.0.1:4943",
			Decimals:       8,
			RequestTimeout: 5,
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	suffix := uuid.New().String()[:8]
	user := &models.User{
		Username: fmt.Sprintf("%s_%s", role, suffix),
		Email:    fmt.Sprintf("%s_%s@example.com", role, suffix),
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("TestPass123!"))
	require.NoError(t, db.Create(user).Error)

	return user
}

func createTestOffer(t *testing.T, db *gorm.DB, farmerID uuid.UUID, quantity int64) *models.InvestmentOffer {
	t.Helper()

	offerService := NewOfferService(db, NewShareLedgerService(db))
	offer, err := offerService.CreateOffer(farmerID, &CreateOfferRequest{
		ProductName:   "Basmati Rice",
		ProductType:   models.ProductTypeGrains,
		QualityGrade:  models.QualityGradePremium,
		Location:      "Punjab",
		HarvestDate:   "2026-11",
		TotalQuantity: quantity,
		PricePerKg:    2.5,
	})
	require.NoError(t, err)

	return offer
}

func testPaginationParams() utils.PaginationParams {
	return utils.PaginationParams{
		Page:  1,
		Limit: 20,
		Sort:  "created_at",
		Order: "desc",
	}
}

// stubVerifier lets tests script the external deposit check.
type stubVerifier struct {
	received bool
	err      error
	calls    int32
	block    chan struct{}
}

func (v *stubVerifier) VerifyDeposit(ctx context.Context, subaccount string, amount int64) (bool, error) {
	atomic.AddInt32(&v.calls, 1)
	if v.block != nil {
		<-v.block
	}
	return v.received, v.err
}

func (v *stubVerifier) callCount() int {
	return int(atomic.LoadInt32(&v.calls))
}

func sumHolderBalances(t *testing.T, db *gorm.DB, tokenID string) int64 {
	t.Helper()

	var total int64
	err := db.Model(&models.ShareBalance{}).
		Where("token_id = ?", tokenID).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	require.NoError(t, err)

	return total
}
