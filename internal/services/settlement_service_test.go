// internal/services/settlement_service_test.go
package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/harvestx/harvestx-backend/internal/models"
)

type settlementFixture struct {
	db       *gorm.DB
	farmer   *models.User
	investor *models.User
	offer    *models.InvestmentOffer
	request  *models.InvestmentRequest
	verifier *stubVerifier
	service  *SettlementService
	ledger   *ShareLedgerService
}

// newSettlementFixture builds a 100 kg offer with an accepted 40 kg
// request at 2.0 per kg, ready to settle.
func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	db := setupTestDB(t)
	farmer := createTestUser(t, db, models.UserRoleFarmer)
	investor := createTestUser(t, db, models.UserRoleInvestor)
	offer := createTestOffer(t, db, farmer.ID, 100)

	requestService := NewRequestService(db, nil)
	request, err := requestService.CreateRequest(investor.ID, &CreateInvestmentRequest{
		OfferID:           offer.ID,
		RequestedQuantity: 40,
		OfferedPricePerKg: 2.0,
	})
	require.NoError(t, err)

	_, err = requestService.Respond(farmer.ID, &RespondToRequestInput{RequestID: request.ID, Accept: true})
	require.NoError(t, err)

	verifier := &stubVerifier{received: true}
	ledger := NewShareLedgerService(db)

	return &settlementFixture{
		db:       db,
		farmer:   farmer,
		investor: investor,
		offer:    offer,
		request:  request,
		verifier: verifier,
		service:  NewSettlementService(db, testConfig(), verifier, ledger, nil),
		ledger:   ledger,
	}
}

func TestGetDepositInfo(t *testing.T) {
	f := newSettlementFixture(t)

	info, err := f.service.GetDepositInfo(f.investor.ID, f.request.ID)
	require.NoError(t, err)

	assert.Equal(t, f.request.ID, info.RequestID)
	assert.Len(t, info.EscrowSubaccount, 64)
	// 80.0 total at 8 decimals
	assert.Equal(t, int64(8_000_000_000), info.ExpectedAmount)
	assert.Equal(t, 8, info.Decimals)
}

func TestGetDepositInfoInvestorOnly(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.service.GetDepositInfo(f.farmer.ID, f.request.ID)
	require.Error(t, err)
	assert.Equal(t, ErrResourceOwnerMismatch, KindOf(err))
}

func TestSettleTransfersShares(t *testing.T) {
	f := newSettlementFixture(t)
	tokenID := models.ShareTokenID(f.offer.ID)

	trade, err := f.service.Settle(context.Background(), f.farmer.ID, f.request.ID)
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusTokenized, trade.Status)
	require.NotNil(t, trade.TokenizedAt)

	farmerBalance, err := f.ledger.BalanceOf(tokenID, f.farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), farmerBalance)

	investorBalance, err := f.ledger.BalanceOf(tokenID, f.investor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), investorBalance)

	// Pool conservation: balances always sum to the fixed supply.
	assert.Equal(t, int64(100), sumHolderBalances(t, f.db, tokenID))
}

func TestSettleIdempotent(t *testing.T) {
	f := newSettlementFixture(t)
	tokenID := models.ShareTokenID(f.offer.ID)

	first, err := f.service.Settle(context.Background(), f.farmer.ID, f.request.ID)
	require.NoError(t, err)

	second, err := f.service.Settle(context.Background(), f.farmer.ID, f.request.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.TransactionStatusTokenized, second.Status)

	// Second call short-circuits before the verifier.
	assert.Equal(t, 1, f.verifier.callCount())

	investorBalance, err := f.ledger.BalanceOf(tokenID, f.investor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), investorBalance)
	assert.Equal(t, int64(100), sumHolderBalances(t, f.db, tokenID))
}

func TestSettlePaymentMissing(t *testing.T) {
	f := newSettlementFixture(t)
	f.verifier.received = false

	_, err := f.service.Settle(context.Background(), f.farmer.ID, f.request.ID)
	require.Error(t, err)
	assert.Equal(t, ErrPaymentNotReceived, KindOf(err))

	// No state change on failed verification.
	var trade models.Transaction
	require.NoError(t, f.db.First(&trade, "request_id = ?", f.request.ID).Error)
	assert.Equal(t, models.TransactionStatusConfirmed, trade.Status)

	tokenID := models.ShareTokenID(f.offer.ID)
	investorBalance, err := f.ledger.BalanceOf(tokenID, f.investor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), investorBalance)
}

func TestSettleVerifierErrorSurfacesAsPaymentNotReceived(t *testing.T) {
	f := newSettlementFixture(t)
	f.verifier.err = errors.New("gateway timeout")

	_, err := f.service.Settle(context.Background(), f.farmer.ID, f.request.ID)
	require.Error(t, err)
	assert.Equal(t, ErrPaymentNotReceived, KindOf(err))
}

func TestSettleRestrictedToFarmerOrAdmin(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.service.Settle(context.Background(), f.investor.ID, f.request.ID)
	require.Error(t, err)
	assert.Equal(t, ErrRoleDenied, KindOf(err))

	admin := createTestUser(t, f.db, models.UserRoleAdmin)
	trade, err := f.service.Settle(context.Background(), admin.ID, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusTokenized, trade.Status)
}

func TestSettleUnacceptedRequest(t *testing.T) {
	db := setupTestDB(t)
	farmer := createTestUser(t, db, models.UserRoleFarmer)
	investor := createTestUser(t, db, models.UserRoleInvestor)
	offer := createTestOffer(t, db, farmer.ID, 100)

	requestService := NewRequestService(db, nil)
	request, err := requestService.CreateRequest(investor.ID, &CreateInvestmentRequest{
		OfferID:           offer.ID,
		RequestedQuantity: 10,
		OfferedPricePerKg: 2.0,
	})
	require.NoError(t, err)

	service := NewSettlementService(db, testConfig(), &stubVerifier{received: true}, NewShareLedgerService(db), nil)

	// Still pending: no confirmed transaction exists yet.
	_, err = service.Settle(context.Background(), farmer.ID, request.ID)
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, KindOf(err))
}

func TestSettleConcurrentCallRejected(t *testing.T) {
	f := newSettlementFixture(t)
	f.verifier.block = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)

	firstErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		_, err := f.service.Settle(context.Background(), f.farmer.ID, f.request.ID)
		firstErr <- err
	}()

	// Wait until the first settle is parked inside the verifier.
	require.Eventually(t, func() bool { return f.verifier.callCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err := f.service.Settle(context.Background(), f.farmer.ID, f.request.ID)
	require.Error(t, err)
	assert.Equal(t, ErrSettlementInProgress, KindOf(err))

	close(f.verifier.block)
	wg.Wait()
	require.NoError(t, <-firstErr)
}
