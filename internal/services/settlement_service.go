// internal/services/settlement_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harvestx/harvestx-backend/internal/config"
	"github.com/harvestx/harvestx-backend/internal/metrics"
	"github.com/harvestx/harvestx-backend/internal/models"
)

// PaymentVerifier confirms that the expected deposit has arrived at a
// derived escrow sub-account. The call may be slow and must never be
// assumed to succeed; settlement mutates nothing until it returns.
type PaymentVerifier interface {
	VerifyDeposit(ctx context.Context, subaccount string, amount int64) (bool, error)
}

// SettlementService drives escrow verification and the share transfer
// that tokenizes a confirmed trade. A per-request lock spans the
// external verifier call so two settle calls for the same request can
// never interleave across the suspension point.
type SettlementService struct {
	db            *gorm.DB
	cfg           *config.Config
	verifier      PaymentVerifier
	shareLedger   *ShareLedgerService
	notifications *NotificationService
	locks         requestLocks
}

type DepositInfo struct {
	RequestID        uuid.UUID `json:"request_id"`
	EscrowSubaccount string    `json:"escrow_subaccount"`
	ExpectedAmount   int64     `json:"expected_amount"`
	Decimals         int       `json:"decimals"`
}

func NewSettlementService(db *gorm.DB, cfg *config.Config, verifier PaymentVerifier, shareLedger *ShareLedgerService, notifications *NotificationService) *SettlementService {
	return &SettlementService{
		db:            db,
		cfg:           cfg,
		verifier:      verifier,
		shareLedger:   shareLedger,
		notifications: notifications,
	}
}

// GetDepositInfo returns the escrow target and expected amount, in the
// ledger's smallest unit, for the request's investor. Lazily stores
// the escrow record if request creation predates it.
func (s *SettlementService) GetDepositInfo(callerID, requestID uuid.UUID) (*DepositInfo, error) {
	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}

	if request.InvestorID != callerID {
		return nil, NewAppError(ErrResourceOwnerMismatch, requestID.String(),
			"caller is not the request's investor")
	}

	if err := ensureEscrowAccount(s.db, requestID); err != nil {
		return nil, err
	}

	var escrow models.EscrowAccount
	if err := s.db.First(&escrow, "request_id = ?", requestID).Error; err != nil {
		return nil, fmt.Errorf("failed to load escrow account: %w", err)
	}

	return &DepositInfo{
		RequestID:        requestID,
		EscrowSubaccount: escrow.Subaccount,
		ExpectedAmount:   s.expectedAmount(request.TotalOffered),
		Decimals:         s.cfg.Ledger.Decimals,
	}, nil
}

// Settle verifies the escrow deposit and moves the traded shares from
// farmer to investor, marking the transaction Tokenized. Idempotent:
// an already-Tokenized trade is returned unchanged. Callable only by
// the offer's farmer or an admin.
func (s *SettlementService) Settle(ctx context.Context, callerID, requestID uuid.UUID) (*models.Transaction, error) {
	if !s.locks.tryLock(requestID) {
		return nil, NewAppError(ErrSettlementInProgress, requestID.String(),
			"settlement already running for this request")
	}
	defer s.locks.unlock(requestID)

	if _, err := s.loadRequest(requestID); err != nil {
		return nil, err
	}

	var trade models.Transaction
	err := s.db.First(&trade, "request_id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewAppError(ErrNotFound, requestID.String(), "no confirmed transaction for request")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	caller, err := loadActiveUser(s.db, callerID)
	if err != nil {
		return nil, err
	}
	if callerID != trade.FarmerID && !caller.HasRole(models.UserRoleAdmin) {
		return nil, NewAppError(ErrRoleDenied, requestID.String(),
			"settlement is restricted to the offer's farmer or an admin")
	}

	if trade.Status == models.TransactionStatusTokenized {
		return &trade, nil
	}

	var escrow models.EscrowAccount
	err = s.db.First(&escrow, "request_id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewAppError(ErrNotFound, requestID.String(), "no escrow account for request")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	expected := s.expectedAmount(trade.TotalAmount)

	verifyCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Ledger.RequestTimeout)*time.Second)
	defer cancel()

	received, err := s.verifier.VerifyDeposit(verifyCtx, escrow.Subaccount, expected)
	if err != nil {
		metrics.SettlementFailures.WithLabelValues("verifier_error").Inc()
		return nil, NewAppError(ErrPaymentNotReceived, requestID.String(),
			"deposit verification failed: %v", err)
	}
	if !received {
		metrics.SettlementFailures.WithLabelValues("payment_missing").Inc()
		return nil, NewAppError(ErrPaymentNotReceived, requestID.String(),
			"expected %d units at sub-account %s", expected, escrow.Subaccount)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		lockedTx := tx
		if tx.Dialector.Name() == "postgres" {
			lockedTx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var live models.Transaction
		if err := lockedTx.First(&live, "id = ?", trade.ID).Error; err != nil {
			return fmt.Errorf("failed to lock transaction: %w", err)
		}

		if live.Status == models.TransactionStatusTokenized {
			trade = live
			return nil
		}

		tokenID := models.ShareTokenID(live.OfferID)
		if err := s.shareLedger.Transfer(tx, tokenID, live.FarmerID, live.InvestorID, live.Quantity); err != nil {
			return err
		}

		now := time.Now()
		live.Status = models.TransactionStatusTokenized
		live.TokenizedAt = &now
		if err := tx.Save(&live).Error; err != nil {
			return fmt.Errorf("failed to tokenize transaction: %w", err)
		}

		trade = live
		return nil
	})
	if err != nil {
		if KindOf(err) == ErrInsufficientShareBalance {
			metrics.SettlementFailures.WithLabelValues("share_underflow").Inc()
		}
		return nil, err
	}

	metrics.TradesSettled.Inc()

	if s.notifications != nil {
		go s.notifications.NotifyTradeSettled(&trade)
	}

	return &trade, nil
}

func (s *SettlementService) loadRequest(requestID uuid.UUID) (*models.InvestmentRequest, error) {
	var request models.InvestmentRequest
	err := s.db.First(&request, "id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewAppError(ErrNotFound, requestID.String(), "request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &request, nil
}

// expectedAmount converts a trade total to the ledger's smallest unit.
func (s *SettlementService) expectedAmount(total float64) int64 {
	return int64(math.Round(total * math.Pow10(s.cfg.Ledger.Decimals)))
}

// requestLocks hands out one mutex per request so a settlement holds
// its request exclusively across the external verifier call.
type requestLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (l *requestLocks) tryLock(id uuid.UUID) bool {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	return m.TryLock()
}

func (l *requestLocks) unlock(id uuid.UUID) {
	l.mu.Lock()
	m := l.locks[id]
	l.mu.Unlock()

	if m != nil {
		m.Unlock()
	}
}
