// internal/services/share_ledger_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harvestx/harvestx-backend/internal/models"
)

// ShareLedgerService owns the batch token pools and per-holder share
// balances. Every batch is a closed pool: the supply fixed at offer
// creation is the sum of all holder balances at every observable
// point. Mutations happen only inside the caller's gorm transaction so
// ledger writes commit or roll back with the rest of the operation.
type ShareLedgerService struct {
	db *gorm.DB
}

func NewShareLedgerService(db *gorm.DB) *ShareLedgerService {
	return &ShareLedgerService{db: db}
}

// InitializeBatch mints the share pool for a new offer, crediting the
// entire supply to the farmer. Runs inside the offer-creation
// transaction.
func (s *ShareLedgerService) InitializeBatch(tx *gorm.DB, offerID, farmerID uuid.UUID, supply int64) error {
	token := &models.BatchToken{
		TokenID:     models.ShareTokenID(offerID),
		OfferID:     offerID,
		TotalSupply: supply,
	}
	if err := tx.Create(token).Error; err != nil {
		return fmt.Errorf("failed to mint batch token: %w", err)
	}

	initial := &models.ShareBalance{
		TokenID:  token.TokenID,
		HolderID: farmerID,
		Balance:  supply,
	}
	if err := tx.Create(initial).Error; err != nil {
		return fmt.Errorf("failed to credit initial balance: %w", err)
	}

	return nil
}

// Transfer moves amount shares of tokenID from one holder to another
// inside the caller's transaction. Underflow is rejected, never
// clamped; clamping would silently break pool conservation.
func (s *ShareLedgerService) Transfer(tx *gorm.DB, tokenID string, from, to uuid.UUID, amount int64) error {
	if amount <= 0 {
		return NewAppError(ErrValidation, tokenID, "transfer amount must be positive, got %d", amount)
	}

	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var source models.ShareBalance
	err := query.Where("token_id = ? AND holder_id = ?", tokenID, from).First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewAppError(ErrInsufficientShareBalance, tokenID, "holder %s has no shares", from)
	}
	if err != nil {
		return fmt.Errorf("failed to load source balance: %w", err)
	}

	if source.Balance < amount {
		return NewAppError(ErrInsufficientShareBalance, tokenID,
			"holder %s has %d shares, needs %d", from, source.Balance, amount)
	}

	if err := tx.Model(&source).Update("balance", source.Balance-amount).Error; err != nil {
		return fmt.Errorf("failed to debit source balance: %w", err)
	}

	var dest models.ShareBalance
	err = tx.Where(models.ShareBalance{TokenID: tokenID, HolderID: to}).FirstOrCreate(&dest).Error
	if err != nil {
		return fmt.Errorf("failed to load destination balance: %w", err)
	}

	if err := tx.Model(&dest).Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		return fmt.Errorf("failed to credit destination balance: %w", err)
	}

	return nil
}

// BalanceOf returns a holder's position in a token; absent rows read
// as zero.
func (s *ShareLedgerService) BalanceOf(tokenID string, holder uuid.UUID) (int64, error) {
	var balance models.ShareBalance
	err := s.db.Where("token_id = ? AND holder_id = ?", tokenID, holder).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load balance: %w", err)
	}
	return balance.Balance, nil
}

// TotalSupply returns the fixed pool size of a batch token.
func (s *ShareLedgerService) TotalSupply(tokenID string) (int64, error) {
	var token models.BatchToken
	err := s.db.First(&token, "token_id = ?", tokenID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, NewAppError(ErrNotFound, tokenID, "batch token not found")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load batch token: %w", err)
	}
	return token.TotalSupply, nil
}

// HolderBalances lists all positions in a token, largest first.
func (s *ShareLedgerService) HolderBalances(tokenID string) ([]models.ShareBalance, error) {
	var balances []models.ShareBalance
	err := s.db.Where("token_id = ?", tokenID).Order("balance DESC").Find(&balances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	return balances, nil
}
