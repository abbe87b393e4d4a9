// internal/services/stats_service.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/harvestx/harvestx-backend/internal/models"
)

type StatsService struct {
	db *gorm.DB
}

type PlatformStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalFarmers      int64 `json:"total_farmers"`
	TotalInvestors    int64 `json:"total_investors"`
	TotalOffers       int64 `json:"total_offers"`
	ActiveOffers      int64 `json:"active_offers"`
	TotalRequests     int64 `json:"total_requests"`
	PendingRequests   int64 `json:"pending_requests"`
	TotalTransactions int64 `json:"total_transactions"`
	SettledTrades     int64 `json:"settled_trades"`
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

func (s *StatsService) GetPlatformStats() (*PlatformStats, error) {
	stats := &PlatformStats{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, s.db.Model(&models.User{})},
		{&stats.TotalFarmers, s.db.Model(&models.User{}).Where("role = ?", models.UserRoleFarmer)},
		{&stats.TotalInvestors, s.db.Model(&models.User{}).Where("role = ?", models.UserRoleInvestor)},
		{&stats.TotalOffers, s.db.Model(&models.InvestmentOffer{})},
		{&stats.ActiveOffers, s.db.Model(&models.InvestmentOffer{}).Where("status = ?", models.OfferStatusActive)},
		{&stats.TotalRequests, s.db.Model(&models.InvestmentRequest{})},
		{&stats.PendingRequests, s.db.Model(&models.InvestmentRequest{}).Where("status = ?", models.RequestStatusPending)},
		{&stats.TotalTransactions, s.db.Model(&models.Transaction{})},
		{&stats.SettledTrades, s.db.Model(&models.Transaction{}).Where("status = ?", models.TransactionStatusTokenized)},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to collect platform stats: %w", err)
		}
	}

	return stats, nil
}
