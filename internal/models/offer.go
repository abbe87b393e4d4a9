// internal/models/offer.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// InvestmentOffer is a harvest batch listed by a farmer for fractional
// investment. AvailableQuantity only ever decreases; the offer flips to
// Completed exactly when it reaches zero and never reverts.
type InvestmentOffer struct {
	BaseModel
	FarmerID          uuid.UUID      `json:"farmer_id" gorm:"type:uuid;not null;index"`
	ProductName       string         `json:"product_name" gorm:"size:255;not null"`
	ProductType       ProductType    `json:"product_type" gorm:"type:varchar(20);not null;index"`
	QualityGrade      QualityGrade   `json:"quality_grade" gorm:"type:varchar(20);not null"`
	Description       string         `json:"description" gorm:"type:text"`
	Location          string         `json:"location" gorm:"size:255"`
	HarvestDate       string         `json:"harvest_date" gorm:"size:50"`
	TotalQuantity     int64          `json:"total_quantity" gorm:"not null"`
	AvailableQuantity int64          `json:"available_quantity" gorm:"not null"`
	PricePerKg        float64        `json:"price_per_kg" gorm:"type:decimal(12,2);not null"`
	MinimumInvestment float64        `json:"minimum_investment" gorm:"type:decimal(12,2);default:0"`
	Documents         pq.StringArray `json:"documents" gorm:"type:text[]"`
	Status            OfferStatus    `json:"status" gorm:"type:varchar(20);default:'active';index"`

	// Relationships
	Farmer   User                `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	Requests []InvestmentRequest `json:"requests,omitempty" gorm:"foreignKey:OfferID"`
}
