// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction records an accepted trade. It is created exactly once per
// accepted request and is immutable apart from the single
// Confirmed -> Tokenized transition performed by settlement.
type Transaction struct {
	BaseModel
	OfferID     uuid.UUID         `json:"offer_id" gorm:"type:uuid;not null;index"`
	RequestID   uuid.UUID         `json:"request_id" gorm:"type:uuid;not null;uniqueIndex"`
	FarmerID    uuid.UUID         `json:"farmer_id" gorm:"type:uuid;not null;index"`
	InvestorID  uuid.UUID         `json:"investor_id" gorm:"type:uuid;not null;index"`
	Quantity    int64             `json:"quantity" gorm:"not null"`
	PricePerKg  float64           `json:"price_per_kg" gorm:"type:decimal(12,2);not null"`
	TotalAmount float64           `json:"total_amount" gorm:"type:decimal(14,2);not null"`
	Status      TransactionStatus `json:"status" gorm:"type:varchar(20);default:'confirmed';index"`
	TokenizedAt *time.Time        `json:"tokenized_at"`

	// Relationships
	Offer    InvestmentOffer   `json:"offer,omitempty" gorm:"foreignKey:OfferID"`
	Request  InvestmentRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	Farmer   User              `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	Investor User              `json:"investor,omitempty" gorm:"foreignKey:InvestorID"`
}
