// internal/models/request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// InvestmentRequest is an investor's proposal against an offer. Status
// leaves Pending at most once, and only by the offer's farmer.
type InvestmentRequest struct {
	BaseModel
	OfferID           uuid.UUID     `json:"offer_id" gorm:"type:uuid;not null;index"`
	InvestorID        uuid.UUID     `json:"investor_id" gorm:"type:uuid;not null;index"`
	RequestedQuantity int64         `json:"requested_quantity" gorm:"not null"`
	OfferedPricePerKg float64       `json:"offered_price_per_kg" gorm:"type:decimal(12,2);not null"`
	TotalOffered      float64       `json:"total_offered" gorm:"type:decimal(14,2);not null"`
	Message           string        `json:"message" gorm:"type:text"`
	Status            RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ExpiresAt         time.Time     `json:"expires_at"`

	// Relationships
	Offer    InvestmentOffer `json:"offer,omitempty" gorm:"foreignKey:OfferID"`
	Investor User            `json:"investor,omitempty" gorm:"foreignKey:InvestorID"`
}

// RequestTTL is how long a pending request stays answerable.
const RequestTTL = 7 * 24 * time.Hour

func (r *InvestmentRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
