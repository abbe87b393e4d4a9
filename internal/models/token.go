// internal/models/token.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareTokenID returns the ledger token identifier for a batch.
func ShareTokenID(offerID uuid.UUID) string {
	return "shares:" + offerID.String()
}

// BatchToken is the closed share pool minted alongside an offer. The
// supply is fixed at offer creation; settlement only moves shares
// between holders, never mints or burns.
type BatchToken struct {
	TokenID     string    `json:"token_id" gorm:"primaryKey;size:64"`
	OfferID     uuid.UUID `json:"offer_id" gorm:"type:uuid;not null;uniqueIndex"`
	TotalSupply int64     `json:"total_supply" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShareBalance is one holder's position in a batch token. The composite
// unique index stands in for a nested token -> holder map.
type ShareBalance struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	TokenID   string    `json:"token_id" gorm:"size:64;not null;uniqueIndex:idx_share_token_holder"`
	HolderID  uuid.UUID `json:"holder_id" gorm:"type:uuid;not null;uniqueIndex:idx_share_token_holder"`
	Balance   int64     `json:"balance" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EscrowAccount maps a request to its derived 32-byte deposit
// sub-account, stored hex-encoded. Re-derivable and effectively
// immutable for the request's lifetime.
type EscrowAccount struct {
	RequestID  uuid.UUID `json:"request_id" gorm:"type:uuid;primaryKey"`
	Subaccount string    `json:"subaccount" gorm:"size:64;not null"`
	CreatedAt  time.Time `json:"created_at"`
}
