// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the ID application-side so the same models work
// against Postgres and the in-memory test database.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleFarmer   UserRole = "farmer"
	UserRoleInvestor UserRole = "investor"
	UserRoleAdmin    UserRole = "admin"
	UserRoleGuest    UserRole = "guest"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type ProductType string

const (
	ProductTypeGrains     ProductType = "grains"
	ProductTypeFruits     ProductType = "fruits"
	ProductTypeVegetables ProductType = "vegetables"
	ProductTypeLegumes    ProductType = "legumes"
	ProductTypeNuts       ProductType = "nuts"
	ProductTypeHerbs      ProductType = "herbs"
	ProductTypeOther      ProductType = "other"
)

type QualityGrade string

const (
	QualityGradePremium   QualityGrade = "premium"
	QualityGradeGrade1    QualityGrade = "grade1"
	QualityGradeGrade2    QualityGrade = "grade2"
	QualityGradeStandard  QualityGrade = "standard"
	QualityGradeOrganic   QualityGrade = "organic"
	QualityGradeCertified QualityGrade = "certified"
)

type OfferStatus string

const (
	OfferStatusActive    OfferStatus = "active"
	OfferStatusCompleted OfferStatus = "completed"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

type TransactionStatus string

const (
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusTokenized TransactionStatus = "tokenized"
)
