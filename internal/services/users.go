// internal/services/users.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harvestx/harvestx-backend/internal/models"
)

func loadActiveUser(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewAppError(ErrNotFound, id.String(), "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, NewAppError(ErrRoleDenied, id.String(), "account is not active")
	}

	return &user, nil
}
