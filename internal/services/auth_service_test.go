// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvestx/harvestx-backend/internal/config"
	"github.com/harvestx/harvestx-backend/internal/models"
)

func authTestConfig() *config.Config {
	cfg := testConfig()
	cfg.JWT = config.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenTTL:  1,
		RefreshTokenTTL: 24,
	}
	return cfg
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	authService := NewAuthService(db, authTestConfig())

	resp, err := authService.Register(&RegisterRequest{
		Username: "ramesh_farms",
		Email:    "ramesh@example.com",
		Password: "StrongPass1!",
		Role:     models.UserRoleFarmer,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, models.UserRoleFarmer, resp.User.Role)

	login, err := authService.Login(&LoginRequest{
		Email:    "ramesh@example.com",
		Password: "StrongPass1!",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	db := setupTestDB(t)
	authService := NewAuthService(db, authTestConfig())

	_, err := authService.Register(&RegisterRequest{
		Username: "wannabe_admin",
		Email:    "admin2@example.com",
		Password: "StrongPass1!",
		Role:     models.UserRoleAdmin,
	})

	require.Error(t, err)
	assert.Equal(t, ErrValidation, KindOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	authService := NewAuthService(db, authTestConfig())

	_, err := authService.Register(&RegisterRequest{
		Username: "first_user",
		Email:    "dup@example.com",
		Password: "StrongPass1!",
		Role:     models.UserRoleInvestor,
	})
	require.NoError(t, err)

	_, err = authService.Register(&RegisterRequest{
		Username: "second_user",
		Email:    "dup@example.com",
		Password: "StrongPass1!",
		Role:     models.UserRoleInvestor,
	})
	require.Error(t, err)
	assert.Equal(t, ErrValidation, KindOf(err))
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	authService := NewAuthService(db, authTestConfig())

	_, err := authService.Register(&RegisterRequest{
		Username: "careful_investor",
		Email:    "careful@example.com",
		Password: "StrongPass1!",
		Role:     models.UserRoleInvestor,
	})
	require.NoError(t, err)

	_, err = authService.Login(&LoginRequest{
		Email:    "careful@example.com",
		Password: "WrongPass1!",
	})
	require.Error(t, err)
	assert.Equal(t, ErrAuthenticationRequired, KindOf(err))
}

func TestLoginSuspendedAccount(t *testing.T) {
	db := setupTestDB(t)
	authService := NewAuthService(db, authTestConfig())

	resp, err := authService.Register(&RegisterRequest{
		Username: "suspended_user",
		Email:    "suspended@example.com",
		Password: "StrongPass1!",
		Role:     models.UserRoleFarmer,
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusSuspended).Error)

	_, err = authService.Login(&LoginRequest{
		Email:    "suspended@example.com",
		Password: "StrongPass1!",
	})
	require.Error(t, err)
	assert.Equal(t, ErrRoleDenied, KindOf(err))
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	authService := NewAuthService(db, authTestConfig())

	resp, err := authService.Register(&RegisterRequest{
		Username: "refresher",
		Email:    "refresher@example.com",
		Password: "StrongPass1!",
		Role:     models.UserRoleInvestor,
	})
	require.NoError(t, err)

	refreshed, err := authService.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = authService.RefreshToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, ErrAuthenticationRequired, KindOf(err))
}
