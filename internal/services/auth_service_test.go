package services

import (
	"testing"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesProfileAndCitizenRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), NewAuditService(db))

	resp, err := svc.Register(&dto.RegisterRequest{
		Email:    "Citizen@Example.com",
		Password: "password123",
		FullName: "Asha Verma",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "citizen@example.com", resp.User.Email)
	assert.Equal(t, string(roles.Citizen), resp.User.Role)

	var profile models.Profile
	require.NoError(t, db.First(&profile, "email = ?", "citizen@example.com").Error)
	assert.NotEqual(t, "password123", profile.Password)

	var role models.UserRole
	require.NoError(t, db.First(&role, "user_id = ?", profile.ID).Error)
	assert.Equal(t, string(roles.Citizen), role.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), NewAuditService(db))

	_, err := svc.Register(&dto.RegisterRequest{Email: "a@b.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(&dto.RegisterRequest{Email: "a@b.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), NewAuditService(db))

	_, err := svc.Register(&dto.RegisterRequest{Email: "a@b.com", Password: "short"})
	assert.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), NewAuditService(db))
	seedUser(t, db, "user@example.com", roles.Citizen)

	_, err := svc.Login(&dto.LoginRequest{Email: "user@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(&dto.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), NewAuditService(db))
	seedUser(t, db, "user@example.com", roles.Citizen)

	login, err := svc.Login(&dto.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The spent token is single-use.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), NewAuditService(db))
	seedUser(t, db, "user@example.com", roles.Citizen)

	login, err := svc.Login(&dto.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	token, err := svc.ForgotPassword(&dto.ForgotPasswordRequest{Email: "user@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(&dto.ResetPasswordRequest{
		Token: token, Password: "newpassword456",
	}))

	_, err = svc.Login(&dto.LoginRequest{Email: "user@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(&dto.LoginRequest{Email: "user@example.com", Password: "newpassword456"})
	assert.NoError(t, err)

	// Existing sessions are revoked and the token is single-use.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
	err = svc.ResetPassword(&dto.ResetPasswordRequest{Token: token, Password: "another12345"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), NewAuditService(db))

	token, err := svc.ForgotPassword(&dto.ForgotPasswordRequest{Email: "nobody@example.com"})
	assert.NoError(t, err)
	assert.Empty(t, token)
}
