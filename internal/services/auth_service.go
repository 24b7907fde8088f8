package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/config"
	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDisabled    = errors.New("account is disabled")
)

type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	audit *AuditService
}

func NewAuthService(db *gorm.DB, cfg *config.Config, audit *AuditService) *AuthService {
	return &AuthService{db: db, cfg: cfg, audit: audit}
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	var existing models.Profile
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := models.Profile{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hash),
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
		IsActive: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		role := models.UserRole{
			ID:     uuid.New(),
			UserID: profile.ID,
			Role:   string(roles.Citizen),
		}
		return tx.Create(&role).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(&profile.ID, "user_registered", "profile", &profile.ID, nil)

	return s.generateTokenPair(&profile, roles.Citizen)
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var profile models.Profile
	if err := s.db.Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !profile.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.generateTokenPair(&profile, s.roleOf(profile.ID))
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	// Rotate: the presented token is single-use.
	s.db.Model(&stored).Update("revoked", true)

	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !profile.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.generateTokenPair(&profile, s.roleOf(profile.ID))
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// ForgotPassword always succeeds from the caller's point of view so the
// endpoint cannot be used to probe which emails are registered. The reset
// token is only created (and would be delivered out of band) when the email
// matches an active profile.
func (s *AuthService) ForgotPassword(req *dto.ForgotPasswordRequest) (string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var profile models.Profile
	if err := s.db.Where("email = ? AND is_active = true", email).First(&profile).Error; err != nil {
		return "", nil
	}

	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}

	record := models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    profile.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	s.audit.Record(&profile.ID, "password_reset_requested", "profile", &profile.ID, nil)

	return rawToken, nil
}

func (s *AuthService) ResetPassword(req *dto.ResetPasswordRequest) error {
	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	tokenHash := hashToken(req.Token)

	var stored models.PasswordResetToken
	if err := s.db.Where("token_hash = ? AND used_at IS NULL", tokenHash).First(&stored).Error; err != nil {
		return ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Profile{}).Where("id = ?", stored.UserID).
			Update("password", string(hash)).Error; err != nil {
			return err
		}
		if err := tx.Model(&stored).Update("used_at", &now).Error; err != nil {
			return err
		}
		// All sessions are invalidated on password change.
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ?", stored.UserID).
			Update("revoked", true).Error
	})
	if err != nil {
		return err
	}

	s.audit.Record(&stored.UserID, "password_reset", "profile", &stored.UserID, nil)
	return nil
}

func (s *AuthService) Me(userID uuid.UUID) (*dto.UserResponse, error) {
	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	resp := s.userResponse(&profile, s.roleOf(profile.ID))
	return &resp, nil
}

func (s *AuthService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if len(updates) > 0 {
		if err := s.db.Model(&profile).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	resp := s.userResponse(&profile, s.roleOf(profile.ID))
	return &resp, nil
}

func (s *AuthService) roleOf(userID uuid.UUID) roles.Role {
	var assignment models.UserRole
	if err := s.db.Where("user_id = ?", userID).First(&assignment).Error; err != nil {
		return roles.Citizen
	}
	return roles.Parse(assignment.Role)
}

func (s *AuthService) generateTokenPair(profile *models.Profile, role roles.Role) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(profile, role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(profile)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         s.userResponse(profile, role),
	}, nil
}

func (s *AuthService) userResponse(profile *models.Profile, role roles.Role) dto.UserResponse {
	return dto.UserResponse{
		ID:       profile.ID,
		Email:    profile.Email,
		FullName: profile.FullName,
		Role:     string(role),
	}
}

func (s *AuthService) generateAccessToken(profile *models.Profile, role roles.Role) (string, error) {
	claims := jwt.MapClaims{
		"sub":   profile.ID.String(),
		"email": profile.Email,
		"role":  string(role),
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(profile *models.Profile) (string, error) {
	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    profile.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func randomToken() (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(rawBytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
