package middleware

import (
	"errors"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolveIdentity maps the validated JWT (if any) to a profile identifier and
// role, stored in context locals. Requests without a token resolve to an
// anonymous citizen. Runs after JWTProtected or OptionalJWT.
func ResolveIdentity(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			c.Locals("role", roles.Citizen)
			return c.Next()
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid claims",
			})
		}
		sub, _ := claims["sub"].(string)
		profileID, err := uuid.Parse(sub)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var profile models.Profile
		if err := db.First(&profile, "id = ?", profileID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		role := roles.Citizen
		var userRole models.UserRole
		if err := db.First(&userRole, "user_id = ?", profileID).Error; err == nil {
			role = roles.Parse(userRole.Role)
		}

		c.Locals("profile_id", profile.ID)
		c.Locals("role", role)
		return c.Next()
	}
}

// ProfileID returns the resolved profile identifier for the request.
func ProfileID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals("profile_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("no authenticated profile in context")
	}
	return id, nil
}

// ActorRole returns the resolved role, defaulting to citizen.
func ActorRole(c *fiber.Ctx) roles.Role {
	if r, ok := c.Locals("role").(roles.Role); ok {
		return r
	}
	return roles.Citizen
}

// RequireCapability rejects requests whose resolved role fails the check.
func RequireCapability(check func(roles.Role) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !check(ActorRole(c)) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Access denied",
			})
		}
		return c.Next()
	}
}
