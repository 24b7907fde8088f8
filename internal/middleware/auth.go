package middleware

import (
	"github.com/civicsetu/civicsetu-backend/internal/config"
	"github.com/civicsetu/civicsetu-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// OptionalJWT lets tokenless requests through and validates a bearer token
// when one is presented. A present-but-invalid token is still a 401.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	protected := JWTProtected(cfg)
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		return protected(c)
	}
}
