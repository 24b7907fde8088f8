package handlers

import (
	"errors"
	"strings"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/middleware"
	"github.com/civicsetu/civicsetu-backend/internal/ratelimit"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	limiter     *ratelimit.Limiter
}

func NewAuthHandler(authService *services.AuthService, limiter *ratelimit.Limiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

// authLimitKey throttles per account per source address so one address cannot
// exhaust another user's budget.
func authLimitKey(email string, c *fiber.Ctx) string {
	return strings.ToLower(strings.TrimSpace(email)) + ":" + c.IP()
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if res := h.limiter.Check(ratelimit.ActionRegister, authLimitKey(req.Email, c)); !res.Allowed {
		return tooManyRequests(c, res.RetryAfter)
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	key := authLimitKey(req.Email, c)
	if res := h.limiter.Check(ratelimit.ActionLogin, key); !res.Allowed {
		return tooManyRequests(c, res.RetryAfter)
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrAccountDisabled) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid email or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	// A successful login clears the failed-attempt budget.
	h.limiter.Reset(ratelimit.ActionLogin, key)

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrAccountDisabled) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired refresh token",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.authService.Logout(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to logout",
		})
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// ForgotPassword responds identically whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if res := h.limiter.Check(ratelimit.ActionPasswordReset, authLimitKey(req.Email, c)); !res.Allowed {
		return tooManyRequests(c, res.RetryAfter)
	}

	if _, err := h.authService.ForgotPassword(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "If the email is registered, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Password has been reset"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	resp, err := h.authService.Me(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found",
		})
	}
	return c.JSON(resp)
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update profile",
		})
	}
	return c.JSON(resp)
}
