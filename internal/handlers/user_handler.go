package handlers

import (
	"errors"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/middleware"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// UserHandler is the admin panel surface: users, roles, dashboard, audit.
type UserHandler struct {
	userService  *services.UserService
	auditService *services.AuditService
}

func NewUserHandler(userService *services.UserService, auditService *services.AuditService) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	users, total, err := h.userService.List(c.Query("search"), c.Query("role"), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list users",
		})
	}
	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": pagination(page, limit, total),
	})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}

	user, err := h.userService.Get(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found",
		})
	}
	return c.JSON(user)
}

func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	targetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	actorID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.userService.SetRole(targetID, actorID, req.Role)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(user)
}

func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	targetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	actorID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "An 'active' boolean is required",
		})
	}

	if err := h.userService.SetActive(targetID, actorID, *req.Active); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update user",
		})
	}
	return c.JSON(fiber.Map{"message": "User updated"})
}

func (h *UserHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.userService.Dashboard()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load dashboard",
		})
	}
	return c.JSON(stats)
}

func (h *UserHandler) AuditLogs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	logs, total, err := h.auditService.List(c.Query("action"), c.Query("entity_type"), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list audit logs",
		})
	}
	return c.JSON(fiber.Map{
		"audit_logs": logs,
		"pagination": pagination(page, limit, total),
	})
}
