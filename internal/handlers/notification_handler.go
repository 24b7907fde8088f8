package handlers

import (
	"errors"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/middleware"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	page, err := h.notificationService.List(userID,
		c.QueryBool("unread_only", false),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list notifications",
		})
	}
	return c.JSON(page)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	notificationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	userID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.notificationService.MarkRead(notificationID, userID); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Notification not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to mark notification read",
		})
	}
	return c.JSON(fiber.Map{"message": "Notification marked read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	updated, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to mark notifications read",
		})
	}
	return c.JSON(fiber.Map{"updated": updated})
}
