package handlers

import (
	"errors"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/middleware"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	userID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	comment, err := h.commentService.Create(reportID, userID, middleware.ActorRole(c), &req)
	if err != nil {
		if resp, ok := rateLimited(c, err); ok {
			return resp
		}
		if errors.Is(err, services.ErrEmptyComment) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return reportError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	userID, _ := middleware.ProfileID(c)

	comments, err := h.commentService.List(reportID, userID, middleware.ActorRole(c))
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}
