package handlers

import (
	"github.com/civicsetu/civicsetu-backend/internal/ai"
	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// TransparencyHandler serves the public read-only portal endpoints.
type TransparencyHandler struct {
	transparencyService *services.TransparencyService
}

func NewTransparencyHandler(transparencyService *services.TransparencyService) *TransparencyHandler {
	return &TransparencyHandler{transparencyService: transparencyService}
}

func (h *TransparencyHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.transparencyService.Summary()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to build summary",
		})
	}
	return c.JSON(summary)
}

// Custom filters projects by explicit criteria supplied in the body.
func (h *TransparencyHandler) Custom(c *fiber.Ctx) error {
	var filters ai.ProjectFilters
	if err := c.BodyParser(&filters); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	result, err := h.transparencyService.Custom(&filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to query projects",
		})
	}
	return c.JSON(fiber.Map{"results": result, "filters": filters})
}

// Query answers a natural-language question about public projects.
func (h *TransparencyHandler) Query(c *fiber.Ctx) error {
	var req dto.TransparencyQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A query is required",
		})
	}

	result, filters, err := h.transparencyService.Query(c.Context(), req.Query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to answer query",
		})
	}
	return c.JSON(fiber.Map{"results": result, "filters": filters})
}
