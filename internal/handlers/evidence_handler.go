package handlers

import (
	"errors"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/middleware"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/civicsetu/civicsetu-backend/internal/upload"
	"github.com/gofiber/fiber/v2"
)

type EvidenceHandler struct {
	evidenceService *services.EvidenceService
}

func NewEvidenceHandler(evidenceService *services.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidenceService: evidenceService}
}

// Upload accepts one multipart file under the "file" field.
func (h *EvidenceHandler) Upload(c *fiber.Ctx) error {
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A file is required under the 'file' field",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read uploaded file",
		})
	}
	defer file.Close()

	evidence, err := h.evidenceService.Upload(c.Context(), reportID, userID, middleware.ActorRole(c), &services.UploadInput{
		Filename: fileHeader.Filename,
		MIMEType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Content:  file,
	})
	if err != nil {
		if resp, ok := rateLimited(c, err); ok {
			return resp
		}
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		case errors.Is(err, services.ErrReportAccess):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Access denied",
			})
		case errors.Is(err, upload.ErrFileTooLarge),
			errors.Is(err, upload.ErrDisallowedType),
			errors.Is(err, upload.ErrContentMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store evidence",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(evidence)
}

func (h *EvidenceHandler) List(c *fiber.Ctx) error {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	userID, _ := middleware.ProfileID(c)

	evidence, err := h.evidenceService.List(reportID, userID, middleware.ActorRole(c))
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(fiber.Map{"evidence": evidence})
}

func (h *EvidenceHandler) SignedURL(c *fiber.Ctx) error {
	evidenceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	userID, _ := middleware.ProfileID(c)

	resp, err := h.evidenceService.SignedURL(c.Context(), evidenceID, userID, middleware.ActorRole(c))
	if err != nil {
		if errors.Is(err, services.ErrEvidenceNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Evidence not found",
			})
		}
		return reportError(c, err)
	}
	return c.JSON(resp)
}
