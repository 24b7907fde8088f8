package handlers

import (
	"errors"
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/middleware"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Create accepts tokenless submissions: without a session the report is
// stored with no reporter link and the rate limit keys on the client IP.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var actorID *uuid.UUID
	limitKey := c.IP()
	if id, err := middleware.ProfileID(c); err == nil {
		actorID = &id
		limitKey = id.String()
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.reportService.Create(c.Context(), actorID, limitKey, &req)
	if err != nil {
		if resp, ok := rateLimited(c, err); ok {
			return resp
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	userID, _ := middleware.ProfileID(c)

	report, err := h.reportService.Get(reportID, userID, middleware.ActorRole(c))
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) Detail(c *fiber.Ctx) error {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	userID, _ := middleware.ProfileID(c)

	detail, err := h.reportService.Detail(reportID, userID, middleware.ActorRole(c))
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(detail)
}

func (h *ReportHandler) Timeline(c *fiber.Ctx) error {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	userID, _ := middleware.ProfileID(c)

	events, err := h.reportService.Timeline(reportID, userID, middleware.ActorRole(c))
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(fiber.Map{"timeline": events})
}

func (h *ReportHandler) ListMine(c *fiber.Ctx) error {
	userID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	reports, total, err := h.reportService.ListMine(userID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports":    reports,
		"pagination": pagination(page, limit, total),
	})
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	filters := dto.ReportFilters{
		Status:   c.Query("status"),
		Type:     c.Query("type"),
		Severity: c.Query("severity"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 20),
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filters.DateTo = &t
		}
	}

	reports, total, err := h.reportService.List(&filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports":    reports,
		"pagination": pagination(filters.Page, filters.Limit, total),
	})
}

func (h *ReportHandler) Update(c *fiber.Ctx) error {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	actorID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.reportService.Update(reportID, actorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		case errors.Is(err, services.ErrInvalidStatus),
			errors.Is(err, services.ErrInvalidSeverity),
			errors.Is(err, services.ErrAssigneeNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update report",
		})
	}
	return c.JSON(report)
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	actorID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.reportService.Delete(c.Context(), reportID, actorID); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete report",
		})
	}
	return c.JSON(fiber.Map{"message": "Report deleted"})
}

// reportError maps the shared report access errors. The 403 body is generic
// and never explains which check failed.
func reportError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrReportNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Report not found",
		})
	}
	if errors.Is(err, services.ErrReportAccess) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Access denied",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
