package handlers

import (
	"errors"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/middleware"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	actorID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	project, err := h.projectService.Create(actorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrProjectCodeTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	actorID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	project, err := h.projectService.Update(projectID, actorID, &req)
	if err != nil {
		return projectError(c, err)
	}
	return c.JSON(project)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}

	project, err := h.projectService.Get(projectID)
	if err != nil {
		return projectError(c, err)
	}
	return c.JSON(project)
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	projects, total, err := h.projectService.List(c.Query("department"), c.Query("status"), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list projects",
		})
	}
	return c.JSON(fiber.Map{
		"projects":   projects,
		"pagination": pagination(page, limit, total),
	})
}

func (h *ProjectHandler) AddTransaction(c *fiber.Ctx) error {
	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	actorID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	tx, err := h.projectService.AddTransaction(projectID, actorID, &req)
	if err != nil {
		return projectError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tx)
}

func (h *ProjectHandler) ListTransactions(c *fiber.Ctx) error {
	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}

	txs, err := h.projectService.ListTransactions(projectID)
	if err != nil {
		return projectError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

func (h *ProjectHandler) AddUpdate(c *fiber.Ctx) error {
	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}
	actorID, err := middleware.ProfileID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateProjectUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	update, err := h.projectService.AddUpdate(projectID, actorID, &req)
	if err != nil {
		return projectError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(update)
}

func (h *ProjectHandler) ListUpdates(c *fiber.Ctx) error {
	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return invalidID(c)
	}

	updates, err := h.projectService.ListUpdates(projectID)
	if err != nil {
		return projectError(c, err)
	}
	return c.JSON(fiber.Map{"updates": updates})
}

func projectError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Project not found",
		})
	case errors.Is(err, services.ErrInvalidProject),
		errors.Is(err, services.ErrInvalidTransaction),
		errors.Is(err, services.ErrInvalidProjectStatus):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
