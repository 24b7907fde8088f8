package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectCodeTaken     = errors.New("project code already in use")
	ErrInvalidProject       = errors.New("invalid project payload")
	ErrInvalidTransaction   = errors.New("invalid transaction payload")
	ErrInvalidProjectStatus = errors.New("invalid project status")
)

type ProjectService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewProjectService(db *gorm.DB, audit *AuditService) *ProjectService {
	return &ProjectService{db: db, audit: audit}
}

func (s *ProjectService) Create(actorID uuid.UUID, req *dto.CreateProjectRequest) (*models.Project, error) {
	if req.ProjectCode == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: project_code and name are required", ErrInvalidProject)
	}
	status := req.Status
	if status == "" {
		status = models.ProjectPlanned
	}
	if !models.ValidProjectStatus(status) {
		return nil, ErrInvalidProjectStatus
	}

	var existing models.Project
	if err := s.db.Where("project_code = ?", req.ProjectCode).First(&existing).Error; err == nil {
		return nil, ErrProjectCodeTaken
	}

	project := models.Project{
		ID:                uuid.New(),
		ProjectCode:       req.ProjectCode,
		Name:              req.Name,
		Description:       req.Description,
		Department:        req.Department,
		Location:          req.Location,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            status,
		TotalBudgetAmount: req.TotalBudgetAmount,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.audit.Record(&actorID, "project_created", "project", &project.ID, map[string]interface{}{
		"project_code": project.ProjectCode,
	})
	return &project, nil
}

func (s *ProjectService) Update(projectID, actorID uuid.UUID, req *dto.UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", projectID).Error; err != nil {
		return nil, ErrProjectNotFound
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.Status != nil {
		if !models.ValidProjectStatus(*req.Status) {
			return nil, ErrInvalidProjectStatus
		}
		updates["status"] = *req.Status
	}
	if req.TotalBudgetAmount != nil {
		updates["total_budget_amount"] = *req.TotalBudgetAmount
	}

	if len(updates) > 0 {
		if err := s.db.Model(&project).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update project: %w", err)
		}
		s.audit.Record(&actorID, "project_updated", "project", &project.ID, map[string]interface{}{
			"fields": len(updates),
		})
	}
	return &project, nil
}

func (s *ProjectService) Get(projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", projectID).Error; err != nil {
		return nil, ErrProjectNotFound
	}
	return &project, nil
}

// List is the public project browse. No authentication is required to read
// transparency data.
func (s *ProjectService) List(department, status string, page, limit int) ([]models.Project, int64, error) {
	_, limit, offset := normalizePage(page, limit, 20)

	query := s.db.Model(&models.Project{})
	if department != "" {
		query = query.Where("department = ?", department)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (s *ProjectService) AddTransaction(projectID, actorID uuid.UUID, req *dto.CreateTransactionRequest) (*models.FinancialTransaction, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	if !models.ValidTransactionType(req.TransactionType) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, req.TransactionType)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}

	txDate := time.Now()
	if req.TransactionDate != nil {
		txDate = *req.TransactionDate
	}

	tx := models.FinancialTransaction{
		ID:               uuid.New(),
		ProjectID:        projectID,
		TransactionType:  req.TransactionType,
		Amount:           req.Amount,
		Description:      req.Description,
		RecordedByUserID: &actorID,
		TransactionDate:  txDate,
	}
	if err := s.db.Create(&tx).Error; err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	s.audit.Record(&actorID, "transaction_recorded", "financial_transaction", &tx.ID, map[string]interface{}{
		"project_id": projectID.String(), "type": tx.TransactionType, "amount": tx.Amount,
	})
	return &tx, nil
}

func (s *ProjectService) ListTransactions(projectID uuid.UUID) ([]models.FinancialTransaction, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	var txs []models.FinancialTransaction
	if err := s.db.Where("project_id = ?", projectID).
		Order("transaction_date DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *ProjectService) AddUpdate(projectID, actorID uuid.UUID, req *dto.CreateProjectUpdateRequest) (*models.ProjectUpdate, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidProject)
	}
	if req.ProgressPercent != nil && (*req.ProgressPercent < 0 || *req.ProgressPercent > 100) {
		return nil, fmt.Errorf("%w: progress_percent must be 0-100", ErrInvalidProject)
	}

	update := models.ProjectUpdate{
		ID:              uuid.New(),
		ProjectID:       projectID,
		Title:           req.Title,
		Body:            req.Body,
		PostedByUserID:  &actorID,
		ProgressPercent: req.ProgressPercent,
	}
	if err := s.db.Create(&update).Error; err != nil {
		return nil, fmt.Errorf("failed to post project update: %w", err)
	}
	return &update, nil
}

func (s *ProjectService) ListUpdates(projectID uuid.UUID) ([]models.ProjectUpdate, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	var updates []models.ProjectUpdate
	if err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}
