package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/ai"
	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransparencyService serves the public, unauthenticated read side of the
// portal: budget rollups and filtered project views.
type TransparencyService struct {
	db     *gorm.DB
	oracle ai.Oracle
}

func NewTransparencyService(db *gorm.DB, oracle ai.Oracle) *TransparencyService {
	return &TransparencyService{db: db, oracle: oracle}
}

// Summary aggregates every project and transaction into the portal-wide
// rollup.
func (s *TransparencyService) Summary() (*dto.TransparencySummary, error) {
	summary := &dto.TransparencySummary{
		ProjectsByStatus: map[string]int64{},
		Departments:      []dto.DepartmentSpend{},
	}

	if err := s.db.Model(&models.Project{}).Count(&summary.TotalProjects).Error; err != nil {
		return nil, err
	}

	var statusRows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Project{}).
		Select("status, count(*) as count").Group("status").Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		summary.ProjectsByStatus[row.Status] = row.Count
	}

	if err := s.db.Model(&models.Project{}).
		Select("coalesce(sum(total_budget_amount), 0)").Scan(&summary.TotalBudget).Error; err != nil {
		return nil, err
	}

	var txRows []struct {
		TransactionType string
		Total           float64
	}
	if err := s.db.Model(&models.FinancialTransaction{}).
		Select("transaction_type, coalesce(sum(amount), 0) as total").
		Group("transaction_type").Scan(&txRows).Error; err != nil {
		return nil, err
	}
	for _, row := range txRows {
		switch row.TransactionType {
		case models.TxAllocation:
			summary.TotalAllocated = row.Total
		case models.TxRelease:
			summary.TotalReleased = row.Total
		case models.TxExpenditure:
			summary.TotalExpenditure = row.Total
		}
	}
	summary.BudgetUtilization = utilizationPercent(summary.TotalExpenditure, summary.TotalAllocated)

	var deptRows []struct {
		Department   string
		ProjectCount int64
		TotalBudget  float64
	}
	if err := s.db.Model(&models.Project{}).
		Select("department, count(*) as project_count, coalesce(sum(total_budget_amount), 0) as total_budget").
		Where("department <> ''").
		Group("department").Order("total_budget DESC").Scan(&deptRows).Error; err != nil {
		return nil, err
	}
	for _, row := range deptRows {
		var spent float64
		if err := s.db.Model(&models.FinancialTransaction{}).
			Joins("JOIN projects ON projects.id = financial_transactions.project_id").
			Where("projects.department = ? AND financial_transactions.transaction_type = ?",
				row.Department, models.TxExpenditure).
			Select("coalesce(sum(financial_transactions.amount), 0)").Scan(&spent).Error; err != nil {
			return nil, err
		}
		summary.Departments = append(summary.Departments, dto.DepartmentSpend{
			Department:       row.Department,
			ProjectCount:     row.ProjectCount,
			TotalBudget:      row.TotalBudget,
			TotalExpenditure: spent,
		})
	}

	return summary, nil
}

// ProjectFinancials is the transaction rollup for one project or for a whole
// filtered listing.
type ProjectFinancials struct {
	TotalAllocated   float64 `json:"total_allocated"`
	TotalReleased    float64 `json:"total_released"`
	TotalExpenditure float64 `json:"total_expenditure"`
	Utilization      float64 `json:"utilization"`
}

// ProjectFinanceView pairs a project with its rollup.
type ProjectFinanceView struct {
	models.Project
	Financials ProjectFinancials `json:"financials"`
}

// FilteredProjects is a filtered listing plus grand totals across the matched
// projects.
type FilteredProjects struct {
	Projects    []ProjectFinanceView `json:"projects"`
	Count       int                  `json:"count"`
	TotalBudget float64              `json:"total_budget"`
	Totals      ProjectFinancials    `json:"totals"`
}

// Custom returns the projects matching explicit filter criteria, each with its
// transaction rollup.
func (s *TransparencyService) Custom(filters *ai.ProjectFilters) (*FilteredProjects, error) {
	query := s.db.Model(&models.Project{})

	if filters.Department != "" {
		query = query.Where("LOWER(department) LIKE ?", "%"+strings.ToLower(filters.Department)+"%")
	}
	if filters.Status != "" && models.ValidProjectStatus(filters.Status) {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filters.Location)+"%")
	}
	if filters.MinBudget != nil {
		query = query.Where("total_budget_amount >= ?", *filters.MinBudget)
	}
	if filters.MaxBudget != nil {
		query = query.Where("total_budget_amount <= ?", *filters.MaxBudget)
	}
	if from, ok := parseFilterDate(filters.DateFrom); ok {
		query = query.Where("start_date >= ?", from)
	}
	if to, ok := parseFilterDate(filters.DateTo); ok {
		query = query.Where("start_date <= ?", to)
	}

	query = query.Order(sortClause(filters.SortBy, filters.SortOrder))

	var projects []models.Project
	if err := query.Limit(100).Find(&projects).Error; err != nil {
		return nil, err
	}
	return s.withFinancials(projects)
}

// withFinancials rolls the matched projects' transactions up per project and
// across the whole listing.
func (s *TransparencyService) withFinancials(projects []models.Project) (*FilteredProjects, error) {
	result := &FilteredProjects{
		Projects: make([]ProjectFinanceView, 0, len(projects)),
		Count:    len(projects),
	}
	if len(projects) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	var txRows []struct {
		ProjectID       uuid.UUID
		TransactionType string
		Total           float64
	}
	if err := s.db.Model(&models.FinancialTransaction{}).
		Select("project_id, transaction_type, coalesce(sum(amount), 0) as total").
		Where("project_id IN ?", ids).
		Group("project_id, transaction_type").Scan(&txRows).Error; err != nil {
		return nil, err
	}

	rollups := make(map[uuid.UUID]ProjectFinancials, len(projects))
	for _, row := range txRows {
		fin := rollups[row.ProjectID]
		switch row.TransactionType {
		case models.TxAllocation:
			fin.TotalAllocated = row.Total
		case models.TxRelease:
			fin.TotalReleased = row.Total
		case models.TxExpenditure:
			fin.TotalExpenditure = row.Total
		}
		rollups[row.ProjectID] = fin
	}

	for _, p := range projects {
		fin := rollups[p.ID]
		fin.Utilization = utilizationPercent(fin.TotalExpenditure, fin.TotalAllocated)
		result.Projects = append(result.Projects, ProjectFinanceView{Project: p, Financials: fin})

		result.TotalBudget += p.TotalBudgetAmount
		result.Totals.TotalAllocated += fin.TotalAllocated
		result.Totals.TotalReleased += fin.TotalReleased
		result.Totals.TotalExpenditure += fin.TotalExpenditure
	}
	result.Totals.Utilization = utilizationPercent(result.Totals.TotalExpenditure, result.Totals.TotalAllocated)
	return result, nil
}

// Query answers a natural-language question about projects. When the oracle
// is down or unconfigured the question still gets an answer: the unfiltered
// project list.
func (s *TransparencyService) Query(ctx context.Context, question string) (*FilteredProjects, *ai.ProjectFilters, error) {
	filters, err := s.oracle.ParseProjectQuery(ctx, question)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			slog.Warn("project query parsing failed, serving unfiltered results", "error", err)
		}
		filters = &ai.ProjectFilters{}
	}

	result, err := s.Custom(filters)
	if err != nil {
		return nil, nil, err
	}
	return result, filters, nil
}

// utilizationPercent is expenditure over allocation as a percentage. Zero
// allocation reads as zero utilization, never a division error.
func utilizationPercent(expenditure, allocated float64) float64 {
	if allocated <= 0 {
		return 0
	}
	return expenditure / allocated * 100
}

func parseFilterDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// sortClause whitelists sortable columns; anything else falls back to newest
// first.
func sortClause(sortBy, sortOrder string) string {
	column := "created_at"
	switch sortBy {
	case "budget":
		column = "total_budget_amount"
	// The oracle prompt promises "date"; accept the long form too.
	case "date", "start_date":
		column = "start_date"
	case "name":
		column = "name"
	}
	order := "DESC"
	if sortOrder == "asc" {
		order = "ASC"
	}
	return column + " " + order
}
