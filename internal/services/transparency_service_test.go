package services

import (
	"context"
	"testing"
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/ai"
	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProject(t *testing.T, db *gorm.DB, code, department, status string, budget float64) *models.Project {
	t.Helper()
	p := models.Project{
		ID:                uuid.New(),
		ProjectCode:       code,
		Name:              "Project " + code,
		Department:        department,
		Status:            status,
		TotalBudgetAmount: budget,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func seedTransaction(t *testing.T, db *gorm.DB, projectID uuid.UUID, txType string, amount float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.FinancialTransaction{
		ID:              uuid.New(),
		ProjectID:       projectID,
		TransactionType: txType,
		Amount:          amount,
		TransactionDate: time.Now(),
	}).Error)
}

func TestTransparencySummary(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransparencyService(db, ai.Disabled{})

	roadsA := seedProject(t, db, "RD-001", "Public Works", models.ProjectOngoing, 1_000_000)
	roadsB := seedProject(t, db, "RD-002", "Public Works", models.ProjectCompleted, 500_000)
	water := seedProject(t, db, "WS-001", "Water Supply", models.ProjectPlanned, 2_000_000)

	seedTransaction(t, db, roadsA.ID, models.TxAllocation, 800_000)
	seedTransaction(t, db, roadsA.ID, models.TxExpenditure, 200_000)
	seedTransaction(t, db, roadsB.ID, models.TxAllocation, 200_000)
	seedTransaction(t, db, roadsB.ID, models.TxRelease, 150_000)
	seedTransaction(t, db, water.ID, models.TxExpenditure, 50_000)

	summary, err := svc.Summary()
	require.NoError(t, err)

	assert.EqualValues(t, 3, summary.TotalProjects)
	assert.EqualValues(t, 1, summary.ProjectsByStatus[models.ProjectOngoing])
	assert.InDelta(t, 3_500_000, summary.TotalBudget, 0.01)
	assert.InDelta(t, 1_000_000, summary.TotalAllocated, 0.01)
	assert.InDelta(t, 150_000, summary.TotalReleased, 0.01)
	assert.InDelta(t, 250_000, summary.TotalExpenditure, 0.01)
	assert.InDelta(t, 25.0, summary.BudgetUtilization, 0.01)

	require.Len(t, summary.Departments, 2)
	assert.Equal(t, "Water Supply", summary.Departments[0].Department)
	assert.InDelta(t, 50_000, summary.Departments[0].TotalExpenditure, 0.01)
	assert.Equal(t, "Public Works", summary.Departments[1].Department)
	assert.InDelta(t, 200_000, summary.Departments[1].TotalExpenditure, 0.01)
}

func TestTransparencySummaryEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransparencyService(db, ai.Disabled{})

	summary, err := svc.Summary()
	require.NoError(t, err)
	assert.Zero(t, summary.TotalProjects)
	assert.Zero(t, summary.BudgetUtilization)
	assert.Empty(t, summary.Departments)
}

func TestUtilizationPercent(t *testing.T) {
	assert.Zero(t, utilizationPercent(500, 0))
	assert.Zero(t, utilizationPercent(0, 0))
	assert.InDelta(t, 50.0, utilizationPercent(50, 100), 0.001)
	assert.InDelta(t, 120.0, utilizationPercent(120, 100), 0.001)
}

func TestSortClause(t *testing.T) {
	assert.Equal(t, "total_budget_amount ASC", sortClause("budget", "asc"))
	assert.Equal(t, "start_date DESC", sortClause("date", ""))
	assert.Equal(t, "start_date DESC", sortClause("start_date", "desc"))
	assert.Equal(t, "name ASC", sortClause("name", "asc"))
	assert.Equal(t, "created_at DESC", sortClause("drop table", ""))
}

func TestTransparencyCustomFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransparencyService(db, ai.Disabled{})

	seedProject(t, db, "RD-001", "Public Works", models.ProjectOngoing, 1_000_000)
	seedProject(t, db, "WS-001", "Water Supply", models.ProjectOngoing, 3_000_000)
	seedProject(t, db, "WS-002", "Water Supply", models.ProjectCompleted, 500_000)

	minBudget := 400_000.0
	result, err := svc.Custom(&ai.ProjectFilters{
		Department: "water",
		Status:     models.ProjectOngoing,
		MinBudget:  &minBudget,
	})
	require.NoError(t, err)
	require.Len(t, result.Projects, 1)
	assert.Equal(t, "WS-001", result.Projects[0].ProjectCode)
	assert.Equal(t, 1, result.Count)

	// Unknown status values are ignored rather than failing the query.
	result, err = svc.Custom(&ai.ProjectFilters{Status: "abandoned"})
	require.NoError(t, err)
	assert.Len(t, result.Projects, 3)
	assert.InDelta(t, 4_500_000, result.TotalBudget, 0.01)
}

func TestTransparencyCustomFinancialRollups(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransparencyService(db, ai.Disabled{})

	roads := seedProject(t, db, "RD-001", "Public Works", models.ProjectOngoing, 1_000_000)
	water := seedProject(t, db, "WS-001", "Water Supply", models.ProjectOngoing, 2_000_000)

	seedTransaction(t, db, roads.ID, models.TxAllocation, 500_000)
	seedTransaction(t, db, roads.ID, models.TxExpenditure, 100_000)
	seedTransaction(t, db, water.ID, models.TxRelease, 300_000)

	result, err := svc.Custom(&ai.ProjectFilters{})
	require.NoError(t, err)
	require.Len(t, result.Projects, 2)

	byCode := map[string]ProjectFinancials{}
	for _, p := range result.Projects {
		byCode[p.ProjectCode] = p.Financials
	}
	assert.InDelta(t, 500_000, byCode["RD-001"].TotalAllocated, 0.01)
	assert.InDelta(t, 100_000, byCode["RD-001"].TotalExpenditure, 0.01)
	assert.InDelta(t, 20.0, byCode["RD-001"].Utilization, 0.01)
	assert.Zero(t, byCode["WS-001"].TotalAllocated)
	assert.InDelta(t, 300_000, byCode["WS-001"].TotalReleased, 0.01)
	assert.Zero(t, byCode["WS-001"].Utilization)

	assert.InDelta(t, 3_000_000, result.TotalBudget, 0.01)
	assert.InDelta(t, 500_000, result.Totals.TotalAllocated, 0.01)
	assert.InDelta(t, 100_000, result.Totals.TotalExpenditure, 0.01)
	assert.InDelta(t, 20.0, result.Totals.Utilization, 0.01)
}

func TestTransparencyQueryFallsBackWhenOracleFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransparencyService(db, &stubOracle{err: assert.AnError})

	seedProject(t, db, "RD-001", "Public Works", models.ProjectOngoing, 1_000_000)

	result, filters, err := svc.Query(context.Background(), "how much was spent on roads?")
	require.NoError(t, err)
	assert.Len(t, result.Projects, 1)
	assert.Equal(t, &ai.ProjectFilters{}, filters)
}

func TestTransparencyQueryUsesOracleFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransparencyService(db, &stubOracle{filters: &ai.ProjectFilters{
		Department: "Water Supply",
	}})

	seedProject(t, db, "RD-001", "Public Works", models.ProjectOngoing, 1_000_000)
	seedProject(t, db, "WS-001", "Water Supply", models.ProjectOngoing, 2_000_000)

	result, _, err := svc.Query(context.Background(), "water projects")
	require.NoError(t, err)
	require.Len(t, result.Projects, 1)
	assert.Equal(t, "WS-001", result.Projects[0].ProjectCode)
}

func TestProjectLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewAuditService(db))
	adminID := seedUser(t, db, "admin@example.com", roles.Admin)

	project, err := svc.Create(adminID, &dto.CreateProjectRequest{
		ProjectCode:       "RD-100",
		Name:              "Ring Road Expansion",
		Department:        "Public Works",
		TotalBudgetAmount: 5_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectPlanned, project.Status)

	_, err = svc.Create(adminID, &dto.CreateProjectRequest{
		ProjectCode: "RD-100", Name: "Duplicate",
	})
	assert.ErrorIs(t, err, ErrProjectCodeTaken)

	status := models.ProjectOngoing
	updated, err := svc.Update(project.ID, adminID, &dto.UpdateProjectRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectOngoing, updated.Status)

	tx, err := svc.AddTransaction(project.ID, adminID, &dto.CreateTransactionRequest{
		TransactionType: models.TxAllocation,
		Amount:          1_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TxAllocation, tx.TransactionType)

	_, err = svc.AddTransaction(project.ID, adminID, &dto.CreateTransactionRequest{
		TransactionType: models.TxAllocation,
		Amount:          -5,
	})
	assert.ErrorIs(t, err, ErrInvalidTransaction)

	progress := 40
	update, err := svc.AddUpdate(project.ID, adminID, &dto.CreateProjectUpdateRequest{
		Title:           "Phase one underway",
		ProgressPercent: &progress,
	})
	require.NoError(t, err)
	require.NotNil(t, update.ProgressPercent)
	assert.Equal(t, 40, *update.ProgressPercent)

	txs, err := svc.ListTransactions(project.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
