package dto

// DepartmentSpend is one department's row in the transparency summary.
type DepartmentSpend struct {
	Department       string  `json:"department"`
	ProjectCount     int64   `json:"project_count"`
	TotalBudget      float64 `json:"total_budget"`
	TotalExpenditure float64 `json:"total_expenditure"`
}

// TransparencySummary is the portal-wide financial rollup.
type TransparencySummary struct {
	TotalProjects     int64             `json:"total_projects"`
	ProjectsByStatus  map[string]int64  `json:"projects_by_status"`
	TotalBudget       float64           `json:"total_budget"`
	TotalAllocated    float64           `json:"total_allocated"`
	TotalReleased     float64           `json:"total_released"`
	TotalExpenditure  float64           `json:"total_expenditure"`
	BudgetUtilization float64           `json:"budget_utilization"`
	Departments       []DepartmentSpend `json:"departments"`
}
