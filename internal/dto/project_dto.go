package dto

import "time"

type CreateProjectRequest struct {
	ProjectCode       string     `json:"project_code"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Department        string     `json:"department"`
	Location          string     `json:"location"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Status            string     `json:"status"`
	TotalBudgetAmount float64    `json:"total_budget_amount"`
}

type UpdateProjectRequest struct {
	Name              *string    `json:"name"`
	Description       *string    `json:"description"`
	Department        *string    `json:"department"`
	Location          *string    `json:"location"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Status            *string    `json:"status"`
	TotalBudgetAmount *float64   `json:"total_budget_amount"`
}

type CreateTransactionRequest struct {
	TransactionType string     `json:"transaction_type"`
	Amount          float64    `json:"amount"`
	Description     string     `json:"description"`
	TransactionDate *time.Time `json:"transaction_date"`
}

type CreateProjectUpdateRequest struct {
	Title           string `json:"title"`
	Body            string `json:"body"`
	ProgressPercent *int   `json:"progress_percent"`
}

type TransparencyQueryRequest struct {
	Query string `json:"query"`
}
