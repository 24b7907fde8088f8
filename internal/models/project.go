package models

import (
	"time"

	"github.com/google/uuid"
)

// Project status values.
const (
	ProjectPlanned   = "planned"
	ProjectOngoing   = "ongoing"
	ProjectCompleted = "completed"
	ProjectOnHold    = "on_hold"
)

// Project is a public government project tracked by the transparency portal.
type Project struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectCode       string     `gorm:"not null;size:50;uniqueIndex" json:"project_code"`
	Name              string     `gorm:"not null;size:255" json:"name"`
	Description       string     `gorm:"type:text" json:"description"`
	Department        string     `gorm:"size:100;index" json:"department"`
	Location          string     `gorm:"size:255" json:"location"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	Status            string     `gorm:"not null;default:'planned';size:20;index" json:"status"`
	TotalBudgetAmount float64    `gorm:"not null;default:0" json:"total_budget_amount"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ProjectUpdate is a progress note posted by an official on a project.
type ProjectUpdate struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	Title           string     `gorm:"not null;size:255" json:"title"`
	Body            string     `gorm:"type:text" json:"body"`
	PostedByUserID  *uuid.UUID `gorm:"type:uuid" json:"posted_by_user_id"`
	ProgressPercent *int       `json:"progress_percent,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	Project         Project    `gorm:"foreignKey:ProjectID" json:"-"`
}

func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectPlanned, ProjectOngoing, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}
