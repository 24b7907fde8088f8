package models

import (
	"time"

	"github.com/google/uuid"
)

// Report type values.
const (
	ReportTypeInfrastructure = "infrastructure"
	ReportTypeMisconduct     = "misconduct"
)

// Report status workflow: submitted -> under_review -> assigned -> in_progress
// -> resolved, with rejected reachable from any non-terminal state.
const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusAssigned    = "assigned"
	StatusInProgress  = "in_progress"
	StatusResolved    = "resolved"
	StatusRejected    = "rejected"
)

// Severity values.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Report is a citizen-submitted issue (infrastructure damage or official
// misconduct). ReporterUserID is null for anonymous submissions and must never
// reach API consumers when IsAnonymous is set.
type Report struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterUserID       *uuid.UUID `gorm:"type:uuid;index" json:"reporter_user_id"`
	AssignedOfficialID   *uuid.UUID `gorm:"type:uuid;index" json:"assigned_official_id"`
	Type                 string     `gorm:"not null;size:20;index" json:"type"`
	Category             string     `gorm:"not null;size:100" json:"category"`
	Title                string     `gorm:"not null;size:255" json:"title"`
	Description          string     `gorm:"type:text;not null" json:"description"`
	Severity             string     `gorm:"not null;default:'medium';size:20;index" json:"severity"`
	Status               string     `gorm:"not null;default:'submitted';size:20;index" json:"status"`
	LocationLat          *float64   `json:"location_lat,omitempty"`
	LocationLng          *float64   `json:"location_lng,omitempty"`
	LocationAddress      string     `gorm:"size:500" json:"location_address,omitempty"`
	IsAnonymous          bool       `gorm:"not null;default:false" json:"is_anonymous"`
	AICategorySuggestion *string    `gorm:"size:100" json:"ai_category_suggestion"`
	AISentiment          *string    `gorm:"size:20" json:"ai_sentiment"`
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func ValidReportType(t string) bool {
	return t == ReportTypeInfrastructure || t == ReportTypeMisconduct
}

func ValidStatus(s string) bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusAssigned, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
