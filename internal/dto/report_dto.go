package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	Type            string   `json:"type"`
	Category        string   `json:"category"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Severity        string   `json:"severity"`
	LocationLat     *float64 `json:"location_lat"`
	LocationLng     *float64 `json:"location_lng"`
	LocationAddress string   `json:"location_address"`
	IsAnonymous     bool     `json:"is_anonymous"`
}

// UpdateReportRequest carries partial updates; nil fields are untouched.
type UpdateReportRequest struct {
	Status             *string    `json:"status"`
	Severity           *string    `json:"severity"`
	AssignedOfficialID *uuid.UUID `json:"assigned_official_id"`
}

type ReportFilters struct {
	Status   string
	Type     string
	Severity string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}
