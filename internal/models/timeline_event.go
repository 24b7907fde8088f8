package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Timeline event types.
const (
	EventReportCreated = "created"
	EventStatusChange  = "status_change"
	EventCommentAdded  = "comment_added"
	EventEvidenceAdded = "evidence_added"
	EventAssigned      = "assigned"
)

// TimelineEvent is an append-only audit entry for a report. Rows are never
// updated or deleted; ordering by CreatedAt reconstructs the full history.
type TimelineEvent struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"report_id"`
	EventType         string         `gorm:"not null;size:30" json:"event_type"`
	FromStatus        *string        `gorm:"size:20" json:"from_status,omitempty"`
	ToStatus          *string        `gorm:"size:20" json:"to_status,omitempty"`
	PerformedByUserID *uuid.UUID     `gorm:"type:uuid" json:"performed_by_user_id"`
	Metadata          datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	Report            Report         `gorm:"foreignKey:ReportID" json:"-"`
}
