package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records privileged and state-changing actions. Append-only.
type AuditLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ActorUserID *uuid.UUID     `gorm:"type:uuid;index" json:"actor_user_id"`
	Action      string         `gorm:"not null;size:100;index" json:"action"`
	EntityType  string         `gorm:"size:50;index" json:"entity_type"`
	EntityID    *uuid.UUID     `gorm:"type:uuid;index" json:"entity_id"`
	Metadata    datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}
