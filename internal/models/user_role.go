package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole holds the single role assigned to a profile. Profiles without a
// row default to citizen.
type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Role      string    `gorm:"not null;size:20;default:'citizen'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      Profile   `gorm:"foreignKey:UserID" json:"-"`
}
