package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the internal user record every other table references.
type Profile struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	FullName  string         `gorm:"size:255" json:"full_name"`
	Phone     string         `gorm:"size:30" json:"phone,omitempty"`
	IsActive  bool           `gorm:"not null" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
