package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a remark on a report. AuthorRole is captured at write time and
// never re-derived, so later role changes do not rewrite history. Non-public
// comments are visible only to officials/admins and the author.
type Comment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID     uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	AuthorUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"author_user_id"`
	AuthorRole   string    `gorm:"not null;size:20" json:"author_role"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	IsPublic     bool      `gorm:"not null" json:"is_public"`
	CreatedAt    time.Time `json:"created_at"`
	Report       Report    `gorm:"foreignKey:ReportID" json:"-"`
	Author       Profile   `gorm:"foreignKey:AuthorUserID" json:"-"`
}
