package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationStatusChange = "report_status_change"
	NotificationNewComment   = "new_comment"
)

// Notification is a one-way message to a user, created only by the system.
// The recipient may mark it read; nothing else mutates it.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string    `gorm:"not null;size:50" json:"type"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	User      Profile   `gorm:"foreignKey:UserID" json:"-"`
}
