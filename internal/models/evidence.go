package models

import (
	"time"

	"github.com/google/uuid"
)

// Evidence file kinds, derived from the verified content signature.
const (
	FileTypeImage    = "image"
	FileTypeVideo    = "video"
	FileTypeDocument = "document"
)

// Evidence is a file attached to a report. FilePath is the blob-storage key,
// always built from sanitized input; downloads go through signed URLs.
type Evidence struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"report_id"`
	FilePath         string     `gorm:"not null;size:500" json:"file_path"`
	FileType         string     `gorm:"not null;size:20" json:"file_type"`
	OriginalFilename string     `gorm:"not null;size:255" json:"original_filename"`
	UploadedByUserID *uuid.UUID `gorm:"type:uuid" json:"uploaded_by_user_id"`
	CreatedAt        time.Time  `json:"created_at"`
	Report           Report     `gorm:"foreignKey:ReportID" json:"-"`
}
