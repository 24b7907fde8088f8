package services

import (
	"log/slog"

	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditService appends privileged and state-changing actions to audit_logs.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record is fire-and-forget: an audit write failure is logged, it never fails
// the operation being audited.
func (s *AuditService) Record(actorID *uuid.UUID, action, entityType string, entityID *uuid.UUID, metadata map[string]interface{}) {
	entry := models.AuditLog{
		ID:          uuid.New(),
		ActorUserID: actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Metadata:    jsonMetadata(metadata),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		slog.Error("failed to write audit log", "action", action, "error", err)
	}
}

func (s *AuditService) List(action, entityType string, page, limit int) ([]models.AuditLog, int64, error) {
	page, limit, offset := normalizePage(page, limit, 50)

	query := s.db.Model(&models.AuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
