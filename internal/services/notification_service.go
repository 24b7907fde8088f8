package services

import (
	"errors"

	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotificationPage is one page of a user's notifications plus the total
// unread count across all of them.
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	UnreadCount   int64                 `json:"unread_count"`
}

func (s *NotificationService) List(userID uuid.UUID, unreadOnly bool, page, limit int) (*NotificationPage, error) {
	_, limit, offset := normalizePage(page, limit, 20)

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = false")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var unread int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).Count(&unread).Error; err != nil {
		return nil, err
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error; err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	return &NotificationPage{Notifications: notifications, Total: total, UnreadCount: unread}, nil
}

// MarkRead is idempotent and scoped to the recipient: marking an already-read
// notification succeeds, touching someone else's does not.
func (s *NotificationService) MarkRead(notificationID, userID uuid.UUID) error {
	var n models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error; err != nil {
		return ErrNotificationNotFound
	}
	if n.IsRead {
		return nil
	}
	return s.db.Model(&n).Update("is_read", true).Error
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
