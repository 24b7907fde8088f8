package services

import (
	"testing"

	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, read bool) uuid.UUID {
	t.Helper()
	n := models.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   models.NotificationStatusChange,
		Title:  "Report status updated",
		IsRead: read,
	}
	require.NoError(t, db.Create(&n).Error)
	return n.ID
}

func TestNotificationListWithUnreadCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	userID := seedUser(t, db, "user@example.com", roles.Citizen)
	otherID := seedUser(t, db, "other@example.com", roles.Citizen)

	seedNotification(t, db, userID, false)
	seedNotification(t, db, userID, false)
	seedNotification(t, db, userID, true)
	seedNotification(t, db, otherID, false)

	page, err := svc.List(userID, false, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.EqualValues(t, 2, page.UnreadCount)
	assert.Len(t, page.Notifications, 3)

	unread, err := svc.List(userID, true, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread.Total)
	assert.Len(t, unread.Notifications, 2)
}

func TestNotificationMarkReadIdempotentAndScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	userID := seedUser(t, db, "user@example.com", roles.Citizen)
	otherID := seedUser(t, db, "other@example.com", roles.Citizen)
	id := seedNotification(t, db, userID, false)

	require.NoError(t, svc.MarkRead(id, userID))
	require.NoError(t, svc.MarkRead(id, userID))

	var n models.Notification
	require.NoError(t, db.First(&n, "id = ?", id).Error)
	assert.True(t, n.IsRead)

	// Another recipient cannot touch it.
	assert.ErrorIs(t, svc.MarkRead(id, otherID), ErrNotificationNotFound)
}

func TestNotificationMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	userID := seedUser(t, db, "user@example.com", roles.Citizen)

	seedNotification(t, db, userID, false)
	seedNotification(t, db, userID, false)
	seedNotification(t, db, userID, true)

	updated, err := svc.MarkAllRead(userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	page, err := svc.List(userID, true, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)
}
