package services

import (
	"testing"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestCommentCapturesAuthorRoleAtWrite(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, newTestLimiter())
	ownerID := seedUser(t, db, "owner@example.com", roles.Citizen)
	officialID := seedUser(t, db, "official@example.com", roles.Official)
	report := seedReport(t, db, &ownerID, false)

	comment, err := svc.Create(report.ID, officialID, roles.Official, &dto.CreateCommentRequest{
		Content: "Crew dispatched",
	})
	require.NoError(t, err)
	assert.Equal(t, string(roles.Official), comment.AuthorRole)

	// Demoting the author later does not rewrite history.
	require.NoError(t, db.Model(&models.UserRole{}).
		Where("user_id = ?", officialID).Update("role", string(roles.Citizen)).Error)
	var stored models.Comment
	require.NoError(t, db.First(&stored, "id = ?", comment.ID).Error)
	assert.Equal(t, string(roles.Official), stored.AuthorRole)
}

func TestCommentOfficialNotifiesReporter(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, newTestLimiter())
	ownerID := seedUser(t, db, "owner@example.com", roles.Citizen)
	officialID := seedUser(t, db, "official@example.com", roles.Official)
	report := seedReport(t, db, &ownerID, false)

	_, err := svc.Create(report.ID, officialID, roles.Official, &dto.CreateCommentRequest{
		Content: "Under review",
	})
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", ownerID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationNewComment, notifications[0].Type)

	// The reporter commenting on their own report does not notify anyone.
	_, err = svc.Create(report.ID, ownerID, roles.Citizen, &dto.CreateCommentRequest{
		Content: "Thanks for the update",
	})
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCommentAnonymousReportNoNotification(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, newTestLimiter())
	officialID := seedUser(t, db, "official@example.com", roles.Official)
	report := seedReport(t, db, nil, true)

	_, err := svc.Create(report.ID, officialID, roles.Official, &dto.CreateCommentRequest{
		Content: "Investigating",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommentCitizenCannotWriteInternal(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, newTestLimiter())
	ownerID := seedUser(t, db, "owner@example.com", roles.Citizen)
	report := seedReport(t, db, &ownerID, false)

	comment, err := svc.Create(report.ID, ownerID, roles.Citizen, &dto.CreateCommentRequest{
		Content:  "please keep this private",
		IsPublic: boolPtr(false),
	})
	require.NoError(t, err)
	assert.True(t, comment.IsPublic)
}

func TestCommentInternalFlagSurvivesInsert(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, newTestLimiter())
	ownerID := seedUser(t, db, "owner@example.com", roles.Citizen)
	officialID := seedUser(t, db, "official@example.com", roles.Official)
	report := seedReport(t, db, &ownerID, false)

	comment, err := svc.Create(report.ID, officialID, roles.Official, &dto.CreateCommentRequest{
		Content:  "internal triage note",
		IsPublic: boolPtr(false),
	})
	require.NoError(t, err)
	require.False(t, comment.IsPublic)

	// The stored row, not just the returned struct, must stay non-public.
	var stored models.Comment
	require.NoError(t, db.First(&stored, "id = ?", comment.ID).Error)
	assert.False(t, stored.IsPublic)
}

func TestCommentVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, newTestLimiter())
	ownerID := seedUser(t, db, "owner@example.com", roles.Citizen)
	officialID := seedUser(t, db, "official@example.com", roles.Official)
	report := seedReport(t, db, &ownerID, false)

	_, err := svc.Create(report.ID, officialID, roles.Official, &dto.CreateCommentRequest{
		Content: "internal triage note", IsPublic: boolPtr(false),
	})
	require.NoError(t, err)
	_, err = svc.Create(report.ID, officialID, roles.Official, &dto.CreateCommentRequest{
		Content: "work scheduled",
	})
	require.NoError(t, err)

	ownerView, err := svc.List(report.ID, ownerID, roles.Citizen)
	require.NoError(t, err)
	require.Len(t, ownerView, 1)
	assert.Equal(t, "work scheduled", ownerView[0].Content)

	officialView, err := svc.List(report.ID, officialID, roles.Official)
	require.NoError(t, err)
	assert.Len(t, officialView, 2)
}

func TestCommentEmptyContentRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db, newTestLimiter())
	ownerID := seedUser(t, db, "owner@example.com", roles.Citizen)
	report := seedReport(t, db, &ownerID, false)

	_, err := svc.Create(report.ID, ownerID, roles.Citizen, &dto.CreateCommentRequest{Content: "   "})
	assert.ErrorIs(t, err, ErrEmptyComment)
}
