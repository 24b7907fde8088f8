package services

import (
	"testing"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRoleUpserts(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewAuditService(db))
	adminID := seedUser(t, db, "admin@example.com", roles.Admin)

	// No role row yet: promoting creates one.
	citizenID := seedUser(t, db, "citizen@example.com", roles.Citizen)
	user, err := svc.SetRole(citizenID, adminID, string(roles.Official))
	require.NoError(t, err)
	assert.Equal(t, string(roles.Official), user.Role)

	// A second change updates the same row.
	user, err = svc.SetRole(citizenID, adminID, string(roles.Admin))
	require.NoError(t, err)
	assert.Equal(t, string(roles.Admin), user.Role)

	var count int64
	require.NoError(t, db.Model(&models.UserRole{}).
		Where("user_id = ?", citizenID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// The change is audited.
	var audits int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ?", "role_changed").Count(&audits).Error)
	assert.EqualValues(t, 2, audits)
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewAuditService(db))
	adminID := seedUser(t, db, "admin@example.com", roles.Admin)
	citizenID := seedUser(t, db, "citizen@example.com", roles.Citizen)

	_, err := svc.SetRole(citizenID, adminID, "superuser")
	assert.Error(t, err)

	_, err = svc.SetRole(uuid.New(), adminID, string(roles.Official))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetActiveRevokesSessions(t *testing.T) {
	db := newTestDB(t)
	userSvc := NewUserService(db, NewAuditService(db))
	authSvc := NewAuthService(db, testConfig(), NewAuditService(db))
	adminID := seedUser(t, db, "admin@example.com", roles.Admin)
	targetID := seedUser(t, db, "target@example.com", roles.Citizen)

	login, err := authSvc.Login(&dto.LoginRequest{Email: "target@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, userSvc.SetActive(targetID, adminID, false))

	_, err = authSvc.Login(&dto.LoginRequest{Email: "target@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrAccountDisabled)

	_, err = authSvc.Refresh(&dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewAuditService(db))
	seedUser(t, db, "admin@example.com", roles.Admin)
	seedUser(t, db, "official@example.com", roles.Official)
	seedUser(t, db, "asha@example.com", roles.Citizen)

	users, total, err := svc.List("", string(roles.Official), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "official@example.com", users[0].Email)

	users, total, err = svc.List("asha", "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, string(roles.Citizen), users[0].Role)

	// Citizens include profiles with no role row at all.
	_, total, err = svc.List("", string(roles.Citizen), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestDashboardCounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewAuditService(db))
	ownerID := seedUser(t, db, "owner@example.com", roles.Citizen)

	seedReport(t, db, &ownerID, false)
	resolved := seedReport(t, db, &ownerID, false)
	require.NoError(t, db.Model(resolved).Update("status", models.StatusResolved).Error)
	seedProject(t, db, "RD-001", "Public Works", models.ProjectOngoing, 100)

	stats, err := svc.Dashboard()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalReports)
	assert.EqualValues(t, 1, stats.OpenReports)
	assert.EqualValues(t, 1, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalProjects)
	assert.EqualValues(t, 2, stats.ReportsByType[models.ReportTypeInfrastructure])
	assert.Len(t, stats.RecentReports, 2)
}
