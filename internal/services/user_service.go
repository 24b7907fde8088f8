package services

import (
	"fmt"
	"strings"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService is the admin-side view over profiles and role assignments.
type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewUserService(db *gorm.DB, audit *AuditService) *UserService {
	return &UserService{db: db, audit: audit}
}

func (s *UserService) List(search, role string, page, limit int) ([]dto.UserResponse, int64, error) {
	_, limit, offset := normalizePage(page, limit, 20)

	query := s.db.Model(&models.Profile{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern)
	}
	if role != "" {
		if role == string(roles.Citizen) {
			// Citizens may have no role row at all.
			query = query.Where(
				"id IN (SELECT user_id FROM user_roles WHERE role = ?) OR id NOT IN (SELECT user_id FROM user_roles)",
				role)
		} else {
			query = query.Where("id IN (SELECT user_id FROM user_roles WHERE role = ?)", role)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	users := make([]dto.UserResponse, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, dto.UserResponse{
			ID:       p.ID,
			Email:    p.Email,
			FullName: p.FullName,
			Role:     string(s.roleOf(p.ID)),
		})
	}
	return users, total, nil
}

func (s *UserService) Get(userID uuid.UUID) (*dto.UserResponse, error) {
	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &dto.UserResponse{
		ID:       profile.ID,
		Email:    profile.Email,
		FullName: profile.FullName,
		Role:     string(s.roleOf(profile.ID)),
	}, nil
}

// SetRole upserts the target's role assignment.
func (s *UserService) SetRole(targetID, actorID uuid.UUID, newRole string) (*dto.UserResponse, error) {
	if !roles.Valid(newRole) {
		return nil, fmt.Errorf("invalid role %q", newRole)
	}

	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", targetID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var assignment models.UserRole
	err := s.db.Where("user_id = ?", targetID).First(&assignment).Error
	switch {
	case err == nil:
		if err := s.db.Model(&assignment).Update("role", newRole).Error; err != nil {
			return nil, fmt.Errorf("failed to update role: %w", err)
		}
	default:
		assignment = models.UserRole{
			ID:     uuid.New(),
			UserID: targetID,
			Role:   newRole,
		}
		if err := s.db.Create(&assignment).Error; err != nil {
			return nil, fmt.Errorf("failed to assign role: %w", err)
		}
	}

	s.audit.Record(&actorID, "role_changed", "profile", &targetID, map[string]interface{}{
		"new_role": newRole,
	})

	return &dto.UserResponse{
		ID:       profile.ID,
		Email:    profile.Email,
		FullName: profile.FullName,
		Role:     newRole,
	}, nil
}

// SetActive enables or disables a profile. Disabled accounts cannot log in or
// refresh sessions.
func (s *UserService) SetActive(targetID, actorID uuid.UUID, active bool) error {
	res := s.db.Model(&models.Profile{}).Where("id = ?", targetID).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	if !active {
		s.db.Model(&models.RefreshToken{}).Where("user_id = ?", targetID).Update("revoked", true)
	}
	s.audit.Record(&actorID, "user_active_changed", "profile", &targetID, map[string]interface{}{
		"active": active,
	})
	return nil
}

func (s *UserService) roleOf(userID uuid.UUID) roles.Role {
	var assignment models.UserRole
	if err := s.db.Where("user_id = ?", userID).First(&assignment).Error; err != nil {
		return roles.Citizen
	}
	return roles.Parse(assignment.Role)
}

// DashboardStats is the admin landing-page rollup.
type DashboardStats struct {
	TotalReports    int64            `json:"total_reports"`
	ReportsByStatus map[string]int64 `json:"reports_by_status"`
	ReportsByType   map[string]int64 `json:"reports_by_type"`
	TotalUsers      int64            `json:"total_users"`
	TotalProjects   int64            `json:"total_projects"`
	OpenReports     int64            `json:"open_reports"`
	RecentReports   []models.Report  `json:"recent_reports"`
}

func (s *UserService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{
		ReportsByStatus: map[string]int64{},
		ReportsByType:   map[string]int64{},
		RecentReports:   []models.Report{},
	}

	if err := s.db.Model(&models.Report{}).Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Profile{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Project{}).Count(&stats.TotalProjects).Error; err != nil {
		return nil, err
	}

	var statusRows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Report{}).
		Select("status, count(*) as count").Group("status").Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ReportsByStatus[row.Status] = row.Count
		if row.Status != models.StatusResolved && row.Status != models.StatusRejected {
			stats.OpenReports += row.Count
		}
	}

	var typeRows []struct {
		Type  string
		Count int64
	}
	if err := s.db.Model(&models.Report{}).
		Select("type, count(*) as count").Group("type").Scan(&typeRows).Error; err != nil {
		return nil, err
	}
	for _, row := range typeRows {
		stats.ReportsByType[row.Type] = row.Count
	}

	if err := s.db.Order("created_at DESC").Limit(5).Find(&stats.RecentReports).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
