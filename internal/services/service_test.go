package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/config"
	"github.com/civicsetu/civicsetu-backend/internal/database"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/ratelimit"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a named in-memory SQLite database shared across the pool's
// connections, so concurrent queries in the same test see the same data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
		StorageBucket:    "evidence-media",
		SignedURLExpiry:  time.Hour,
	}
}

func newTestLimiter() *ratelimit.Limiter {
	return ratelimit.New(ratelimit.NewCacheStore())
}

func seedUser(t *testing.T, db *gorm.DB, email string, role roles.Role) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	profile := models.Profile{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hash),
		FullName: "Test User",
		IsActive: true,
	}
	require.NoError(t, db.Create(&profile).Error)

	if role != roles.Citizen {
		require.NoError(t, db.Create(&models.UserRole{
			ID:     uuid.New(),
			UserID: profile.ID,
			Role:   string(role),
		}).Error)
	}
	return profile.ID
}

func seedReport(t *testing.T, db *gorm.DB, reporterID *uuid.UUID, anonymous bool) *models.Report {
	t.Helper()

	report := models.Report{
		ID:          uuid.New(),
		Type:        models.ReportTypeInfrastructure,
		Category:    "roads",
		Title:       "Pothole on Main Street",
		Description: "Large pothole near the intersection",
		Severity:    models.SeverityMedium,
		Status:      models.StatusSubmitted,
		IsAnonymous: anonymous,
	}
	if !anonymous {
		report.ReporterUserID = reporterID
	}
	require.NoError(t, db.Create(&report).Error)
	return &report
}
