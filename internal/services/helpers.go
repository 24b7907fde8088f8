package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RateLimitError signals a throttled operation; RetryAfter is surfaced to the
// client as a Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Second))
}

// appendTimelineEvent writes one append-only timeline row. The primary
// mutation is already committed at this point; a failed append is logged and
// monitored, never propagated (no distributed transaction spans the two
// writes).
func appendTimelineEvent(db *gorm.DB, event *models.TimelineEvent) {
	event.ID = uuid.New()
	if err := db.Create(event).Error; err != nil {
		slog.Error("failed to append timeline event",
			"report_id", event.ReportID, "event_type", event.EventType, "error", err)
	}
}

// createNotification writes a system-generated notification. Best-effort in
// the same way as timeline appends.
func createNotification(db *gorm.DB, userID uuid.UUID, ntype, title, body string) {
	n := models.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   ntype,
		Title:  title,
		Body:   body,
	}
	if err := db.Create(&n).Error; err != nil {
		slog.Error("failed to create notification", "user_id", userID, "type", ntype, "error", err)
	}
}

func jsonMetadata(m map[string]interface{}) datatypes.JSON {
	if len(m) == 0 {
		return datatypes.JSON("{}")
	}
	b, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

func normalizePage(page, limit, defaultLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}
