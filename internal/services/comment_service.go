package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/ratelimit"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmptyComment = errors.New("comment content is required")

type CommentService struct {
	db      *gorm.DB
	limiter *ratelimit.Limiter
}

func NewCommentService(db *gorm.DB, limiter *ratelimit.Limiter) *CommentService {
	return &CommentService{db: db, limiter: limiter}
}

// Create posts a comment on a report. The author's role is frozen into the
// row at write time. A comment from an official or admin notifies the
// reporter, unless the report is anonymous.
func (s *CommentService) Create(reportID, authorID uuid.UUID, role roles.Role, req *dto.CreateCommentRequest) (*models.Comment, error) {
	if res := s.limiter.Check(ratelimit.ActionCommentPosting, authorID.String()); !res.Allowed {
		return nil, &RateLimitError{RetryAfter: res.RetryAfter}
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	report, err := reportExists(s.db, reportID)
	if err != nil {
		return nil, err
	}
	if !canAccessReport(report, authorID, role) {
		return nil, ErrReportAccess
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	// Citizens cannot write internal comments.
	if !roles.CanViewInternalComments(role) {
		isPublic = true
	}

	comment := models.Comment{
		ID:           uuid.New(),
		ReportID:     reportID,
		AuthorUserID: authorID,
		AuthorRole:   string(role),
		Content:      content,
		IsPublic:     isPublic,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	appendTimelineEvent(s.db, &models.TimelineEvent{
		ReportID:          reportID,
		EventType:         models.EventCommentAdded,
		PerformedByUserID: &authorID,
		Metadata:          jsonMetadata(map[string]interface{}{"is_public": isPublic}),
	})

	if roles.CanModerateReports(role) && report.ReporterUserID != nil && *report.ReporterUserID != authorID {
		createNotification(s.db, *report.ReporterUserID, models.NotificationNewComment,
			"New comment on your report",
			fmt.Sprintf("An official commented on your report %q.", report.Title))
	}

	return &comment, nil
}

// List returns the comments the caller may see, oldest first.
func (s *CommentService) List(reportID, callerID uuid.UUID, role roles.Role) ([]models.Comment, error) {
	report, err := reportExists(s.db, reportID)
	if err != nil {
		return nil, err
	}
	if !canAccessReport(report, callerID, role) {
		return nil, ErrReportAccess
	}

	var comments []models.Comment
	if err := s.db.Where("report_id = ?", reportID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return filterVisibleComments(comments, callerID, role), nil
}

// filterVisibleComments keeps public comments, the caller's own, and (for
// officials/admins) internal ones.
func filterVisibleComments(comments []models.Comment, callerID uuid.UUID, role roles.Role) []models.Comment {
	if roles.CanViewInternalComments(role) {
		return comments
	}
	visible := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsPublic || c.AuthorUserID == callerID {
			visible = append(visible, c)
		}
	}
	return visible
}
