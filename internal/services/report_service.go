package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/civicsetu/civicsetu-backend/internal/ai"
	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/ratelimit"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/civicsetu/civicsetu-backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound   = errors.New("report not found")
	ErrReportAccess     = errors.New("no access to this report")
	ErrInvalidReport    = errors.New("invalid report payload")
	ErrInvalidStatus    = errors.New("invalid report status")
	ErrInvalidSeverity  = errors.New("invalid report severity")
	ErrAssigneeNotFound = errors.New("assigned official not found")
)

type ReportService struct {
	db      *gorm.DB
	oracle  ai.Oracle
	blobs   storage.BlobStore
	limiter *ratelimit.Limiter
	audit   *AuditService
}

func NewReportService(db *gorm.DB, oracle ai.Oracle, blobs storage.BlobStore, limiter *ratelimit.Limiter, audit *AuditService) *ReportService {
	return &ReportService{db: db, oracle: oracle, blobs: blobs, limiter: limiter, audit: audit}
}

// ReportDetail is the aggregate view of one report.
type ReportDetail struct {
	Report   models.Report          `json:"report"`
	Evidence []models.Evidence      `json:"evidence"`
	Timeline []models.TimelineEvent `json:"timeline"`
	Comments []models.Comment       `json:"comments"`
}

// Create files a new report. The actor is optional: a tokenless submission
// stores no reporter link, same as an anonymous one, and that choice is
// irreversible. AI enrichment is best-effort and never blocks or fails the
// submission.
func (s *ReportService) Create(ctx context.Context, actorID *uuid.UUID, limitKey string, req *dto.CreateReportRequest) (*models.Report, error) {
	if res := s.limiter.Check(ratelimit.ActionReportSubmission, limitKey); !res.Allowed {
		return nil, &RateLimitError{RetryAfter: res.RetryAfter}
	}

	if !models.ValidReportType(req.Type) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidReport, req.Type)
	}
	if req.Title == "" || req.Description == "" || req.Category == "" {
		return nil, fmt.Errorf("%w: title, category and description are required", ErrInvalidReport)
	}
	severity := req.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	if !models.ValidSeverity(severity) {
		return nil, ErrInvalidSeverity
	}

	report := models.Report{
		ID:              uuid.New(),
		Type:            req.Type,
		Category:        req.Category,
		Title:           req.Title,
		Description:     req.Description,
		Severity:        severity,
		Status:          models.StatusSubmitted,
		LocationLat:     req.LocationLat,
		LocationLng:     req.LocationLng,
		LocationAddress: req.LocationAddress,
		IsAnonymous:     req.IsAnonymous,
	}
	if !req.IsAnonymous && actorID != nil {
		id := *actorID
		report.ReporterUserID = &id
	}

	if suggestion, err := s.oracle.SuggestCategory(ctx, req.Type, req.Description); err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			slog.Warn("AI category suggestion failed", "error", err)
		}
	} else if suggestion != nil {
		report.AICategorySuggestion = suggestion.Category
		report.AISentiment = suggestion.Sentiment
	}

	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	initialStatus := report.Status
	appendTimelineEvent(s.db, &models.TimelineEvent{
		ReportID:          report.ID,
		EventType:         models.EventReportCreated,
		ToStatus:          &initialStatus,
		PerformedByUserID: report.ReporterUserID,
		Metadata:          jsonMetadata(map[string]interface{}{"type": report.Type, "severity": report.Severity}),
	})
	s.audit.Record(report.ReporterUserID, "report_created", "report", &report.ID, map[string]interface{}{
		"type": report.Type, "anonymous": report.IsAnonymous,
	})

	return &report, nil
}

// Get returns one report if the caller may see it: moderators see everything,
// a citizen sees only reports linked to their own account. Anonymous reports
// carry no reporter link, so they are reachable by moderators alone.
func (s *ReportService) Get(reportID, callerID uuid.UUID, role roles.Role) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, ErrReportNotFound
	}
	if !canAccessReport(&report, callerID, role) {
		return nil, ErrReportAccess
	}
	return &report, nil
}

func (s *ReportService) ListMine(userID uuid.UUID, page, limit int) ([]models.Report, int64, error) {
	page, limit, offset := normalizePage(page, limit, 20)

	query := s.db.Model(&models.Report{}).Where("reporter_user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// List is the moderator-side browse across all reports.
func (s *ReportService) List(filters *dto.ReportFilters) ([]models.Report, int64, error) {
	_, limit, offset := normalizePage(filters.Page, filters.Limit, 20)

	query := s.db.Model(&models.Report{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Severity != "" {
		query = query.Where("severity = ?", filters.Severity)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Update applies a partial moderator edit. A status transition appends a
// status_change timeline event and notifies the reporter (when one is on
// record); a new assignment appends an assigned event.
func (s *ReportService) Update(reportID, actorID uuid.UUID, req *dto.UpdateReportRequest) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, ErrReportNotFound
	}

	updates := map[string]interface{}{}
	var statusFrom, statusTo string
	var newAssignee *uuid.UUID

	if req.Status != nil && *req.Status != report.Status {
		if !models.ValidStatus(*req.Status) {
			return nil, ErrInvalidStatus
		}
		statusFrom, statusTo = report.Status, *req.Status
		updates["status"] = *req.Status
	}
	if req.Severity != nil && *req.Severity != report.Severity {
		if !models.ValidSeverity(*req.Severity) {
			return nil, ErrInvalidSeverity
		}
		updates["severity"] = *req.Severity
	}
	if req.AssignedOfficialID != nil {
		var official models.Profile
		if err := s.db.First(&official, "id = ?", *req.AssignedOfficialID).Error; err != nil {
			return nil, ErrAssigneeNotFound
		}
		newAssignee = req.AssignedOfficialID
		updates["assigned_official_id"] = *req.AssignedOfficialID
	}

	if len(updates) == 0 {
		return &report, nil
	}

	if err := s.db.Model(&report).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	if statusTo != "" {
		appendTimelineEvent(s.db, &models.TimelineEvent{
			ReportID:          report.ID,
			EventType:         models.EventStatusChange,
			FromStatus:        &statusFrom,
			ToStatus:          &statusTo,
			PerformedByUserID: &actorID,
			Metadata:          jsonMetadata(nil),
		})
		if report.ReporterUserID != nil {
			createNotification(s.db, *report.ReporterUserID, models.NotificationStatusChange,
				"Report status updated",
				fmt.Sprintf("Your report %q moved from %s to %s.", report.Title, statusFrom, statusTo))
		}
	}
	if newAssignee != nil {
		appendTimelineEvent(s.db, &models.TimelineEvent{
			ReportID:          report.ID,
			EventType:         models.EventAssigned,
			PerformedByUserID: &actorID,
			Metadata:          jsonMetadata(map[string]interface{}{"assigned_official_id": newAssignee.String()}),
		})
	}
	s.audit.Record(&actorID, "report_updated", "report", &report.ID, map[string]interface{}{
		"fields": len(updates),
	})

	return &report, nil
}

// Delete hard-removes a report and its dependents in one transaction, then
// sweeps the evidence blobs best-effort.
func (s *ReportService) Delete(ctx context.Context, reportID, actorID uuid.UUID) error {
	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		return ErrReportNotFound
	}

	var evidence []models.Evidence
	if err := s.db.Where("report_id = ?", reportID).Find(&evidence).Error; err != nil {
		return fmt.Errorf("failed to load evidence: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", reportID).Delete(&models.Evidence{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.TimelineEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&report).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	for _, ev := range evidence {
		if err := s.blobs.Delete(ctx, ev.FilePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			slog.Warn("failed to delete evidence blob", "path", ev.FilePath, "error", err)
		}
	}

	s.audit.Record(&actorID, "report_deleted", "report", &reportID, map[string]interface{}{
		"evidence_count": len(evidence),
	})
	return nil
}

// Timeline returns the report's append-only history in chronological order.
func (s *ReportService) Timeline(reportID, callerID uuid.UUID, role roles.Role) ([]models.TimelineEvent, error) {
	if _, err := s.Get(reportID, callerID, role); err != nil {
		return nil, err
	}

	var events []models.TimelineEvent
	if err := s.db.Where("report_id = ?", reportID).Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Detail fetches the report plus evidence, timeline and visible comments. The
// three child queries run concurrently on separate sessions.
func (s *ReportService) Detail(reportID, callerID uuid.UUID, role roles.Role) (*ReportDetail, error) {
	report, err := s.Get(reportID, callerID, role)
	if err != nil {
		return nil, err
	}

	detail := &ReportDetail{Report: *report}
	var wg sync.WaitGroup
	var evErr, tlErr, cmErr error

	wg.Add(3)
	go func() {
		defer wg.Done()
		evErr = s.db.Session(&gorm.Session{}).
			Where("report_id = ?", reportID).Order("created_at ASC").Find(&detail.Evidence).Error
	}()
	go func() {
		defer wg.Done()
		tlErr = s.db.Session(&gorm.Session{}).
			Where("report_id = ?", reportID).Order("created_at ASC").Find(&detail.Timeline).Error
	}()
	go func() {
		defer wg.Done()
		var comments []models.Comment
		cmErr = s.db.Session(&gorm.Session{}).
			Where("report_id = ?", reportID).Order("created_at ASC").Find(&comments).Error
		if cmErr == nil {
			detail.Comments = filterVisibleComments(comments, callerID, role)
		}
	}()
	wg.Wait()

	for _, err := range []error{evErr, tlErr, cmErr} {
		if err != nil {
			return nil, fmt.Errorf("failed to load report detail: %w", err)
		}
	}
	if detail.Evidence == nil {
		detail.Evidence = []models.Evidence{}
	}
	if detail.Comments == nil {
		detail.Comments = []models.Comment{}
	}
	return detail, nil
}

func canAccessReport(report *models.Report, callerID uuid.UUID, role roles.Role) bool {
	if roles.CanModerateReports(role) {
		return true
	}
	return report.ReporterUserID != nil && *report.ReporterUserID == callerID
}

// reportExists is the cheap existence probe used by child-resource services.
func reportExists(db *gorm.DB, reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := db.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, ErrReportNotFound
	}
	return &report, nil
}
