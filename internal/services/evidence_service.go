package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/config"
	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/models"
	"github.com/civicsetu/civicsetu-backend/internal/ratelimit"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/civicsetu/civicsetu-backend/internal/storage"
	"github.com/civicsetu/civicsetu-backend/internal/upload"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEvidenceNotFound = errors.New("evidence not found")

type EvidenceService struct {
	db      *gorm.DB
	blobs   storage.BlobStore
	limiter *ratelimit.Limiter
	cfg     *config.Config
	audit   *AuditService
}

func NewEvidenceService(db *gorm.DB, blobs storage.BlobStore, limiter *ratelimit.Limiter, cfg *config.Config, audit *AuditService) *EvidenceService {
	return &EvidenceService{db: db, blobs: blobs, limiter: limiter, cfg: cfg, audit: audit}
}

// UploadInput carries one file from the multipart form. Content is streamed,
// never fully buffered by this service.
type UploadInput struct {
	Filename string
	MIMEType string
	Size     int64
	Content  io.Reader
}

// Upload validates and stores one evidence file. Validation order is fixed:
// rate limit, report existence, access, size, declared MIME type, content
// signature, filename. The blob is written first; if the database row then
// fails, the blob is deleted so no orphan remains either way.
func (s *EvidenceService) Upload(ctx context.Context, reportID, callerID uuid.UUID, role roles.Role, in *UploadInput) (*models.Evidence, error) {
	if res := s.limiter.Check(ratelimit.ActionEvidenceUpload, callerID.String()); !res.Allowed {
		return nil, &RateLimitError{RetryAfter: res.RetryAfter}
	}

	report, err := reportExists(s.db, reportID)
	if err != nil {
		return nil, err
	}
	if !canAccessReport(report, callerID, role) {
		return nil, ErrReportAccess
	}

	if err := upload.CheckSize(in.Size); err != nil {
		return nil, err
	}
	mimeType := strings.ToLower(strings.TrimSpace(in.MIMEType))
	if err := upload.CheckMIMEType(mimeType); err != nil {
		return nil, err
	}

	header := make([]byte, upload.HeaderLen)
	n, err := io.ReadFull(in.Content, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	if err := upload.CheckSignature(mimeType, header[:n]); err != nil {
		return nil, err
	}
	body := io.MultiReader(bytes.NewReader(header[:n]), in.Content)

	safeName := upload.SanitizeFilename(in.Filename)
	path := fmt.Sprintf("%s/%d_%s.%s",
		reportID, time.Now().UnixMilli(), uuid.New().String()[:8], upload.Extension(safeName))

	if err := s.blobs.Upload(ctx, path, mimeType, body); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	evidence := models.Evidence{
		ID:               uuid.New(),
		ReportID:         reportID,
		FilePath:         path,
		FileType:         upload.FileKind(mimeType),
		OriginalFilename: safeName,
		UploadedByUserID: &callerID,
	}
	if err := s.db.Create(&evidence).Error; err != nil {
		// Compensating delete keeps storage and database consistent.
		if delErr := s.blobs.Delete(ctx, path); delErr != nil {
			slog.Error("failed to clean up orphaned blob", "path", path, "error", delErr)
		}
		return nil, fmt.Errorf("failed to record evidence: %w", err)
	}

	appendTimelineEvent(s.db, &models.TimelineEvent{
		ReportID:          reportID,
		EventType:         models.EventEvidenceAdded,
		PerformedByUserID: &callerID,
		Metadata:          jsonMetadata(map[string]interface{}{"file_type": evidence.FileType}),
	})
	s.audit.Record(&callerID, "evidence_uploaded", "evidence", &evidence.ID, map[string]interface{}{
		"report_id": reportID.String(), "file_type": evidence.FileType,
	})

	return &evidence, nil
}

func (s *EvidenceService) List(reportID, callerID uuid.UUID, role roles.Role) ([]models.Evidence, error) {
	report, err := reportExists(s.db, reportID)
	if err != nil {
		return nil, err
	}
	if !canAccessReport(report, callerID, role) {
		return nil, ErrReportAccess
	}

	var evidence []models.Evidence
	if err := s.db.Where("report_id = ?", reportID).Order("created_at ASC").Find(&evidence).Error; err != nil {
		return nil, err
	}
	return evidence, nil
}

// SignedURL issues a time-limited download link for one evidence file. Access
// follows the parent report's rules.
func (s *EvidenceService) SignedURL(ctx context.Context, evidenceID, callerID uuid.UUID, role roles.Role) (*dto.SignedURLResponse, error) {
	var evidence models.Evidence
	if err := s.db.First(&evidence, "id = ?", evidenceID).Error; err != nil {
		return nil, ErrEvidenceNotFound
	}

	report, err := reportExists(s.db, evidence.ReportID)
	if err != nil {
		return nil, err
	}
	if !canAccessReport(report, callerID, role) {
		return nil, ErrReportAccess
	}

	url, err := s.blobs.SignedURL(ctx, evidence.FilePath, s.cfg.SignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign download URL: %w", err)
	}
	return &dto.SignedURLResponse{
		SignedURL: url,
		ExpiresIn: int(s.cfg.SignedURLExpiry.Seconds()),
	}, nil
}
