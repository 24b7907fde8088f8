// Package upload validates evidence files before they touch storage: size
// ceiling, MIME allow-list, magic-byte signature check and filename
// sanitization.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/civicsetu/civicsetu-backend/internal/models"
)

// MaxFileSize is the upload ceiling (50 MB).
const MaxFileSize = 50 * 1024 * 1024

// HeaderLen is how many leading bytes the signature check needs.
const HeaderLen = 12

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrDisallowedType  = errors.New("file type not allowed")
	ErrContentMismatch = errors.New("file content does not match declared type")
)

// allowedMIMETypes partitions the allow-list into the stored file kinds.
var allowedMIMETypes = map[string][]string{
	models.FileTypeImage:    {"image/jpeg", "image/png", "image/gif", "image/webp", "image/heic", "image/heif"},
	models.FileTypeVideo:    {"video/mp4", "video/quicktime", "video/webm", "video/mpeg"},
	models.FileTypeDocument: {"application/pdf", "application/msword", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

// magicBytes maps a MIME type to known leading-byte signatures. Types absent
// here are accepted on allow-list membership alone.
var magicBytes = map[string][][]byte{
	"image/jpeg":      {{0xFF, 0xD8, 0xFF}},
	"image/png":       {{0x89, 0x50, 0x4E, 0x47}},
	"image/gif":       {{0x47, 0x49, 0x46, 0x38}},
	"image/webp":      {{0x52, 0x49, 0x46, 0x46}},
	"application/pdf": {{0x25, 0x50, 0x44, 0x46}},
	"video/mp4":       {{0x00, 0x00, 0x00}, {0x66, 0x74, 0x79, 0x70}},
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// FileKind returns the stored kind (image/video/document) for an allowed MIME
// type, or "" when the type is not allowed.
func FileKind(mimeType string) string {
	for kind, types := range allowedMIMETypes {
		for _, t := range types {
			if t == mimeType {
				return kind
			}
		}
	}
	return ""
}

// CheckSize rejects files over the ceiling.
func CheckSize(size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: maximum size is %dMB", ErrFileTooLarge, MaxFileSize/1024/1024)
	}
	return nil
}

// CheckMIMEType rejects MIME types outside the allow-list.
func CheckMIMEType(mimeType string) error {
	if FileKind(mimeType) == "" {
		return fmt.Errorf("%w: images, videos and PDF/Word documents only", ErrDisallowedType)
	}
	return nil
}

// CheckSignature verifies the leading bytes against the known signatures for
// the declared MIME type. This catches clients mislabeling arbitrary content
// as an allowed type.
func CheckSignature(mimeType string, header []byte) error {
	patterns, ok := magicBytes[mimeType]
	if !ok {
		// no registered signature for this type; the allow-list decides
		return CheckMIMEType(mimeType)
	}
	for _, p := range patterns {
		if len(header) >= len(p) && bytes.Equal(header[:len(p)], p) {
			return nil
		}
	}
	return ErrContentMismatch
}

// SanitizeFilename strips traversal sequences, replaces path separators,
// restricts to a safe character set and caps the length. The result (never
// the raw client name) is used in storage paths and display contexts.
func SanitizeFilename(name string) string {
	s := strings.ReplaceAll(name, "..", "")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "_")
	if len(s) > 255 {
		s = s[:255]
	}
	return s
}

// Extension returns the sanitized file extension without the dot, defaulting
// to "bin" when the name carries none.
func Extension(sanitizedName string) string {
	ext := strings.TrimPrefix(filepath.Ext(sanitizedName), ".")
	if ext == "" {
		return "bin"
	}
	return ext
}
