// Package storage abstracts the evidence blob store: upload, delete and
// time-boxed signed URLs for private objects.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("storage object not found")

// BlobStore is the external object store the evidence service writes to.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, body io.Reader) error
	Delete(ctx context.Context, path string) error
	// SignedURL returns a time-limited link for a private object. Evidence may
	// be sensitive, so no permanent public links are handed out.
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}
