package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryStore is an in-memory BlobStore used in tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailUploads forces Upload to error, for exercising hard-failure paths.
	FailUploads bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(_ context.Context, path, _ string, body io.Reader) error {
	if m.FailUploads {
		return fmt.Errorf("storage upload failed: forced failure")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, path)
	return nil
}

func (m *MemoryStore) SignedURL(_ context.Context, path string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return "", ErrObjectNotFound
	}
	return fmt.Sprintf("memory://%s?expires_in=%d", path, int(expiry.Seconds())), nil
}

// Has reports whether an object exists, for test assertions.
func (m *MemoryStore) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
