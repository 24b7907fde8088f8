package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SupabaseStore talks to the Supabase Storage REST API for one bucket.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
}

func NewSupabaseStore(baseURL, serviceKey, bucket string, timeout time.Duration) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *SupabaseStore) objectURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)
}

func (s *SupabaseStore) Upload(ctx context.Context, path, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(path), body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storage upload failed (status %d): %s", resp.StatusCode, string(msg))
	}
	return nil
}

func (s *SupabaseStore) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(path), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage delete failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrObjectNotFound
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storage delete failed (status %d): %s", resp.StatusCode, string(msg))
	}
	return nil
}

func (s *SupabaseStore) SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	payload, err := json.Marshal(map[string]int{"expiresIn": int(expiry.Seconds())})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sign request: %w", err)
	}

	signURL := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.baseURL, s.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create sign request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("signed URL request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrObjectNotFound
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("signed URL request failed (status %d): %s", resp.StatusCode, string(msg))
	}

	var body struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode sign response: %w", err)
	}
	return s.baseURL + "/storage/v1" + body.SignedURL, nil
}
