package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DocumentStore persists an accepted ID capture and returns a durable
// URL. Only called after a positive verdict; the engine itself never
// stores images.
type DocumentStore interface {
	Upload(ctx context.Context, image []byte, contentType string) (string, error)
}

// HttpDocumentStore uploads to the remote storage service.
type HttpDocumentStore struct {
	baseURL    string
	httpClient *http.Client
}

func NewHttpDocumentStore(baseURL string) *HttpDocumentStore {
	return &HttpDocumentStore{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *HttpDocumentStore) Upload(ctx context.Context, image []byte, contentType string) (string, error) {
	objectName := fmt.Sprintf("documents/%s.jpg", uuid.NewString())
	url := fmt.Sprintf("%s/api/objects/%s", s.baseURL, objectName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	var uploadResponse struct {
		Url string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResponse); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploadResponse.Url == "" {
		return "", fmt.Errorf("storage service returned no url")
	}

	slog.Info("Document uploaded", "object", objectName, "size", len(image))
	return uploadResponse.Url, nil
}
