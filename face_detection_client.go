package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go-identity-verifier/facematch"
	"go-identity-verifier/models"
)

// FaceDetectionClient talks to the local face-model runtime over HTTP and
// implements facematch.Detector. The runtime keeps the neural models hot;
// this client triggers the one-time model load lazily and shares the
// warmed instance across all sessions.
type FaceDetectionClient struct {
	baseURL    string
	httpClient *http.Client

	warmupOnce sync.Once
	warmupErr  error
}

func NewFaceDetectionClient(baseURL string) *FaceDetectionClient {
	return &FaceDetectionClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// warmup asks the runtime to load its models. Runs at most once per
// process; concurrent callers block on the same initialization.
func (c *FaceDetectionClient) warmup(ctx context.Context) error {
	c.warmupOnce.Do(func() {
		url := fmt.Sprintf("%s/api/warmup", c.baseURL)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
		if err != nil {
			c.warmupErr = fmt.Errorf("failed to create warmup request: %w", err)
			return
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.warmupErr = fmt.Errorf("failed to warm up face model runtime: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			c.warmupErr = fmt.Errorf("face model warmup failed with status %d: %s", resp.StatusCode, string(body))
			return
		}
		slog.Info("Face model runtime warmed up")
	})
	return c.warmupErr
}

// DetectFaces returns all faces in the image with confidence at or above
// minConfidence.
func (c *FaceDetectionClient) DetectFaces(ctx context.Context, image []byte, minConfidence float64) ([]facematch.FaceDescriptor, error) {
	if err := c.warmup(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/detect", c.baseURL)
	requestBody := models.FaceDetectRequest{
		Image:         base64.StdEncoding.EncodeToString(image),
		MinConfidence: minConfidence,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute detect request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("face detection failed with status %d: %s", resp.StatusCode, string(body))
	}

	var detectResponse models.FaceDetectResponse
	if err := json.NewDecoder(resp.Body).Decode(&detectResponse); err != nil {
		return nil, fmt.Errorf("failed to decode detect response: %w", err)
	}

	faces := make([]facematch.FaceDescriptor, 0, len(detectResponse.Faces))
	for _, f := range detectResponse.Faces {
		if f.Confidence < minConfidence {
			continue
		}
		faces = append(faces, facematch.FaceDescriptor{
			Embedding:  f.Embedding,
			Confidence: f.Confidence,
			Box: facematch.BoundingBox{
				X:      f.Box.X,
				Y:      f.Box.Y,
				Width:  f.Box.Width,
				Height: f.Box.Height,
			},
		})
	}

	slog.Debug("Face detection completed", "faces", len(faces), "min_confidence", minConfidence)
	return faces, nil
}

// HealthCheck verifies the face-model runtime is reachable.
func (c *FaceDetectionClient) HealthCheck() error {
	url := fmt.Sprintf("%s/api/healthz", c.baseURL)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute health check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed with status %d: %s", resp.StatusCode, string(body))
	}

	slog.Info("Face model runtime health check passed")
	return nil
}
