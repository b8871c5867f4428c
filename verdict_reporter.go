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

	"go-identity-verifier/models"
)

// VerdictReporter hands the terminal verification result to the backend,
// which stores it against the interview invitation.
type VerdictReporter interface {
	Report(ctx context.Context, verdict models.VerificationVerdict) error
}

// HttpVerdictReporter posts the verdict to the backend API. When a jwt
// creator is configured the verdict is additionally signed so the backend
// can verify its origin.
type HttpVerdictReporter struct {
	baseURL    string
	jwtCreator *VerdictJwtCreator // optional
	httpClient *http.Client
}

func NewHttpVerdictReporter(baseURL string, jwtCreator *VerdictJwtCreator) *HttpVerdictReporter {
	return &HttpVerdictReporter{
		baseURL:    baseURL,
		jwtCreator: jwtCreator,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (r *HttpVerdictReporter) Report(ctx context.Context, verdict models.VerificationVerdict) error {
	url := fmt.Sprintf("%s/api/verification-results", r.baseURL)

	jsonData, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create verdict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if r.jwtCreator != nil {
		token, err := r.jwtCreator.CreateVerdictJwt(verdict)
		if err != nil {
			return fmt.Errorf("failed to sign verdict: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute verdict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("verdict report failed with status %d: %s", resp.StatusCode, string(body))
	}

	slog.Info("Verdict reported", "session_id", verdict.SessionId, "passed", verdict.Passed)
	return nil
}
