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
	"time"

	"go-identity-verifier/facematch"
	"go-identity-verifier/models"
)

// RemoteFaceProvider implements facematch.Provider against a remote
// multi-model match API. The remote service runs detection and several
// recognition models in one call; per-model distances are averaged and
// fed through the shared scoring function so the calibration constants
// stay identical to the local provider.
type RemoteFaceProvider struct {
	baseURL    string
	modelNames []string
	httpClient *http.Client
}

func NewRemoteFaceProvider(baseURL string, modelNames []string) *RemoteFaceProvider {
	return &RemoteFaceProvider{
		baseURL:    baseURL,
		modelNames: modelNames,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (p *RemoteFaceProvider) Match(ctx context.Context, idImage, selfieImage []byte) (facematch.MatchOutcome, error) {
	url := fmt.Sprintf("%s/api/match", p.baseURL)

	requestBody := models.RemoteMatchRequest{
		Images: []models.RemoteMatchImage{
			{Type: 1, Data: base64.StdEncoding.EncodeToString(idImage), Index: 1},
			{Type: 2, Data: base64.StdEncoding.EncodeToString(selfieImage), Index: 2},
		},
		Models: p.modelNames,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return facematch.MatchOutcome{}, fmt.Errorf("failed to marshal match request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return facematch.MatchOutcome{}, fmt.Errorf("failed to create match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return facematch.MatchOutcome{}, fmt.Errorf("failed to execute match request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return facematch.MatchOutcome{}, fmt.Errorf("remote match failed with status %d: %s", resp.StatusCode, string(body))
	}

	var matchResponse models.RemoteMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&matchResponse); err != nil {
		return facematch.MatchOutcome{}, fmt.Errorf("failed to decode match response: %w", err)
	}

	if matchResponse.DocumentFaces == 0 {
		return facematch.MatchOutcome{}, &facematch.NoFaceError{Source: facematch.SourceID}
	}
	if matchResponse.SelfieFaces == 0 {
		return facematch.MatchOutcome{}, &facematch.NoFaceError{Source: facematch.SourceSelfie}
	}
	if len(matchResponse.Results) == 0 {
		return facematch.MatchOutcome{}, fmt.Errorf("remote match returned no model results")
	}

	var sum float64
	for _, result := range matchResponse.Results {
		sum += result.Distance
	}
	distance := sum / float64(len(matchResponse.Results))

	outcome := facematch.Score(distance, matchResponse.SelfieConfidence)
	slog.Info("Remote face match completed",
		"models", len(matchResponse.Results),
		"distance", outcome.Distance,
		"match_score", outcome.MatchScore,
		"liveness_score", outcome.LivenessScore,
		"passed", outcome.Passed)
	return outcome, nil
}
