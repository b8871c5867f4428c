package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-identity-verifier/facematch"
	"go-identity-verifier/models"

	"github.com/stretchr/testify/require"
)

func newMatchAPI(t *testing.T, response models.RemoteMatchResponse) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/match", r.URL.Path)
		var req models.RemoteMatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Images, 2)
		require.Equal(t, 1, req.Images[0].Type)
		require.Equal(t, 2, req.Images[1].Type)
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteMatchAveragesModelDistances(t *testing.T) {
	srv := newMatchAPI(t, models.RemoteMatchResponse{
		Results: []models.RemoteMatchResult{
			{Model: "arcface", Distance: 0.2},
			{Model: "facenet", Distance: 0.4},
		},
		DocumentFaces:    1,
		SelfieFaces:      1,
		SelfieConfidence: 0.9,
	})
	provider := NewRemoteFaceProvider(srv.URL, []string{"arcface", "facenet"})

	outcome, err := provider.Match(context.Background(), []byte("id"), []byte("selfie"))
	require.NoError(t, err)

	// mean distance 0.3 -> (1 - 0.3/0.8) * 100
	require.InDelta(t, 0.3, outcome.Distance, 1e-9)
	require.InDelta(t, 62.5, outcome.MatchScore, 1e-9)
	require.InDelta(t, 90.0, outcome.LivenessScore, 1e-9)
	require.True(t, outcome.Passed)
}

func TestRemoteMatchNoDocumentFace(t *testing.T) {
	srv := newMatchAPI(t, models.RemoteMatchResponse{
		DocumentFaces: 0,
		SelfieFaces:   1,
	})
	provider := NewRemoteFaceProvider(srv.URL, nil)

	_, err := provider.Match(context.Background(), []byte("id"), []byte("selfie"))

	var noFace *facematch.NoFaceError
	require.True(t, errors.As(err, &noFace))
	require.Equal(t, facematch.SourceID, noFace.Source)
}

func TestRemoteMatchNoSelfieFace(t *testing.T) {
	srv := newMatchAPI(t, models.RemoteMatchResponse{
		DocumentFaces: 1,
		SelfieFaces:   0,
	})
	provider := NewRemoteFaceProvider(srv.URL, nil)

	_, err := provider.Match(context.Background(), []byte("id"), []byte("selfie"))

	var noFace *facematch.NoFaceError
	require.True(t, errors.As(err, &noFace))
	require.Equal(t, facematch.SourceSelfie, noFace.Source)
}

func TestRemoteMatchEmptyResults(t *testing.T) {
	srv := newMatchAPI(t, models.RemoteMatchResponse{
		DocumentFaces: 1,
		SelfieFaces:   1,
	})
	provider := NewRemoteFaceProvider(srv.URL, nil)

	_, err := provider.Match(context.Background(), []byte("id"), []byte("selfie"))
	require.ErrorContains(t, err, "no model results")

	var noFace *facematch.NoFaceError
	require.False(t, errors.As(err, &noFace))
}

func TestRemoteMatchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	provider := NewRemoteFaceProvider(srv.URL, nil)

	_, err := provider.Match(context.Background(), []byte("id"), []byte("selfie"))
	require.ErrorContains(t, err, "status 503")
}
