package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go-identity-verifier/models"

	"github.com/stretchr/testify/require"
)

func newDetectorRuntime(t *testing.T, faces []models.DetectedFace) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var warmups atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/warmup", func(w http.ResponseWriter, r *http.Request) {
		warmups.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/detect", func(w http.ResponseWriter, r *http.Request) {
		var req models.FaceDetectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Image)
		require.NoError(t, json.NewEncoder(w).Encode(models.FaceDetectResponse{Faces: faces}))
	})
	mux.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &warmups
}

func TestDetectFacesMapsDescriptors(t *testing.T) {
	faces := []models.DetectedFace{
		{
			Embedding:  []float64{0.1, 0.2, 0.3},
			Confidence: 0.93,
			Box:        models.FaceBox{X: 10, Y: 20, Width: 100, Height: 120},
		},
	}
	srv, _ := newDetectorRuntime(t, faces)
	client := NewFaceDetectionClient(srv.URL)

	got, err := client.DetectFaces(context.Background(), []byte("image"), 0.5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []float64{0.1, 0.2, 0.3}, got[0].Embedding)
	require.InDelta(t, 0.93, got[0].Confidence, 1e-9)
	require.Equal(t, 100, got[0].Box.Width)
}

func TestDetectFacesFiltersByConfidence(t *testing.T) {
	faces := []models.DetectedFace{
		{Embedding: []float64{1}, Confidence: 0.95},
		{Embedding: []float64{2}, Confidence: 0.4},
	}
	srv, _ := newDetectorRuntime(t, faces)
	client := NewFaceDetectionClient(srv.URL)

	got, err := client.DetectFaces(context.Background(), []byte("image"), 0.8)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.InDelta(t, 0.95, got[0].Confidence, 1e-9)
}

func TestDetectFacesWarmsUpOnce(t *testing.T) {
	srv, warmups := newDetectorRuntime(t, nil)
	client := NewFaceDetectionClient(srv.URL)

	for i := 0; i < 3; i++ {
		_, err := client.DetectFaces(context.Background(), []byte("image"), 0.5)
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), warmups.Load())
}

func TestDetectFacesWarmupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "models failed to load", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client := NewFaceDetectionClient(srv.URL)

	_, err := client.DetectFaces(context.Background(), []byte("image"), 0.5)
	require.ErrorContains(t, err, "warmup failed")
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newDetectorRuntime(t, nil)
	client := NewFaceDetectionClient(srv.URL)
	require.NoError(t, client.HealthCheck())
}
