package facematch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore_KnownDistance(t *testing.T) {
	outcome := Score(0.3, 0.85)
	require.InDelta(t, 62.5, outcome.MatchScore, 1e-9)
	require.InDelta(t, 85.0, outcome.LivenessScore, 1e-9)
	require.True(t, outcome.Passed)
}

func TestScore_DecisionBoundary(t *testing.T) {
	tests := []struct {
		name             string
		matchScore       float64
		selfieConfidence float64
		expectPassed     bool
	}{
		{"exactly at both thresholds", 40.0, 0.70, true},
		{"match score just below", 39.99, 0.70, false},
		{"liveness just below", 40.0, 0.6999, false},
		{"both comfortably above", 62.5, 0.85, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// invert the score formula to get the distance producing it
			distance := (1 - tt.matchScore/100) * DistanceDivisor
			outcome := Score(distance, tt.selfieConfidence)
			require.InDelta(t, tt.matchScore, outcome.MatchScore, 1e-9)
			require.Equal(t, tt.expectPassed, outcome.Passed)
		})
	}
}

func TestScore_MonotonicAndClamped(t *testing.T) {
	prev := 101.0
	for _, distance := range []float64{0, 0.1, 0.3, 0.5, 0.8, 1.2, 5, 100} {
		outcome := Score(distance, 1.0)
		require.LessOrEqual(t, outcome.MatchScore, prev,
			"match score must not increase with distance")
		require.GreaterOrEqual(t, outcome.MatchScore, 0.0)
		require.LessOrEqual(t, outcome.MatchScore, 100.0)
		prev = outcome.MatchScore
	}
}

func TestLargestFace(t *testing.T) {
	faces := []FaceDescriptor{
		{Box: BoundingBox{Width: 5, Height: 2}},  // area 10
		{Box: BoundingBox{Width: 10, Height: 5}}, // area 50
		{Box: BoundingBox{Width: 6, Height: 5}},  // area 30
	}
	require.Equal(t, 50, LargestFace(faces).Box.Area())
}

func TestEuclideanDistance(t *testing.T) {
	d, err := EuclideanDistance([]float64{0, 0, 0}, []float64{3, 4, 0})
	require.NoError(t, err)
	require.InDelta(t, 5.0, d, 1e-9)
}

func TestEuclideanDistance_LengthMismatch(t *testing.T) {
	_, err := EuclideanDistance([]float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err)

	_, err = EuclideanDistance(nil, nil)
	require.Error(t, err)
}

// fakeDetector returns canned descriptors per call, filtered by the
// requested confidence floor.
type fakeDetector struct {
	byCall [][]FaceDescriptor
	err    error
	call   int
}

func (d *fakeDetector) DetectFaces(_ context.Context, _ []byte, minConfidence float64) ([]FaceDescriptor, error) {
	if d.err != nil {
		return nil, d.err
	}
	faces := d.byCall[d.call]
	d.call++
	var kept []FaceDescriptor
	for _, f := range faces {
		if f.Confidence >= minConfidence {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

func TestLocalProvider_SelectsLargestDocumentFace(t *testing.T) {
	// the ghost watermark portrait has a different embedding; selecting it
	// would produce a large distance
	detector := &fakeDetector{byCall: [][]FaceDescriptor{
		{
			{Embedding: []float64{10, 10}, Confidence: 0.9, Box: BoundingBox{Width: 2, Height: 2}},
			{Embedding: []float64{1, 0}, Confidence: 0.9, Box: BoundingBox{Width: 20, Height: 20}},
		},
		{
			{Embedding: []float64{1, 0.1}, Confidence: 0.92, Box: BoundingBox{Width: 30, Height: 30}},
		},
	}}

	outcome, err := NewLocalProvider(detector).Match(context.Background(), []byte("id"), []byte("selfie"))
	require.NoError(t, err)
	require.InDelta(t, 0.1, outcome.Distance, 1e-9)
	require.True(t, outcome.Passed)
}

func TestLocalProvider_NoFaceInDocument(t *testing.T) {
	detector := &fakeDetector{byCall: [][]FaceDescriptor{{}, {}}}

	_, err := NewLocalProvider(detector).Match(context.Background(), nil, nil)
	var noFace *NoFaceError
	require.ErrorAs(t, err, &noFace)
	require.Equal(t, SourceID, noFace.Source)
}

func TestLocalProvider_NoFaceInSelfie(t *testing.T) {
	detector := &fakeDetector{byCall: [][]FaceDescriptor{
		{{Embedding: []float64{1, 0}, Confidence: 0.9, Box: BoundingBox{Width: 10, Height: 10}}},
		{},
	}}

	_, err := NewLocalProvider(detector).Match(context.Background(), nil, nil)
	var noFace *NoFaceError
	require.ErrorAs(t, err, &noFace)
	require.Equal(t, SourceSelfie, noFace.Source)
}

func TestLocalProvider_SelfieConfidenceFloorApplies(t *testing.T) {
	// a face below the selfie floor but above the document floor must be
	// rejected on the selfie path
	detector := &fakeDetector{byCall: [][]FaceDescriptor{
		{{Embedding: []float64{1, 0}, Confidence: 0.9, Box: BoundingBox{Width: 10, Height: 10}}},
		{{Embedding: []float64{1, 0}, Confidence: 0.6, Box: BoundingBox{Width: 10, Height: 10}}},
	}}

	_, err := NewLocalProvider(detector).Match(context.Background(), nil, nil)
	var noFace *NoFaceError
	require.ErrorAs(t, err, &noFace)
	require.Equal(t, SourceSelfie, noFace.Source)
}

func TestLocalProvider_DetectorError(t *testing.T) {
	detector := &fakeDetector{err: errors.New("model not loaded")}

	_, err := NewLocalProvider(detector).Match(context.Background(), nil, nil)
	require.Error(t, err)
	var noFace *NoFaceError
	require.False(t, errors.As(err, &noFace), "capability errors are not no-face errors")
}
