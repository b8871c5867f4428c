// Package facematch compares the photo on an ID document with a live
// selfie and turns descriptor distance into a pass/fail outcome with
// numeric confidence scores.
package facematch

import (
	"context"
	"fmt"
	"math"
)

// ImageSource identifies which capture a descriptor or error refers to.
type ImageSource int

const (
	SourceID ImageSource = iota
	SourceSelfie
)

func (s ImageSource) String() string {
	if s == SourceSelfie {
		return "selfie"
	}
	return "id_document"
}

// Calibration constants. These are hand-tuned for small, low resolution ID
// photographs (glare, print artifacts, compression) and materially change
// the false-accept/false-reject tradeoff; revisit only against a labeled
// validation set.
const (
	// DistanceDivisor is the descriptor distance at which the match score
	// reaches zero.
	DistanceDivisor = 0.8

	// MatchScoreThreshold and LivenessScoreThreshold gate the verdict.
	// Both bounds are inclusive.
	MatchScoreThreshold    = 40.0
	LivenessScoreThreshold = 70.0

	// Detection confidence floors. ID photos are noisy; selfies are
	// expected to be clean, single-subject captures.
	IDConfidenceFloor     = 0.5
	SelfieConfidenceFloor = 0.8
)

// BoundingBox locates a detected face within its source image.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the box area in pixels, used to pick the canonical photo on
// ID cards that carry a ghost/watermark copy of the portrait.
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// FaceDescriptor is one detected face: a fixed-length embedding vector
// plus the detector confidence and bounding box used for disambiguation.
type FaceDescriptor struct {
	Embedding  []float64
	Source     ImageSource
	Confidence float64
	Box        BoundingBox
}

// MatchOutcome is the derived result of one verification attempt. It is
// never mutated after computation.
type MatchOutcome struct {
	Distance      float64
	MatchScore    float64
	LivenessScore float64
	Passed        bool
}

// NoFaceError reports that detection found no face in one of the captures.
// On the selfie this is recoverable by recapturing; on the ID it is fatal
// for the session.
type NoFaceError struct {
	Source ImageSource
}

func (e *NoFaceError) Error() string {
	return fmt.Sprintf("no face detected in %s image", e.Source)
}

// Detector is the face detection/recognition capability. Implementations
// wrap a neural model runtime (local or remote); this package never
// assumes bit-exact reproducibility across runs or model versions.
type Detector interface {
	// DetectFaces returns all faces found in the image with confidence at
	// or above minConfidence.
	DetectFaces(ctx context.Context, image []byte, minConfidence float64) ([]FaceDescriptor, error)
}

// Provider produces a MatchOutcome for an ID photo / selfie pair. Two
// implementations exist: LocalProvider computes descriptor distance
// in-process, and the remote multi-model provider delegates to a match
// API. Both feed the same scoring function so calibration is shared.
type Provider interface {
	Match(ctx context.Context, idImage, selfieImage []byte) (MatchOutcome, error)
}

// LargestFace returns the face with the largest bounding-box area. ID
// cards frequently contain a secondary watermark portrait; the canonical
// photo is the bigger one.
func LargestFace(faces []FaceDescriptor) FaceDescriptor {
	largest := faces[0]
	for _, f := range faces[1:] {
		if f.Box.Area() > largest.Box.Area() {
			largest = f
		}
	}
	return largest
}

// EuclideanDistance computes the L2 distance between two embeddings.
func EuclideanDistance(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("descriptor length mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Score converts a descriptor distance and the selfie detector confidence
// into a MatchOutcome. The match score decreases linearly with distance
// and is clamped to [0,100]; the liveness score is a detector-confidence
// proxy, not a true anti-spoofing signal.
func Score(distance, selfieConfidence float64) MatchOutcome {
	matchScore := (1 - distance/DistanceDivisor) * 100
	if matchScore < 0 {
		matchScore = 0
	}
	if matchScore > 100 {
		matchScore = 100
	}

	livenessScore := selfieConfidence * 100

	return MatchOutcome{
		Distance:      distance,
		MatchScore:    matchScore,
		LivenessScore: livenessScore,
		Passed:        matchScore >= MatchScoreThreshold && livenessScore >= LivenessScoreThreshold,
	}
}
