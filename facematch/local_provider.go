package facematch

import (
	"context"
	"fmt"
	"log/slog"
)

// LocalProvider computes descriptor distance in-process from a detection
// capability.
type LocalProvider struct {
	detector Detector
}

func NewLocalProvider(detector Detector) *LocalProvider {
	return &LocalProvider{detector: detector}
}

func (p *LocalProvider) Match(ctx context.Context, idImage, selfieImage []byte) (MatchOutcome, error) {
	slog.Debug("Detecting faces in document photo")
	idFaces, err := p.detector.DetectFaces(ctx, idImage, IDConfidenceFloor)
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("detect faces in document photo: %w", err)
	}
	if len(idFaces) == 0 {
		return MatchOutcome{}, &NoFaceError{Source: SourceID}
	}
	idFace := LargestFace(idFaces)
	slog.Debug("Document face selected", "detected", len(idFaces), "box_area", idFace.Box.Area(), "confidence", idFace.Confidence)

	slog.Debug("Detecting face in selfie")
	selfieFaces, err := p.detector.DetectFaces(ctx, selfieImage, SelfieConfidenceFloor)
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("detect face in selfie: %w", err)
	}
	if len(selfieFaces) == 0 {
		return MatchOutcome{}, &NoFaceError{Source: SourceSelfie}
	}
	selfieFace := LargestFace(selfieFaces)

	distance, err := EuclideanDistance(idFace.Embedding, selfieFace.Embedding)
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("compare descriptors: %w", err)
	}

	outcome := Score(distance, selfieFace.Confidence)
	slog.Info("Face match computed",
		"distance", outcome.Distance,
		"match_score", outcome.MatchScore,
		"liveness_score", outcome.LivenessScore,
		"passed", outcome.Passed)
	return outcome, nil
}
