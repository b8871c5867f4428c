package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-identity-verifier/document"
	"go-identity-verifier/facematch"
	"go-identity-verifier/metrics"
	"go-identity-verifier/similarity"
)

// Cross-check thresholds. Extracted fields are advisory, so both checks
// are skipped when the field is absent; when present they block on an
// affirmative mismatch.
const (
	NameSimilarityThreshold   = 0.6
	NumberSimilarityThreshold = 0.95
)

// TextRecognizer turns a document image into raw recognized text. Treated
// as a black box: accuracy and determinism are not guaranteed.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// FaceMatchProvider produces a match outcome for a document/selfie pair.
type FaceMatchProvider interface {
	Match(ctx context.Context, idImage, selfieImage []byte) (facematch.MatchOutcome, error)
}

// Orchestrator drives sessions through the verification state machine.
// It is stateless apart from the injected capabilities and safe for use
// by concurrent sessions.
type Orchestrator struct {
	recognizer TextRecognizer
	provider   FaceMatchProvider
	metrics    *metrics.Metrics
}

func NewOrchestrator(recognizer TextRecognizer, provider FaceMatchProvider, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		recognizer: recognizer,
		provider:   provider,
		metrics:    m,
	}
}

// SubmitDocument runs OCR, field extraction and the claimed-identity
// cross-checks for the document capture. Extraction failure is advisory
// and never fatal; an affirmative name or id-number mismatch terminates
// the session before any biometric step.
func (o *Orchestrator) SubmitDocument(ctx context.Context, s *Session, image []byte) (document.ExtractionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingDocument {
		return document.ExtractionResult{}, &InvalidStateError{Op: "submit document", State: s.state}
	}
	s.state = StateExtracting

	start := time.Now()
	rawText, err := o.recognizer.RecognizeText(ctx, image)
	if err != nil {
		// OCR is advisory: a failed read must never block a legitimate
		// candidate. Extraction proceeds over empty text.
		slog.Warn("Text recognition failed, continuing without extracted fields",
			"session_id", s.ID, "error", err)
		rawText = ""
	}

	result := document.Extract(rawText, s.Claimed.DocumentType)
	o.metrics.ObserveExtractionLatency(time.Since(start))
	s.extraction = &result

	if result.FormatWarning != "" {
		slog.Info("Document number format warning", "session_id", s.ID, "warning", result.FormatWarning)
	}
	slog.Debug("Extraction completed",
		"session_id", s.ID,
		"document_type", s.Claimed.DocumentType.String(),
		"name_extracted", result.Name != "",
		"number_extracted", result.IDNumber != "")

	if result.Name != "" {
		sim := similarity.Similarity(
			similarity.NormalizeName(s.Claimed.Name),
			similarity.NormalizeName(result.Name),
		)
		if sim < NameSimilarityThreshold {
			slog.Warn("Claimed name does not match document", "session_id", s.ID, "similarity", sim)
			s.fail(ReasonNameMismatch)
			o.metrics.IncrementVerdict("failed", string(ReasonNameMismatch))
			return result, &MismatchError{Reason: ReasonNameMismatch, Similarity: sim}
		}
	}

	if result.IDNumber != "" {
		sim := similarity.Similarity(
			similarity.NormalizeNumber(s.Claimed.DocumentNumber),
			similarity.NormalizeNumber(result.IDNumber),
		)
		if sim < NumberSimilarityThreshold {
			slog.Warn("Declared document number does not match document", "session_id", s.ID, "similarity", sim)
			s.fail(ReasonIDNumberMismatch)
			o.metrics.IncrementVerdict("failed", string(ReasonIDNumberMismatch))
			return result, &MismatchError{Reason: ReasonIDNumberMismatch, Similarity: sim}
		}
	}

	s.documentImage = image
	s.state = StateAwaitingSelfie
	return result, nil
}

// SubmitSelfie runs the biometric match against the accepted document
// capture. A no-face result on the selfie returns the session to
// StateAwaitingSelfie for recapture; a no-face result on the document and
// capability errors are session-fatal. A below-threshold score is not an
// error: the session completes with a negative verdict.
func (o *Orchestrator) SubmitSelfie(ctx context.Context, s *Session, selfie []byte) (facematch.MatchOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingSelfie {
		return facematch.MatchOutcome{}, &InvalidStateError{Op: "submit selfie", State: s.state}
	}
	s.state = StateMatching

	start := time.Now()
	outcome, err := o.provider.Match(ctx, s.documentImage, selfie)
	o.metrics.ObserveFaceMatchLatency(time.Since(start))

	if err != nil {
		var noFace *facematch.NoFaceError
		if errors.As(err, &noFace) {
			if noFace.Source == facematch.SourceSelfie {
				// recoverable: recapture without re-running extraction
				slog.Info("No face in selfie, awaiting recapture", "session_id", s.ID)
				s.state = StateAwaitingSelfie
				return facematch.MatchOutcome{}, err
			}
			slog.Warn("No face in document photo", "session_id", s.ID)
			s.fail(ReasonNoFaceDetected)
			o.metrics.IncrementVerdict("failed", string(ReasonNoFaceDetected))
			return facematch.MatchOutcome{}, err
		}

		slog.Error("Face match capability failed", "session_id", s.ID, "error", err)
		s.fail(ReasonCapabilityFailure)
		o.metrics.IncrementVerdict("failed", string(ReasonCapabilityFailure))
		return facematch.MatchOutcome{}, fmt.Errorf("face match: %w", err)
	}

	s.outcome = &outcome
	s.state = StateCompleted

	if outcome.Passed {
		o.metrics.IncrementVerdict("passed", "")
	} else {
		o.metrics.IncrementVerdict("failed", string(ReasonFaceMatchBelowThreshold))
	}
	slog.Info("Verification completed",
		"session_id", s.ID,
		"passed", outcome.Passed,
		"match_score", outcome.MatchScore,
		"liveness_score", outcome.LivenessScore)
	return outcome, nil
}
