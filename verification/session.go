// Package verification sequences one identity verification attempt:
// capture, field extraction, cross-validation, biometric match, verdict.
package verification

import (
	"fmt"
	"sync"
	"time"

	"go-identity-verifier/document"
	"go-identity-verifier/facematch"
)

// State is the position of a session in the verification flow.
type State int

const (
	StateAwaitingDocument State = iota
	StateExtracting
	StateAwaitingSelfie
	StateMatching
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingDocument:
		return "awaiting_document"
	case StateExtracting:
		return "extracting"
	case StateAwaitingSelfie:
		return "awaiting_selfie"
	case StateMatching:
		return "matching"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// FailureReason identifies why a session terminated in StateFailed, or why
// a completed verdict is negative.
type FailureReason string

const (
	ReasonNameMismatch            FailureReason = "NameMismatch"
	ReasonIDNumberMismatch        FailureReason = "IdNumberMismatch"
	ReasonNoFaceDetected          FailureReason = "NoFaceDetected"
	ReasonFaceMatchBelowThreshold FailureReason = "FaceMatchBelowThreshold"
	ReasonCapabilityFailure       FailureReason = "CapabilityFailure"
)

// ClaimedIdentity is the user-declared metadata supplied before
// verification starts. Read-only input to the engine.
type ClaimedIdentity struct {
	Name           string
	DocumentNumber string
	DocumentType   document.DocumentType
}

// Session aggregates one end-to-end verification attempt for a single
// candidate/invitation pair. Sessions are never persisted by this engine
// and never reused once terminal.
type Session struct {
	ID        string
	Claimed   ClaimedIdentity
	CreatedAt time.Time

	mu            sync.Mutex
	state         State
	failureReason FailureReason
	extraction    *document.ExtractionResult
	documentImage []byte
	outcome       *facematch.MatchOutcome
}

func NewSession(id string, claimed ClaimedIdentity) *Session {
	return &Session{
		ID:        id,
		Claimed:   claimed,
		CreatedAt: time.Now(),
		state:     StateAwaitingDocument,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FailureReason returns the reason a session entered StateFailed, or empty.
func (s *Session) FailureReason() FailureReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failureReason
}

// Extraction returns the result of the document extraction step, or nil if
// no document has been processed yet.
func (s *Session) Extraction() *document.ExtractionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extraction
}

// Outcome returns the face match outcome, or nil before completion.
func (s *Session) Outcome() *facematch.MatchOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// DocumentImage returns the accepted document capture for upload after a
// positive verdict.
func (s *Session) DocumentImage() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentImage
}

// fail moves the session to its terminal failed state. Caller holds s.mu.
func (s *Session) fail(reason FailureReason) {
	s.state = StateFailed
	s.failureReason = reason
}

// InvalidStateError reports an operation attempted in the wrong session
// state, e.g. a selfie submitted before the document.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed in session state %s", e.Op, e.State)
}

// MismatchError reports an affirmative cross-check failure between the
// claimed identity and the extracted document fields. Session-fatal: a new
// session with a fresh document capture is required.
type MismatchError struct {
	Reason     FailureReason
	Similarity float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: similarity %.3f below threshold", e.Reason, e.Similarity)
}
