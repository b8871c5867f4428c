package models

import "time"

// VerificationVerdict is the terminal result handed to the backend once a
// session completes. DocumentUrl is set only on a positive verdict.
type VerificationVerdict struct {
	SessionId      string    `json:"session_id"`
	Passed         bool      `json:"passed"`
	Reason         string    `json:"reason,omitempty"`
	MatchScore     float64   `json:"match_score"`
	LivenessScore  float64   `json:"liveness_score"`
	ClaimedName    string    `json:"claimed_name"`
	DocumentType   string    `json:"document_type"`
	DocumentNumber string    `json:"document_number"`
	DocumentUrl    string    `json:"document_url,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
}
