package main

import (
	"crypto/rsa"
	"os"
	"time"

	"go-identity-verifier/models"

	"github.com/golang-jwt/jwt/v4"
)

// VerdictJwtCreator signs verification verdicts with RS256 so the backend
// can verify they were produced by this engine.
type VerdictJwtCreator struct {
	privateKey *rsa.PrivateKey
	issuerId   string
}

func NewVerdictJwtCreator(privateKeyPath string, issuerId string) (*VerdictJwtCreator, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
	if err != nil {
		return nil, err
	}

	return &VerdictJwtCreator{
		privateKey: privateKey,
		issuerId:   issuerId,
	}, nil
}

// VerdictClaims carries the verdict fields alongside the registered
// claims.
type VerdictClaims struct {
	jwt.RegisteredClaims
	SessionId      string  `json:"session_id"`
	Passed         bool    `json:"passed"`
	Reason         string  `json:"reason,omitempty"`
	MatchScore     float64 `json:"match_score"`
	LivenessScore  float64 `json:"liveness_score"`
	DocumentType   string  `json:"document_type"`
	DocumentNumber string  `json:"document_number"`
	DocumentUrl    string  `json:"document_url,omitempty"`
}

const verdictTokenValidity = 15 * time.Minute

func (jc *VerdictJwtCreator) CreateVerdictJwt(verdict models.VerificationVerdict) (string, error) {
	now := time.Now()
	claims := VerdictClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jc.issuerId,
			Subject:   verdict.SessionId,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(verdictTokenValidity)),
		},
		SessionId:      verdict.SessionId,
		Passed:         verdict.Passed,
		Reason:         verdict.Reason,
		MatchScore:     verdict.MatchScore,
		LivenessScore:  verdict.LivenessScore,
		DocumentType:   verdict.DocumentType,
		DocumentNumber: verdict.DocumentNumber,
		DocumentUrl:    verdict.DocumentUrl,
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(jc.privateKey)
}
