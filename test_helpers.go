package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"testing"
	"time"

	"go-identity-verifier/facematch"
	"go-identity-verifier/models"
	"go-identity-verifier/verification"

	"github.com/stretchr/testify/require"
)

var testConfig = ServerConfig{
	Host:           "localhost",
	Port:           8082,
	UseTls:         false,
	TlsCertPath:    "",
	TlsPrivKeyPath: "",
}

const testBaseURL = "http://localhost:8082"

// aadhaarTestText is what the fake recognizer reads off every document
// capture. The name sits on the line above the date of birth and the
// number carries the standard 4-4-4 grouping.
const aadhaarTestText = `Government of India
Suresh Kumar
DOB: 12/03/1985
Male
1234 5678 9012`

type fakeRecognizer struct {
	text string
	err  error
}

func (f fakeRecognizer) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeProvider struct {
	outcome facematch.MatchOutcome
	err     error
	calls   int
}

func (f *fakeProvider) Match(ctx context.Context, idImage, selfieImage []byte) (facematch.MatchOutcome, error) {
	f.calls++
	if f.err != nil {
		return facematch.MatchOutcome{}, f.err
	}
	return f.outcome, nil
}

type fakeDocumentStore struct {
	uploads int
	url     string
	err     error
}

func (f *fakeDocumentStore) Upload(ctx context.Context, image []byte, contentType string) (string, error) {
	f.uploads++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeVerdictReporter struct {
	verdicts []models.VerificationVerdict
	err      error
}

func (f *fakeVerdictReporter) Report(ctx context.Context, verdict models.VerificationVerdict) error {
	if f.err != nil {
		return f.err
	}
	f.verdicts = append(f.verdicts, verdict)
	return nil
}

func passingOutcome() facematch.MatchOutcome {
	return facematch.MatchOutcome{
		Distance:      0.3,
		MatchScore:    62.5,
		LivenessScore: 85,
		Passed:        true,
	}
}

type testStateOpt func(*ServerState)

func withProvider(p verification.FaceMatchProvider) testStateOpt {
	return func(s *ServerState) {
		s.orchestrator = verification.NewOrchestrator(fakeRecognizer{text: aadhaarTestText}, p, nil)
	}
}

func withOrchestrator(o *verification.Orchestrator) testStateOpt {
	return func(s *ServerState) { s.orchestrator = o }
}

func withReporter(r VerdictReporter) testStateOpt {
	return func(s *ServerState) { s.verdictReporter = r }
}

func withDocumentStore(d DocumentStore) testStateOpt {
	return func(s *ServerState) { s.documentStore = d }
}

func startTestServer(t *testing.T, opts ...testStateOpt) *Server {
	t.Helper()

	testState := &ServerState{
		tokenStorage:    NewInMemoryTokenStorage(),
		sessions:        NewSessionRegistry(time.Minute),
		orchestrator:    verification.NewOrchestrator(fakeRecognizer{text: aadhaarTestText}, &fakeProvider{outcome: passingOutcome()}, nil),
		documentStore:   &fakeDocumentStore{url: "https://store.example/documents/test.jpg"},
		verdictReporter: &fakeVerdictReporter{},
		metrics:         nil,
	}
	for _, opt := range opts {
		opt(testState)
	}

	srv, err := NewServer(testState, testConfig)
	require.NoError(t, err)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("server error: %v", err)
		}
	}()

	waitUntilHealthy(t, testBaseURL+"/api/health")
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Logf("error shutting down server: %v", err)
		}
	})
	return srv
}

func waitUntilHealthy(t *testing.T, url string) {
	t.Helper()
	const maxAttempts = 50
	for i := 0; i < maxAttempts; i++ {
		if resp, err := http.Get(url); err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server did not start in time")
}

func postJSON[T any](t *testing.T, url string, payload any) (*http.Response, []byte, *T) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	}
	resp, err := http.Post(url, "application/json", body)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var v T
	_ = json.Unmarshal(respBody, &v)

	return resp, respBody, &v
}

func mustStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	require.Equalf(t, want, resp.StatusCode, "body: %s", body)
}

func startVerification(t *testing.T) (sessionID, nonce string) {
	t.Helper()
	resp, body, sr := postJSON[StartVerificationResponse](t, testBaseURL+"/api/start-verification", nil)
	mustStatus(t, resp, http.StatusOK, body)
	require.NotEmpty(t, sr.SessionId)
	require.NotEmpty(t, sr.Nonce)
	return sr.SessionId, sr.Nonce
}

// testImageB64 returns a small valid PNG as base64, enough to pass capture
// decoding in the handlers.
func testImageB64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

type docReqOpt func(*models.SubmitDocumentRequest)

func withClaimedName(name string) docReqOpt {
	return func(r *models.SubmitDocumentRequest) { r.FullName = name }
}

func withClaimedNumber(number string) docReqOpt {
	return func(r *models.SubmitDocumentRequest) { r.DocumentNumber = number }
}

func withDocumentType(docType string) docReqOpt {
	return func(r *models.SubmitDocumentRequest) { r.DocumentType = docType }
}

func buildDocumentRequest(t *testing.T, sessionID, nonce string, opts ...docReqOpt) models.SubmitDocumentRequest {
	t.Helper()
	req := models.SubmitDocumentRequest{
		SessionId:      sessionID,
		Nonce:          nonce,
		DocumentType:   "aadhaar",
		DocumentNumber: "1234-5678-9012",
		FullName:       "Suresh Kumar",
		DocumentImage:  testImageB64(t),
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

func submitDocument(t *testing.T, req models.SubmitDocumentRequest) (*http.Response, []byte, *SubmitDocumentResponse) {
	t.Helper()
	return postJSON[SubmitDocumentResponse](t, testBaseURL+"/api/submit-document", req)
}

func submitSelfie(t *testing.T, sessionID, nonce string) (*http.Response, []byte, *SubmitSelfieResponse) {
	t.Helper()
	req := models.SubmitSelfieRequest{
		SessionId:   sessionID,
		Nonce:       nonce,
		SelfieImage: testImageB64(t),
	}
	return postJSON[SubmitSelfieResponse](t, testBaseURL+"/api/submit-selfie", req)
}
