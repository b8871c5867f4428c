package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-identity-verifier/document"
	"go-identity-verifier/facematch"
	"go-identity-verifier/images"
	"go-identity-verifier/metrics"
	"go-identity-verifier/models"
	"go-identity-verifier/verification"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ErrorInternal = "error:internal"
const ERR_MARSHAL = "failed to marshal response message"
const ERR_TOKEN_REMOVAL = "failed to remove token from storage"
const ERR_TOKEN_RETRIEVAL = "failed to get nonce from storage"
const ERR_INVALID_NONCE_SESSION = "invalid session or nonce"
const ERR_INVALID_IMAGE = "invalid image data"
const ERR_INVALID_DOCUMENT_TYPE = "unsupported document type"
const ERR_SESSION_STATE = "operation not allowed in current session state"
const ERR_UPLOAD = "failed to upload document"
const ERR_VERDICT_REPORT = "failed to report verdict"

type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	UseTls         bool   `json:"use_tls,omitempty"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty"`
	TlsCertPath    string `json:"tls_cert_path,omitempty"`
}

type ServerState struct {
	tokenStorage    TokenStorage
	sessions        *SessionRegistry
	orchestrator    *verification.Orchestrator
	documentStore   DocumentStore
	verdictReporter VerdictReporter
	metrics         *metrics.Metrics
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

func NewServer(state *ServerState, config ServerConfig) (*Server, error) {
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)
	router := mux.NewRouter()

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Health check request received")
		err := json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		if err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
	})

	router.HandleFunc("/api/start-verification", func(w http.ResponseWriter, r *http.Request) {
		handleStartVerification(state, w, r)
	})
	router.HandleFunc("/api/submit-document", func(w http.ResponseWriter, r *http.Request) {
		handleSubmitDocument(state, w, r)
	})
	router.HandleFunc("/api/submit-selfie", func(w http.ResponseWriter, r *http.Request) {
		handleSubmitSelfie(state, w, r)
	})
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	slog.Debug("Registered all API routes")

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler: router,
		Addr:    addr,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

type StartVerificationResponse struct {
	SessionId string `json:"session_id"`
	Nonce     string `json:"nonce"`
}

type SubmitDocumentResponse struct {
	Accepted          bool   `json:"accepted"`
	Reason            string `json:"reason,omitempty"`
	ExtractedName     string `json:"extracted_name,omitempty"`
	ExtractedIdNumber string `json:"extracted_id_number,omitempty"`
	FormatWarning     string `json:"format_warning,omitempty"` // advisory only
}

type SubmitSelfieResponse struct {
	Completed     bool    `json:"completed"`
	Passed        bool    `json:"passed"`
	Reason        string  `json:"reason,omitempty"`
	Recoverable   bool    `json:"recoverable,omitempty"` // selfie recapture allowed
	MatchScore    float64 `json:"match_score,omitempty"`
	LivenessScore float64 `json:"liveness_score,omitempty"`
	DocumentUrl   string  `json:"document_url,omitempty"`
}

func handleStartVerification(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received request to start identity verification")

	sessionId := GenerateSessionId()
	if sessionId == "" {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, "failed to generate session ID", fmt.Errorf("failed to generate session ID"))
		return
	}

	nonce, err := GenerateNonce(8)
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, "failed to generate nonce", err)
		return
	}

	// Stored until the session reaches a terminal handoff
	if err := state.tokenStorage.StoreToken(sessionId, nonce); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, "failed to store nonce", err)
		return
	}

	state.metrics.IncrementSessionsStarted()

	response := StartVerificationResponse{
		SessionId: sessionId,
		Nonce:     nonce,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Identity verification started", "session_id", sessionId)
}

func handleSubmitDocument(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received document submission")

	var request models.SubmitDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", "failed to decode document submission", err)
		return
	}

	if err := validateSession(state.tokenStorage, request.SessionId, request.Nonce); err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_NONCE_SESSION, ERR_INVALID_NONCE_SESSION, err)
		return
	}

	docType, err := document.ParseDocumentType(request.DocumentType)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_DOCUMENT_TYPE, ERR_INVALID_DOCUMENT_TYPE, err)
		return
	}

	imageData, _, err := images.DecodeCapture(request.DocumentImage)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_IMAGE, ERR_INVALID_IMAGE, err)
		return
	}

	sess, ok := state.sessions.Get(request.SessionId)
	if !ok {
		sess = verification.NewSession(request.SessionId, verification.ClaimedIdentity{
			Name:           request.FullName,
			DocumentNumber: request.DocumentNumber,
			DocumentType:   docType,
		})
		state.sessions.Put(sess)
	}

	result, err := state.orchestrator.SubmitDocument(r.Context(), sess, imageData)
	if err != nil {
		var mismatch *verification.MismatchError
		if errors.As(err, &mismatch) {
			// affirmative mismatch: session-fatal, requires a fresh capture
			// in a brand-new session
			finalizeFailedSession(state, sess, mismatch.Reason)
			response := SubmitDocumentResponse{
				Accepted: false,
				Reason:   string(mismatch.Reason),
			}
			if err := writeJSON(w, http.StatusOK, response); err != nil {
				respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
			}
			return
		}

		var invalidState *verification.InvalidStateError
		if errors.As(err, &invalidState) {
			respondWithErr(w, http.StatusBadRequest, ERR_SESSION_STATE, ERR_SESSION_STATE, err)
			return
		}

		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, "document submission failed", err)
		return
	}

	response := SubmitDocumentResponse{
		Accepted:          true,
		ExtractedName:     result.Name,
		ExtractedIdNumber: result.IDNumber,
		FormatWarning:     result.FormatWarning,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Document accepted, awaiting selfie", "session_id", request.SessionId)
}

func handleSubmitSelfie(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received selfie submission")

	var request models.SubmitSelfieRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", "failed to decode selfie submission", err)
		return
	}

	if err := validateSession(state.tokenStorage, request.SessionId, request.Nonce); err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_NONCE_SESSION, ERR_INVALID_NONCE_SESSION, err)
		return
	}

	sess, ok := state.sessions.Get(request.SessionId)
	if !ok {
		respondWithErr(w, http.StatusBadRequest, ERR_SESSION_STATE, "no document submitted for session", fmt.Errorf("session %s not found", request.SessionId))
		return
	}

	selfieData, _, err := images.DecodeCapture(request.SelfieImage)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, ERR_INVALID_IMAGE, ERR_INVALID_IMAGE, err)
		return
	}

	outcome, err := state.orchestrator.SubmitSelfie(r.Context(), sess, selfieData)
	if err != nil {
		handleSelfieError(state, sess, w, err)
		return
	}

	verdict := buildVerdict(sess, outcome)

	if outcome.Passed {
		url, err := uploadAcceptedDocument(state, r.Context(), sess)
		if err != nil {
			respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_UPLOAD, err)
			return
		}
		verdict.DocumentUrl = url
	}

	if err := state.verdictReporter.Report(r.Context(), verdict); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_VERDICT_REPORT, err)
		return
	}

	response := SubmitSelfieResponse{
		Completed:     true,
		Passed:        outcome.Passed,
		Reason:        verdict.Reason,
		MatchScore:    outcome.MatchScore,
		LivenessScore: outcome.LivenessScore,
		DocumentUrl:   verdict.DocumentUrl,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Verification session completed", "session_id", request.SessionId, "passed", outcome.Passed)
	removeSessionToken(w, state.tokenStorage, request.SessionId)
	state.sessions.Remove(request.SessionId)
}

// handleSelfieError translates the orchestrator error taxonomy into HTTP
// responses: recoverable no-face keeps the session open, everything else
// terminal.
func handleSelfieError(state *ServerState, sess *verification.Session, w http.ResponseWriter, err error) {
	var noFace *facematch.NoFaceError
	if errors.As(err, &noFace) {
		if noFace.Source == facematch.SourceSelfie {
			// recoverable: the candidate recaptures the selfie within the
			// same session
			response := SubmitSelfieResponse{
				Completed:   false,
				Passed:      false,
				Reason:      string(verification.ReasonNoFaceDetected),
				Recoverable: true,
			}
			if err := writeJSON(w, http.StatusOK, response); err != nil {
				respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
			}
			return
		}

		finalizeFailedSession(state, sess, verification.ReasonNoFaceDetected)
		response := SubmitSelfieResponse{
			Completed: true,
			Passed:    false,
			Reason:    string(verification.ReasonNoFaceDetected),
		}
		if err := writeJSON(w, http.StatusOK, response); err != nil {
			respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		}
		return
	}

	var invalidState *verification.InvalidStateError
	if errors.As(err, &invalidState) {
		respondWithErr(w, http.StatusBadRequest, ERR_SESSION_STATE, ERR_SESSION_STATE, err)
		return
	}

	finalizeFailedSession(state, sess, verification.ReasonCapabilityFailure)
	respondWithErr(w, http.StatusInternalServerError, ErrorInternal, "face matching failed", err)
}

// finalizeFailedSession reports a negative verdict for a session-fatal
// failure and discards the session and its nonce.
func finalizeFailedSession(state *ServerState, sess *verification.Session, reason verification.FailureReason) {
	verdict := models.VerificationVerdict{
		SessionId:      sess.ID,
		Passed:         false,
		Reason:         string(reason),
		ClaimedName:    sess.Claimed.Name,
		DocumentType:   sess.Claimed.DocumentType.String(),
		DocumentNumber: sess.Claimed.DocumentNumber,
		CompletedAt:    time.Now(),
	}
	if err := state.verdictReporter.Report(context.Background(), verdict); err != nil {
		slog.Error("Failed to report negative verdict", "session_id", sess.ID, "error", err)
	}

	if err := state.tokenStorage.RemoveToken(sess.ID); err != nil {
		slog.Warn("Failed to remove token for failed session", "session_id", sess.ID, "error", err)
	}
	state.sessions.Remove(sess.ID)
}

func buildVerdict(sess *verification.Session, outcome facematch.MatchOutcome) models.VerificationVerdict {
	verdict := models.VerificationVerdict{
		SessionId:      sess.ID,
		Passed:         outcome.Passed,
		MatchScore:     outcome.MatchScore,
		LivenessScore:  outcome.LivenessScore,
		ClaimedName:    sess.Claimed.Name,
		DocumentType:   sess.Claimed.DocumentType.String(),
		DocumentNumber: sess.Claimed.DocumentNumber,
		CompletedAt:    time.Now(),
	}
	if !outcome.Passed {
		verdict.Reason = string(verification.ReasonFaceMatchBelowThreshold)
	}
	return verdict
}

func uploadAcceptedDocument(state *ServerState, ctx context.Context, sess *verification.Session) (string, error) {
	normalized, err := images.NormalizeForUpload(sess.DocumentImage())
	if err != nil {
		return "", err
	}
	return state.documentStore.Upload(ctx, normalized, "image/jpeg")
}

// -----------------------------------------------------------------------------------

// validateSession validates session and nonce
func validateSession(storage TokenStorage, sessionId, nonce string) error {
	slog.Debug("Validating session and nonce", "session_id", sessionId)
	storedNonce, err := storage.RetrieveToken(sessionId)
	if err != nil {
		slog.Warn("Failed to retrieve token from storage", "session_id", sessionId, "error", err)
		return fmt.Errorf("%s: %w", ERR_TOKEN_RETRIEVAL, err)
	}

	if storedNonce == "" || storedNonce != nonce {
		slog.Warn("Invalid nonce or session", "session_id", sessionId, "nonce_empty", storedNonce == "", "nonce_match", storedNonce == nonce)
		return fmt.Errorf("%s", ERR_INVALID_NONCE_SESSION)
	}

	return nil
}

// removeSessionToken removes token and logs error if failed
func removeSessionToken(w http.ResponseWriter, storage TokenStorage, sessionId string) {
	slog.Debug("Removing session token", "session_id", sessionId)
	if err := storage.RemoveToken(sessionId); err != nil {
		slog.Error(ERR_TOKEN_REMOVAL, "session_id", sessionId, "error", err)
	}
}

func GenerateSessionId() string {
	sessionId := make([]byte, 16)
	if _, err := rand.Read(sessionId); err != nil {
		slog.Error("failed to generate session ID", "error", err)
		return ""
	}
	return fmt.Sprintf("%x", sessionId)
}

// GenerateNonce Generates a random nonce
func GenerateNonce(i int) (string, error) {
	nonce := make([]byte, i)
	if _, err := rand.Read(nonce); err != nil {
		slog.Error("failed to generate nonce", "error", err)
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(nonce), nil
}

func respondWithErr(w http.ResponseWriter, code int, responseBody string, logMsg string, e error) {
	slog.Error(logMsg, "error", e, "status_code", code, "response_body", responseBody)
	w.WriteHeader(code)
	if _, err := w.Write([]byte(responseBody)); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

// helpers ------------

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}
}

func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		slog.Debug("Non-POST request rejected", "method", r.Method, "path", r.URL.Path)
		respondWithErr(w, http.StatusMethodNotAllowed, "method not allowed", "invalid method", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	if err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
	return nil
}
