package models

// SubmitDocumentRequest carries the ID document capture plus the
// user-declared metadata from the capture surface.
type SubmitDocumentRequest struct {
	SessionId      string `json:"session_id"`
	Nonce          string `json:"nonce"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	FullName       string `json:"full_name"`
	DocumentImage  string `json:"document_image"` // Base64 encoded image
}

// SubmitSelfieRequest carries the live selfie capture.
type SubmitSelfieRequest struct {
	SessionId   string `json:"session_id"`
	Nonce       string `json:"nonce"`
	SelfieImage string `json:"selfie_image"` // Base64 encoded image
}
