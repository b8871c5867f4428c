package models

// FaceDetectRequest is sent to the face-model runtime.
type FaceDetectRequest struct {
	Image         string  `json:"image"` // Base64 encoded image
	MinConfidence float64 `json:"min_confidence"`
}

// FaceDetectResponse lists all faces found in one image.
type FaceDetectResponse struct {
	Faces []DetectedFace `json:"faces"`
}

// DetectedFace is one detection: embedding vector, detector confidence
// and the bounding box within the source image.
type DetectedFace struct {
	Embedding  []float64 `json:"embedding"`
	Confidence float64   `json:"confidence"`
	Box        FaceBox   `json:"box"`
}

// FaceBox is the pixel bounding box of a detection.
type FaceBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RemoteMatchRequest is sent to the remote multi-model match API.
type RemoteMatchRequest struct {
	Images []RemoteMatchImage `json:"images"`
	Models []string           `json:"models,omitempty"`
}

type RemoteMatchImage struct {
	Type  int    `json:"type"` // 1 = document photo, 2 = selfie
	Data  string `json:"data"` // Base64 encoded image
	Index int    `json:"index"`
}

// RemoteMatchResponse carries one distance result per model plus the
// detection metadata needed for scoring.
type RemoteMatchResponse struct {
	Results          []RemoteMatchResult `json:"results"`
	DocumentFaces    int                 `json:"document_faces"`
	SelfieFaces      int                 `json:"selfie_faces"`
	SelfieConfidence float64             `json:"selfie_confidence"`
}

type RemoteMatchResult struct {
	Model    string  `json:"model"`
	Distance float64 `json:"distance"`
}
