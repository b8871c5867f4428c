// Package images decodes and normalizes the captures handed to the
// verification engine: ID document photos and selfies arrive as base64
// JPEG or PNG from the capture surface.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
)

// DecodeBase64 decodes a base64 image payload. A data-URL prefix
// ("data:image/jpeg;base64,...") is tolerated because browser capture
// surfaces commonly include one.
func DecodeBase64(s string) ([]byte, error) {
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		s = s[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	return data, nil
}

// Decode parses raw image bytes, trying JPEG first (the overwhelmingly
// common capture format), then PNG, then any other registered decoder.
func Decode(data []byte) (image.Image, error) {
	if img, err := jpeg.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := png.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("unsupported or invalid image format")
}

// DecodeCapture decodes a base64 capture and verifies it is a parseable
// image, returning both the raw bytes and the decoded image.
func DecodeCapture(b64 string) ([]byte, image.Image, error) {
	data, err := DecodeBase64(b64)
	if err != nil {
		return nil, nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	return data, img, nil
}
