package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"
)

// upload bound: keeps stored documents small while staying comfortably
// above what the face models need
const (
	uploadMaxDimension = 1200
	uploadJPEGQuality  = 85
)

// NormalizeForUpload re-encodes an accepted document capture as a
// bounded-size JPEG before it is handed to the storage service.
func NormalizeForUpload(data []byte) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode document capture: %w", err)
	}

	resized := ResizeToFit(img, uploadMaxDimension, uploadMaxDimension)
	bounds := resized.Bounds()
	slog.Debug("Normalizing document capture for upload",
		"width", bounds.Dx(), "height", bounds.Dy())

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: uploadJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode document capture: %w", err)
	}
	return buf.Bytes(), nil
}

// ResizeToFit scales img to fit within maxW×maxH keeping aspect ratio.
// Images already inside the box are returned unchanged.
func ResizeToFit(src image.Image, maxW, maxH int) image.Image {
	bw := src.Bounds().Dx()
	bh := src.Bounds().Dy()

	if maxW <= 0 && maxH <= 0 {
		return src
	}
	if maxW <= 0 {
		scale := float64(maxH) / float64(bh)
		maxW = int(math.Round(float64(bw) * scale))
	}
	if maxH <= 0 {
		scale := float64(maxW) / float64(bw)
		maxH = int(math.Round(float64(bh) * scale))
	}

	scale := math.Min(float64(maxW)/float64(bw), float64(maxH)/float64(bh))
	if scale >= 1.0 {
		return src
	}
	w := int(math.Max(1, math.Round(float64(bw)*scale)))
	h := int(math.Max(1, math.Round(float64(bh)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// CatmullRom keeps faces sharp enough for downstream matching
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
