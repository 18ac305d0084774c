// Package imaging decodes the allow-listed raster formats, renders thumbnails for
// previews and normalises formats the OCR engine may not read natively.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// PreviewType is the media type of every rendered preview.
const PreviewType = "image/png"

// DefaultMaxPixels bounds width*height of any image this package decodes (40 MP).
const DefaultMaxPixels = 40_000_000

// ErrTooManyPixels is returned when an image declares dimensions above the pixel cap.
var ErrTooManyPixels = errors.New("image dimensions too large")

// CheckPixels reads only the image header and rejects declared sizes above
// maxPixels (DefaultMaxPixels when <= 0). Unknown formats are not an error here.
func CheckPixels(data []byte, maxPixels int) error {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// Decode reads any registered raster format (jpeg, png, gif, webp) after
// checking its declared size against maxPixels.
func Decode(data []byte, maxPixels int) (image.Image, string, error) {
	if err := CheckPixels(data, maxPixels); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Thumbnail scales img to fit within maxDim x maxDim, preserving aspect ratio.
// Images already inside the box are re-encoded unchanged in size.
func Thumbnail(img image.Image, maxDim int) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	// png.Encode only fails on writer errors; bytes.Buffer never returns one.
	_ = png.Encode(&buf, dst)
	return buf.Bytes()
}

// RenderPreview decodes raw image bytes and returns a PNG thumbnail.
func RenderPreview(data []byte, maxDim, maxPixels int) ([]byte, error) {
	img, _, err := Decode(data, maxPixels)
	if err != nil {
		return nil, err
	}
	return Thumbnail(img, maxDim), nil
}

// NeedsNormalization reports formats handed to the OCR engine as PNG instead of raw bytes.
func NeedsNormalization(mediaType string) bool {
	return mediaType == "image/gif" || mediaType == "image/webp"
}

// ToPNG re-encodes an image as PNG. The first frame is used for animated GIFs.
func ToPNG(data []byte, maxPixels int) ([]byte, error) {
	img, _, err := Decode(data, maxPixels)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
