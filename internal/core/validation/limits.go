package validation

import (
	"errors"
	"strings"

	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/models"
)

const (
	// MaxFileSizeBytes is the upload ceiling (10 MiB)
	MaxFileSizeBytes = 10 * 1024 * 1024

	MediaTypePDF  = "application/pdf"
	MediaTypeJPEG = "image/jpeg"
	MediaTypeJPG  = "image/jpg"
	MediaTypePNG  = "image/png"
	MediaTypeGIF  = "image/gif"
	MediaTypeWEBP = "image/webp"
)

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrFileTooLarge    = errors.New("file too large")
)

var allowedTypes = map[string]bool{
	MediaTypePDF:  true,
	MediaTypeJPEG: true,
	MediaTypeJPG:  true,
	MediaTypePNG:  true,
	MediaTypeGIF:  true,
	MediaTypeWEBP: true,
}

// Normalize lowercases a media type and strips parameters ("image/PNG; q=1" -> "image/png").
func Normalize(mediaType string) string {
	mainType := strings.Split(mediaType, ";")[0]
	return strings.TrimSpace(strings.ToLower(mainType))
}

// IsAllowed reports whether mediaType is on the allow-list.
func IsAllowed(mediaType string) bool {
	return allowedTypes[Normalize(mediaType)]
}

// IsImage reports whether mediaType is an allow-listed raster image type.
func IsImage(mediaType string) bool {
	mt := Normalize(mediaType)
	return allowedTypes[mt] && strings.HasPrefix(mt, "image/")
}

// Check validates type then size and returns a *core.ValidationError wrapping
// ErrUnsupportedType or ErrFileTooLarge.
func Check(mediaType string, sizeBytes int64) error {
	if !IsAllowed(mediaType) {
		return &core.ValidationError{Reason: ErrUnsupportedType.Error(), Err: ErrUnsupportedType}
	}
	if sizeBytes > MaxFileSizeBytes {
		return &core.ValidationError{Reason: ErrFileTooLarge.Error(), Err: ErrFileTooLarge}
	}
	return nil
}

// Validate is the pure policy check recorded on every FileTask at submission.
func Validate(mediaType string, sizeBytes int64) models.Validation {
	if err := Check(mediaType, sizeBytes); err != nil {
		return models.Validation{Valid: false, ErrorReason: err.Error()}
	}
	return models.Validation{Valid: true}
}
