package ingestion_engine

import (
	"github.com/markdave123-py/Lumen/internal/core/validation"
	"github.com/markdave123-py/Lumen/internal/models"
)

// SelectStrategy maps a media type to its extraction strategy: PDF goes through
// structured extraction, allow-listed images through OCR. Anything else has none.
func SelectStrategy(mediaType string) models.Strategy {
	mt := validation.Normalize(mediaType)
	switch {
	case mt == validation.MediaTypePDF:
		return models.StrategyStructured
	case validation.IsImage(mt):
		return models.StrategyOCR
	default:
		return models.StrategyNone
	}
}
