package ingestion_engine

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/core/imaging"
)

var _ core.TextExtractor = (*OCRExtractor)(nil)

// OCRExtractor recognizes text in raster images through an OCREngine.
type OCRExtractor struct {
	engine    core.OCREngine
	lang      string
	maxPixels int
}

// NewOCRExtractor builds the extractor. maxPixels caps declared image size;
// 0 means imaging.DefaultMaxPixels.
func NewOCRExtractor(engine core.OCREngine, lang string, maxPixels int) *OCRExtractor {
	if lang == "" {
		lang = "eng"
	}
	return &OCRExtractor{engine: engine, lang: lang, maxPixels: maxPixels}
}

// Extract runs recognition once. Engine progress is clamped to 0-100 and only
// forwarded when it increases; 100 is always reported on success.
func (e *OCRExtractor) Extract(ctx context.Context, data []byte, onProgress core.ProgressFunc) (string, error) {
	if err := imaging.CheckPixels(data, e.maxPixels); err != nil {
		return "", core.NewExtractionError("image rejected", err)
	}

	img := data
	if imaging.NeedsNormalization(http.DetectContentType(data)) {
		converted, err := imaging.ToPNG(data, e.maxPixels)
		if err != nil {
			return "", core.NewExtractionError("could not decode image", err)
		}
		img = converted
	}

	var (
		mu   sync.Mutex
		last = -1
	)
	progress := func(p int) {
		p = min(max(p, 0), 100)
		mu.Lock()
		defer mu.Unlock()
		if p <= last {
			return
		}
		last = p
		report(onProgress, p)
	}

	text, err := e.engine.Recognize(ctx, img, e.lang, progress)
	if err != nil {
		return "", &core.ExtractionError{Reason: err.Error(), Err: err}
	}
	progress(100)

	return normalizeText(strings.TrimSpace(text)), nil
}
