package core

import (
	"context"
)

// PDFParser opens raw PDF bytes. It abstracts the parsing library so the
// structured extractor never depends on a specific backend.
type PDFParser interface {
	Open(data []byte) (PDFDocument, error)
}

// PDFDocument exposes page count and per-page text fragments. Pages are 1-based.
type PDFDocument interface {
	NumPages() int
	PageFragments(page int) ([]string, error)
}

// OCREngine recognizes text in a raster image. onProgress may be nil.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte, lang string, onProgress ProgressFunc) (string, error)
}
