package core

import (
	"context"
)

// ProgressFunc receives advisory progress percentages (0-100) from a running extraction.
// Implementations must return quickly; the extractor calls it synchronously.
type ProgressFunc func(percent int)

// TextExtractor is the uniform interface both extraction strategies implement.
// An empty string with a nil error means the input held no recognizable text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, onProgress ProgressFunc) (string, error)
}
