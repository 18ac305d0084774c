// Package ocrengine adapts Tesseract (via gosseract, cgo) to core.OCREngine.
package ocrengine

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/markdave123-py/Lumen/internal/core"
)

var _ core.OCREngine = (*TesseractEngine)(nil)

// Stage boundaries reported while Tesseract runs. gosseract exposes no
// recognition monitor, so progress advances at the points the binding lets us observe.
const (
	progressStarted     = 0
	progressLanguageSet = 10
	progressImageLoaded = 30
	progressRecognized  = 100
)

// TesseractEngine runs one gosseract client per call; clients are not goroutine-safe.
type TesseractEngine struct{}

func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, lang string, onProgress core.ProgressFunc) (string, error) {
	report := func(p int) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	client := gosseract.NewClient()
	defer client.Close()

	report(progressStarted)
	if lang != "" {
		if err := client.SetLanguage(lang); err != nil {
			return "", fmt.Errorf("set language %q: %w", lang, err)
		}
	}
	report(progressLanguageSet)

	if err := client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	report(progressImageLoaded)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := client.Text()
	if err != nil {
		return "", err
	}
	report(progressRecognized)
	return text, nil
}
