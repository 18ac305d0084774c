package ingestion_engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/models"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type extractFunc func(ctx context.Context, data []byte, onProgress core.ProgressFunc) (string, error)

type fakeExtractor struct {
	mu    sync.Mutex
	calls int
	fn    extractFunc
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, onProgress core.ProgressFunc) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(ctx, data, onProgress)
}

func (f *fakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func returning(text string, err error) *fakeExtractor {
	return &fakeExtractor{fn: func(context.Context, []byte, core.ProgressFunc) (string, error) {
		return text, err
	}}
}

type fakeAnalyzer struct {
	mu      sync.Mutex
	texts   []string
	labels  []string
	err     error
	release chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text, label string) (*models.Report, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.labels = append(f.labels, label)
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, &core.AnalysisError{Label: label, Reason: f.err.Error(), Err: f.err}
	}
	return &models.Report{Analysis: "report for " + label, FileName: label, CompletedAt: time.Unix(0, 0)}, nil
}

func (f *fakeAnalyzer) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakePDFDoc struct {
	pages  [][]string
	bad    map[int]bool
	panics map[int]bool
}

func (d *fakePDFDoc) NumPages() int { return len(d.pages) }

func (d *fakePDFDoc) PageFragments(page int) ([]string, error) {
	if d.panics[page] {
		panic("bad content stream")
	}
	if d.bad[page] {
		return nil, errors.New("broken content stream")
	}
	return d.pages[page-1], nil
}

type fakePDFParser struct {
	doc *fakePDFDoc
	err error
}

func (p *fakePDFParser) Open([]byte) (core.PDFDocument, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.doc, nil
}

type fakeOCREngine struct {
	text     string
	err      error
	progress []int
	got      []byte
	lang     string
}

func (e *fakeOCREngine) Recognize(ctx context.Context, image []byte, lang string, onProgress core.ProgressFunc) (string, error) {
	e.got = image
	e.lang = lang
	for _, p := range e.progress {
		onProgress(p)
	}
	return e.text, e.err
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestIngestor(structured, ocr core.TextExtractor, analyzer core.Analyzer, opts ...Option) *DocumentIngestor {
	opts = append([]Option{WithLogger(discardLogger)}, opts...)
	return NewDocumentIngestor(structured, ocr, analyzer, &IngestConfig{}, opts...)
}

func pdfFile(name string) models.RawFile {
	return models.RawFile{Name: name, MediaType: "application/pdf", SizeBytes: 128, Bytes: []byte("%PDF-1.4")}
}

func jpegFile(name string) models.RawFile {
	return models.RawFile{Name: name, MediaType: "image/jpeg", SizeBytes: 64, Bytes: []byte("jpeg")}
}
