package ingestion_engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/models"
)

// IngestConfig tunes the pipeline.
//
// PreviewMaxDim:  bounding box for image thumbnails; 0 disables previews.
// MaxImagePixels: declared width*height above which previews are skipped; 0 uses the imaging default.
type IngestConfig struct {
	PreviewMaxDim  int
	MaxImagePixels int
}

// DocumentIngestor orchestrates the per-file pipeline:
//
// store:      task id -> FileTask, the only shared mutable state.
// extractors: one TextExtractor per strategy (structured, ocr).
// analyzer:   the analysis collaborator, called once per task with non-empty text.
// observer:   metrics sink; never influences control flow.
// inflight:   running chains, so shutdown and tests can Wait for them.
type DocumentIngestor struct {
	store      *taskStore
	extractors map[models.Strategy]core.TextExtractor
	analyzer   core.Analyzer
	cfg        *IngestConfig
	observer   Observer
	logger     *slog.Logger
	newID      func() string
	now        func() time.Time
	inflight   sync.WaitGroup
}

// Option configures a DocumentIngestor.
type Option func(*DocumentIngestor)

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(i *DocumentIngestor) { i.logger = l }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(i *DocumentIngestor) { i.observer = o }
}

// WithIDGenerator replaces the UUID generator used for task ids.
func WithIDGenerator(gen func() string) Option {
	return func(i *DocumentIngestor) { i.newID = gen }
}

// WithClock replaces time.Now for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(i *DocumentIngestor) { i.now = now }
}

func defaultIngestor(cfg *IngestConfig) *DocumentIngestor {
	if cfg == nil {
		cfg = &IngestConfig{}
	}
	return &DocumentIngestor{
		cfg:      cfg,
		observer: nopObserver{},
		logger:   slog.Default(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}
