package ingestion_engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/core/imaging"
	"github.com/markdave123-py/Lumen/internal/core/validation"
	"github.com/markdave123-py/Lumen/internal/models"
)

// NewDocumentIngestor wires one extractor per strategy and the analysis collaborator.
func NewDocumentIngestor(structured, ocr core.TextExtractor, analyzer core.Analyzer, cfg *IngestConfig, opts ...Option) *DocumentIngestor {
	i := defaultIngestor(cfg)
	i.extractors = map[models.Strategy]core.TextExtractor{
		models.StrategyStructured: structured,
		models.StrategyOCR:        ocr,
	}
	i.analyzer = analyzer
	for _, opt := range opts {
		opt(i)
	}
	i.store = newTaskStore(i.now)
	return i
}

// Submit validates every file synchronously, registers one task per file and
// starts an independent chain for each valid one. The returned snapshots are
// taken before any chain has run. Chains outlive ctx: cancelling the caller
// does not stop extraction or analysis.
func (i *DocumentIngestor) Submit(ctx context.Context, files []models.RawFile) []models.FileTask {
	chainCtx := context.WithoutCancel(ctx)
	out := make([]models.FileTask, 0, len(files))

	for _, f := range files {
		v := validation.Validate(f.MediaType, f.SizeBytes)
		task := newTask(i.newID(), f, v)
		task.SubmittedAt = i.now()
		task.UpdatedAt = task.SubmittedAt

		if v.Valid {
			task.Strategy = SelectStrategy(f.MediaType)
			if task.Strategy == models.StrategyNone {
				panic(fmt.Sprintf("ingestion: no extraction strategy for validated type %q", f.MediaType))
			}
			if err := beginExtraction(&task); err != nil {
				panic(err)
			}
		}

		i.store.add(task)
		i.observer.TaskSubmitted(v.Valid)
		out = append(out, cloneTask(task))

		if !v.Valid {
			i.logger.Info("file rejected", "task_id", task.ID, "file", f.Name, "reason", v.ErrorReason)
			continue
		}

		i.logger.Info("file accepted", "task_id", task.ID, "file", f.Name, "strategy", task.Strategy)
		i.inflight.Add(1)
		go i.run(chainCtx, task.ID, task.Name, task.Strategy, f.Bytes)
	}

	return out
}

// run is one task's chain: preview rendering alongside extraction, then analysis.
func (i *DocumentIngestor) run(ctx context.Context, id, label string, strategy models.Strategy, data []byte) {
	defer i.inflight.Done()
	i.observer.ChainStarted()
	defer i.observer.ChainFinished()

	var g errgroup.Group
	if strategy == models.StrategyOCR && i.cfg.PreviewMaxDim > 0 {
		g.Go(func() error {
			defer i.recoverPreview(id)
			i.renderPreview(id, data)
			return nil
		})
	}
	g.Go(func() error {
		defer i.recoverStage(id)
		i.extractAndAnalyze(ctx, id, label, strategy, data)
		return nil
	})
	_ = g.Wait()
}

func (i *DocumentIngestor) extractAndAnalyze(ctx context.Context, id, label string, strategy models.Strategy, data []byte) {
	extractor := i.extractors[strategy]
	start := i.now()

	text, err := extractor.Extract(ctx, data, func(p int) {
		i.apply(id, func(t *models.FileTask) error { return applyProgress(t, p) })
	})
	took := i.now().Sub(start)

	if err != nil {
		reason := extractionReason(err)
		i.observer.ExtractionFinished(strategy, OutcomeFailed, took)
		i.logger.Warn("extraction failed", "task_id", id, "strategy", strategy, "error", reason)
		i.apply(id, func(t *models.FileTask) error { return failExtraction(t, reason) })
		return
	}

	outcome := OutcomeSucceeded
	if text == "" {
		outcome = OutcomeEmpty
	}
	i.observer.ExtractionFinished(strategy, outcome, took)

	// Completion and the analysis hand-off land in one update so no reader sees
	// a non-empty extraction with analysis still not started.
	var analyze bool
	found := i.apply(id, func(t *models.FileTask) error {
		if err := completeExtraction(t, text); err != nil {
			return err
		}
		if !shouldAnalyze(t.Extraction) {
			return nil
		}
		if err := beginAnalysis(t); err != nil {
			return err
		}
		analyze = true
		return nil
	})
	if !found {
		return
	}
	i.logger.Info("extraction finished", "task_id", id, "strategy", strategy, "outcome", outcome, "chars", len(text))
	if analyze {
		i.analyze(ctx, id, label, text)
	}
}

func (i *DocumentIngestor) analyze(ctx context.Context, id, label, text string) {
	start := i.now()
	report, err := i.analyzer.Analyze(ctx, text, label)
	if err == nil && report == nil {
		err = &core.AnalysisError{Label: label, Reason: "analysis returned no report"}
	}
	took := i.now().Sub(start)

	if err != nil {
		reason := analysisReason(err)
		i.observer.AnalysisFinished(OutcomeFailed, took)
		i.logger.Warn("analysis failed", "task_id", id, "file", label, "error", reason)
		i.apply(id, func(t *models.FileTask) error { return failAnalysis(t, reason) })
		return
	}

	i.observer.AnalysisFinished(OutcomeSucceeded, took)
	if i.apply(id, func(t *models.FileTask) error { return completeAnalysis(t, report) }) {
		i.logger.Info("analysis finished", "task_id", id, "file", label)
	}
}

func (i *DocumentIngestor) renderPreview(id string, data []byte) {
	png, err := imaging.RenderPreview(data, i.cfg.PreviewMaxDim, i.cfg.MaxImagePixels)
	if err != nil {
		i.logger.Warn("preview rendering failed", "task_id", id, "error", err)
		return
	}
	i.apply(id, func(t *models.FileTask) error { return setPreview(t, png, imaging.PreviewType) })
}

// apply merges fn into the task. It returns false when the task was discarded,
// in which case the result is dropped.
func (i *DocumentIngestor) apply(id string, fn func(*models.FileTask) error) bool {
	found, err := i.store.update(id, fn)
	if !found {
		i.logger.Debug("dropping update for discarded task", "task_id", id)
		return false
	}
	if err != nil {
		i.logger.Warn("task update rejected", "task_id", id, "error", err)
	}
	return true
}

// recoverStage turns a panic in a chain into a failure of whichever stage was running.
func (i *DocumentIngestor) recoverStage(id string) {
	r := recover()
	if r == nil {
		return
	}
	reason := fmt.Sprintf("internal error: %v", r)
	i.logger.Error("chain panicked", "task_id", id, "panic", r)
	i.apply(id, func(t *models.FileTask) error {
		switch {
		case t.Extraction.Status == models.StatusInProgress:
			return failExtraction(t, reason)
		case t.Analysis.Status == models.StatusInProgress:
			return failAnalysis(t, reason)
		}
		return nil
	})
}

func (i *DocumentIngestor) recoverPreview(id string) {
	if r := recover(); r != nil {
		i.logger.Error("preview panicked", "task_id", id, "panic", r)
	}
}

// Get returns a snapshot of one task.
func (i *DocumentIngestor) Get(id string) (models.FileTask, bool) {
	return i.store.get(id)
}

// Snapshot returns every live task in submission order.
func (i *DocumentIngestor) Snapshot() []models.FileTask {
	return i.store.list()
}

// Discard forgets a task. A chain still running for it keeps going but its
// results are dropped.
func (i *DocumentIngestor) Discard(id string) bool {
	ok := i.store.remove(id)
	if ok {
		i.logger.Info("task discarded", "task_id", id)
	}
	return ok
}

// Wait blocks until every chain started so far has finished.
func (i *DocumentIngestor) Wait() {
	i.inflight.Wait()
}

func extractionReason(err error) string {
	var ee *core.ExtractionError
	if errors.As(err, &ee) {
		return ee.Reason
	}
	return err.Error()
}

func analysisReason(err error) string {
	var ae *core.AnalysisError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return err.Error()
}
