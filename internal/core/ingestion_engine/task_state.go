package ingestion_engine

import (
	"errors"
	"fmt"

	"github.com/markdave123-py/Lumen/internal/models"
)

// ErrIllegalTransition is returned when a stage update does not follow the task
// state machine. Every transition moves forward; nothing is ever re-run.
var ErrIllegalTransition = errors.New("illegal state transition")

func illegal(stage string, from models.StageStatus, to models.StageStatus) error {
	return fmt.Errorf("%w: %s %s -> %s", ErrIllegalTransition, stage, from, to)
}

func newTask(id string, f models.RawFile, v models.Validation) models.FileTask {
	return models.FileTask{
		ID:         id,
		Name:       f.Name,
		SizeBytes:  f.SizeBytes,
		MediaType:  f.MediaType,
		Strategy:   models.StrategyNone,
		Validation: v,
		Extraction: models.ExtractionState{Status: models.StatusNotStarted},
		Analysis:   models.AnalysisState{Status: models.StatusNotStarted},
	}
}

func beginExtraction(t *models.FileTask) error {
	if !t.Validation.Valid || t.Extraction.Status != models.StatusNotStarted {
		return illegal("extraction", t.Extraction.Status, models.StatusInProgress)
	}
	t.Extraction = models.ExtractionState{Status: models.StatusInProgress}
	return nil
}

// applyProgress records a progress event. Values are clamped to 0-100 and
// anything not above the current value is ignored.
func applyProgress(t *models.FileTask, percent int) error {
	if t.Extraction.Status != models.StatusInProgress {
		return illegal("extraction progress", t.Extraction.Status, models.StatusInProgress)
	}
	percent = min(max(percent, 0), 100)
	if percent > t.Extraction.Progress {
		t.Extraction.Progress = percent
	}
	return nil
}

func completeExtraction(t *models.FileTask, text string) error {
	if t.Extraction.Status != models.StatusInProgress {
		return illegal("extraction", t.Extraction.Status, models.StatusSucceeded)
	}
	t.Extraction = models.ExtractionState{Status: models.StatusSucceeded, Progress: 100, Text: text}
	return nil
}

func failExtraction(t *models.FileTask, reason string) error {
	if t.Extraction.Status != models.StatusInProgress {
		return illegal("extraction", t.Extraction.Status, models.StatusFailed)
	}
	t.Extraction = models.ExtractionState{
		Status:   models.StatusFailed,
		Progress: t.Extraction.Progress,
		Reason:   reason,
	}
	return nil
}

// shouldAnalyze is the single chaining rule: analysis runs only after a
// successful extraction that produced text.
func shouldAnalyze(e models.ExtractionState) bool {
	return e.Status == models.StatusSucceeded && e.Text != ""
}

func beginAnalysis(t *models.FileTask) error {
	if !shouldAnalyze(t.Extraction) || t.Analysis.Status != models.StatusNotStarted {
		return illegal("analysis", t.Analysis.Status, models.StatusInProgress)
	}
	t.Analysis = models.AnalysisState{Status: models.StatusInProgress}
	return nil
}

func completeAnalysis(t *models.FileTask, report *models.Report) error {
	if t.Analysis.Status != models.StatusInProgress {
		return illegal("analysis", t.Analysis.Status, models.StatusSucceeded)
	}
	t.Analysis = models.AnalysisState{Status: models.StatusSucceeded, Report: report}
	return nil
}

func failAnalysis(t *models.FileTask, reason string) error {
	if t.Analysis.Status != models.StatusInProgress {
		return illegal("analysis", t.Analysis.Status, models.StatusFailed)
	}
	t.Analysis = models.AnalysisState{Status: models.StatusFailed, Reason: reason}
	return nil
}

// setPreview touches only the preview fields so it can race freely with stage updates.
func setPreview(t *models.FileTask, data []byte, mediaType string) error {
	if len(t.Preview) > 0 {
		return errors.New("preview already set")
	}
	t.Preview = data
	t.PreviewType = mediaType
	return nil
}
