package ingestion_engine

import (
	"time"

	"github.com/markdave123-py/Lumen/internal/models"
)

// Stage outcomes reported to an Observer.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
)

// Observer receives pipeline events for metrics. Calls must not block.
type Observer interface {
	TaskSubmitted(valid bool)
	ChainStarted()
	ChainFinished()
	ExtractionFinished(strategy models.Strategy, outcome string, took time.Duration)
	AnalysisFinished(outcome string, took time.Duration)
}

type nopObserver struct{}

func (nopObserver) TaskSubmitted(bool) {}
func (nopObserver) ChainStarted() {}
func (nopObserver) ChainFinished() {}
func (nopObserver) ExtractionFinished(models.Strategy, string, time.Duration) {}
func (nopObserver) AnalysisFinished(string, time.Duration) {}
