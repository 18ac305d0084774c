package core

import (
	"context"

	"github.com/markdave123-py/Lumen/internal/models"
)

// LLMProvider is the generative model behind the analysis service.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Analyzer turns extracted text into a report. Implementations make exactly one attempt;
// failures are returned as *AnalysisError.
type Analyzer interface {
	Analyze(ctx context.Context, text, label string) (*models.Report, error)
}

// Summarizer produces a short summary of extracted text on demand.
type Summarizer interface {
	Summarize(ctx context.Context, text, label string) (string, error)
}
