package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/models"
)

// ErrNotConfigured is the cause recorded when no model credential was provided.
var ErrNotConfigured = errors.New("analysis service not configured: GEMINI_API_KEY is not set")

var (
	_ core.Analyzer   = (*AnalysisService)(nil)
	_ core.Summarizer = (*AnalysisService)(nil)
)

// AnalysisService sends extracted text to the model. One attempt per call, no retries.
type AnalysisService struct {
	llm    core.LLMProvider
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalysisService accepts a nil llm; every call then fails with ErrNotConfigured.
func NewAnalysisService(llm core.LLMProvider, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{llm: llm, logger: logger, now: time.Now}
}

func (s *AnalysisService) Analyze(ctx context.Context, text, label string) (*models.Report, error) {
	if s.llm == nil {
		return nil, &core.AnalysisError{Label: label, Reason: ErrNotConfigured.Error(), Err: ErrNotConfigured}
	}

	s.logger.Info("sending text for analysis", "file", label, "chars", len(text))
	prompt := fmt.Sprintf("%s\n\nFile: %s\n\n%s", analysisPrompt, label, text)

	out, err := s.llm.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, &core.AnalysisError{Label: label, Reason: err.Error(), Err: err}
	}
	if strings.TrimSpace(out) == "" {
		return nil, &core.AnalysisError{Label: label, Reason: "analysis service returned an empty response"}
	}

	return &models.Report{Analysis: out, FileName: label, CompletedAt: s.now().UTC()}, nil
}

// Summarize returns a short summary of text without touching any task state.
func (s *AnalysisService) Summarize(ctx context.Context, text, label string) (string, error) {
	if s.llm == nil {
		return "", &core.AnalysisError{Label: label, Reason: ErrNotConfigured.Error(), Err: ErrNotConfigured}
	}
	if strings.TrimSpace(text) == "" {
		return "", &core.AnalysisError{Label: label, Reason: "nothing to summarize"}
	}

	out, err := s.llm.Generate(ctx, "", fmt.Sprintf("%s\n\n%s", summaryPrompt, text))
	if err != nil {
		return "", &core.AnalysisError{Label: label, Reason: err.Error(), Err: err}
	}
	return strings.TrimSpace(out), nil
}
