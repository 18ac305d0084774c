package models

import (
	"time"
)

// RawFile is one file handed to the pipeline by a consumer.
type RawFile struct {
	Name      string
	MediaType string
	SizeBytes int64
	Bytes     []byte
}

// Validation is the outcome of the type/size policy check. Set once at submission.
type Validation struct {
	Valid       bool   `json:"valid"`
	ErrorReason string `json:"error_reason,omitempty"`
}

type Strategy string

const (
	StrategyNone       Strategy = "none"
	StrategyStructured Strategy = "structured"
	StrategyOCR        Strategy = "ocr"
)

type StageStatus string

const (
	StatusNotStarted StageStatus = "not_started"
	StatusInProgress StageStatus = "in_progress"
	StatusSucceeded  StageStatus = "succeeded"
	StatusFailed     StageStatus = "failed"
)

// ExtractionState tracks the text extraction stage.
// Progress is only meaningful while in progress and after success (100).
type ExtractionState struct {
	Status   StageStatus `json:"status"`
	Progress int         `json:"progress"`
	Text     string      `json:"text,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// AnalysisState tracks the hand-off to the analysis service.
type AnalysisState struct {
	Status StageStatus `json:"status"`
	Report *Report     `json:"report,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// Report is the analysis service output for one file.
type Report struct {
	Analysis    string    `json:"analysis"`
	FileName    string    `json:"file_name"`
	CompletedAt time.Time `json:"completed_at"`
}

// FileTask is the per-file unit of state tracked through validation, extraction and analysis.
type FileTask struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SizeBytes   int64           `json:"size_bytes"`
	MediaType   string          `json:"media_type"`
	Strategy    Strategy        `json:"strategy"`
	Validation  Validation      `json:"validation"`
	Extraction  ExtractionState `json:"extraction"`
	Analysis    AnalysisState   `json:"analysis"`
	Preview     []byte          `json:"-"`
	PreviewType string          `json:"preview_type,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HasPreview reports whether a rendered preview is attached.
func (t FileTask) HasPreview() bool { return len(t.Preview) > 0 }

// Terminal reports whether no further state transition can happen for the task.
func (t FileTask) Terminal() bool {
	if !t.Validation.Valid {
		return true
	}
	switch t.Extraction.Status {
	case StatusFailed:
		return true
	case StatusSucceeded:
		if t.Extraction.Text == "" {
			return true
		}
		return t.Analysis.Status == StatusSucceeded || t.Analysis.Status == StatusFailed
	}
	return false
}
