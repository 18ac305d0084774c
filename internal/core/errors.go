package core

import "fmt"

// ValidationError is raised when a file fails the type or size policy.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string { return e.Reason }
func (e *ValidationError) Unwrap() error { return e.Err }

// ExtractionError reports an unopenable document or an OCR engine failure.
// Reason is rendered to the consumer as-is.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string { return e.Reason }
func (e *ExtractionError) Unwrap() error { return e.Err }

// NewExtractionError wraps err with a human-readable prefix; a nil err yields the bare reason.
func NewExtractionError(reason string, err error) *ExtractionError {
	if err != nil {
		reason = fmt.Sprintf("%s: %v", reason, err)
	}
	return &ExtractionError{Reason: reason, Err: err}
}

// AnalysisError carries the failure reason and the label of the file that was being analyzed.
type AnalysisError struct {
	Label  string
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string { return e.Reason }
func (e *AnalysisError) Unwrap() error { return e.Err }
