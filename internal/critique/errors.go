package critique

import (
	"errors"
	"fmt"
)

// User-facing messages.
const (
	MsgNotReady        = "Please enter text or upload a PDF to continue."
	MsgAnalysisFailed  = "Analysis failed. Please try again."
	MsgSomethingWrong  = "Something went wrong. Please try again."
	MsgAnalysisTimeout = "The analysis service did not respond in time. Please try again."
	MsgReportFailed    = "Failed to generate PDF report."
	MsgReportDownload  = "Unable to download the report."
	MsgUnavailable     = "Analysis unavailable."
)

var (
	// ErrSubmissionInFlight is returned by Submit while a previous submission is still running.
	ErrSubmissionInFlight = errors.New("analysis already in progress")
	// ErrExportInFlight is returned by Export while a previous export is still running.
	ErrExportInFlight = errors.New("report export already in progress")
	// ErrNoResult is returned by Export when there is nothing to export yet.
	ErrNoResult = errors.New("no analysis result to export")
)

// ValidationError means the input was not ready; no request was sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SubmissionError is a submission-level failure: no result set was produced.
type SubmissionError struct {
	AttemptID string
	Message   string
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ExportError is a failed report download. The current result set is untouched.
type ExportError struct {
	Message string
	Err     error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// UserMessage returns the banner text for any error produced by this package.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var validation *ValidationError
	var submission *SubmissionError
	var export *ExportError
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &submission):
		return submission.Message
	case errors.As(err, &export):
		return export.Message
	default:
		return err.Error()
	}
}
