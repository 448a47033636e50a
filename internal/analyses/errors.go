package analyses

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotQueued             = errors.New("analysis is not queued")
	ErrNotReady              = errors.New("analysis not completed")
	ErrJobQueueNotConfigured = errors.New("job queue not configured")

	errStorage = errors.New("storage")
)

const (
	ErrorCodeValidation          = "VALIDATION_ERROR"
	ErrorCodeParserTimeout       = "PARSER_TIMEOUT"
	ErrorCodeParserOutputInvalid = "PARSER_OUTPUT_INVALID"
	ErrorCodeStorage             = "STORAGE_ERROR"
	ErrorCodeInternal            = "INTERNAL_ERROR"
)

// FailureError is returned by ProcessAnalysis after a failed run has been
// persisted with Code.
type FailureError struct {
	AnalysisID string
	Code       string
	Err        error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("analysis %s failed (%s): %v", e.AnalysisID, e.Code, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }
