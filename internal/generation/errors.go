package generation

import (
	"errors"
	"fmt"

	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/schemas"
)

var (
	// ErrStageBusy is returned when a stage already has a request in flight.
	ErrStageBusy = errors.New("a request for this stage is already in flight")
	// ErrStaleResult is returned when the document was reset while the request was in flight.
	// The result is discarded.
	ErrStaleResult = errors.New("result discarded: the document changed while the request was in flight")
	// ErrNoDocument is returned by refine and cover letter when nothing has been generated yet.
	ErrNoDocument = errors.New("no profile has been generated yet")
)

// User-facing failure messages, one per stage.
const (
	GenerateFailedMessage    = "Strategy generation failed."
	RefineFailedMessage      = "Failed to update profile. Please try again."
	CoverLetterFailedMessage = "Failed to generate cover letter."
)

// StageError is a failed stage. Message is safe to show to the user; Cause keeps the
// underlying *llm.TransportError or *schemas.MalformedOutputError.
type StageError struct {
	Stage   Stage
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

func failureMessage(stage Stage) string {
	switch stage {
	case StageRefine:
		return RefineFailedMessage
	case StageCoverLetter:
		return CoverLetterFailedMessage
	default:
		return GenerateFailedMessage
	}
}

// errorKind classifies err for logs and API responses.
func errorKind(err error) string {
	var transportErr *llm.TransportError
	var malformedErr *schemas.MalformedOutputError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &malformedErr):
		return "malformed"
	default:
		return "internal"
	}
}
