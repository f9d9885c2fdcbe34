package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind int

const (
	ErrInvalidInput ErrorKind = iota
	ErrFetch
	ErrNoSubtitles
	ErrWrite
	ErrCompletion
	ErrUnknown
)

// Process exit codes. No-English-subtitles is a semantically different,
// caller-actionable condition and gets its own code.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitNoSubtitles = 2
)

// ProcessError is the structured failure surfaced by the pipeline
type ProcessError struct {
	Kind    ErrorKind
	Message string
	VideoID string
	Cause   error
}

func NewError(kind ErrorKind, message string) *ProcessError {
	return &ProcessError{
		Kind:    kind,
		Message: message,
	}
}

func WrapError(err error, kind ErrorKind, message string) *ProcessError {
	return &ProcessError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

func (e *ProcessError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Kind.String(), e.Message))

	if e.VideoID != "" {
		parts = append(parts, fmt.Sprintf("video_id: %s", e.VideoID))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

func (e *ProcessError) WithVideoID(videoID string) *ProcessError {
	e.VideoID = videoID
	return e
}

func (t ErrorKind) String() string {
	switch t {
	case ErrInvalidInput:
		return "InvalidInput"
	case ErrFetch:
		return "FetchFailure"
	case ErrNoSubtitles:
		return "NoSubtitlesAvailable"
	case ErrWrite:
		return "WriteFailure"
	case ErrCompletion:
		return "Completion"
	default:
		return "Unknown"
	}
}

// IsKind reports whether err is a ProcessError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var procErr *ProcessError
	if errors.As(err, &procErr) {
		return procErr.Kind == kind
	}
	return false
}

// ExitCode maps a pipeline error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsKind(err, ErrNoSubtitles) {
		return ExitNoSubtitles
	}
	return ExitFailure
}
