package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoangphuccoder123/tutorbond/internal/cv"
)

// Analyzer extracts a structured CV and a critique of it in one round trip.
type Analyzer interface {
	AnalyzeText(ctx context.Context, documentText string) (*cv.Result, error)
	AnalyzeImage(ctx context.Context, data []byte, mimeType string) (*cv.Result, error)
}

// FailureKind classifies why an analysis gave up.
type FailureKind int

const (
	// FailureTransient means quota or credential failures outlasted every available key.
	FailureTransient FailureKind = iota + 1
	// FailureMalformed means the last response did not match the output schema.
	FailureMalformed
	// FailureProvider is any other provider error. It is never retried.
	FailureProvider
	// FailureCanceled means the caller's context ended.
	FailureCanceled
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransient:
		return "transient"
	case FailureMalformed:
		return "malformed"
	case FailureProvider:
		return "provider"
	case FailureCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// AnalysisFailure is the single error an Analyzer surfaces after its retry loop.
// Message is safe to show to users; Err carries the provider detail for logs.
type AnalysisFailure struct {
	Kind     FailureKind
	Attempts int
	Message  string
	Err      error
}

func (f *AnalysisFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("analysis failed (%s after %d attempts)", f.Kind, f.Attempts)
	}
	return fmt.Sprintf("analysis failed (%s after %d attempts): %v", f.Kind, f.Attempts, f.Err)
}

func (f *AnalysisFailure) Unwrap() error {
	return f.Err
}

// KindOf reports the failure kind carried by err, if any.
func KindOf(err error) (FailureKind, bool) {
	var failure *AnalysisFailure
	if errors.As(err, &failure) {
		return failure.Kind, true
	}
	return 0, false
}
