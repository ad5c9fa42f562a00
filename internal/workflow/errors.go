package workflow

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// ConfigurationError means a collaborator (extractor, analyzer, exporter) is missing.
	ConfigurationError ErrorKind = iota + 1
	// ValidationError means the input was wrong; the user must change it.
	ValidationError
	// TransientProviderError is a quota or credential failure that outlasted key rotation.
	TransientProviderError
	// MalformedResponseError means the model kept answering outside the schema.
	MalformedResponseError
	// ProviderError is a provider failure that is not worth retrying.
	ProviderError
	ExportError
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration"
	case ValidationError:
		return "validation"
	case TransientProviderError:
		return "transient_provider"
	case MalformedResponseError:
		return "malformed_response"
	case ProviderError:
		return "provider"
	case ExportError:
		return "export"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy is returned when an analysis is already in flight.
	ErrBusy = errors.New("analysis already in progress")
	// ErrStale is returned by Analyze when Reset discarded its result.
	ErrStale = errors.New("analysis result discarded")
)

// Error is a user-facing failure. Message is localized; Err carries the cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a workflow Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var wfErr *Error
	return errors.As(err, &wfErr) && wfErr.Kind == kind
}
