package remote

import (
	"errors"
	"fmt"
)

// Kind classifies a failure crossing the importer boundary. Exactly one
// kind is attached to every error an Importer returns; raw transport and
// OS errors are translated before they propagate.
type Kind int

const (
	// KindDependency means a required external binary is missing or unusable.
	KindDependency Kind = iota
	// KindAuthentication means credentials are missing, invalid, or insufficient.
	KindAuthentication
	// KindRateLimit means the service rejected the request due to rate limiting.
	KindRateLimit
	// KindNotFound means the target user, org, or group does not exist.
	KindNotFound
	// KindServiceUnavailable means a transient server-side or timeout failure.
	KindServiceUnavailable
	// KindConfiguration means a local misconfiguration (bad region, bad output).
	KindConfiguration
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindDependency:
		return "dependency"
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindNotFound:
		return "not_found"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error is the single error type returned across the importer boundary.
type Error struct {
	Kind    Kind
	Service string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s: %s: %s", e.Service, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an importer error of the given kind.
func NewError(kind Kind, service, format string, args ...any) *Error {
	return &Error{Kind: kind, Service: service, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an importer error that wraps an underlying cause.
func WrapError(kind Kind, service string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Service: service, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err is an importer error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}
