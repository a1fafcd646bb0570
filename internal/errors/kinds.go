package errors

import stderrors "errors"

var (
	// ErrUpstreamUnavailable covers transport failures, timeouts, non-2xx
	// answers and unparseable bodies from a booking provider.
	ErrUpstreamUnavailable = stderrors.New("upstream unavailable")
	// ErrAuthExpired is returned when a key-gated provider keeps rejecting
	// the credential after one refresh.
	ErrAuthExpired = stderrors.New("upstream credential rejected")
	// ErrUnsupportedProvider means a catalog course names a provider with no adapter.
	ErrUnsupportedProvider = stderrors.New("unsupported provider")
	ErrNotFound            = stderrors.New("not found")
	// ErrNotConfigured is returned by transports whose credentials are absent.
	ErrNotConfigured = stderrors.New("not configured")
)

// ValidationError rejects a request with a human readable reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}
