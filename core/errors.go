package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies which failure mode of the Latch API an APIError represents
type ErrorKind string

const (
	KindConfiguration  ErrorKind = "configuration"
	KindTransport      ErrorKind = "transport"
	KindAuthentication ErrorKind = "authentication"
	KindNotFound       ErrorKind = "not_found"
	KindValidation     ErrorKind = "validation"
	KindRateLimit      ErrorKind = "rate_limit"
	KindServer         ErrorKind = "server"
	KindClient         ErrorKind = "client"
)

// AuthReason narrows down why an authentication error happened
type AuthReason string

const (
	AuthReasonMissing  AuthReason = "missing"
	AuthReasonExpired  AuthReason = "expired"
	AuthReasonInactive AuthReason = "inactive"
	AuthReasonDenied   AuthReason = "denied"
)

// Sentinel errors, one per kind. Every APIError matches the sentinel of its kind via errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrTransport      = errors.New("transport error")
	ErrAuthentication = errors.New("authentication error")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrServer         = errors.New("server error")
	ErrClient         = errors.New("client error")

	// ErrUnknownConversationType is returned when a conversation carries a type discriminant
	// this SDK does not know about
	ErrUnknownConversationType = errors.New("unknown conversation type")
)

var kindSentinels = map[ErrorKind]error{
	KindConfiguration:  ErrConfiguration,
	KindTransport:      ErrTransport,
	KindAuthentication: ErrAuthentication,
	KindNotFound:       ErrNotFound,
	KindValidation:     ErrValidation,
	KindRateLimit:      ErrRateLimited,
	KindServer:         ErrServer,
	KindClient:         ErrClient,
}

// APIError is the single error type raised by the Latch API client.
// StatusCode and Body are set for every error classified from an HTTP response.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Body       map[string]any

	// Code is the machine readable error code sent by the server, if any
	Code string
	// Reason is only set for authentication errors
	Reason AuthReason
	// Errors holds per-field validation messages (422 only)
	Errors map[string][]string
	// RetryAfter is the last server-provided delay (429 only)
	RetryAfter time.Duration
	// Err is the underlying cause for transport and configuration errors
	Err error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, core.ErrNotFound) and friends work for APIError values
func (e *APIError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// NewConfigurationError creates an error for invalid client setup. It is never retried.
func NewConfigurationError(message string) *APIError {
	return &APIError{Kind: KindConfiguration, Message: message}
}

// NewTransportError wraps a network level failure (connection refused, timeout, DNS)
func NewTransportError(err error) *APIError {
	return &APIError{
		Kind:    KindTransport,
		Message: fmt.Sprintf("request failed: %v", err),
		Err:     err,
	}
}

// AsAPIError extracts an APIError from an error chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRateLimitError checks if an error is a rate limit error and returns it
func IsRateLimitError(err error) (*APIError, bool) {
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Kind != KindRateLimit {
		return nil, false
	}
	return apiErr, true
}

// IsNotFoundError reports whether err is a 404 from the API or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
