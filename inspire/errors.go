package inspire

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error returned by the client.
type Kind string

// Error kinds. Every error the Client returns is exactly one of these.
const (
	KindAPI               Kind = "api_error"
	KindNotFound          Kind = "not_found"
	KindRateLimit         Kind = "rate_limited"
	KindInvalidIdentifier Kind = "invalid_identifier"
)

// Error is implemented by all client errors.
//
// Contract:
//   - Every error returned by Client methods satisfies errors.As(err, &e)
//     for e of type Error.
//   - None of them are fatal: the caller can issue a new call later.
type Error interface {
	error
	Kind() Kind
}

// APIError is a generic failure talking to the upstream service.
type APIError struct {
	Message    string
	StatusCode int    // 0 when no HTTP response was received
	Details    string // transport error text or truncated response body
	Err        error  // underlying cause, if any
}

func (e *APIError) Error() string {
	msg := "inspirehep: " + e.Message
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Kind returns KindAPI.
func (e *APIError) Kind() Kind { return KindAPI }

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.Err }

// NotFoundError reports that the requested resource does not exist.
type NotFoundError struct {
	Resource   string // category label, e.g. "resource" or "paper"
	Identifier string // requested path or identifier
}

func (e *NotFoundError) Error() string {
	resource := e.Resource
	if resource == "" {
		resource = "resource"
	}
	return fmt.Sprintf("inspirehep: %s not found: %s", resource, e.Identifier)
}

// Kind returns KindNotFound.
func (e *NotFoundError) Kind() Kind { return KindNotFound }

// RateLimitError reports that the upstream service throttled the request.
type RateLimitError struct {
	RetryAfter    time.Duration
	HasRetryAfter bool // false when the response carried no usable Retry-After
}

func (e *RateLimitError) Error() string {
	if e.HasRetryAfter {
		return fmt.Sprintf("inspirehep: rate limited, retry after %s", e.RetryAfter)
	}
	return "inspirehep: rate limited"
}

// Kind returns KindRateLimit.
func (e *RateLimitError) Kind() Kind { return KindRateLimit }

// RetryAfterSeconds returns the Retry-After value in seconds, if present.
func (e *RateLimitError) RetryAfterSeconds() (float64, bool) {
	return e.RetryAfter.Seconds(), e.HasRetryAfter
}

// InvalidIdentifierError reports a caller-supplied identifier that failed
// local validation. No network call is made.
type InvalidIdentifierError struct {
	Type   string // "INSPIRE ID", "arXiv ID", "DOI"
	Value  string
	Reason string
}

func (e *InvalidIdentifierError) Error() string {
	msg := fmt.Sprintf("inspirehep: invalid %s %q", e.Type, e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Kind returns KindInvalidIdentifier.
func (e *InvalidIdentifierError) Kind() Kind { return KindInvalidIdentifier }

// KindOf returns the kind of err, if err is (or wraps) a client Error.
func KindOf(err error) (Kind, bool) {
	var e Error
	if errors.As(err, &e) {
		return e.Kind(), true
	}
	return "", false
}

// IsTaxonomy reports whether err is (or wraps) one of the client error kinds.
func IsTaxonomy(err error) bool {
	_, ok := KindOf(err)
	return ok
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

var (
	_ Error = (*APIError)(nil)
	_ Error = (*NotFoundError)(nil)
	_ Error = (*RateLimitError)(nil)
	_ Error = (*InvalidIdentifierError)(nil)
)
