package resilience

import "errors"

// Rejections from the ingress Executor. The HTTP transport maps them to
// 429 (with Retry-After), 503 and 504 respectively.
var (
	// ErrRateLimitExceeded is returned by RateLimiter when no token is
	// available within MaxWait.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned by Bulkhead when every slot stays taken
	// for MaxWait.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is the cancellation cause Timeout installs on the
	// operation's context, and its error when the deadline passes first.
	ErrTimeout = errors.New("resilience: operation timed out")
)
