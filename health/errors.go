package health

import "errors"

// Errors carried in Result.Error or returned by Aggregator.
var (
	// ErrCheckFailed marks an Unhealthy result from a domain checker: the
	// upstream API answered with a non-2xx status, or heap usage crossed the
	// critical threshold.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is set on the result of a checker that did not finish
	// within the aggregator's per-check timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned by Aggregator.Check for an
	// unregistered name; the single-check handler answers 404.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
