package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// UpstreamCheckerConfig configures an UpstreamChecker.
type UpstreamCheckerConfig struct {
	// URL is probed with a GET request.
	URL string

	// UserAgent is sent with the probe.
	UserAgent string

	// Timeout bounds the probe.
	// Default: 5 seconds
	Timeout time.Duration

	// SlowThreshold reports degraded when the probe takes longer.
	// Default: 2 seconds
	SlowThreshold time.Duration

	// HTTPClient sends the probe.
	// Default: http.DefaultClient
	HTTPClient *http.Client
}

// UpstreamChecker probes the InspireHEP API for reachability.
type UpstreamChecker struct {
	config UpstreamCheckerConfig
}

// NewUpstreamChecker creates a new UpstreamChecker.
func NewUpstreamChecker(config UpstreamCheckerConfig) *UpstreamChecker {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.SlowThreshold <= 0 {
		config.SlowThreshold = 2 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &UpstreamChecker{config: config}
}

// Name returns "upstream".
func (u *UpstreamChecker) Name() string {
	return "upstream"
}

// Check issues one GET against the configured URL. Any response below 500
// proves reachability; 429 reports degraded.
func (u *UpstreamChecker) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, u.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.config.URL, nil)
	if err != nil {
		return Unhealthy("invalid upstream URL", err)
	}
	if u.config.UserAgent != "" {
		req.Header.Set("User-Agent", u.config.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := u.config.HTTPClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return Unhealthy("upstream unreachable", err).WithDetails(map[string]any{"url": u.config.URL})
	}
	_ = resp.Body.Close()

	details := map[string]any{
		"url":         u.config.URL,
		"status_code": resp.StatusCode,
		"latency_ms":  elapsed.Milliseconds(),
	}

	switch {
	case resp.StatusCode >= 500:
		return Unhealthy(fmt.Sprintf("upstream returned %d", resp.StatusCode), ErrCheckFailed).WithDetails(details)
	case resp.StatusCode == http.StatusTooManyRequests:
		return Degraded("upstream is rate limiting").WithDetails(details)
	case elapsed > u.config.SlowThreshold:
		return Degraded(fmt.Sprintf("upstream slow: %s", elapsed.Round(time.Millisecond))).WithDetails(details)
	default:
		return Healthy("upstream reachable").WithDetails(details)
	}
}
