package inspire

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxErrorDetails is the longest response body excerpt carried by an
// APIError, in characters.
const MaxErrorDetails = 500

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 64 << 20

// classifyResponse maps an HTTP response to a value or a client error.
func classifyResponse(resp *http.Response, path string, fl flavor, now time.Time) (any, error) {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		d, ok := parseRetryAfter(resp.Header.Get("Retry-After"), now)
		return nil, &RateLimitError{RetryAfter: d, HasRetryAfter: ok}

	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Resource: "resource", Identifier: path}

	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorDetails*utf8.UTFMax))
		return nil, &APIError{
			Message:    "API request failed",
			StatusCode: resp.StatusCode,
			Details:    truncate(string(body), MaxErrorDetails),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(err)
	}

	if fl == flavorText {
		return string(body), nil
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &APIError{
			Message:    "invalid JSON response",
			StatusCode: resp.StatusCode,
			Details:    truncate(string(body), MaxErrorDetails),
			Err:        err,
		}
	}
	if data == nil {
		return nil, &APIError{
			Message:    "invalid JSON response",
			StatusCode: resp.StatusCode,
			Details:    "expected a JSON object",
		}
	}
	return data, nil
}

// transportError wraps a failure that produced no HTTP response.
func transportError(err error) error {
	if isTimeout(err) {
		return &APIError{Message: "request timed out", Details: err.Error(), Err: err}
	}
	return &APIError{Message: "HTTP request failed", Details: err.Error(), Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRetryAfter accepts delay-seconds (integer or decimal) or an
// HTTP-date. Negative or unparseable values yield false.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, false
		}
		return time.Duration(secs * float64(time.Second)), true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// truncate returns at most n characters of s without splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
