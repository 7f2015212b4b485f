package inspire

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jonwraymond/inspirehep-mcp/cache"
	"github.com/jonwraymond/inspirehep-mcp/observe"
	"github.com/jonwraymond/inspirehep-mcp/resilience"
)

// Defaults applied by Config for zero-valued fields.
const (
	DefaultBaseURL        = "https://inspirehep.net/api"
	DefaultUserAgent      = "inspirehep-mcp/0.1.0"
	DefaultRequestTimeout = 30 * time.Second
)

// Config configures a Client. Zero values select the defaults.
type Config struct {
	// BaseURL is the API root.
	// Default: https://inspirehep.net/api
	BaseURL string

	// UserAgent is sent on every request.
	// Default: inspirehep-mcp/0.1.0
	UserAgent string

	// RequestsPerSecond is the maximum rate of request starts.
	// Default: 1.5
	RequestsPerSecond float64

	// CacheTTL is how long successful responses are served from cache.
	// A negative value disables caching.
	// Default: 24h
	CacheTTL time.Duration

	// CacheMaxSize bounds the number of cached responses.
	// Default: 512
	CacheMaxSize int

	// RequestTimeout bounds each network call.
	// Default: 30s
	RequestTimeout time.Duration

	// HTTPClient, when set, is used as the session instead of a client
	// built from RequestTimeout. Close never closes a caller-supplied client's
	// transport.
	HTTPClient *http.Client

	// DisableInFlightDedup turns off collapsing of concurrent identical
	// cacheable requests into one upstream call.
	DisableInFlightDedup bool

	// Clock is the time source for the cache and the pacer.
	// Default: wall clock
	Clock clock.Clock

	// Logger receives debug and warning events.
	// Default: discard
	Logger observe.Logger

	// Recorder instruments requests and cache lookups.
	// Default: no-op
	Recorder observe.RequestRecorder
}

// Validate reports configuration values that cannot be defaulted.
func (c Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("inspirehep: invalid base URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("inspirehep: base URL must be http or https, got %q", c.BaseURL)
		}
		if u.Host == "" {
			return fmt.Errorf("inspirehep: base URL has no host: %q", c.BaseURL)
		}
	}
	if r := c.RequestsPerSecond; r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("inspirehep: requests per second must be a finite non-negative number, got %v", r)
	}
	if r := c.RequestsPerSecond; r > 0 && float64(time.Second)/r > math.MaxInt64 {
		return fmt.Errorf("inspirehep: requests per second too small to pace, got %v", r)
	}
	if c.CacheMaxSize < 0 {
		return fmt.Errorf("inspirehep: cache max size must not be negative, got %d", c.CacheMaxSize)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("inspirehep: request timeout must not be negative, got %v", c.RequestTimeout)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = resilience.DefaultRequestsPerSecond
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = cache.DefaultTTL
	}
	if c.CacheMaxSize == 0 {
		c.CacheMaxSize = cache.DefaultMaxSize
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	if c.Recorder == nil {
		c.Recorder = observe.NopRequestRecorder()
	}
	return c
}
