package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/inspirehep-mcp/cache"
	"github.com/jonwraymond/inspirehep-mcp/inspire"
	"github.com/jonwraymond/inspirehep-mcp/resilience"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// DefaultAddr is the HTTP listen address.
const DefaultAddr = ":8080"

// Config is the complete server configuration.
type Config struct {
	Inspire   InspireConfig
	Transport string
	Addr      string
	Telemetry TelemetryConfig
	Auth      AuthConfig
	Ingress   IngressConfig
}

// InspireConfig configures the upstream API client.
type InspireConfig struct {
	BaseURL           string
	UserAgent         string
	RequestsPerSecond float64
	CacheTTL          time.Duration
	CacheMaxSize      int
	RequestTimeout    time.Duration
}

// TelemetryConfig configures logging, tracing and metrics.
type TelemetryConfig struct {
	LogLevel        string
	TracingExporter string
	TraceSamplePct  float64
	MetricsExporter string
}

// APIKey grants Role to Principal when Key is presented.
type APIKey struct {
	Principal string
	Role      string
	Key       string
}

// AuthConfig configures HTTP authentication and tool authorization.
// Authentication is enabled when any API key or JWT key source is set.
type AuthConfig struct {
	APIKeys     []APIKey
	JWTSecret   string
	JWKSURL     string
	JWTIssuer   string
	JWTAudience string
	ToolPolicy  string
	DefaultRole string
}

// Enabled reports whether any authenticator is configured.
func (a AuthConfig) Enabled() bool {
	return len(a.APIKeys) > 0 || a.JWTSecret != "" || a.JWKSURL != ""
}

// IngressConfig limits HTTP traffic. Zero values disable each limit.
type IngressConfig struct {
	Rate          float64
	Burst         int
	MaxConcurrent int
	Timeout       time.Duration
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Inspire: InspireConfig{
			BaseURL:           inspire.DefaultBaseURL,
			UserAgent:         inspire.DefaultUserAgent,
			RequestsPerSecond: resilience.DefaultRequestsPerSecond,
			CacheTTL:          cache.DefaultTTL,
			CacheMaxSize:      cache.DefaultMaxSize,
			RequestTimeout:    inspire.DefaultRequestTimeout,
		},
		Transport: TransportStdio,
		Addr:      DefaultAddr,
		Telemetry: TelemetryConfig{
			LogLevel:        "info",
			TracingExporter: "none",
			TraceSamplePct:  1,
			MetricsExporter: "none",
		},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := c.clientConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("%w: transport must be %q or %q, got %q", ErrInvalidConfig, TransportStdio, TransportHTTP, c.Transport)
	}
	if c.Transport == TransportHTTP && c.Addr == "" {
		return fmt.Errorf("%w: http transport needs a listen address", ErrInvalidConfig)
	}
	if c.Transport == TransportStdio && c.Telemetry.MetricsExporter == "prometheus" {
		return fmt.Errorf("%w: prometheus metrics are served over http; use the http transport", ErrInvalidConfig)
	}

	obs := c.observeConfig("")
	if err := obs.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, k := range c.Auth.APIKeys {
		if k.Principal == "" || k.Key == "" {
			return fmt.Errorf("%w: API key entries need a principal and a key", ErrInvalidConfig)
		}
	}
	if c.Auth.JWTSecret != "" && c.Auth.JWKSURL != "" {
		return fmt.Errorf("%w: set either a JWT secret or a JWKS URL, not both", ErrInvalidConfig)
	}
	if c.Auth.ToolPolicy != "" {
		if _, err := c.Authorizer(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	in := c.Ingress
	if in.Rate < 0 || in.Burst < 0 || in.MaxConcurrent < 0 || in.Timeout < 0 {
		return fmt.Errorf("%w: ingress limits must not be negative", ErrInvalidConfig)
	}
	return nil
}
