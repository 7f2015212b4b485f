package config

import (
	"net/http"

	"github.com/jonwraymond/inspirehep-mcp/auth"
	"github.com/jonwraymond/inspirehep-mcp/inspire"
	"github.com/jonwraymond/inspirehep-mcp/observe"
	"github.com/jonwraymond/inspirehep-mcp/observe/exporters"
	"github.com/jonwraymond/inspirehep-mcp/resilience"
)

// ServiceName identifies the server in telemetry.
const ServiceName = "inspirehep-mcp"

// InspireConfig returns the client configuration with the given logger and
// recorder attached.
func (c Config) InspireConfig(logger observe.Logger, rec observe.RequestRecorder) inspire.Config {
	cfg := c.clientConfig()
	cfg.Logger = logger
	cfg.Recorder = rec
	return cfg
}

func (c Config) clientConfig() inspire.Config {
	return inspire.Config{
		BaseURL:           c.Inspire.BaseURL,
		UserAgent:         c.Inspire.UserAgent,
		RequestsPerSecond: c.Inspire.RequestsPerSecond,
		CacheTTL:          c.Inspire.CacheTTL,
		CacheMaxSize:      c.Inspire.CacheMaxSize,
		RequestTimeout:    c.Inspire.RequestTimeout,
	}
}

// ObserveConfig returns the telemetry configuration. export carries the
// sinks for the stdout and prometheus exporters.
func (c Config) ObserveConfig(version string, export exporters.Options) observe.Config {
	cfg := c.observeConfig(version)
	cfg.Export = export
	return cfg
}

func (c Config) observeConfig(version string) observe.Config {
	t := c.Telemetry
	return observe.Config{
		ServiceName: ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   exporterEnabled(t.TracingExporter),
			Exporter:  t.TracingExporter,
			SamplePct: t.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  exporterEnabled(t.MetricsExporter),
			Exporter: t.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   t.LogLevel,
		},
	}
}

func exporterEnabled(name string) bool {
	return name != "" && name != "none"
}

// Authenticator builds the HTTP authenticator. It returns nil when no
// credentials are configured. httpClient is used for JWKS fetches and may
// be nil.
func (c Config) Authenticator(httpClient *http.Client) auth.Authenticator {
	a := c.Auth
	var chain []auth.Authenticator

	if len(a.APIKeys) > 0 {
		store := auth.NewMemoryAPIKeyStore()
		for _, k := range a.APIKeys {
			var roles []string
			if k.Role != "" {
				roles = []string{k.Role}
			}
			store.AddKey(k.Principal, k.Key, roles...)
		}
		chain = append(chain, auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store))
	}

	var keys auth.KeyProvider
	switch {
	case a.JWTSecret != "":
		keys = auth.NewStaticKeyProvider([]byte(a.JWTSecret))
	case a.JWKSURL != "":
		keys = auth.NewJWKSKeyProvider(auth.JWKSConfig{URL: a.JWKSURL, HTTPClient: httpClient})
	}
	if keys != nil {
		chain = append(chain, auth.NewJWTAuthenticator(auth.JWTConfig{
			Issuer:   a.JWTIssuer,
			Audience: a.JWTAudience,
		}, keys))
	}

	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	default:
		return auth.NewCompositeAuthenticator(chain...)
	}
}

// Authorizer builds the tool policy. It returns nil, nil when no policy is
// configured, which leaves every tool callable.
func (c Config) Authorizer() (auth.Authorizer, error) {
	if c.Auth.ToolPolicy == "" {
		return nil, nil
	}
	policy, err := auth.ParseToolPolicy(c.Auth.ToolPolicy)
	if err != nil {
		return nil, err
	}
	policy.DefaultRole = c.Auth.DefaultRole
	return policy, nil
}

// IngressExecutor builds the HTTP ingress limiter, or nil when every limit
// is disabled.
func (c Config) IngressExecutor() *resilience.Executor {
	in := c.Ingress
	var opts []resilience.ExecutorOption
	if in.Rate > 0 {
		burst := in.Burst
		if burst <= 0 {
			burst = max(1, int(in.Rate))
		}
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:  in.Rate,
			Burst: burst,
		})))
	}
	if in.MaxConcurrent > 0 {
		opts = append(opts, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: in.MaxConcurrent,
		})))
	}
	if in.Timeout > 0 {
		opts = append(opts, resilience.WithTimeout(in.Timeout))
	}
	if len(opts) == 0 {
		return nil
	}
	return resilience.NewExecutor(opts...)
}
