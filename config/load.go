package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/inspirehep-mcp/secret"
)

const envPrefix = "INSPIREHEP_"

// Load reads the configuration from the environment through lookup,
// resolves secret-bearing values and validates the result. A nil lookup
// reads the process environment.
func Load(ctx context.Context, lookup secret.LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := envReader{lookup: lookup}
	cfg := Default()

	env.str("BASE_URL", &cfg.Inspire.BaseURL)
	env.str("USER_AGENT", &cfg.Inspire.UserAgent)
	env.number("RATE_LIMIT", &cfg.Inspire.RequestsPerSecond)
	env.duration("CACHE_TTL", &cfg.Inspire.CacheTTL)
	env.integer("CACHE_MAX_SIZE", &cfg.Inspire.CacheMaxSize)
	env.duration("TIMEOUT", &cfg.Inspire.RequestTimeout)

	env.str("TRANSPORT", &cfg.Transport)
	env.str("ADDR", &cfg.Addr)

	env.str("LOG_LEVEL", &cfg.Telemetry.LogLevel)
	env.str("TRACING_EXPORTER", &cfg.Telemetry.TracingExporter)
	env.number("TRACE_SAMPLE", &cfg.Telemetry.TraceSamplePct)
	env.str("METRICS_EXPORTER", &cfg.Telemetry.MetricsExporter)

	var apiKeys, secretDir string
	env.str("API_KEYS", &apiKeys)
	env.str("SECRET_DIR", &secretDir)
	env.str("JWT_SECRET", &cfg.Auth.JWTSecret)
	env.str("JWKS_URL", &cfg.Auth.JWKSURL)
	env.str("JWT_ISSUER", &cfg.Auth.JWTIssuer)
	env.str("JWT_AUDIENCE", &cfg.Auth.JWTAudience)
	env.str("TOOL_POLICY", &cfg.Auth.ToolPolicy)
	env.str("DEFAULT_ROLE", &cfg.Auth.DefaultRole)

	env.number("INGRESS_RATE", &cfg.Ingress.Rate)
	env.integer("INGRESS_BURST", &cfg.Ingress.Burst)
	env.integer("INGRESS_CONCURRENCY", &cfg.Ingress.MaxConcurrent)
	env.duration("INGRESS_TIMEOUT", &cfg.Ingress.Timeout)

	if env.err != nil {
		return Config{}, env.err
	}

	keys, err := ParseAPIKeys(apiKeys)
	if err != nil {
		return Config{}, err
	}
	cfg.Auth.APIKeys = keys

	if err := resolveSecrets(ctx, &cfg.Auth, lookup, secretDir); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseAPIKeys parses a comma-separated list of principal[:role]=key
// entries. Keys may contain '=' and ':' but not ','.
func ParseAPIKeys(s string) ([]APIKey, error) {
	var keys []APIKey
	for entry := range strings.SplitSeq(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		who, key, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: API key entry %q must be principal[:role]=key", ErrInvalidConfig, redact(who))
		}
		principal, role, _ := strings.Cut(who, ":")
		principal = strings.TrimSpace(principal)
		if principal == "" {
			return nil, fmt.Errorf("%w: API key entry has no principal", ErrInvalidConfig)
		}
		keys = append(keys, APIKey{
			Principal: principal,
			Role:      strings.TrimSpace(role),
			Key:       strings.TrimSpace(key),
		})
	}
	return keys, nil
}

func redact(who string) string {
	if who == "" {
		return "<empty>"
	}
	return who + "=..."
}

func resolveSecrets(ctx context.Context, a *AuthConfig, lookup secret.LookupFunc, secretDir string) error {
	if !a.Enabled() {
		return nil
	}

	providers, err := secret.DefaultRegistry.CreateAll(secret.ProviderConfig{Lookup: lookup, FileRoot: secretDir})
	if err != nil {
		return fmt.Errorf("config: secret providers: %w", err)
	}
	resolver := secret.NewResolver(
		secret.WithStrict(true),
		secret.WithLookup(lookup),
		secret.WithProviders(providers...),
	)
	defer func() { _ = resolver.Close() }()

	for i := range a.APIKeys {
		v, err := resolver.ResolveValue(ctx, a.APIKeys[i].Key)
		if err != nil {
			return fmt.Errorf("config: API key for %q: %w", a.APIKeys[i].Principal, err)
		}
		a.APIKeys[i].Key = v
	}
	if a.JWTSecret != "" {
		v, err := resolver.ResolveValue(ctx, a.JWTSecret)
		if err != nil {
			return fmt.Errorf("config: JWT secret: %w", err)
		}
		a.JWTSecret = v
	}
	return nil
}

// envReader reads INSPIREHEP_* variables and keeps the first parse error.
type envReader struct {
	lookup secret.LookupFunc
	err    error
}

func (e *envReader) get(name string) (string, bool) {
	v, ok := e.lookup(envPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) fail(name, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidConfig, envPrefix, name, v, err)
	}
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) integer(name string, dst *int) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = n
}

func (e *envReader) number(name string, dst *float64) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = f
}

func (e *envReader) duration(name string, dst *time.Duration) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = d
}
