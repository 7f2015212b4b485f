// Package config loads the server configuration from INSPIREHEP_*
// environment variables and builds the components it describes.
//
// Values holding credentials (API keys and the JWT secret) may use ${VAR}
// expansion or a secret reference such as secretref:file:jwt.key; they are
// resolved through the secret package when Load runs.
//
// Environment variables:
//
//	INSPIREHEP_BASE_URL             API root (https://inspirehep.net/api)
//	INSPIREHEP_USER_AGENT           User-Agent header
//	INSPIREHEP_RATE_LIMIT           upstream requests per second (1.5)
//	INSPIREHEP_CACHE_TTL            response cache TTL, e.g. 24h; negative disables
//	INSPIREHEP_CACHE_MAX_SIZE       response cache capacity (512)
//	INSPIREHEP_TIMEOUT              upstream request timeout (30s)
//	INSPIREHEP_TRANSPORT            stdio or http (stdio)
//	INSPIREHEP_ADDR                 HTTP listen address (:8080)
//	INSPIREHEP_LOG_LEVEL            debug, info, warn or error (info)
//	INSPIREHEP_TRACING_EXPORTER     otlp, jaeger, stdout or none (none)
//	INSPIREHEP_TRACE_SAMPLE         trace sample ratio 0..1 (1)
//	INSPIREHEP_METRICS_EXPORTER     otlp, prometheus, stdout or none (none)
//	INSPIREHEP_SECRET_DIR           root directory for secretref:file references
//	INSPIREHEP_API_KEYS             principal[:role]=key, comma separated
//	INSPIREHEP_JWT_SECRET           HMAC key for bearer tokens
//	INSPIREHEP_JWKS_URL             JWKS endpoint for RSA bearer tokens
//	INSPIREHEP_JWT_ISSUER           expected iss claim
//	INSPIREHEP_JWT_AUDIENCE         expected aud claim
//	INSPIREHEP_TOOL_POLICY          role=tool,tool;role=* allowlist
//	INSPIREHEP_DEFAULT_ROLE         role for identities without roles
//	INSPIREHEP_INGRESS_RATE         HTTP requests per second (0 disables)
//	INSPIREHEP_INGRESS_BURST        HTTP burst size
//	INSPIREHEP_INGRESS_CONCURRENCY  concurrent HTTP requests (0 disables)
//	INSPIREHEP_INGRESS_TIMEOUT      per-request deadline (0 disables)
package config
