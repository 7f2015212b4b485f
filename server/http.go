package server

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/inspirehep-mcp/auth"
	"github.com/jonwraymond/inspirehep-mcp/health"
	"github.com/jonwraymond/inspirehep-mcp/observe"
	"github.com/jonwraymond/inspirehep-mcp/resilience"
)

// DefaultMaxBodyBytes bounds a POST /mcp body.
const DefaultMaxBodyBytes = 1 << 20

// HTTPConfig wires the HTTP transport.
type HTTPConfig struct {
	// Authenticator guards /mcp. Nil leaves the endpoint open.
	Authenticator auth.Authenticator

	// Ingress limits /mcp traffic. Nil applies no limits.
	Ingress *resilience.Executor

	// Health backs /healthz, /readyz and /health. Nil omits them.
	Health *health.Aggregator

	// HealthOptions labels the /health response.
	HealthOptions health.HandlerOptions

	// Gatherer backs /metrics. Nil omits the endpoint.
	Gatherer prometheus.Gatherer

	// MaxBodyBytes bounds request bodies.
	// Default: DefaultMaxBodyBytes
	MaxBodyBytes int64
}

// HTTPHandler returns the HTTP transport:
//
//	POST /mcp          JSON-RPC messages
//	GET  /healthz      liveness
//	GET  /readyz       readiness
//	GET  /health       detailed health
//	GET  /metrics      Prometheus metrics
func (s *Server) HTTPHandler(cfg HTTPConfig) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()

	var mcp http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.serveMCP(w, r, cfg)
	})
	if cfg.Authenticator != nil {
		mcp = auth.Middleware(cfg.Authenticator, auth.WithMiddlewareLogger(s.logger))(mcp)
	}
	mux.Handle("POST /mcp", mcp)
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	if cfg.Health != nil {
		health.RegisterHandlers(mux, cfg.Health, cfg.HealthOptions)
	}
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (s *Server) serveMCP(w http.ResponseWriter, r *http.Request, cfg HTTPConfig) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeRPC(w, http.StatusRequestEntityTooLarge, encode(errorResponse(nil, CodeInvalidRequest, "Request too large")))
			return
		}
		writeRPC(w, http.StatusBadRequest, encode(errorResponse(nil, CodeParseError, "Parse error")))
		return
	}

	reply, err := s.handleIngress(r.Context(), cfg.Ingress, body)
	switch {
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		w.Header().Set("Retry-After", retryAfter(cfg.Ingress))
		s.logger.Warn(r.Context(), "ingress rate limited", observe.Field{Key: "remote_addr", Value: r.RemoteAddr})
		writeRPC(w, http.StatusTooManyRequests, encode(errorResponse(nil, CodeInternalError, "Too many requests")))
		return
	case errors.Is(err, resilience.ErrBulkheadFull):
		w.Header().Set("Retry-After", "1")
		s.logger.Warn(r.Context(), "ingress at capacity", observe.Field{Key: "remote_addr", Value: r.RemoteAddr})
		writeRPC(w, http.StatusServiceUnavailable, encode(errorResponse(nil, CodeInternalError, "Server busy")))
		return
	case errors.Is(err, resilience.ErrTimeout):
		writeRPC(w, http.StatusGatewayTimeout, encode(errorResponse(nil, CodeInternalError, "Request timed out")))
		return
	case err != nil:
		// The client went away.
		return
	}

	if reply == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeRPC(w, http.StatusOK, reply)
}

func (s *Server) handleIngress(ctx context.Context, ingress *resilience.Executor, body []byte) ([]byte, error) {
	if ingress == nil {
		return s.HandleMessage(ctx, body), nil
	}
	replies := make(chan []byte, 1)
	err := ingress.Execute(ctx, func(ctx context.Context) error {
		replies <- s.HandleMessage(ctx, body)
		return context.Cause(ctx)
	})
	if err != nil {
		return nil, err
	}
	return <-replies, nil
}

func retryAfter(ingress *resilience.Executor) string {
	secs := 1
	if rl := ingress.RateLimiter(); rl != nil {
		secs = max(1, int(math.Ceil(rl.RetryAfter().Seconds())))
	}
	return strconv.Itoa(secs)
}

func writeRPC(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
