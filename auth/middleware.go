package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jonwraymond/inspirehep-mcp/observe"
)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	logger observe.Logger
	now    func() time.Time
	realm  string
}

// WithMiddlewareLogger sets the logger for rejected requests.
func WithMiddlewareLogger(l observe.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRealm sets the realm announced in WWW-Authenticate.
func WithRealm(realm string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.realm = realm
	}
}

// Middleware authenticates every request with authn. Requests that fail
// are rejected with 401 and a JSON body; accepted requests continue with
// the identity attached to their context.
//
// A nil authn attaches AnonymousIdentity to every request.
func Middleware(authn Authenticator, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{
		logger: observe.NopLogger(),
		now:    time.Now,
		realm:  "inspirehep-mcp",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if authn == nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, AnonymousIdentity())))
				return
			}

			req := NewAuthRequest(r)
			result, err := authn.Authenticate(ctx, req)
			if err != nil {
				cfg.logger.Error(ctx, "authentication error",
					observe.Field{Key: "path", Value: req.Resource},
					observe.Field{Key: "error", Value: err.Error()},
				)
				writeAuthError(w, http.StatusInternalServerError, "", "authentication unavailable")
				return
			}

			if !result.Authenticated || result.Identity == nil || result.Identity.IsExpired(cfg.now()) {
				reason := ErrInvalidCredentials
				if result.Error != nil {
					reason = result.Error
				} else if result.Identity != nil && result.Identity.IsExpired(cfg.now()) {
					reason = ErrTokenExpired
				}
				cfg.logger.Warn(ctx, "authentication rejected",
					observe.Field{Key: "path", Value: req.Resource},
					observe.Field{Key: "method", Value: result.Method},
					observe.Field{Key: "remote_addr", Value: req.RemoteAddr},
					observe.Field{Key: "reason", Value: reason.Error()},
				)
				writeAuthError(w, http.StatusUnauthorized, cfg.realm, publicReason(reason))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
		})
	}
}

func publicReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "missing credentials"
	case errors.Is(err, ErrTokenExpired):
		return "credentials expired"
	default:
		return "invalid credentials"
	}
}

func writeAuthError(w http.ResponseWriter, status int, realm, msg string) {
	if realm != "" {
		w.Header().Set("WWW-Authenticate", `Bearer realm="`+realm+`"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
