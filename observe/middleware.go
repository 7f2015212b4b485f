package observe

import (
	"context"
	"time"
)

// ExecuteFunc runs one tool call.
type ExecuteFunc func(ctx context.Context, tool ToolMeta, input any) (any, error)

// ErrorClassifier names the kind of a failed call, e.g. "not_found". An
// empty result is reported as DefaultErrorKind.
type ErrorClassifier func(error) string

// DefaultErrorKind labels failures the classifier does not recognize.
const DefaultErrorKind = "error"

// Middleware wraps tool calls with a span, call metrics and one log line.
//
// Contract:
//   - Concurrency: Wrap returns a function safe for concurrent use.
//   - Errors: errors from the wrapped function are returned unchanged.
type Middleware struct {
	tracer   Tracer
	metrics  Metrics
	logger   Logger
	classify ErrorClassifier
	now      func() time.Time
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithErrorClassifier sets how failed calls are labelled.
func WithErrorClassifier(c ErrorClassifier) MiddlewareOption {
	return func(m *Middleware) {
		if c != nil {
			m.classify = c
		}
	}
}

// NewMiddleware creates a Middleware from its parts.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		classify: func(error) string { return "" },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MiddlewareFromObserver creates a Middleware backed by obs.
func MiddlewareFromObserver(obs Observer, opts ...MiddlewareOption) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger(), opts...), nil
}

// Wrap instruments fn.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, tool ToolMeta, input any) (any, error) {
		if err := tool.Validate(); err != nil {
			return nil, err
		}

		ctx, span := m.tracer.StartSpan(ctx, tool)
		start := m.now()
		result, err := fn(ctx, tool, input)
		duration := m.now().Sub(start)

		errKind := ""
		if err != nil {
			errKind = m.classify(err)
			if errKind == "" {
				errKind = DefaultErrorKind
			}
		}
		m.tracer.EndSpan(span, err, errKind)
		m.metrics.RecordCall(ctx, tool, duration, errKind)

		log := m.logger.WithTool(tool)
		fields := []Field{{Key: "duration_ms", Value: duration.Milliseconds()}}
		if err != nil {
			fields = append(fields,
				Field{Key: "error_kind", Value: errKind},
				Field{Key: "error", Value: err.Error()},
			)
			log.Warn(ctx, "tool call failed", fields...)
		} else {
			log.Info(ctx, "tool call completed", fields...)
		}
		return result, err
	}
}
