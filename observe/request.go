package observe

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Request describes one outbound call to the upstream API.
type Request struct {
	Flavor string // "json" or "text"
	Path   string // request path, e.g. /literature/3456
}

// Endpoint returns the first path segment, e.g. "/literature" for
// "/literature/3456". It keeps metric cardinality bounded.
func (r Request) Endpoint() string {
	p := strings.TrimPrefix(r.Path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return "/" + p
}

// SpanName returns the span name for this request.
// Format: inspire.request.<flavor>
func (r Request) SpanName() string {
	return "inspire.request." + r.Flavor
}

func (r Request) attrs() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("inspire.flavor", r.Flavor),
		attribute.String("inspire.endpoint", r.Endpoint()),
	}
}

// RequestOutcome is what the caller learned from one outbound call.
type RequestOutcome struct {
	StatusCode int           // 0 when no response was received
	Duration   time.Duration // wall time of the network call
	ErrKind    string        // error classification, empty on success
	Err        error
}

// RequestRecorder instruments outbound API requests and cache lookups.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: recording is best-effort and must not panic.
type RequestRecorder interface {
	// Start starts a client span for an outbound request.
	Start(ctx context.Context, req Request) (context.Context, trace.Span)

	// End ends the span and records request metrics.
	End(ctx context.Context, span trace.Span, req Request, out RequestOutcome)

	// CacheLookup records a cache hit or miss.
	CacheLookup(ctx context.Context, req Request, hit bool)
}

type requestRecorder struct {
	tracer       trace.Tracer
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// NewRequestRecorder creates a RequestRecorder from an Observer.
func NewRequestRecorder(obs Observer) (RequestRecorder, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return newRequestRecorder(obs.Tracer(), obs.Meter())
}

func newRequestRecorder(tracer trace.Tracer, meter metric.Meter) (*requestRecorder, error) {
	totalCount, err := meter.Int64Counter(
		"inspire.request.total",
		metric.WithDescription("Total number of upstream API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"inspire.request.errors",
		metric.WithDescription("Total number of failed upstream API requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"inspire.request.duration_ms",
		metric.WithDescription("Upstream API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"inspire.cache.hits",
		metric.WithDescription("Response cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"inspire.cache.misses",
		metric.WithDescription("Response cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &requestRecorder{
		tracer:       tracer,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
	}, nil
}

func (r *requestRecorder) Start(ctx context.Context, req Request) (context.Context, trace.Span) {
	attrs := append(req.attrs(), attribute.String("url.path", req.Path))
	return r.tracer.Start(ctx, req.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (r *requestRecorder) End(ctx context.Context, span trace.Span, req Request, out RequestOutcome) {
	attrs := req.attrs()
	if out.StatusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", out.StatusCode))
	}

	if out.Err != nil {
		span.SetStatus(codes.Error, out.Err.Error())
		span.SetAttributes(attribute.String("inspire.error_kind", out.ErrKind))
		span.RecordError(out.Err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	opt := metric.WithAttributes(attrs...)
	r.totalCount.Add(ctx, 1, opt)
	if out.Err != nil {
		r.errorCount.Add(ctx, 1, metric.WithAttributes(
			append(attrs, attribute.String("inspire.error_kind", out.ErrKind))...,
		))
	}
	r.durationHist.Record(ctx, float64(out.Duration.Milliseconds()), opt)
}

func (r *requestRecorder) CacheLookup(ctx context.Context, req Request, hit bool) {
	opt := metric.WithAttributes(req.attrs()...)
	if hit {
		r.cacheHits.Add(ctx, 1, opt)
		return
	}
	r.cacheMisses.Add(ctx, 1, opt)
}

// NopRequestRecorder returns a RequestRecorder that records nothing.
func NopRequestRecorder() RequestRecorder {
	return &nopRequestRecorder{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

type nopRequestRecorder struct {
	noop trace.Tracer
}

func (n *nopRequestRecorder) Start(ctx context.Context, req Request) (context.Context, trace.Span) {
	return n.noop.Start(ctx, req.SpanName())
}

func (n *nopRequestRecorder) End(ctx context.Context, span trace.Span, req Request, out RequestOutcome) {
	span.End()
}

func (n *nopRequestRecorder) CacheLookup(ctx context.Context, req Request, hit bool) {}
