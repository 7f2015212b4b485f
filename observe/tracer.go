package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ToolMeta identifies one tool call for telemetry.
type ToolMeta struct {
	Name      string // registered tool name, e.g. search_papers
	Principal string // authenticated caller; empty on stdio
}

// SpanName returns the span name for the call: tool.call.<name>.
func (m ToolMeta) SpanName() string {
	return "tool.call." + m.Name
}

// Validate reports whether the metadata is usable for telemetry.
func (m ToolMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingToolName
	}
	return nil
}

// Tracer opens and closes tool call spans.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one tool call.
	StartSpan(ctx context.Context, meta ToolMeta) (context.Context, trace.Span)

	// EndSpan ends the span. A non-nil err marks the span failed and
	// errKind, when set, is recorded as error.kind.
	EndSpan(span trace.Span, err error, errKind string)
}

type tracerImpl struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta ToolMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("tool.name", meta.Name),
	}
	if meta.Principal != "" {
		attrs = append(attrs, attribute.String("enduser.id", meta.Principal))
	}
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error, errKind string) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errKind != "" {
			span.SetAttributes(attribute.String("error.kind", errKind))
		}
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
