package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracer() (Tracer, *tracetest.SpanRecorder) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	return newTracer(tp.Tracer("test")), spans
}

func TestToolMeta(t *testing.T) {
	tests := []struct {
		meta     ToolMeta
		wantSpan string
		wantErr  error
	}{
		{ToolMeta{Name: "search_papers"}, "tool.call.search_papers", nil},
		{ToolMeta{Name: "get_bibtex", Principal: "alice"}, "tool.call.get_bibtex", nil},
		{ToolMeta{Principal: "alice"}, "tool.call.", ErrMissingToolName},
	}

	for _, tt := range tests {
		if got := tt.meta.SpanName(); got != tt.wantSpan {
			t.Errorf("SpanName() = %q, want %q", got, tt.wantSpan)
		}
		if err := tt.meta.Validate(); !errors.Is(err, tt.wantErr) {
			t.Errorf("Validate(%+v) = %v, want %v", tt.meta, err, tt.wantErr)
		}
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	tests := []struct {
		name          string
		meta          ToolMeta
		wantPrincipal bool
	}{
		{"anonymous", ToolMeta{Name: "search_papers"}, false},
		{"authenticated", ToolMeta{Name: "get_bibtex", Principal: "alice"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, spans := newTestTracer()
			_, span := tracer.StartSpan(context.Background(), tt.meta)
			tracer.EndSpan(span, nil, "")

			ended := spans.Ended()
			if len(ended) != 1 {
				t.Fatalf("ended spans = %d, want 1", len(ended))
			}
			s := ended[0]
			if s.Name() != tt.meta.SpanName() {
				t.Errorf("span name = %q, want %q", s.Name(), tt.meta.SpanName())
			}
			if s.SpanKind() != trace.SpanKindServer {
				t.Errorf("span kind = %v, want server", s.SpanKind())
			}
			if s.Status().Code != codes.Ok {
				t.Errorf("status = %v, want Ok", s.Status().Code)
			}
			assertAttr(t, s.Attributes(), "tool.name", attribute.StringValue(tt.meta.Name))

			hasPrincipal := false
			for _, kv := range s.Attributes() {
				if kv.Key == "enduser.id" {
					hasPrincipal = true
				}
			}
			if hasPrincipal != tt.wantPrincipal {
				t.Errorf("enduser.id present = %v, want %v", hasPrincipal, tt.wantPrincipal)
			}
			if tt.wantPrincipal {
				assertAttr(t, s.Attributes(), "enduser.id", attribute.StringValue(tt.meta.Principal))
			}
		})
	}
}

func TestTracer_ContextCarriesSpan(t *testing.T) {
	tracer, _ := newTestTracer()

	ctx, span := tracer.StartSpan(context.Background(), ToolMeta{Name: "get_paper_details"})
	defer tracer.EndSpan(span, nil, "")

	got := trace.SpanFromContext(ctx)
	if got.SpanContext().SpanID() != span.SpanContext().SpanID() {
		t.Error("returned context does not carry the started span")
	}
	if !got.SpanContext().IsValid() {
		t.Error("span context is not valid")
	}
}

func TestTracer_ErrorRecording(t *testing.T) {
	tests := []struct {
		name     string
		errKind  string
		wantKind bool
	}{
		{"classified", "rate_limited", true},
		{"unclassified", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, spans := newTestTracer()
			_, span := tracer.StartSpan(context.Background(), ToolMeta{Name: "search_papers"})
			tracer.EndSpan(span, errors.New("inspirehep: rate limited"), tt.errKind)

			s := spans.Ended()[0]
			if s.Status().Code != codes.Error {
				t.Errorf("status = %v, want Error", s.Status().Code)
			}
			if s.Status().Description != "inspirehep: rate limited" {
				t.Errorf("status description = %q", s.Status().Description)
			}
			if len(s.Events()) == 0 || s.Events()[0].Name != "exception" {
				t.Errorf("events = %v, want an exception event", s.Events())
			}

			found := false
			for _, kv := range s.Attributes() {
				if kv.Key == "error.kind" {
					found = true
				}
			}
			if found != tt.wantKind {
				t.Errorf("error.kind present = %v, want %v", found, tt.wantKind)
			}
			if tt.wantKind {
				assertAttr(t, s.Attributes(), "error.kind", attribute.StringValue(tt.errKind))
			}
		})
	}
}
