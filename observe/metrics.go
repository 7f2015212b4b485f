package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records tool call counters and latencies.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one finished call. errKind is empty on success.
	RecordCall(ctx context.Context, meta ToolMeta, duration time.Duration, errKind string)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"tool.call.total",
		metric.WithDescription("Total number of tool calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"tool.call.errors",
		metric.WithDescription("Tool calls that failed, by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"tool.call.duration_ms",
		metric.WithDescription("Tool call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordCall counts the call and records its duration. Principals are never
// recorded as attributes.
func (m *metricsImpl) RecordCall(ctx context.Context, meta ToolMeta, duration time.Duration, errKind string) {
	opt := metric.WithAttributes(attribute.String("tool.name", meta.Name))

	m.totalCount.Add(ctx, 1, opt)
	if errKind != "" {
		m.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool.name", meta.Name),
			attribute.String("error.kind", errKind),
		))
	}
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}
