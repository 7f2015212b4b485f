package observe

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("newMetrics() error = %v", err)
	}
	return m, reader
}

func TestMetrics_RecordCall(t *testing.T) {
	tests := []struct {
		name       string
		errKinds   []string
		wantTotal  int64
		wantErrors int64
	}{
		{"success", []string{""}, 1, 0},
		{"failure", []string{"not_found"}, 1, 1},
		{"mixed", []string{"", "rate_limited", "", "api_error"}, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reader := newTestMetrics(t)
			meta := ToolMeta{Name: "search_papers"}
			for _, kind := range tt.errKinds {
				m.RecordCall(context.Background(), meta, 5*time.Millisecond, kind)
			}

			rm := collect(t, reader)
			if got := sumOf(t, rm, "tool.call.total"); got != tt.wantTotal {
				t.Errorf("tool.call.total = %d, want %d", got, tt.wantTotal)
			}
			if got := sumOf(t, rm, "tool.call.errors"); got != tt.wantErrors {
				t.Errorf("tool.call.errors = %d, want %d", got, tt.wantErrors)
			}
		})
	}
}

func TestMetrics_DurationInMilliseconds(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordCall(context.Background(), ToolMeta{Name: "get_bibtex"}, 1500*time.Microsecond, "")

	found := findMetric(collect(t, reader), "tool.call.duration_ms")
	if found == nil {
		t.Fatal("tool.call.duration_ms not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("data points = %d, want 1", len(hist.DataPoints))
	}
	dp := hist.DataPoints[0]
	if dp.Count != 1 || dp.Sum != 1.5 {
		t.Errorf("count = %d sum = %v, want 1 and 1.5", dp.Count, dp.Sum)
	}
}

func TestMetrics_Attributes(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := ToolMeta{Name: "get_citations", Principal: "alice"}
	m.RecordCall(context.Background(), meta, time.Millisecond, "not_found")

	rm := collect(t, reader)

	total := findMetric(rm, "tool.call.total").Data.(metricdata.Sum[int64])
	attrs := total.DataPoints[0].Attributes
	if v, ok := attrs.Value("tool.name"); !ok || v.AsString() != "get_citations" {
		t.Errorf("tool.name = %v, want get_citations", v.Emit())
	}
	if _, ok := attrs.Value("enduser.id"); ok {
		t.Error("principal must not be a metric attribute")
	}

	errs := findMetric(rm, "tool.call.errors").Data.(metricdata.Sum[int64])
	if v, _ := errs.DataPoints[0].Attributes.Value(attribute.Key("error.kind")); v.AsString() != "not_found" {
		t.Errorf("error.kind = %q, want not_found", v.AsString())
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)
	tools := []string{"search_papers", "get_bibtex", "get_references"}

	const perTool = 50
	var wg sync.WaitGroup
	for _, name := range tools {
		for range perTool {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.RecordCall(context.Background(), ToolMeta{Name: name}, time.Millisecond, "")
			}()
		}
	}
	wg.Wait()

	want := int64(len(tools) * perTool)
	if got := sumOf(t, collect(t, reader), "tool.call.total"); got != want {
		t.Errorf("tool.call.total = %d, want %d", got, want)
	}
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
