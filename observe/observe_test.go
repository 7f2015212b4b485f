package observe

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonwraymond/inspirehep-mcp/observe/exporters"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "all enabled",
			cfg: Config{
				ServiceName: "inspirehep-mcp",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1},
				Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
				Logging:     LoggingConfig{Enabled: true, Level: "debug"},
			},
		},
		{
			name: "disabled subsystems skip their checks",
			cfg: Config{
				ServiceName: "inspirehep-mcp",
				Tracing:     TracingConfig{Exporter: "zipkin", SamplePct: 7},
				Metrics:     MetricsConfig{Exporter: "statsd"},
				Logging:     LoggingConfig{Level: "trace"},
			},
		},
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: ErrMissingServiceName,
		},
		{
			name: "unknown tracing exporter",
			cfg: Config{
				ServiceName: "inspirehep-mcp",
				Tracing:     TracingConfig{Enabled: true, Exporter: "zipkin"},
			},
			wantErr: ErrInvalidTracingExporter,
		},
		{
			name: "sample above one",
			cfg: Config{
				ServiceName: "inspirehep-mcp",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "negative sample",
			cfg: Config{
				ServiceName: "inspirehep-mcp",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: -0.1},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "NaN sample",
			cfg: Config{
				ServiceName: "inspirehep-mcp",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: math.NaN()},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "unknown metrics exporter",
			cfg: Config{
				ServiceName: "inspirehep-mcp",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
			},
			wantErr: ErrInvalidMetricsExporter,
		},
		{
			name: "unknown log level",
			cfg: Config{
				ServiceName: "inspirehep-mcp",
				Logging:     LoggingConfig{Enabled: true, Level: "trace"},
			},
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_DisabledIsNoop(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "inspirehep-mcp"})
	if err != nil {
		t.Fatal(err)
	}
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("disabled observer returned a nil primitive")
	}

	_, span := obs.Tracer().Start(context.Background(), "tool.call.ping")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracing produced a recording span")
	}
	span.End()

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{
		ServiceName: "inspirehep-mcp",
		Logging:     LoggingConfig{Enabled: true, Level: "loud"},
	})
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("err = %v, want ErrInvalidLogLevel", err)
	}
}

func TestNewObserver_UsesConfiguredSinks(t *testing.T) {
	var logs, exported bytes.Buffer
	reg := prometheus.NewRegistry()

	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "inspirehep-mcp",
		Version:     "0.1.0",
		Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
		Logging:     LoggingConfig{Enabled: true, Level: "info"},
		Export:      exporters.Options{Writer: &exported, Registerer: reg},
		LogWriter:   &logs,
	})
	if err != nil {
		t.Fatal(err)
	}

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatal(err)
	}
	wrapped := mw.Wrap(func(ctx context.Context, tool ToolMeta, in any) (any, error) {
		return nil, nil
	})
	if _, err := wrapped(context.Background(), ToolMeta{Name: "search_papers"}, nil); err != nil {
		t.Fatal(err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "tool_call_total") {
			found = true
		}
	}
	if !found {
		t.Error("prometheus registry has no tool_call_total family")
	}

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}

	if !strings.Contains(logs.String(), `"tool":"search_papers"`) {
		t.Errorf("log writer got %q", logs.String())
	}
	if !strings.Contains(exported.String(), "tool.call.search_papers") {
		t.Errorf("span exporter wrote %q", exported.String())
	}
}
