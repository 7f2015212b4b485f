package observe_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonwraymond/inspirehep-mcp/observe"
)

func ExampleNewObserver() {
	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "inspirehep-mcp",
		Version:     "0.1.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer func() { _ = obs.Shutdown(ctx) }()

	fmt.Println("observer ready")
	// Output:
	// observer ready
}

func ExampleConfig_Validate() {
	cfg := observe.Config{
		ServiceName: "inspirehep-mcp",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 2},
	}
	fmt.Println(errors.Is(cfg.Validate(), observe.ErrInvalidSamplePct))
	// Output:
	// true
}

func ExampleToolMeta_SpanName() {
	meta := observe.ToolMeta{Name: "get_citations", Principal: "alice"}
	fmt.Println(meta.SpanName())
	// Output:
	// tool.call.get_citations
}

func ExampleLogger_WithTool() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	logger.WithTool(observe.ToolMeta{Name: "get_bibtex", Principal: "alice"}).
		Info(context.Background(), "tool call completed",
			observe.Field{Key: "duration_ms", Value: 12},
			observe.Field{Key: "api_key", Value: "k-123"},
		)

	var entry map[string]any
	_ = json.Unmarshal(buf.Bytes(), &entry)
	fmt.Println(entry["tool"], entry["principal"], entry["duration_ms"], entry["api_key"])
	// Output:
	// get_bibtex alice 12 [REDACTED]
}

func ExampleMiddleware_Wrap() {
	ctx := context.Background()
	obs, _ := observe.NewObserver(ctx, observe.Config{ServiceName: "inspirehep-mcp"})
	mw, _ := observe.MiddlewareFromObserver(obs, observe.WithErrorClassifier(func(err error) string {
		return "not_found"
	}))

	wrapped := mw.Wrap(func(ctx context.Context, tool observe.ToolMeta, input any) (any, error) {
		if tool.Name == "get_paper_details" {
			return nil, errors.New("paper not found")
		}
		return map[string]int{"total": 3}, nil
	})

	result, err := wrapped(ctx, observe.ToolMeta{Name: "search_papers"}, nil)
	fmt.Println(result, err)
	_, err = wrapped(ctx, observe.ToolMeta{Name: "get_paper_details"}, nil)
	fmt.Println(err)
	// Output:
	// map[total:3] <nil>
	// paper not found
}
