package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %q is not JSON: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := LogLevel(42).String(); got != "info" {
		t.Errorf("LogLevel(42).String() = %q, want info", got)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"debug", []string{"debug", "info", "warn", "error"}},
		{"info", []string{"info", "warn", "error"}},
		{"warn", []string{"warn", "error"}},
		{"error", []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(tt.level, &buf)
			ctx := context.Background()
			logger.Debug(ctx, "upstream request")
			logger.Info(ctx, "server started")
			logger.Warn(ctx, "upstream request failed")
			logger.Error(ctx, "serve failed")

			entries := decodeLines(t, &buf)
			if len(entries) != len(tt.want) {
				t.Fatalf("lines = %d, want %d", len(entries), len(tt.want))
			}
			for i, e := range entries {
				if e["level"] != tt.want[i] {
					t.Errorf("line %d level = %v, want %s", i, e["level"], tt.want[i])
				}
			}
		})
	}
}

func TestLogger_LineShape(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).(*jsonLogger)
	logger.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600)) }

	logger.Info(context.Background(), "cache hit", Field{Key: "cache_key", Value: "GET:/literature"})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("lines = %d, want 1", len(entries))
	}
	e := entries[0]
	if e["msg"] != "cache hit" || e["cache_key"] != "GET:/literature" {
		t.Errorf("entry = %v", e)
	}
	if e["timestamp"] != "2026-03-01T11:00:00Z" {
		t.Errorf("timestamp = %v, want UTC", e["timestamp"])
	}
}

func TestLogger_WithTool(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.WithTool(ToolMeta{Name: "search_papers"}).Info(context.Background(), "anonymous")
	logger.WithTool(ToolMeta{Name: "get_bibtex", Principal: "alice"}).Info(context.Background(), "authenticated")
	logger.Info(context.Background(), "parent")

	entries := decodeLines(t, &buf)
	if len(entries) != 3 {
		t.Fatalf("lines = %d, want 3", len(entries))
	}
	if entries[0]["tool"] != "search_papers" {
		t.Errorf("tool = %v", entries[0]["tool"])
	}
	if _, ok := entries[0]["principal"]; ok {
		t.Error("anonymous call logged a principal")
	}
	if entries[1]["tool"] != "get_bibtex" || entries[1]["principal"] != "alice" {
		t.Errorf("entry = %v", entries[1])
	}
	if _, ok := entries[2]["tool"]; ok {
		t.Error("WithTool leaked attributes into the parent logger")
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "tool call",
		Field{Key: "arguments", Value: map[string]any{"query": "t higgs"}},
		Field{Key: "api_key", Value: "k-live-123"},
		Field{Key: "authorization", Value: "Bearer eyJhbGciOi"},
		Field{Key: "path", Value: "/literature"},
	)

	out := buf.String()
	for _, leaked := range []string{"t higgs", "k-live-123", "eyJhbGciOi"} {
		if strings.Contains(out, leaked) {
			t.Errorf("output leaks %q: %s", leaked, out)
		}
	}
	e := decodeLines(t, &buf)[0]
	if e["api_key"] != "[REDACTED]" || e["path"] != "/literature" {
		t.Errorf("entry = %v", e)
	}
}

func TestLogger_ConcurrentWritesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	const writers = 20
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.WithTool(ToolMeta{Name: "get_references"}).Info(context.Background(), "tool call completed",
				Field{Key: "n", Value: i})
		}()
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != writers {
		t.Errorf("lines = %d, want %d", got, writers)
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info(context.Background(), "ignored")
	if l.WithTool(ToolMeta{Name: "ping"}) == nil {
		t.Error("WithTool() returned nil")
	}
}
