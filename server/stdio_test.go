package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writer goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}

func TestServeStdio_RepliesPerLine(t *testing.T) {
	s := New(newTestRegistry(t))
	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		``,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"ping"}}`,
	}, "\n"))
	out := &syncBuffer{}

	if err := s.ServeStdio(context.Background(), in, out, StdioOptions{Concurrency: 2}); err != nil {
		t.Fatalf("ServeStdio() error = %v", err)
	}

	got := out.lines()
	if len(got) != 3 {
		t.Fatalf("replies = %d, want 3:\n%s", len(got), strings.Join(got, "\n"))
	}
	seen := map[string]bool{}
	for _, line := range got {
		var resp Response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("reply %q: %v", line, err)
		}
		if resp.Error != nil {
			t.Errorf("reply %s has error %v", resp.ID, resp.Error)
		}
		seen[string(resp.ID)] = true
	}
	for _, id := range []string{"1", "2", "3"} {
		if !seen[id] {
			t.Errorf("no reply for id %s", id)
		}
	}
	if !s.Initialized() {
		t.Error("Initialized() = false")
	}
}

func TestServeStdio_ParseErrorKeepsServing(t *testing.T) {
	s := New(newTestRegistry(t))
	in := strings.NewReader("not json\n" + `{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n")
	out := &syncBuffer{}

	if err := s.ServeStdio(context.Background(), in, out, StdioOptions{Concurrency: 1}); err != nil {
		t.Fatal(err)
	}
	got := out.lines()
	if len(got) != 2 {
		t.Fatalf("replies = %v", got)
	}
	if !strings.Contains(got[0], `"code":-32700`) {
		t.Errorf("first reply = %s", got[0])
	}
	if !strings.Contains(got[1], `"id":7`) {
		t.Errorf("second reply = %s", got[1])
	}
}

func TestServeStdio_ContextCancel(t *testing.T) {
	s := New(newTestRegistry(t))
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeStdio(ctx, pr, io.Discard) }()

	if _, err := pw.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ServeStdio() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ServeStdio did not return after cancel")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stdin closed badly") }

func TestServeStdio_ReadError(t *testing.T) {
	s := New(newTestRegistry(t))
	err := s.ServeStdio(context.Background(), failingReader{}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "stdin closed badly") {
		t.Errorf("ServeStdio() error = %v", err)
	}
}
