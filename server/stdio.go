package server

import (
	"bufio"
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/inspirehep-mcp/observe"
)

// MaxMessageSize bounds a single newline-delimited stdio message.
const MaxMessageSize = 8 << 20

// DefaultStdioConcurrency is how many stdio messages are handled at once.
const DefaultStdioConcurrency = 8

// StdioOptions tunes ServeStdio.
type StdioOptions struct {
	// Concurrency caps in-flight messages.
	// Default: DefaultStdioConcurrency
	Concurrency int
}

// ServeStdio reads newline-delimited JSON-RPC messages from r and writes
// each reply as one line to w. Replies may be written out of order.
//
// It returns nil at EOF once in-flight messages are answered, or ctx.Err()
// when ctx is cancelled first.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer, opts ...StdioOptions) error {
	concurrency := DefaultStdioConcurrency
	if len(opts) > 0 && opts[0].Concurrency > 0 {
		concurrency = opts[0].Concurrency
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64<<10), MaxMessageSize)
		for sc.Scan() {
			if len(sc.Bytes()) == 0 {
				continue
			}
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	var mu sync.Mutex
	write := func(reply []byte) {
		mu.Lock()
		defer mu.Unlock()
		if _, err := w.Write(append(reply, '\n')); err != nil {
			s.logger.Error(ctx, "stdio write failed", observe.Field{Key: "error", Value: err.Error()})
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				_ = g.Wait()
				select {
				case err := <-readErr:
					return err
				default:
					return ctx.Err()
				}
			}
			g.Go(func() error {
				if reply := s.HandleMessage(ctx, line); reply != nil {
					write(reply)
				}
				return nil
			})
		}
	}
}
