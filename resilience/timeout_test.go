package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout_Default(t *testing.T) {
	if got := NewTimeout(TimeoutConfig{}).config.Timeout; got != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", got)
	}
}

func TestTimeout_Execute(t *testing.T) {
	errUpstream := errors.New("upstream failed")

	tests := []struct {
		name    string
		timeout time.Duration
		op      func(ctx context.Context) error
		wantErr error
	}{
		{
			name:    "finishes in time",
			timeout: time.Second,
			op:      func(ctx context.Context) error { return nil },
		},
		{
			name:    "operation error passes through",
			timeout: time.Second,
			op:      func(ctx context.Context) error { return errUpstream },
			wantErr: errUpstream,
		},
		{
			name:    "slow operation that ignores its context",
			timeout: 10 * time.Millisecond,
			op: func(ctx context.Context) error {
				time.Sleep(200 * time.Millisecond)
				return nil
			},
			wantErr: ErrTimeout,
		},
		{
			name:    "operation observes the timeout cause",
			timeout: 10 * time.Millisecond,
			op: func(ctx context.Context) error {
				<-ctx.Done()
				return context.Cause(ctx)
			},
			wantErr: ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			err := NewTimeout(TimeoutConfig{Timeout: tt.timeout}).Execute(context.Background(), tt.op)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() = %v, want %v", err, tt.wantErr)
			}
			if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
				t.Errorf("Execute() took %v; it must not wait for a stuck operation", elapsed)
			}
		})
	}
}

func TestTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	err := NewTimeout(TimeoutConfig{Timeout: time.Second}).Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("a cancelled caller must not be reported as a timeout")
	}
}
