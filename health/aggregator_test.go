package health

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func fixed(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestAggregator_CheckAll(t *testing.T) {
	tests := []struct {
		name     string
		checkers []Checker
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Checker{fixed("a", Healthy("")), fixed("b", Healthy(""))}, StatusHealthy},
		{"one degraded", []Checker{fixed("a", Healthy("")), fixed("b", Degraded(""))}, StatusDegraded},
		{"unhealthy wins", []Checker{fixed("a", Degraded("")), fixed("b", Unhealthy("", nil))}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			for _, c := range tt.checkers {
				agg.Register(c)
			}
			results := agg.CheckAll(context.Background())
			if len(results) != len(tt.checkers) {
				t.Fatalf("len(results) = %d", len(results))
			}
			if got := OverallStatus(results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register(NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(time.Second)
		return Healthy("late")
	}))
	agg.Register(fixed("fast", Healthy("ok")))

	results := agg.CheckAll(context.Background())
	slow := results["slow"]
	if slow.Status != StatusUnhealthy || !errors.Is(slow.Error, ErrCheckTimeout) {
		t.Errorf("slow = %+v", slow)
	}
	if results["fast"].Status != StatusHealthy {
		t.Errorf("fast = %+v", results["fast"])
	}
}

func TestAggregator_Concurrency(t *testing.T) {
	var running, peak atomic.Int32
	agg := NewAggregator(AggregatorConfig{Concurrency: 1})
	for _, name := range []string{"a", "b", "c"} {
		agg.Register(NewCheckerFunc(name, func(context.Context) Result {
			n := running.Add(1)
			defer running.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return Healthy("")
		}))
	}
	agg.CheckAll(context.Background())
	if peak.Load() != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
}

func TestAggregator_RegisterAndCheck(t *testing.T) {
	agg := NewAggregator()
	agg.Register(fixed("upstream", Healthy("v1")))
	agg.Register(fixed("cache", Healthy("")))
	agg.Register(fixed("upstream", Degraded("v2")))

	if got := agg.CheckerNames(); !slices.Equal(got, []string{"upstream", "cache"}) {
		t.Errorf("CheckerNames() = %v", got)
	}
	r, err := agg.Check(context.Background(), "upstream")
	if err != nil || r.Message != "v2" {
		t.Errorf("Check(upstream) = %+v, %v", r, err)
	}
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check(missing) error = %v", err)
	}
}
