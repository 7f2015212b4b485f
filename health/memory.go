package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// MaxAlloc is the heap size considered 100% usage, in bytes.
	// Default: 512 MiB
	MaxAlloc uint64

	// WarningThreshold is the usage ratio that reports degraded.
	// Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the usage ratio that reports unhealthy.
	// Default: 0.95
	CriticalThreshold float64

	// ReadMemStats reads runtime statistics.
	// Default: runtime.ReadMemStats
	ReadMemStats func(*runtime.MemStats)
}

// MemoryChecker reports heap usage against a configured budget.
type MemoryChecker struct {
	config MemoryCheckerConfig
}

// NewMemoryChecker creates a new memory health checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.MaxAlloc == 0 {
		config.MaxAlloc = 512 << 20
	}
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= config.WarningThreshold || config.CriticalThreshold > 1 {
		config.CriticalThreshold = max(0.95, config.WarningThreshold)
	}
	if config.ReadMemStats == nil {
		config.ReadMemStats = runtime.ReadMemStats
	}
	return &MemoryChecker{config: config}
}

// Name returns "memory".
func (m *MemoryChecker) Name() string {
	return "memory"
}

// Check compares the live heap to MaxAlloc.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var stats runtime.MemStats
	m.config.ReadMemStats(&stats)

	ratio := float64(stats.HeapAlloc) / float64(m.config.MaxAlloc)
	details := map[string]any{
		"heap_alloc_bytes": stats.HeapAlloc,
		"max_alloc_bytes":  m.config.MaxAlloc,
		"usage_percent":    ratio * 100,
		"num_gc":           stats.NumGC,
		"goroutines":       runtime.NumGoroutine(),
	}

	switch {
	case ratio >= m.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("memory usage critical: %.1f%%", ratio*100), ErrCheckFailed).WithDetails(details)
	case ratio >= m.config.WarningThreshold:
		return Degraded(fmt.Sprintf("memory usage high: %.1f%%", ratio*100)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("memory usage normal: %.1f%%", ratio*100)).WithDetails(details)
	}
}
