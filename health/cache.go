package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/inspirehep-mcp/cache"
)

// CacheStatser exposes response cache statistics.
type CacheStatser interface {
	CacheStats() cache.Stats
}

// CacheChecker reports the response cache's fill ratio and hit rate.
type CacheChecker struct {
	src       CacheStatser
	threshold float64
}

// NewCacheChecker creates a CacheChecker that reports degraded once the
// cache is at least threshold full. A threshold outside (0, 1] selects 0.95.
func NewCacheChecker(src CacheStatser, threshold float64) *CacheChecker {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.95
	}
	return &CacheChecker{src: src, threshold: threshold}
}

// Name returns "cache".
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check reads a stats snapshot. It never reports unhealthy: a full cache
// still serves requests.
func (c *CacheChecker) Check(_ context.Context) Result {
	s := c.src.CacheStats()
	details := map[string]any{
		"size":      s.Size,
		"max_size":  s.MaxSize,
		"hits":      s.Hits,
		"misses":    s.Misses,
		"evictions": s.Evictions,
		"hit_ratio": s.HitRatio(),
	}

	fill := s.FillRatio()
	if s.MaxSize > 0 && fill >= c.threshold {
		return Degraded(fmt.Sprintf("cache near capacity: %d/%d entries", s.Size, s.MaxSize)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("cache holds %d/%d entries", s.Size, s.MaxSize)).WithDetails(details)
}
