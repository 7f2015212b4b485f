package cache

import "errors"

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Store is the cache contract consumed by the request engine.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Get and Set must not block on I/O.
// - Get never errors; it returns (nil, false) on miss or expiry.
type Store interface {
	// Get returns the live value stored under key.
	Get(key string) (any, bool)

	// Set inserts or overwrites key using the store's TTL.
	Set(key string, value any)

	// Stats returns a point-in-time snapshot of the store's counters.
	Stats() Stats
}

// Stats is a read-only diagnostic snapshot of cache activity.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Size      int    `json:"size"`
	MaxSize   int    `json:"max_size"`
	Evictions uint64 `json:"evictions"`
}

// HitRatio returns hits / (hits + misses), or 0 when nothing was read.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// FillRatio returns size / max size.
func (s Stats) FillRatio() float64 {
	if s.MaxSize <= 0 {
		return 0
	}
	return float64(s.Size) / float64(s.MaxSize)
}
