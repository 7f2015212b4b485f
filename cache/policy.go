package cache

import "time"

// Default policy values.
const (
	DefaultTTL     = 24 * time.Hour
	DefaultMaxSize = 512
)

// Policy configures lifetime and capacity of a TTLCache.
type Policy struct {
	// TTL is how long an entry stays readable after it was last set.
	// Zero or negative TTL makes every entry read as expired.
	TTL time.Duration

	// MaxSize bounds the number of entries. Values <= 0 use DefaultMaxSize.
	MaxSize int
}

// DefaultPolicy returns the default caching policy.
// TTL: 24 hours, MaxSize: 512
func DefaultPolicy() Policy {
	return Policy{
		TTL:     DefaultTTL,
		MaxSize: DefaultMaxSize,
	}
}

// Enabled reports whether entries can ever be read back.
func (p Policy) Enabled() bool {
	return p.TTL > 0
}

func (p Policy) withDefaults() Policy {
	if p.MaxSize <= 0 {
		p.MaxSize = DefaultMaxSize
	}
	return p
}
