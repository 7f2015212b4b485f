package resilience

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultRequestsPerSecond is the pacing rate used when PacerConfig.Rate is unset.
const DefaultRequestsPerSecond = 1.5

// PacerConfig configures a Pacer.
type PacerConfig struct {
	// Rate is the number of operation starts allowed per second.
	// Default: 1.5
	Rate float64

	// Clock is the time source.
	// Default: wall clock
	Clock clock.Clock
}

// Pacer enforces a minimum interval between the starts of consecutive
// operations. Unlike RateLimiter it never accumulates burst credit: after an
// idle period exactly one caller proceeds immediately.
//
// Callers queue on a single mutex, so starts are totally ordered.
type Pacer struct {
	interval time.Duration
	clock    clock.Clock

	mu   sync.Mutex
	last time.Time
}

// NewPacer creates a new pacer. A rate that is not a positive finite number,
// or whose interval does not fit in a time.Duration, selects the default.
func NewPacer(config PacerConfig) *Pacer {
	if r := config.Rate; r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) || float64(time.Second)/r > math.MaxInt64 {
		config.Rate = DefaultRequestsPerSecond
	}
	if config.Clock == nil {
		config.Clock = clock.New()
	}

	return &Pacer{
		interval: time.Duration(float64(time.Second) / config.Rate),
		clock:    config.Clock,
	}
}

// Wait blocks until at least one interval has passed since the previous
// start, then records the current time as the new start.
//
// The only error is the context's, when it is done before the slot opens.
// The previous start time is left unchanged in that case.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if !p.last.IsZero() {
		elapsed := p.clock.Since(p.last)
		if elapsed < p.interval {
			timer := p.clock.Timer(p.interval - elapsed)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	p.last = p.clock.Now()
	return nil
}

// Interval returns the minimum spacing between starts.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Last returns the start time of the most recent paced operation, or the
// zero time if none has run.
func (p *Pacer) Last() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
