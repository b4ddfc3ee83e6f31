package browser

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Range is a closed interval for randomized pauses.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// MillisRange builds a Range from millisecond bounds, swapping them when inverted.
func MillisRange(minMs, maxMs int) Range {
	if minMs > maxMs {
		minMs, maxMs = maxMs, minMs
	}
	return Range{Min: time.Duration(minMs) * time.Millisecond, Max: time.Duration(maxMs) * time.Millisecond}
}

// Pacer spaces out browser actions: a random pause per action plus a
// token bucket on navigations.
type Pacer struct {
	limiter *rate.Limiter

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPacer allows navigationsPerMinute page loads per minute. Zero or less disables the limit.
func NewPacer(navigationsPerMinute float64) *Pacer {
	p := &Pacer{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
	if navigationsPerMinute > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(navigationsPerMinute/60), 1)
	}
	return p
}

// Navigation blocks until the next page load is allowed.
func (p *Pacer) Navigation(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Pick returns a uniformly random duration in r.
func (p *Pacer) Pick(r Range) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return r.Min + time.Duration(p.rnd.Int63n(int64(r.Max-r.Min)+1))
}

// Pause waits a random duration in r, returning early when ctx is done.
func (p *Pacer) Pause(ctx context.Context, r Range) error {
	if p == nil {
		return ctx.Err()
	}
	d := p.Pick(r)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
