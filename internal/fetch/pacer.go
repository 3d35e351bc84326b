package fetch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces consecutive exchange calls to respect the upstream rate
// limit. Pace blocks until the next call may be issued or the context is
// done. Implementations are used from a single goroutine; the orchestrator
// never fetches concurrently.
type Pacer interface {
	Pace(ctx context.Context) error
}

// FixedDelayPacer enforces a minimum delay between consecutive calls. The
// first call is never delayed, and idle time between requests counts toward
// the delay, so a fresh fetch after a pause starts immediately.
type FixedDelayPacer struct {
	delay    time.Duration
	lastCall time.Time
}

// NewFixedDelayPacer creates a pacer with the given inter-call delay.
func NewFixedDelayPacer(delay time.Duration) *FixedDelayPacer {
	return &FixedDelayPacer{delay: delay}
}

// Pace implements Pacer.
func (p *FixedDelayPacer) Pace(ctx context.Context) error {
	if !p.lastCall.IsZero() {
		if wait := p.delay - time.Since(p.lastCall); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	p.lastCall = time.Now()
	return nil
}

// LimiterPacer paces calls with a token bucket.
type LimiterPacer struct {
	limiter *rate.Limiter
}

// NewLimiterPacer creates a token-bucket pacer allowing requestsPerSecond
// sustained calls with the given burst.
func NewLimiterPacer(requestsPerSecond float64, burst int) *LimiterPacer {
	return &LimiterPacer{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Pace implements Pacer.
func (p *LimiterPacer) Pace(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// NopPacer never delays. For tests.
type NopPacer struct{}

// Pace implements Pacer.
func (NopPacer) Pace(ctx context.Context) error {
	return ctx.Err()
}
