package fetch

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer sleeps between requests for a base delay plus uniform jitter.
type Pacer struct {
	// Sleep blocks for d or until ctx is done. Defaults to SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
	// Rand returns a value in [0,1). Defaults to math/rand/v2.Float64.
	Rand func() float64
}

// NewPacer returns a Pacer that really sleeps.
func NewPacer() *Pacer {
	return &Pacer{
		Sleep: SleepContext,
		Rand:  rand.Float64,
	}
}

// Delay returns base plus a uniform jitter in [0, jitter).
func (p *Pacer) Delay(base, jitter time.Duration) time.Duration {
	r := rand.Float64
	if p.Rand != nil {
		r = p.Rand
	}
	return base + time.Duration(r()*float64(jitter))
}

// Wait sleeps for Delay(base, jitter).
func (p *Pacer) Wait(ctx context.Context, base, jitter time.Duration) error {
	return p.Pause(ctx, p.Delay(base, jitter))
}

// Pause sleeps for exactly d.
func (p *Pacer) Pause(ctx context.Context, d time.Duration) error {
	sleep := SleepContext
	if p.Sleep != nil {
		sleep = p.Sleep
	}
	return sleep(ctx, d)
}

// SleepContext blocks for d, returning early with ctx.Err() if ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
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
