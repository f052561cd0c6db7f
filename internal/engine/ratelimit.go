package engine

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks the caller until the minimum spacing constraint between
// outbound requests is satisfied.
type Limiter interface {
	Wait(ctx context.Context) error
}

// APIMinInterval is the floor between successive Data API calls.
const APIMinInterval = 200 * time.Millisecond

// NewAPILimiter returns a limiter enforcing a fixed floor between calls.
func NewAPILimiter(minInterval time.Duration) Limiter {
	if minInterval <= 0 {
		minInterval = APIMinInterval
	}
	return &apiLimiter{rl: rate.NewLimiter(rate.Every(minInterval), 1)}
}

type apiLimiter struct {
	rl *rate.Limiter
}

func (l *apiLimiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}

// NewHumanLimiter returns a limiter that sleeps a uniformly random duration
// in [min, max] on every wait, approximating human pacing between simulated
// user actions. Randomized spacing is a behavioral requirement of the scrape
// path: fixed intervals are a detection signal.
func NewHumanLimiter(min, max time.Duration) Limiter {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &humanLimiter{min: min, max: max}
}

type humanLimiter struct {
	min, max time.Duration
}

func (l *humanLimiter) Wait(ctx context.Context) error {
	d := l.min
	if span := l.max - l.min; span > 0 {
		d += time.Duration(rand.Int63n(int64(span) + 1)) //nolint:gosec // non-cryptographic use
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
