package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces requests to a single API.
// The zero value and a nil *Limiter never block.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a limiter allowing requestsPerSecond requests with the given burst.
// A non-positive rate means unlimited.
func New(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	if requestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, burst)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until the limiter permits a request.
// It returns an error if the context is canceled before the request can proceed.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Unlimited reports whether the limiter never blocks.
func (l *Limiter) Unlimited() bool {
	return l == nil || l.limiter == nil || l.limiter.Limit() == rate.Inf
}
