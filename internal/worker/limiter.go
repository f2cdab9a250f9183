package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles calls to the verification service across all
// workers. A single shared limiter replaces the fixed inter-call sleep
// a naive client would use.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing requestsPerSecond with the
// given burst. Zero or negative requestsPerSecond disables throttling.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until a request may proceed or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow checks if a request is allowed without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
