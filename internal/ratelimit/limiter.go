// Package ratelimit paces outbound requests against exchange limits.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps a token-bucket limiter sized to an exchange's request quota,
// expressed as requests per period.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter allowing the given number of requests per period.
func New(requests int, period time.Duration) *Limiter {
	rps := float64(requests) / period.Seconds()
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), requests),
	}
}

// Wait blocks until a request slot is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed immediately.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// SetLimit replaces the quota, typically after the exchange publishes new
// limits in response headers. The burst size keeps its original value.
func (l *Limiter) SetLimit(requests int, period time.Duration) {
	l.limiter.SetLimit(rate.Limit(float64(requests) / period.Seconds()))
}

// Burst returns the configured burst size.
func (l *Limiter) Burst() int {
	return l.limiter.Burst()
}
