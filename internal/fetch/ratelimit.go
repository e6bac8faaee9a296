package fetch

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound fetches
type RateLimiter struct {
	limiter *rate.Limiter
	enabled bool
}

// NewRateLimiter creates a limiter for rps requests per second; rps <= 0
// disables pacing
func NewRateLimiter(rps float64) *RateLimiter {
	if rps <= 0 {
		return &RateLimiter{enabled: false}
	}

	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		enabled: true,
	}
}

// Wait blocks until a fetch may start or ctx is done
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil || !r.enabled {
		return ctx.Err()
	}
	return r.limiter.Wait(ctx)
}

// Enabled reports whether pacing is active
func (r *RateLimiter) Enabled() bool {
	return r != nil && r.enabled
}
