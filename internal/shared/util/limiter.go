package util

import (
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket for event batches, such as watch-mode rebuilds.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a limiter refilling r tokens per second with burst b.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Allow consumes n tokens if they are available now.
func (l *Limiter) Allow(n int) bool {
	return l.inner.AllowN(time.Now(), n)
}

// Delay is how long until one token is available, without consuming it.
func (l *Limiter) Delay() time.Duration {
	now := time.Now()
	r := l.inner.ReserveN(now, 1)
	if !r.OK() {
		return rate.InfDuration
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	return d
}
