package resolver

import (
	"context"
	"sync"
	"time"
)

// limiter enforces a minimum interval between consecutive calls to one
// provider. It is a per-provider rate limiter rather than a global sleep, so
// independent providers proceed in parallel.
type limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func newLimiter(interval time.Duration) *limiter {
	return &limiter{interval: interval, last: time.Unix(0, 0)}
}

// wait blocks until the provider may be called again, honoring cancellation.
func (l *limiter) wait(ctx context.Context) error {
	if l.interval <= 0 {
		return nil
	}
	for {
		l.mu.Lock()
		now := time.Now()
		remaining := l.interval - now.Sub(l.last)
		if remaining <= 0 {
			l.last = now
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(remaining):
		}
	}
}
