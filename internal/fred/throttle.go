package fred

import (
	"context"
	"sync"
	"time"
)

// Throttle spaces requests to the provider by a minimum interval. It is a
// single shared resource: every call reserves its slot under the lock before
// sleeping, so concurrent and retried calls stay correctly spaced.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewThrottle creates a throttle enforcing the given minimum inter-request
// interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait blocks until the minimum interval since the previous mark has
// elapsed, advancing the mark before returning. The wait is cancellable
// through ctx.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := t.now()
	wait := t.interval - now.Sub(t.last)
	if wait > 0 {
		t.last = now.Add(wait)
	} else {
		wait = 0
		t.last = now
	}
	t.mu.Unlock()

	if wait > 0 {
		return t.sleep(ctx, wait)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
