package fred

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a Throttle deterministically: sleeping advances the
// clock instead of blocking.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func (c *fakeClock) install(t *Throttle) {
	t.now = func() time.Time { return c.current }
	t.sleep = func(_ context.Context, d time.Duration) error {
		c.slept = append(c.slept, d)
		c.current = c.current.Add(d)
		return nil
	}
}

func TestThrottleWaitSpacing(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	throttle := NewThrottle(time.Second)
	clock.install(throttle)

	ctx := context.Background()

	// First call proceeds immediately.
	require.NoError(t, throttle.Wait(ctx))
	assert.Empty(t, clock.slept)

	// An immediate second call must wait the full interval.
	require.NoError(t, throttle.Wait(ctx))
	require.Len(t, clock.slept, 1)
	assert.Equal(t, time.Second, clock.slept[0])

	// After part of the interval has elapsed, only the remainder is slept.
	clock.current = clock.current.Add(300 * time.Millisecond)
	require.NoError(t, throttle.Wait(ctx))
	require.Len(t, clock.slept, 2)
	assert.Equal(t, 700*time.Millisecond, clock.slept[1])
}

func TestThrottleWaitAfterIdlePeriod(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	throttle := NewThrottle(time.Second)
	clock.install(throttle)

	require.NoError(t, throttle.Wait(context.Background()))
	clock.current = clock.current.Add(5 * time.Second)
	require.NoError(t, throttle.Wait(context.Background()))
	assert.Empty(t, clock.slept, "no wait once the interval has already elapsed")
}

func TestThrottleWaitCancellation(t *testing.T) {
	throttle := NewThrottle(time.Hour)
	throttle.now = time.Now

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, throttle.Wait(ctx))

	cancel()
	err := throttle.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
