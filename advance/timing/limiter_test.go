package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every reading and by d on every sleep.
type fakeClock struct {
	t     time.Time
	step  time.Duration
	slept []time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func (c *fakeClock) sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
}

func TestFrameRate(t *testing.T) {
	assert.InDelta(t, 59.7275, TargetFPS(), 0.0001)
	assert.InDelta(t, float64(16742706*time.Nanosecond), float64(FrameDuration()), float64(time.Microsecond))
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind string
		want Limiter
	}{
		{"none", noOpLimiter{}},
		{"off", noOpLimiter{}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.kind))
		})
	}

	assert.IsType(t, &AdaptiveLimiter{}, New("adaptive"))
	assert.IsType(t, &AdaptiveLimiter{}, New(""))
	ticker := New("ticker")
	require.IsType(t, &TickerLimiter{}, ticker)
	ticker.(*TickerLimiter).Stop()
}

func TestAdaptiveLimiterSleepsUntilDeadline(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: 100 * time.Microsecond}
	a := newAdaptiveLimiter(10*time.Millisecond, clock.now, clock.sleep)

	a.WaitForNextFrame()
	assert.Empty(t, clock.slept, "first frame is due immediately")

	a.WaitForNextFrame()
	require.Len(t, clock.slept, 1)
	assert.InDelta(t, float64(9*time.Millisecond), float64(clock.slept[0]), float64(500*time.Microsecond))
	assert.False(t, clock.t.Before(a.next.Add(-a.period)), "spins until the deadline")
}

func TestAdaptiveLimiterRestartsWhenBehind(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: 100 * time.Microsecond}
	a := newAdaptiveLimiter(10*time.Millisecond, clock.now, clock.sleep)

	a.WaitForNextFrame()
	clock.t = clock.t.Add(50 * time.Millisecond)

	a.WaitForNextFrame()
	assert.Empty(t, clock.slept, "no wait when late")

	// the schedule restarted from now, so the next frame waits a full
	// period instead of running several frames back to back
	a.WaitForNextFrame()
	require.Len(t, clock.slept, 1)
	assert.Greater(t, clock.slept[0], 8*time.Millisecond)
}

func TestAdaptiveLimiterReset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: 100 * time.Microsecond}
	a := newAdaptiveLimiter(10*time.Millisecond, clock.now, clock.sleep)

	a.WaitForNextFrame()
	a.WaitForNextFrame()
	assert.Equal(t, int64(2), a.frames)

	a.Reset()
	assert.Zero(t, a.frames)
	assert.Equal(t, clock.t, a.next)
}
