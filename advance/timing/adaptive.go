package timing

import (
	"log/slog"
	"time"
)

const (
	// spinThreshold is how close to the deadline sleeping stops and
	// spinning starts.
	spinThreshold = time.Millisecond
	// maxLag is how far behind the schedule may fall before it is
	// restarted from now instead of caught up.
	maxLag = 5 * time.Millisecond
	// reportEvery frames the limiter logs its measured rate.
	reportEvery = 300
)

// AdaptiveLimiter sleeps until just before each deadline and spins the
// rest. Deadlines advance by a fixed period, so rounding errors in
// individual sleeps do not accumulate.
type AdaptiveLimiter struct {
	period time.Duration
	next   time.Time

	frames     int64
	reportFrom time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return newAdaptiveLimiter(FrameDuration(), time.Now, time.Sleep)
}

func newAdaptiveLimiter(period time.Duration, now func() time.Time, sleep func(time.Duration)) *AdaptiveLimiter {
	a := &AdaptiveLimiter{
		period: period,
		now:    now,
		sleep:  sleep,
	}
	a.Reset()
	return a
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := a.now()
	wait := a.next.Sub(now)

	switch {
	case wait > spinThreshold:
		a.sleep(wait - spinThreshold)
		a.spin()
	case wait > 0:
		a.spin()
	case wait < -maxLag:
		slog.Debug("Frame limiter fell behind", "lag_ms", (-wait).Milliseconds())
		a.next = now
	}

	a.next = a.next.Add(a.period)
	a.frames++

	if a.frames%reportEvery == 0 {
		elapsed := a.now().Sub(a.reportFrom)
		if elapsed > 0 {
			slog.Debug("Frame rate", "fps", float64(reportEvery)*float64(time.Second)/float64(elapsed))
		}
		a.reportFrom = a.now()
	}
}

func (a *AdaptiveLimiter) spin() {
	for a.now().Before(a.next) {
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.next = a.now()
	a.reportFrom = a.next
	a.frames = 0
}
