package timing

import "time"

// Limiter paces emulation to the console frame rate.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due. It returns
	// immediately when emulation is running behind.
	WaitForNextFrame()

	// Reset forgets the schedule, e.g. after a pause.
	Reset()
}

// NewNoOpLimiter returns a limiter that never waits, for headless runs.
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// A frame is 228 lines of 1232 cycles on the 16.78 MHz system clock.
const (
	CyclesPerFrame = 280896
	CPUFrequency   = 16777216
)

// TargetFPS is the exact refresh rate, about 59.7275 Hz.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// New returns the limiter named by kind: "adaptive", "ticker" or "none".
// Unknown names get the adaptive limiter.
func New(kind string) Limiter {
	switch kind {
	case "none", "off":
		return NewNoOpLimiter()
	case "ticker":
		return NewTickerLimiter()
	}
	return NewAdaptiveLimiter()
}
