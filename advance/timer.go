package advance

import (
	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/savestate"
)

// prescalerShift converts master clocks to timer ticks for each of the
// four prescaler settings (1, 64, 256, 1024).
var prescalerShift = [4]int{0, 6, 8, 10}

const (
	timerCascade uint16 = 0x04
	timerIRQ     uint16 = 0x40
	timerStart   uint16 = 0x80
)

type timer struct {
	counter uint16
	reload  uint16
	control uint16
	on      bool

	// ticks counts master clocks down to the next overflow.
	ticks int
	shift int

	// Control writes take effect at the next event boundary.
	pending      bool
	pendingValue uint16
}

func (t *timer) stateAction(s *savestate.Section) {
	s.Uint16(&t.counter)
	s.Uint16(&t.reload)
	s.Uint16(&t.control)
	s.Bool(&t.on)
	s.Int(&t.ticks)
	s.Int(&t.shift)
	s.Bool(&t.pending)
	s.Uint16(&t.pendingValue)
}

func (t *timer) cascade() bool {
	return t.control&timerCascade != 0
}

func (m *Machine) writeTimerControl(n int, value uint16) {
	t := &m.timers[n]
	t.pending = true
	t.pendingValue = value
	m.ScheduleNow()
}

// applyTimers commits control writes made since the last event.
func (m *Machine) applyTimers() {
	applied := false
	for n := range m.timers {
		t := &m.timers[n]
		if !t.pending {
			continue
		}
		v := t.pendingValue
		t.shift = prescalerShift[v&3]
		if !t.on && v&timerStart != 0 {
			t.counter = t.reload
			t.ticks = (0x10000 - int(t.counter)) << t.shift
			m.setReg(addr.TM0CNT_L+uint32(n)*4, t.counter)
		}
		t.on = v&timerStart != 0
		t.control = v & 0xC7
		m.setReg(addr.TM0CNT_H+uint32(n)*4, t.control)
		t.pending = false
		applied = true
	}
	if applied {
		m.nextEvent = m.updateTicks()
	}
}

// runTimers advances the four timers by clockTicks master clocks.
func (m *Machine) runTimers(clockTicks int) {
	overflowed := [5]bool{}
	for n := range m.timers {
		t := &m.timers[n]
		if !t.on {
			continue
		}

		if n > 0 && t.cascade() {
			if !overflowed[n] {
				continue
			}
			t.counter++
			if t.counter == 0 {
				t.counter += t.reload
				m.timerOverflow(n, overflowed[:])
			}
		} else {
			t.ticks -= clockTicks
			if t.ticks <= 0 {
				t.ticks += (0x10000 - int(t.reload)) << t.shift
				m.timerOverflow(n, overflowed[:])
			}
			t.counter = uint16(0xFFFF - t.ticks>>t.shift)
		}
		m.setReg(addr.TM0CNT_L+uint32(n)*4, t.counter)
	}
}

// timerOverflow marks timer n as having overflowed for the cascade chain,
// clocks the sound FIFOs from timers 0 and 1, and raises the interrupt.
// overflowed[n+1] is what timer n+1 checks.
func (m *Machine) timerOverflow(n int, overflowed []bool) {
	overflowed[n+1] = true
	if n < 2 {
		m.sound.TimerOverflow(m.soundTime(), n)
	}
	if m.timers[n].control&timerIRQ != 0 {
		m.raise(addr.Timer0Interrupt << n)
	}
}
