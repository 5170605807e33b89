package advance

import (
	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/bios"
)

// raise sets interrupt flags in IF.
func (m *Machine) raise(i addr.Interrupt) {
	m.intFlags |= uint16(i)
	m.setReg(addr.IF, m.intFlags)
}

// IRQPending reports whether an enabled interrupt is requested with IME
// set.
func (m *Machine) IRQPending() bool {
	return m.intMaster&1 != 0 && m.intFlags&m.intEnable != 0
}

// ScheduleNow makes the scheduler handle events before the next
// instruction.
func (m *Machine) ScheduleNow() {
	m.nextEvent = m.totalTicks
}

// checkInterruptsNow schedules an immediate event pass when a register
// write made an interrupt deliverable.
func (m *Machine) checkInterruptsNow() {
	if m.IRQPending() && m.cpu.IRQEnabled() {
		m.ScheduleNow()
	}
}

// interrupt hands the IRQ to the CPU. The BIOS dispatcher then runs, so
// the protection word changes to the one left by its code.
func (m *Machine) interrupt() {
	m.cpu.Interrupt()
	m.biosProtected = bios.ProtectedAfterIRQ
}

// serviceInterrupts runs at each event boundary. An interrupt that becomes
// deliverable while the CPU runs is taken irqLatency cycles later; one that
// wakes a halted CPU is taken at once.
func (m *Machine) serviceInterrupts() {
	if m.intFlags == 0 || m.intMaster&1 == 0 || !m.cpu.IRQEnabled() {
		return
	}
	res := m.intFlags & m.intEnable
	if m.stopState {
		res &= addr.StopWakeMask
	}
	if res == 0 {
		return
	}

	switch {
	case m.intState:
		if m.irqTicks == 0 {
			m.interrupt()
			m.intState = false
			m.wake()
		}
	case !m.holdState:
		m.intState = true
		m.irqTicks = irqLatency
		m.nextEvent = min(m.nextEvent, m.irqTicks)
	default:
		m.interrupt()
		m.wake()
	}
	m.swiTicks = 0
}

func (m *Machine) wake() {
	m.holdState = false
	m.stopState = false
	m.holdType = 0
}
