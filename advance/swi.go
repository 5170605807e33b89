package advance

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-advance/advance/bios"
)

// SoftwareInterrupt handles a swi. With a real BIOS the CPU always takes
// the exception. Otherwise most calls run natively and charge their cost
// through swiTicks; the wait calls go through the built-in BIOS code so
// that they halt and return like the real ones.
func (m *Machine) SoftwareInterrupt(number uint32) {
	if number == bios.NoCash {
		return
	}
	if m.useBIOS {
		m.cpu.SoftwareTrap()
		return
	}

	switch number {
	case bios.SoftReset:
		m.softReset()
	case bios.RegisterRamReset:
		m.registerRAMReset(m.cpu.Reg(0))
	case bios.Halt:
		m.hold(false)
	case bios.Stop:
		m.hold(true)
	case bios.IntrWait, bios.VBlankIntrWait:
		m.cpu.SoftwareTrap()
	default:
		ticks, ok := bios.Call(number, m.cpu, m, m.timing)
		m.swiTicks = ticks
		if !ok && !m.warnedSWI[number] {
			m.warnedSWI[number] = true
			slog.Warn("unsupported BIOS call",
				"number", fmt.Sprintf("0x%02X", number),
				"name", bios.Name(number),
				"pc", fmt.Sprintf("0x%08X", m.cpu.NextPC()))
		}
	}
}

// hold stops the CPU until an interrupt arrives. A stop additionally only
// wakes for keypad, serial and cartridge interrupts.
func (m *Machine) hold(stop bool) {
	m.holdState = true
	m.holdType = -1
	if stop {
		m.stopState = true
	}
	m.ScheduleNow()
}
