package advance

import "github.com/valerio/go-advance/advance/addr"

// Line timing in master clocks.
const (
	hdrawCycles  = 1008
	hblankCycles = 224
	visibleLines = 160
	totalLines   = 228
)

// DISPSTAT bits.
const (
	statVBlank   uint16 = 0x01
	statHBlank   uint16 = 0x02
	statVCount   uint16 = 0x04
	statVBlankIE uint16 = 0x08
	statHBlankIE uint16 = 0x10
	statVCountIE uint16 = 0x20
)

// runLCD advances the display state machine by one phase: draw, hblank,
// next line. It is called whenever lcdTicks runs out.
func (m *Machine) runLCD() {
	stat := m.reg(addr.DISPSTAT)
	vcount := m.reg(addr.VCOUNT)

	if stat&statVBlank != 0 {
		if stat&statHBlank != 0 {
			m.lcdTicks += hdrawCycles
			vcount++
			m.setReg(addr.VCOUNT, vcount)
			m.setReg(addr.DISPSTAT, stat&^statHBlank)
			m.compareVCount()
		} else {
			m.lcdTicks += hblankCycles
			m.setReg(addr.DISPSTAT, stat|statHBlank)
			if stat&statHBlankIE != 0 {
				m.raise(addr.HBlankInterrupt)
			}
		}
		if vcount >= totalLines {
			m.setReg(addr.DISPSTAT, m.reg(addr.DISPSTAT)&^(statVBlank|statHBlank))
			m.setReg(addr.VCOUNT, 0)
			m.compareVCount()
		}
		return
	}

	if stat&statHBlank != 0 {
		vcount++
		m.setReg(addr.VCOUNT, vcount)
		m.lcdTicks += hdrawCycles
		stat &^= statHBlank
		if vcount == visibleLines {
			m.latchKeys()
			stat |= statVBlank
			m.setReg(addr.DISPSTAT, stat)
			if stat&statVBlankIE != 0 {
				m.raise(addr.VBlankInterrupt)
			}
			m.checkDMA(dmaVBlank, dmaAllMask)
		}
		m.setReg(addr.DISPSTAT, stat)
		m.compareVCount()
		return
	}

	if m.cfg.render {
		line := m.renderer.RenderLine(int(vcount))
		m.frame.WriteLine(int(vcount), line, m.colors)
	}
	stat |= statHBlank
	m.setReg(addr.DISPSTAT, stat)
	m.lcdTicks += hblankCycles
	m.checkDMA(dmaHBlank, dmaAllMask)
	if stat&statHBlankIE != 0 {
		m.raise(addr.HBlankInterrupt)
	}
	if vcount == visibleLines-1 {
		m.frameReady = true
		m.breakLoop = true
	}
}

// compareVCount updates the VCOUNT match flag against the DISPSTAT
// setting.
func (m *Machine) compareVCount() {
	stat := m.reg(addr.DISPSTAT)
	if m.reg(addr.VCOUNT) == stat>>8 {
		stat |= statVCount
		m.setReg(addr.DISPSTAT, stat)
		if stat&statVCountIE != 0 {
			m.raise(addr.VCountInterrupt)
		}
	} else {
		m.setReg(addr.DISPSTAT, stat&^statVCount)
	}
}

// latchKeys publishes the host keys to KEYINPUT at the start of vblank and
// raises the keypad interrupt when KEYCNT asks for it. A stopped CPU is
// always checked so a key press can wake it.
func (m *Machine) latchKeys() {
	m.setReg(addr.KEYINPUT, 0x3FF^m.keys&0x3FF)

	keycnt := m.reg(addr.KEYCNT)
	if keycnt&0x4000 == 0 && !m.stopState {
		return
	}
	pressed := m.keys & 0x3FF
	selected := keycnt & 0x3FF
	if keycnt&0x8000 != 0 {
		if pressed&selected == selected {
			m.raise(addr.KeypadInterrupt)
		}
	} else if pressed&selected != 0 {
		m.raise(addr.KeypadInterrupt)
	}
}
