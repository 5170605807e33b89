package advance

import (
	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/memory"
)

// ioReadable marks the register bytes that return their value; reads of
// the rest see open bus.
var ioReadable [addr.IOWindowSize]bool

func init() {
	for i := range ioReadable {
		ioReadable[i] = true
	}
	unreadable := [][2]int{
		{0x10, 0x47}, {0x4C, 0x4F}, {0x54, 0x5F}, {0x8C, 0x8F},
		{0xA0, 0xB7}, {0xBC, 0xC3}, {0xC8, 0xCF}, {0xD4, 0xDB},
		{0xE0, 0xFF}, {0x110, 0x11F}, {0x12C, 0x12F}, {0x138, 0x13F},
		{0x144, 0x14F}, {0x15C, 0x1FF}, {0x20C, 0x2FF}, {0x304, 0x3FF},
	}
	for _, r := range unreadable {
		for i := r[0]; i <= r[1]; i++ {
			ioReadable[i] = false
		}
	}
}

// isSoundRegister reports whether offset belongs to the sound block the
// APU answers reads for.
func isSoundRegister(offset uint32) bool {
	return offset >= addr.SOUND1CNT_L && offset < addr.FIFO_A
}

// reg reads the raw register halfword at offset.
func (m *Machine) reg(offset uint32) uint16 {
	return memory.Read16(m.io, offset)
}

// setReg stores a register value where reads and the renderer see it.
func (m *Machine) setReg(offset uint32, value uint16) {
	memory.Write16(m.io, offset, value)
}

// IORegister returns the raw value of the register at offset, as the
// debugger shows it.
func (m *Machine) IORegister(offset uint32) uint16 {
	return m.reg(offset & 0x3FE)
}

func (m *Machine) readIO16(offset uint32) uint16 {
	if isSoundRegister(offset) {
		return uint16(m.sound.ReadRegister(offset)) | uint16(m.sound.ReadRegister(offset+1))<<8
	}
	return m.reg(offset)
}

func (m *Machine) readIO8(offset uint32) uint8 {
	if isSoundRegister(offset) {
		return m.sound.ReadRegister(offset)
	}
	return m.io[offset]
}

// soundTime is the master-clock timestamp handed to the APU.
func (m *Machine) soundTime() int {
	return m.soundTS + m.totalTicks
}

// isSoundByteRegister reports whether a byte write at offset goes to the
// APU on its own instead of being merged into a halfword.
func isSoundByteRegister(offset uint32) bool {
	switch {
	case offset >= 0x60 && offset <= 0x65,
		offset == 0x68, offset == 0x69,
		offset == 0x6C, offset == 0x6D,
		offset >= 0x70 && offset <= 0x75,
		offset == 0x78, offset == 0x79,
		offset == 0x7C, offset == 0x7D,
		offset == 0x80, offset == 0x81,
		offset == 0x84, offset == 0x85,
		offset >= 0x90 && offset <= 0x9F:
		return true
	}
	return false
}

// writeIO8 handles a byte write into the register window. Most registers
// only exist as halfwords, so the byte is merged with the other half.
func (m *Machine) writeIO8(offset uint32, value uint8) {
	switch {
	case offset == addr.HALTCNT:
		if value == 0x80 {
			m.stopState = true
		}
		m.holdState = true
		m.holdType = -1
		m.ScheduleNow()
	case isSoundByteRegister(offset):
		m.io[offset] = value
		m.sound.WriteRegister(m.soundTime(), offset, value)
	default:
		aligned := offset &^ 1
		current := m.reg(aligned)
		if offset&1 != 0 {
			m.updateRegister(aligned, current&0x00FF|uint16(value)<<8)
		} else {
			m.updateRegister(aligned, current&0xFF00|uint16(value))
		}
	}
}

// updateRegister is the single entry point for halfword register writes.
func (m *Machine) updateRegister(offset uint32, value uint16) {
	switch offset {
	case addr.DISPCNT:
		m.writeDisplayControl(value)
	case addr.DISPSTAT:
		m.setReg(addr.DISPSTAT, value&0xFF38|m.reg(addr.DISPSTAT)&7)
	case addr.VCOUNT:
		// read only
	case addr.BG0CNT, addr.BG1CNT:
		m.setReg(offset, value&0xDFCF)
	case addr.BG2CNT, addr.BG3CNT:
		m.setReg(offset, value&0xFFCF)
	case addr.BG0HOFS, addr.BG0VOFS, addr.BG1HOFS, addr.BG1VOFS,
		addr.BG2HOFS, addr.BG2VOFS, addr.BG3HOFS, addr.BG3VOFS:
		m.setReg(offset, value&511)
	case addr.BG2X_L, addr.BG3X_L:
		m.setReg(offset, value)
		m.renderer.AffineChanged(affineBG(offset), 1)
	case addr.BG2X_H, addr.BG3X_H:
		m.setReg(offset, value&0xFFF)
		m.renderer.AffineChanged(affineBG(offset), 1)
	case addr.BG2Y_L, addr.BG3Y_L:
		m.setReg(offset, value)
		m.renderer.AffineChanged(affineBG(offset), 2)
	case addr.BG2Y_H, addr.BG3Y_H:
		m.setReg(offset, value&0xFFF)
		m.renderer.AffineChanged(affineBG(offset), 2)
	case addr.WIN0H:
		m.setReg(offset, value)
		m.renderer.UpdateWindow(0, value)
	case addr.WIN1H:
		m.setReg(offset, value)
		m.renderer.UpdateWindow(1, value)
	case addr.WININ, addr.WINOUT:
		m.setReg(offset, value&0x3F3F)
	case addr.BLDCNT:
		m.setReg(offset, value&0x3FFF)
		m.renderer.Select()
	case addr.BLDALPHA:
		m.setReg(offset, value&0x1F1F)
	case addr.BLDY:
		m.setReg(offset, value&0x1F)

	case addr.SOUND1CNT_L, addr.SOUND1CNT_H, addr.SOUND1CNT_X,
		addr.SOUND2CNT_L, addr.SOUND2CNT_H,
		addr.SOUND3CNT_L, addr.SOUND3CNT_H, addr.SOUND3CNT_X,
		addr.SOUND4CNT_L, addr.SOUND4CNT_H,
		addr.SOUNDCNT_L, addr.SOUNDCNT_X:
		m.setReg(offset, value)
		ts := m.soundTime()
		m.sound.WriteRegister(ts, offset, uint8(value))
		m.sound.WriteRegister(ts, offset+1, uint8(value>>8))
	case addr.SOUNDCNT_H, addr.SOUNDBIAS,
		addr.FIFO_A, addr.FIFO_A + 2, addr.FIFO_B, addr.FIFO_B + 2,
		0x90, 0x92, 0x94, 0x96, 0x98, 0x9A, 0x9C, 0x9E:
		m.setReg(offset, value)
		m.sound.WriteRegister16(m.soundTime(), offset, value)

	case 0xB0, 0xB2, 0xB4, 0xB6, 0xB8, 0xBA,
		0xBC, 0xBE, 0xC0, 0xC2, 0xC4, 0xC6,
		0xC8, 0xCA, 0xCC, 0xCE, 0xD0, 0xD2,
		0xD4, 0xD6, 0xD8, 0xDA, 0xDC, 0xDE:
		m.writeDMARegister(offset, value)

	case addr.TM0CNT_L, addr.TM1CNT_L, addr.TM2CNT_L, addr.TM3CNT_L:
		m.timers[(offset-addr.TM0CNT_L)/4].reload = value
	case addr.TM0CNT_H, addr.TM1CNT_H, addr.TM2CNT_H, addr.TM3CNT_H:
		m.writeTimerControl(int(offset-addr.TM0CNT_H)/4, value)

	case addr.SIOCNT:
		if value&0x80 != 0 {
			value &= 0xFF7F
			if value&1 != 0 && value&0x4000 != 0 {
				m.setReg(addr.SIODATA, 0xFF)
				m.raise(addr.SerialInterrupt)
				value &= 0x7F7F
			}
		}
		m.setReg(offset, value)
	case addr.KEYINPUT:
		m.setReg(offset, m.reg(offset)|value&0x3FF)
	case addr.KEYCNT:
		m.setReg(offset, value&0xC3FF)

	case addr.IE:
		m.intEnable = value & 0x3FFF
		m.setReg(offset, m.intEnable)
		m.checkInterruptsNow()
	case addr.IF:
		m.intFlags ^= value & m.intFlags
		m.setReg(offset, m.intFlags)
	case addr.WAITCNT:
		m.timing.SetWaitControl(value)
		m.setReg(offset, value&0x7FFF)
	case addr.IME:
		m.intMaster = value & 1
		m.setReg(offset, m.intMaster)
		m.checkInterruptsNow()
	case addr.POSTFLG:
		if value != 0 {
			value &= 0xFFFE
		}
		m.setReg(offset, value)

	default:
		m.setReg(offset&0x3FE, value)
	}
}

// affineBG maps a reference point register to its background.
func affineBG(offset uint32) int {
	if offset >= addr.BG3PA {
		return 3
	}
	return 2
}

func (m *Machine) writeDisplayControl(value uint16) {
	old := m.reg(addr.DISPCNT)
	if value&7 > 5 {
		old = value & 7
	}
	forcedBlankChanged := (old^value)&0x80 != 0
	m.setReg(addr.DISPCNT, value&0xFFF7)
	m.renderer.SetDisplayControl(old, value)

	if forcedBlankChanged && value&0x80 == 0 {
		stat := m.reg(addr.DISPSTAT)
		if stat&1 == 0 {
			m.lcdTicks = 1008
			m.setReg(addr.DISPSTAT, stat&0xFFFC)
			m.compareVCount()
		}
	}
}
