package advance

import (
	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/memory"
	"github.com/valerio/go-advance/advance/savestate"
)

// DMA start timings, from bits 12-13 of CNT_H.
const (
	dmaImmediate = 0
	dmaVBlank    = 1
	dmaHBlank    = 2
	dmaSpecial   = 3
)

const (
	dmaEnable  uint16 = 0x8000
	dmaIRQ     uint16 = 0x4000
	dmaWord    uint16 = 0x0400
	dmaRepeat  uint16 = 0x0200
	dmaAllMask        = 0x0F
)

// dmaChannel holds the registers of one channel as written, plus the
// internal source and destination pointers latched when it is enabled.
type dmaChannel struct {
	sad     uint32
	dad     uint32
	count   uint16
	control uint16

	source uint32
	dest   uint32
}

func (c *dmaChannel) stateAction(s *savestate.Section) {
	s.Uint32(&c.sad)
	s.Uint32(&c.dad)
	s.Uint16(&c.count)
	s.Uint16(&c.control)
	s.Uint32(&c.source)
	s.Uint32(&c.dest)
}

// wordCount returns the number of units to move, where 0 means the
// channel maximum.
func (c *dmaChannel) wordCount(ch int) int {
	if c.count != 0 {
		return int(c.count)
	}
	if ch == 3 {
		return 0x10000
	}
	return 0x4000
}

// increment decodes a 2-bit address control field into a byte step for
// word transfers.
func increment(mode uint16) uint32 {
	switch mode {
	case 1:
		return ^uint32(3) // -4
	case 2:
		return 0
	}
	return 4
}

// writeDMARegister handles writes to the 12-byte register block of each
// channel. Only CNT_H reads back.
func (m *Machine) writeDMARegister(offset uint32, value uint16) {
	ch := int((offset - addr.DMA0SAD) / addr.DMAStride)
	c := &m.dma[ch]

	switch (offset - addr.DMA0SAD) % addr.DMAStride {
	case 0:
		c.sad = c.sad&0xFFFF0000 | uint32(value)
	case 2:
		mask := uint16(0x0FFF)
		if ch == 0 {
			mask = 0x07FF
		}
		c.sad = c.sad&0xFFFF | uint32(value&mask)<<16
	case 4:
		c.dad = c.dad&0xFFFF0000 | uint32(value)
	case 6:
		mask := uint16(0x07FF)
		if ch == 3 {
			mask = 0x0FFF
		}
		c.dad = c.dad&0xFFFF | uint32(value&mask)<<16
	case 8:
		if ch != 3 {
			value &= 0x3FFF
		}
		c.count = value
	case 10:
		mask := uint16(0xF7E0)
		if ch == 3 {
			mask = 0xFFE0
		}
		start := (c.control^value)&dmaEnable != 0
		c.control = value & mask
		m.setReg(offset, c.control)
		if start && c.control&dmaEnable != 0 {
			c.source = c.sad
			c.dest = c.dad
			m.checkDMA(dmaImmediate, 1<<ch)
		}
		return
	}
	m.setReg(offset, 0)
}

// checkDMA runs every enabled channel in mask whose start timing matches
// reason.
func (m *Machine) checkDMA(reason int, mask int) {
	for ch := 0; ch < 4; ch++ {
		c := &m.dma[ch]
		if c.control&dmaEnable == 0 || mask&(1<<ch) == 0 {
			continue
		}
		if int(c.control>>12)&3 != reason {
			continue
		}

		srcInc := increment((c.control >> 7) & 3)
		destMode := (c.control >> 5) & 3
		destInc := increment(destMode)

		if reason == dmaSpecial && (ch == 1 || ch == 2) {
			// sound FIFO refill: always four words to a fixed address
			m.doDMA(&c.source, &c.dest, srcInc, 0, 4, true)
		} else {
			m.doDMA(&c.source, &c.dest, srcInc, destInc, c.wordCount(ch), c.control&dmaWord != 0)
		}
		if ch != 3 {
			m.dmaHack = true
		}

		if c.control&dmaIRQ != 0 {
			m.raise(addr.DMA0Interrupt << ch)
			m.ScheduleNow()
		}
		if destMode == 3 {
			c.dest = c.dad
		}
		if c.control&dmaRepeat == 0 || reason == dmaImmediate {
			c.control &^= dmaEnable
			m.setReg(addr.DMA0CNT_H+uint32(ch)*addr.DMAStride, c.control)
		}
	}
}

// doDMA moves count units from *s to *d and charges the bus time to the
// scheduler. Sources in the BIOS region read as zero unless the CPU is
// running the BIOS.
func (m *Machine) doDMA(s, d *uint32, si, di uint32, count int, word bool) {
	sm := memory.Region(*s)
	dm := memory.Region(*d)
	t := m.timing

	m.dmaCount = count
	fromBIOS := *s < addr.WRAMBase && m.biosLocked()

	if word {
		*s &^= 3
		for i := 0; i < count; i++ {
			if fromBIOS {
				m.Write32(*d, 0)
			} else {
				m.dmaLast = m.Read32(*s)
				m.Write32(*d, m.dmaLast)
			}
			*d += di
			if !fromBIOS {
				*s += si
			}
		}
	} else {
		*s &^= 1
		si = uint32(int32(si) >> 1)
		di = uint32(int32(di) >> 1)
		for i := 0; i < count; i++ {
			if fromBIOS {
				m.Write16(*d, 0)
			} else {
				v := m.Read16(*s) & 0xFFFF
				m.Write16(*d, uint16(v))
				m.dmaLast = v | v<<16
			}
			*d += di
			if !fromBIOS {
				*s += si
			}
		}
	}
	m.dmaCount = 0

	var ticks int
	if word {
		sw := 1 + t.WaitSeq32[sm]
		dw := 1 + t.WaitSeq32[dm]
		ticks = (sw+dw)*(count-1) + 6 + t.Wait32[sm] + t.WaitSeq32[dm]
	} else {
		sw := 1 + t.WaitSeq[sm]
		dw := 1 + t.WaitSeq[dm]
		ticks = (sw+dw)*(count-1) + 6 + t.Wait[sm] + t.WaitSeq[dm]
	}
	m.dmaTicks += ticks
}

// requestFIFO is called by the APU when FIFO A (0) or B (1) runs low.
func (m *Machine) requestFIFO(fifo int) {
	m.checkDMA(dmaSpecial, 2<<fifo)
}
