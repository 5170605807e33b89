package advance

import (
	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/backup"
	"github.com/valerio/go-advance/advance/bios"
	"github.com/valerio/go-advance/advance/bit"
	"github.com/valerio/go-advance/advance/memory"
)

// objTilesAddress is the start of sprite tile VRAM, indexed by
// (mode+1)>>2: byte writes at or past it are dropped.
var objTilesAddress = [3]uint32{0x10000, 0x14000, 0x14000}

// bitmapMode reports whether DISPCNT selects one of the bitmap modes,
// where the frame buffers overlap the first sprite tile block.
func (m *Machine) bitmapMode() bool {
	return m.reg(addr.DISPCNT)&7 > 2
}

// vramOffset folds address into VRAM: the upper 32 KiB mirror the sprite
// block, except that in bitmap modes the first 16 KiB of the mirror do
// not respond at all.
func (m *Machine) vramOffset(address, mask uint32) (uint32, bool) {
	offset := address & mask
	if m.bitmapMode() && offset&0x1C000 == 0x18000 {
		return 0, false
	}
	if offset&0x18000 == 0x18000 {
		offset &= 0x17FFF
	}
	return offset, true
}

// biosLocked reports whether BIOS reads return the protection word: they
// do whenever the CPU runs outside the BIOS.
func (m *Machine) biosLocked() bool {
	return m.cpu.CurrentPC()>>24 != 0
}

// openBus is what unmapped reads return: the last DMA value while a DMA
// runs, otherwise the opcode the CPU is prefetching.
func (m *Machine) openBus() uint32 {
	if m.dmaHack {
		return m.dmaLast
	}
	pc := m.cpu.CurrentPC()
	if m.cpu.Thumb() {
		v := uint32(m.Fetch16(pc))
		return v | v<<16
	}
	return m.Fetch32(pc)
}

func (m *Machine) Read32(address uint32) uint32 {
	var value uint32

	switch address >> 24 {
	case addr.RegionBIOS:
		switch {
		case !m.biosLocked():
			value = memory.Read32(m.bios, address&0x3FFC)
		case address < bios.Size:
			value = m.biosProtected
		default:
			value = m.openBus()
		}
	case addr.RegionWRAM:
		value = memory.Read32(m.wram, address&0x3FFFC)
	case addr.RegionIWRAM:
		value = memory.Read32(m.iwram, address&0x7FFC)
	case addr.RegionIO:
		offset := address & 0x3FC
		switch {
		case address >= addr.IOBase+addr.IOWindowSize || !ioReadable[offset]:
			value = m.openBus()
		case ioReadable[offset+2]:
			value = uint32(m.readIO16(offset)) | uint32(m.readIO16(offset+2))<<16
		default:
			value = uint32(m.readIO16(offset))
		}
	case addr.RegionPalette:
		value = memory.Read32(m.palette, address&0x3FC)
	case addr.RegionVRAM:
		if offset, ok := m.vramOffset(address, 0x1FFFC); ok {
			value = memory.Read32(m.vram, offset)
		}
	case addr.RegionOAM:
		value = memory.Read32(m.oam, address&0x3FC)
	case 0x08, 0x09, 0x0A, 0x0B, 0x0C:
		value = memory.Read32(m.cart.ROM, address&0x1FFFFFC)
	case addr.RegionROM2Hi:
		if m.devices.EEPROM {
			return uint32(m.eeprom.Read())
		}
		value = memory.Read32(m.cart.ROM, address&0x1FFFFFC)
	case addr.RegionBackup:
		if v, ok := m.readBackup(address); ok {
			return uint32(v)
		}
		value = m.openBus()
	default:
		value = m.openBus()
	}

	return bit.ROR(value, uint(address&3)*8)
}

func (m *Machine) Read16(address uint32) uint32 {
	var value uint32

	switch address >> 24 {
	case addr.RegionBIOS:
		switch {
		case !m.biosLocked():
			value = uint32(memory.Read16(m.bios, address&0x3FFE))
		case address < bios.Size:
			value = m.biosProtected >> ((address & 2) * 8) & 0xFFFF
		default:
			value = m.openBus16(address)
		}
	case addr.RegionWRAM:
		value = uint32(memory.Read16(m.wram, address&0x3FFFE))
	case addr.RegionIWRAM:
		value = uint32(memory.Read16(m.iwram, address&0x7FFE))
	case addr.RegionIO:
		offset := address & 0x3FE
		if address < addr.IOBase+addr.IOWindowSize && ioReadable[offset] {
			value = uint32(m.readIO16(offset))
		} else {
			value = m.openBus16(address)
		}
	case addr.RegionPalette:
		value = uint32(memory.Read16(m.palette, address&0x3FE))
	case addr.RegionVRAM:
		if offset, ok := m.vramOffset(address, 0x1FFFE); ok {
			value = uint32(memory.Read16(m.vram, offset))
		}
	case addr.RegionOAM:
		value = uint32(memory.Read16(m.oam, address&0x3FE))
	case 0x08, 0x09, 0x0A, 0x0B, 0x0C:
		aligned := address &^ 1
		if m.rtc != nil && backup.Handles(aligned) {
			value = uint32(m.rtc.Read(aligned))
		} else {
			value = uint32(memory.Read16(m.cart.ROM, address&0x1FFFFFE))
		}
	case addr.RegionROM2Hi:
		if m.devices.EEPROM {
			return uint32(m.eeprom.Read())
		}
		value = uint32(memory.Read16(m.cart.ROM, address&0x1FFFFFE))
	case addr.RegionBackup:
		if v, ok := m.readBackup(address); ok {
			return uint32(v)
		}
		value = m.openBus16(address)
	default:
		value = m.openBus16(address)
	}

	if address&1 != 0 {
		value = value>>8 | value<<24
	}
	return value
}

func (m *Machine) openBus16(address uint32) uint32 {
	if m.dmaHack {
		return m.dmaLast & 0xFFFF
	}
	pc := m.cpu.CurrentPC()
	if m.cpu.Thumb() {
		return uint32(m.Fetch16(pc))
	}
	return uint32(m.Fetch16(pc + address&2))
}

func (m *Machine) Read8(address uint32) uint8 {
	switch address >> 24 {
	case addr.RegionBIOS:
		switch {
		case !m.biosLocked():
			return m.bios[address&0x3FFF]
		case address < bios.Size:
			return uint8(m.biosProtected >> ((address & 3) * 8))
		}
	case addr.RegionWRAM:
		return m.wram[address&0x3FFFF]
	case addr.RegionIWRAM:
		return m.iwram[address&0x7FFF]
	case addr.RegionIO:
		offset := address & 0x3FF
		if address < addr.IOBase+addr.IOWindowSize && ioReadable[offset] {
			return m.readIO8(offset)
		}
	case addr.RegionPalette:
		return m.palette[address&0x3FF]
	case addr.RegionVRAM:
		if offset, ok := m.vramOffset(address, 0x1FFFF); ok {
			return m.vram[offset]
		}
		return 0
	case addr.RegionOAM:
		return m.oam[address&0x3FF]
	case 0x08, 0x09, 0x0A, 0x0B, 0x0C:
		return m.cart.ROM[address&0x1FFFFFF]
	case addr.RegionROM2Hi:
		if m.devices.EEPROM {
			return uint8(m.eeprom.Read())
		}
		return m.cart.ROM[address&0x1FFFFFF]
	case addr.RegionBackup:
		if v, ok := m.readBackup(address); ok {
			return v
		}
	}

	if m.dmaHack {
		return uint8(m.dmaLast)
	}
	pc := m.cpu.CurrentPC()
	if m.cpu.Thumb() {
		return uint8(m.Fetch16(pc) >> ((address & 1) * 8))
	}
	return uint8(m.Fetch32(pc) >> ((address & 3) * 8))
}

func (m *Machine) readBackup(address uint32) (uint8, bool) {
	switch {
	case m.devices.Flash:
		return m.flash.Read(address), true
	case m.devices.SRAM:
		return m.flash.SRAMRead(address), true
	}
	return 0, false
}

func (m *Machine) Write32(address uint32, value uint32) {
	switch address >> 24 {
	case addr.RegionWRAM:
		memory.Write32(m.wram, address&0x3FFFC, value)
	case addr.RegionIWRAM:
		memory.Write32(m.iwram, address&0x7FFC, value)
	case addr.RegionIO:
		if address < addr.IOBase+addr.IOWindowSize {
			offset := address & 0x3FC
			m.updateRegister(offset, uint16(value))
			m.updateRegister(offset+2, uint16(value>>16))
		}
	case addr.RegionPalette:
		memory.Write32(m.palette, address&0x3FC, value)
	case addr.RegionVRAM:
		if offset, ok := m.vramOffset(address, 0x1FFFC); ok {
			memory.Write32(m.vram, offset, value)
		}
	case addr.RegionOAM:
		memory.Write32(m.oam, address&0x3FC, value)
	case addr.RegionROM2Hi:
		if m.devices.EEPROM {
			m.eeprom.Write(uint16(value), m.dmaCount)
		}
	case addr.RegionBackup:
		m.writeBackup(address, uint8(value))
	}
}

func (m *Machine) Write16(address uint32, value uint16) {
	switch address >> 24 {
	case addr.RegionWRAM:
		memory.Write16(m.wram, address&0x3FFFE, value)
	case addr.RegionIWRAM:
		memory.Write16(m.iwram, address&0x7FFE, value)
	case addr.RegionIO:
		if address < addr.IOBase+addr.IOWindowSize {
			m.updateRegister(address&0x3FE, value)
		}
	case addr.RegionPalette:
		memory.Write16(m.palette, address&0x3FE, value)
	case addr.RegionVRAM:
		if offset, ok := m.vramOffset(address, 0x1FFFE); ok {
			memory.Write16(m.vram, offset, value)
		}
	case addr.RegionOAM:
		memory.Write16(m.oam, address&0x3FE, value)
	case 0x08, 0x09:
		if m.rtc != nil && backup.Handles(address) {
			m.rtc.Write(address, value)
		}
	case addr.RegionROM2Hi:
		if m.devices.EEPROM {
			m.eeprom.Write(value, m.dmaCount)
		}
	case addr.RegionBackup:
		m.writeBackup(address, uint8(value))
	}
}

func (m *Machine) Write8(address uint32, value uint8) {
	switch address >> 24 {
	case addr.RegionWRAM:
		m.wram[address&0x3FFFF] = value
	case addr.RegionIWRAM:
		m.iwram[address&0x7FFF] = value
	case addr.RegionIO:
		if address < addr.IOBase+addr.IOWindowSize {
			m.writeIO8(address&0x3FF, value)
		}
	case addr.RegionPalette:
		memory.Write16(m.palette, address&0x3FE, uint16(value)<<8|uint16(value))
	case addr.RegionVRAM:
		offset, ok := m.vramOffset(address, 0x1FFFE)
		if !ok {
			return
		}
		mode := m.reg(addr.DISPCNT) & 7
		if offset < objTilesAddress[(mode+1)>>2] {
			memory.Write16(m.vram, offset, uint16(value)<<8|uint16(value))
		}
	case addr.RegionROM2Hi:
		if m.devices.EEPROM {
			m.eeprom.Write(uint16(value), m.dmaCount)
		}
	case addr.RegionBackup:
		m.writeBackup(address, value)
	}
}

// writeBackup routes a byte to flash or SRAM. While both are still
// enabled the first write decides: the flash unlock sequence keeps flash,
// anything else means SRAM.
func (m *Machine) writeBackup(address uint32, value uint8) {
	if m.devices.Flash && m.devices.SRAM {
		switch {
		case address&0xFFFF == 0x5555 && value == 0xAA:
			m.devices.SRAM = false
		case address&0xFFFF != 0x2AAA:
			m.devices.Flash = false
		}
	}

	switch {
	case m.devices.Flash:
		m.flash.Write(address, value)
	case m.devices.SRAM:
		m.flash.SRAMWrite(address, value)
	}
}

// Fetch32 reads an opcode straight from the backing memory, without the
// BIOS protection or I/O side effects of Read32.
func (m *Machine) Fetch32(address uint32) uint32 {
	switch address >> 24 {
	case addr.RegionBIOS:
		return memory.Read32(m.bios, address&0x3FFC)
	case addr.RegionWRAM:
		return memory.Read32(m.wram, address&0x3FFFC)
	case addr.RegionIWRAM:
		return memory.Read32(m.iwram, address&0x7FFC)
	case addr.RegionIO:
		return memory.Read32(m.io, address&0x3FC)
	case addr.RegionPalette:
		return memory.Read32(m.palette, address&0x3FC)
	case addr.RegionVRAM:
		return memory.Read32(m.vram, address&0x1FFFC)
	case addr.RegionOAM:
		return memory.Read32(m.oam, address&0x3FC)
	case 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D:
		return memory.Read32(m.cart.ROM, address&0x1FFFFFC)
	}
	return 0
}

// Fetch16 is the halfword form of Fetch32.
func (m *Machine) Fetch16(address uint32) uint16 {
	switch address >> 24 {
	case addr.RegionBIOS:
		return memory.Read16(m.bios, address&0x3FFE)
	case addr.RegionWRAM:
		return memory.Read16(m.wram, address&0x3FFFE)
	case addr.RegionIWRAM:
		return memory.Read16(m.iwram, address&0x7FFE)
	case addr.RegionIO:
		return memory.Read16(m.io, address&0x3FE)
	case addr.RegionPalette:
		return memory.Read16(m.palette, address&0x3FE)
	case addr.RegionVRAM:
		return memory.Read16(m.vram, address&0x1FFFE)
	case addr.RegionOAM:
		return memory.Read16(m.oam, address&0x3FE)
	case 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D:
		return memory.Read16(m.cart.ROM, address&0x1FFFFFE)
	}
	return 0
}
