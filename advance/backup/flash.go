// Package backup implements the cartridge save devices: battery SRAM,
// Flash, the serial EEPROM and the GPIO real-time clock.
package backup

import "github.com/valerio/go-advance/advance/savestate"

// Flash sizes.
const (
	Flash64K  = 0x10000
	Flash128K = 0x20000
)

type flashState uint8

const (
	flashReadArray flashState = iota
	flashCommand1
	flashCommand2
	flashAutoselect
	flashCommand3
	flashCommand4
	flashCommand5
	flashEraseComplete
	flashProgram
	flashSetBank
)

// Flash is a 64 or 128 KiB flash chip. Its storage doubles as the 64 KiB
// battery SRAM, so a cartridge that turns out to use SRAM reads and writes
// the same bytes.
//   - Commands are prefixed by the 0x5555=0xAA, 0x2AAA=0x55 unlock sequence
//   - 0x90 enters ID mode, 0xF0 leaves it
//   - 0x80 followed by another unlock and 0x10/0x30 erases the chip/a 4 KiB sector
//   - 0xA0 programs one byte
//   - 0xB0 selects the 64 KiB bank on 128 KiB parts
type Flash struct {
	memory    [Flash128K]uint8
	size      int
	state     flashState
	readState flashState
	bank      uint32

	manufacturerID uint8
	deviceID       uint8
}

// NewFlash returns an erased 64 KiB chip.
func NewFlash() *Flash {
	f := &Flash{}
	for i := range f.memory {
		f.memory[i] = 0xFF
	}
	f.SetSize(Flash64K)
	return f
}

// SetSize selects the chip, which also decides the ID bytes: Panasonic
// for 64 KiB and Sanyo for 128 KiB.
func (f *Flash) SetSize(size int) {
	if size == Flash128K {
		f.size = Flash128K
		f.manufacturerID = 0x62
		f.deviceID = 0x13
		return
	}
	f.size = Flash64K
	f.manufacturerID = 0x32
	f.deviceID = 0x1B
}

// Size returns the chip size in bytes.
func (f *Flash) Size() int {
	return f.size
}

// Bytes exposes the chip contents for battery files.
func (f *Flash) Bytes() []uint8 {
	return f.memory[:f.size]
}

// Reset returns the command state machine to array reads.
func (f *Flash) Reset() {
	f.state = flashReadArray
	f.readState = flashReadArray
	f.bank = 0
}

func (f *Flash) idle() {
	f.state = flashReadArray
	f.readState = flashReadArray
}

// Read returns the byte at address in the current read mode.
func (f *Flash) Read(address uint32) uint8 {
	address &= 0xFFFF
	switch f.readState {
	case flashReadArray:
		return f.memory[f.bank+address]
	case flashAutoselect:
		switch address & 0xFF {
		case 0:
			return f.manufacturerID
		case 1:
			return f.deviceID
		}
	case flashEraseComplete:
		f.idle()
		return 0xFF
	}
	return 0
}

// Write feeds one byte into the command state machine.
func (f *Flash) Write(address uint32, value uint8) {
	address &= 0xFFFF
	switch f.state {
	case flashReadArray:
		if address == 0x5555 && value == 0xAA {
			f.state = flashCommand1
		}
	case flashCommand1:
		if address == 0x2AAA && value == 0x55 {
			f.state = flashCommand2
		} else {
			f.state = flashReadArray
		}
	case flashCommand2:
		if address != 0x5555 {
			f.idle()
			return
		}
		switch {
		case value == 0x90:
			f.state = flashAutoselect
			f.readState = flashAutoselect
		case value == 0x80:
			f.state = flashCommand3
		case value == 0xA0:
			f.state = flashProgram
		case value == 0xB0 && f.size == Flash128K:
			f.state = flashSetBank
		default:
			f.idle()
		}
	case flashCommand3:
		if address == 0x5555 && value == 0xAA {
			f.state = flashCommand4
		} else {
			f.idle()
		}
	case flashCommand4:
		if address == 0x2AAA && value == 0x55 {
			f.state = flashCommand5
		} else {
			f.idle()
		}
	case flashCommand5:
		switch value {
		case 0x30:
			sector := f.bank + address&0xF000
			for i := sector; i < sector+0x1000; i++ {
				f.memory[i] = 0xFF
			}
			f.state = flashReadArray
			f.readState = flashEraseComplete
		case 0x10:
			for i := 0; i < f.size; i++ {
				f.memory[i] = 0xFF
			}
			f.state = flashReadArray
			f.readState = flashEraseComplete
		default:
			f.idle()
		}
	case flashAutoselect:
		if address == 0x5555 && value == 0xAA {
			f.state = flashCommand1
		} else {
			f.idle()
		}
	case flashProgram:
		f.memory[f.bank+address] = value
		f.state = f.readState
	case flashSetBank:
		if address == 0 {
			f.bank = uint32(value&1) << 16
		}
		f.state = f.readState
	}
}

// SRAMRead reads the storage as plain 64 KiB battery RAM.
func (f *Flash) SRAMRead(address uint32) uint8 {
	return f.memory[address&0xFFFF]
}

// SRAMWrite writes the storage as plain 64 KiB battery RAM.
func (f *Flash) SRAMWrite(address uint32, value uint8) {
	f.memory[address&0xFFFF] = value
}

// StateAction saves or restores the chip, contents included.
func (f *Flash) StateAction(s *savestate.Section) {
	state, readState := uint8(f.state), uint8(f.readState)
	s.Bytes(f.memory[:])
	s.Int(&f.size)
	s.Uint8(&state)
	s.Uint8(&readState)
	s.Uint32(&f.bank)
	if s.Loading() {
		f.state = flashState(state)
		f.readState = flashState(readState)
		f.SetSize(f.size)
	}
}
