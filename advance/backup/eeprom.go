package backup

import "github.com/valerio/go-advance/advance/savestate"

// EEPROM sizes.
const (
	EEPROM512 = 0x200
	EEPROM8K  = 0x2000
)

type eepromMode uint8

const (
	eepromIdle eepromMode = iota
	eepromReadAddress
	eepromReadData
	eepromReadData2
	eepromWriteData
)

// EEPROM is the serial EEPROM driven one bit per 16-bit access, normally
// by DMA. The address width (6 bits for 512 bytes, 14 for 8 KiB) is not
// configured but inferred from the length of the DMA transfer that sends
// the request.
type EEPROM struct {
	data    [EEPROM8K]uint8
	size    int
	inUse   bool
	mode    eepromMode
	byteIdx int
	bits    int
	address int
	buffer  [16]uint8
}

// NewEEPROM returns an erased 512 byte EEPROM.
func NewEEPROM() *EEPROM {
	e := &EEPROM{size: EEPROM512}
	for i := range e.data {
		e.data[i] = 0xFF
	}
	return e
}

// Size is the detected EEPROM size in bytes.
func (e *EEPROM) Size() int {
	return e.size
}

// InUse reports whether the game has talked to the EEPROM.
func (e *EEPROM) InUse() bool {
	return e.inUse
}

// Bytes exposes the contents for battery files.
func (e *EEPROM) Bytes() []uint8 {
	return e.data[:e.size]
}

// Load replaces the contents from a battery file, sizing the chip by the
// length of data.
func (e *EEPROM) Load(data []uint8) {
	if len(data) > EEPROM512 {
		e.size = EEPROM8K
	} else {
		e.size = EEPROM512
	}
	copy(e.data[:], data)
}

// Reset aborts any request in flight.
func (e *EEPROM) Reset() {
	e.mode = eepromIdle
	e.byteIdx = 0
	e.bits = 0
}

// Read returns the next serial bit.
func (e *EEPROM) Read() uint16 {
	switch e.mode {
	case eepromReadData:
		// four dummy bits precede the data
		e.bits++
		if e.bits == 4 {
			e.mode = eepromReadData2
			e.bits = 0
			e.byteIdx = 0
		}
		return 0
	case eepromReadData2:
		mask := uint8(1) << (7 - e.bits&7)
		var data uint16
		if e.data[e.address<<3+e.byteIdx]&mask != 0 {
			data = 1
		}
		e.bits++
		if e.bits&7 == 0 {
			e.byteIdx++
		}
		if e.bits == 0x40 {
			e.mode = eepromIdle
		}
		return data
	}
	return 1
}

// Write shifts in bit 0 of value. dmaCount is the transfer length of the
// DMA in progress; writes outside DMA are ignored.
func (e *EEPROM) Write(value uint16, dmaCount int) {
	if dmaCount == 0 {
		return
	}
	bit := uint8(value & 1)

	switch e.mode {
	case eepromIdle:
		e.byteIdx = 0
		e.bits = 1
		e.buffer[0] = bit
		e.mode = eepromReadAddress
	case eepromReadAddress:
		e.shift(bit)
		// 17 bit reads and 81 bit writes carry a 14-bit address
		if dmaCount == 0x11 || dmaCount == 0x51 {
			if e.bits == 0x11 {
				e.size = EEPROM8K
				e.address = (int(e.buffer[0]&0x3F)<<8 | int(e.buffer[1])) & 0x3FF
				e.request(bit)
			}
		} else if e.bits == 9 {
			e.address = int(e.buffer[0] & 0x3F)
			e.request(bit)
		}
	case eepromReadData, eepromReadData2:
		e.mode = eepromIdle
	case eepromWriteData:
		e.shift(bit)
		switch e.bits {
		case 0x40:
			e.inUse = true
			copy(e.data[e.address<<3:e.address<<3+8], e.buffer[:8])
		case 0x41:
			e.mode = eepromIdle
			e.byteIdx = 0
			e.bits = 0
		}
	}
}

func (e *EEPROM) shift(bit uint8) {
	e.buffer[e.byteIdx] = e.buffer[e.byteIdx]<<1 | bit
	e.bits++
	if e.bits&7 == 0 {
		e.byteIdx++
	}
}

// request decodes the command bits once the address is complete. The bit
// that completed the address is the first data bit of a write.
func (e *EEPROM) request(bit uint8) {
	e.inUse = true
	if e.buffer[0]&0x40 == 0 {
		e.buffer[0] = bit
		e.bits = 1
		e.byteIdx = 0
		e.mode = eepromWriteData
		return
	}
	e.mode = eepromReadData
	e.byteIdx = 0
	e.bits = 0
}

// StateAction saves or restores the EEPROM, contents included.
func (e *EEPROM) StateAction(s *savestate.Section) {
	mode := uint8(e.mode)
	s.Bytes(e.data[:])
	s.Int(&e.size)
	s.Bool(&e.inUse)
	s.Uint8(&mode)
	s.Int(&e.byteIdx)
	s.Int(&e.bits)
	s.Int(&e.address)
	s.Bytes(e.buffer[:])
	if s.Loading() {
		e.mode = eepromMode(mode)
	}
}
