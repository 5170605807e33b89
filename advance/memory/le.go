// Package memory holds the little-endian buffer accessors and the bus
// timing model shared by the CPU, DMA and BIOS emulation.
package memory

import "encoding/binary"

// Read16 returns the little-endian halfword at offset.
func Read16(b []byte, offset uint32) uint16 {
	return binary.LittleEndian.Uint16(b[offset:])
}

// Read32 returns the little-endian word at offset.
func Read32(b []byte, offset uint32) uint32 {
	return binary.LittleEndian.Uint32(b[offset:])
}

// Write16 stores value little-endian at offset.
func Write16(b []byte, offset uint32, value uint16) {
	binary.LittleEndian.PutUint16(b[offset:], value)
}

// Write32 stores value little-endian at offset.
func Write32(b []byte, offset uint32, value uint32) {
	binary.LittleEndian.PutUint32(b[offset:], value)
}
