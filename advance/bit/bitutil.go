package bit

import "math/bits"

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index uint, value uint32) bool {
	return (value>>index)&1 == 1
}

// IsSet16 is IsSet for halfword registers.
func IsSet16(index uint, value uint16) bool {
	return (value>>index)&1 == 1
}

// Clear returns value with the bit at the specified index set to 0.
func Clear(index uint, value uint32) uint32 {
	return value &^ (1 << index)
}

// Set returns value with the bit at the specified index set to 1.
func Set(index uint, value uint32) uint32 {
	return value | (1 << index)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// Extract extracts bits from highBit to lowBit (inclusive).
// Example: Extract(0b11010110, 6, 4) -> 0b101 (extracts bits 6, 5, 4)
func Extract(value uint32, highBit, lowBit uint) uint32 {
	width := highBit - lowBit + 1
	return (value >> lowBit) & (1<<width - 1)
}

// ROR rotates value right by amount bits.
func ROR(value uint32, amount uint) uint32 {
	return bits.RotateLeft32(value, -int(amount&31))
}

// SignExtend treats the low width bits of value as a two's complement number.
func SignExtend(value uint32, width uint) uint32 {
	shift := 32 - width
	return uint32(int32(value<<shift) >> shift)
}
