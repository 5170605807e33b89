package cpu

import "github.com/valerio/go-advance/advance/bit"

// shift types of the barrel shifter
const (
	shiftLSL = iota
	shiftLSR
	shiftASR
	shiftROR
)

func (c *CPU) conditionPassed(cond uint32) bool {
	switch cond {
	case 0x0: // EQ
		return c.z
	case 0x1: // NE
		return !c.z
	case 0x2: // CS
		return c.c
	case 0x3: // CC
		return !c.c
	case 0x4: // MI
		return c.n
	case 0x5: // PL
		return !c.n
	case 0x6: // VS
		return c.v
	case 0x7: // VC
		return !c.v
	case 0x8: // HI
		return c.c && !c.z
	case 0x9: // LS
		return !c.c || c.z
	case 0xA: // GE
		return c.n == c.v
	case 0xB: // LT
		return c.n != c.v
	case 0xC: // GT
		return !c.z && c.n == c.v
	case 0xD: // LE
		return c.z || c.n != c.v
	case 0xE: // AL
		return true
	}
	// NV is unpredictable on ARMv4; never execute
	return false
}

// shiftByImmediate applies an immediate-amount shift, where amount 0
// encodes LSR #32, ASR #32 and RRX.
func (c *CPU) shiftByImmediate(kind uint32, value uint32, amount uint32) (uint32, bool) {
	switch kind {
	case shiftLSL:
		if amount == 0 {
			return value, c.c
		}
		return value << amount, value&(1<<(32-amount)) != 0
	case shiftLSR:
		if amount == 0 {
			return 0, value&0x80000000 != 0
		}
		return value >> amount, value&(1<<(amount-1)) != 0
	case shiftASR:
		if amount == 0 {
			if value&0x80000000 != 0 {
				return 0xFFFFFFFF, true
			}
			return 0, false
		}
		return uint32(int32(value) >> amount), value&(1<<(amount-1)) != 0
	}
	if amount == 0 {
		var carryIn uint32
		if c.c {
			carryIn = 0x80000000
		}
		return carryIn | value>>1, value&1 != 0
	}
	return bit.ROR(value, uint(amount)), value&(1<<(amount-1)) != 0
}

// shiftByRegister applies a shift whose amount comes from the bottom byte
// of a register.
func (c *CPU) shiftByRegister(kind uint32, value uint32, amount uint32) (uint32, bool) {
	amount &= 0xFF
	if amount == 0 {
		return value, c.c
	}
	switch kind {
	case shiftLSL:
		switch {
		case amount < 32:
			return value << amount, value&(1<<(32-amount)) != 0
		case amount == 32:
			return 0, value&1 != 0
		}
		return 0, false
	case shiftLSR:
		switch {
		case amount < 32:
			return value >> amount, value&(1<<(amount-1)) != 0
		case amount == 32:
			return 0, value&0x80000000 != 0
		}
		return 0, false
	case shiftASR:
		if amount >= 32 {
			if value&0x80000000 != 0 {
				return 0xFFFFFFFF, true
			}
			return 0, false
		}
		return uint32(int32(value) >> amount), value&(1<<(amount-1)) != 0
	}
	amount &= 31
	if amount == 0 {
		return value, value&0x80000000 != 0
	}
	return bit.ROR(value, uint(amount)), value&(1<<(amount-1)) != 0
}

// addWithCarry returns a+b+carry with the carry-out and overflow flags.
func addWithCarry(a, b uint32, carry bool) (result uint32, carryOut, overflow bool) {
	sum := uint64(a) + uint64(b)
	if carry {
		sum++
	}
	result = uint32(sum)
	carryOut = sum>>32 != 0
	overflow = (^(a ^ b)&(a^result))>>31 != 0
	return
}

func (c *CPU) setNZ(value uint32) {
	c.n = value&0x80000000 != 0
	c.z = value == 0
}

func (c *CPU) add(a, b uint32, carry, setFlags bool) uint32 {
	result, carryOut, overflow := addWithCarry(a, b, carry)
	if setFlags {
		c.setNZ(result)
		c.c = carryOut
		c.v = overflow
	}
	return result
}

// sub computes a-b; carry is the inverted borrow, as ARM defines it.
func (c *CPU) sub(a, b uint32, carry, setFlags bool) uint32 {
	return c.add(a, ^b, carry, setFlags)
}

// multiplyCycles is the early-termination cost of a multiply by rs.
func multiplyCycles(rs uint32, signed bool) int {
	if signed && rs&0x80000000 != 0 {
		rs = ^rs
	}
	switch {
	case rs&0xFFFFFF00 == 0:
		return 1
	case rs&0xFFFF0000 == 0:
		return 2
	case rs&0xFF000000 == 0:
		return 3
	}
	return 4
}
