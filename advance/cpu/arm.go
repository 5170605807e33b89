package cpu

import (
	"math/bits"

	"github.com/valerio/go-advance/advance/bit"
)

// armInstruction executes one decoded ARM opcode.
type armInstruction func(c *CPU, opcode uint32)

// armTable is indexed by opcode bits 27-20 and 7-4.
var armTable [4096]armInstruction

func init() {
	for i := range armTable {
		armTable[i] = decodeARM(uint32(i>>4), uint32(i&0xF))
	}
}

func decodeARM(hi, lo uint32) armInstruction {
	switch {
	case hi == 0x12 && lo == 0x1:
		return armBranchExchange
	case hi&0xFC == 0x00 && lo == 0x9:
		return armMultiply
	case hi&0xF8 == 0x08 && lo == 0x9:
		return armMultiplyLong
	case hi&0xFB == 0x10 && lo == 0x9:
		return armSwap
	case hi&0xE0 == 0x00 && lo&0x9 == 0x9 && lo != 0x9:
		return armHalfwordTransfer
	case hi&0xFB == 0x10 && lo == 0x0:
		return armMRS
	case hi&0xFB == 0x12 && lo == 0x0, hi&0xFB == 0x32:
		return armMSR
	case hi&0xE0 == 0x00:
		// TST/TEQ/CMP/CMN without S encode the PSR and BX space
		if lo&0x9 == 0x9 || hi&0x19 == 0x10 {
			return armUndefined
		}
		return armDataProcessing
	case hi&0xE0 == 0x20:
		if hi&0x19 == 0x10 {
			return armUndefined
		}
		return armDataProcessing
	case hi&0xE0 == 0x40:
		return armSingleTransfer
	case hi&0xE0 == 0x60:
		if lo&1 == 1 {
			return armUndefined
		}
		return armSingleTransfer
	case hi&0xE0 == 0x80:
		return armBlockTransfer
	case hi&0xE0 == 0xA0:
		return armBranch
	case hi&0xF0 == 0xF0:
		return armSoftwareInterrupt
	}
	// coprocessor space: the GBA has no coprocessors
	return armUndefined
}

// branchCost is the pipeline refill cost after a jump to nextPC.
func (c *CPU) branchCost() int {
	if c.thumb {
		return c.timing.CodeSeq16(c.nextPC)*2 + c.timing.Code16(c.nextPC) + 3
	}
	return c.timing.CodeSeq32(c.nextPC)*2 + c.timing.Code32(c.nextPC) + 3
}

func armUndefined(c *CPU, _ uint32) {
	c.undefined()
	c.ticks = c.branchCost()
}

func armDataProcessing(c *CPU, opcode uint32) {
	var operand uint32
	var carry bool
	regShift := false

	if opcode&(1<<25) != 0 {
		rotate := (opcode >> 7) & 0x1E
		operand = bit.ROR(opcode&0xFF, uint(rotate))
		carry = c.c
		if rotate != 0 {
			carry = operand&0x80000000 != 0
		}
	} else {
		rm := opcode & 0xF
		value := c.r[rm]
		kind := (opcode >> 5) & 3
		if opcode&0x10 != 0 {
			regShift = true
			if rm == PC {
				value += 4
			}
			operand, carry = c.shiftByRegister(kind, value, c.r[(opcode>>8)&0xF])
		} else {
			operand, carry = c.shiftByImmediate(kind, value, (opcode>>7)&0x1F)
		}
	}

	rn := (opcode >> 16) & 0xF
	first := c.r[rn]
	if rn == PC && regShift {
		first += 4
	}
	rd := (opcode >> 12) & 0xF
	setFlags := opcode&(1<<20) != 0

	var result uint32
	write := true
	logical := false
	switch (opcode >> 21) & 0xF {
	case 0x0: // AND
		result = first & operand
		logical = true
	case 0x1: // EOR
		result = first ^ operand
		logical = true
	case 0x2: // SUB
		result = c.sub(first, operand, true, setFlags)
	case 0x3: // RSB
		result = c.sub(operand, first, true, setFlags)
	case 0x4: // ADD
		result = c.add(first, operand, false, setFlags)
	case 0x5: // ADC
		result = c.add(first, operand, c.c, setFlags)
	case 0x6: // SBC
		result = c.sub(first, operand, c.c, setFlags)
	case 0x7: // RSC
		result = c.sub(operand, first, c.c, setFlags)
	case 0x8: // TST
		result = first & operand
		logical = true
		write = false
	case 0x9: // TEQ
		result = first ^ operand
		logical = true
		write = false
	case 0xA: // CMP
		c.sub(first, operand, true, true)
		write = false
	case 0xB: // CMN
		c.add(first, operand, false, true)
		write = false
	case 0xC: // ORR
		result = first | operand
		logical = true
	case 0xD: // MOV
		result = operand
		logical = true
	case 0xE: // BIC
		result = first &^ operand
		logical = true
	case 0xF: // MVN
		result = ^operand
		logical = true
	}

	if logical && setFlags {
		c.setNZ(result)
		c.c = carry
	}

	if regShift {
		c.ticks = 2 + c.timing.CodeSeq32(c.nextPC)
	}

	if !write {
		return
	}
	if rd != PC {
		c.r[rd] = result
		return
	}
	if setFlags {
		c.RestoreCPSR()
	}
	c.Jump(result)
	c.ticks = c.branchCost()
}

func armMRS(c *CPU, opcode uint32) {
	rd := (opcode >> 12) & 0xF
	if opcode&(1<<22) != 0 {
		c.r[rd] = c.SPSR()
	} else {
		c.r[rd] = c.CPSR()
	}
}

func armMSR(c *CPU, opcode uint32) {
	var value uint32
	if opcode&(1<<25) != 0 {
		value = bit.ROR(opcode&0xFF, uint((opcode>>7)&0x1E))
	} else {
		value = c.r[opcode&0xF]
	}

	var mask uint32
	if opcode&(1<<19) != 0 {
		mask |= 0xFF000000
	}
	if opcode&(1<<16) != 0 && c.mode != ModeUser {
		mask |= 0xFF
	}

	if opcode&(1<<22) != 0 {
		c.SetSPSR(c.spsr&^mask | value&mask)
		return
	}

	wasThumb := c.thumb
	cpsr := (c.CPSR()&^mask | value&mask) | 0x10
	c.SwitchMode(Mode(cpsr&modeMask), false, false)
	c.setCPSRBits(cpsr)
	c.checkIRQ()
	if c.thumb != wasThumb {
		c.Flush()
	}
}

func armBranchExchange(c *CPU, opcode uint32) {
	target := c.r[opcode&0xF]
	c.thumb = target&1 != 0
	c.Jump(target)
	c.ticks = c.branchCost()
}

func armBranch(c *CPU, opcode uint32) {
	offset := bit.SignExtend(opcode&0xFFFFFF, 24) << 2
	if opcode&(1<<24) != 0 {
		c.r[LR] = c.nextPC
	}
	c.flushARM(c.r[PC] + offset)
	c.ticks = c.branchCost()
}

func armMultiply(c *CPU, opcode uint32) {
	rd := (opcode >> 16) & 0xF
	rn := (opcode >> 12) & 0xF
	rs := c.r[(opcode>>8)&0xF]

	result := c.r[opcode&0xF] * rs
	cycles := multiplyCycles(rs, true)
	if opcode&(1<<21) != 0 {
		result += c.r[rn]
		cycles++
	}
	c.r[rd] = result
	if opcode&(1<<20) != 0 {
		c.setNZ(result)
	}
	c.ticks = 1 + cycles + c.timing.CodeSeq32(c.nextPC)
}

func armMultiplyLong(c *CPU, opcode uint32) {
	rdHi := (opcode >> 16) & 0xF
	rdLo := (opcode >> 12) & 0xF
	rs := c.r[(opcode>>8)&0xF]
	rm := c.r[opcode&0xF]
	signed := opcode&(1<<22) != 0

	var result uint64
	if signed {
		result = uint64(int64(int32(rm)) * int64(int32(rs)))
	} else {
		result = uint64(rm) * uint64(rs)
	}
	cycles := multiplyCycles(rs, signed) + 1
	if opcode&(1<<21) != 0 {
		result += uint64(c.r[rdHi])<<32 | uint64(c.r[rdLo])
		cycles++
	}
	c.r[rdLo] = uint32(result)
	c.r[rdHi] = uint32(result >> 32)
	if opcode&(1<<20) != 0 {
		c.n = result>>63 != 0
		c.z = result == 0
	}
	c.ticks = 1 + cycles + c.timing.CodeSeq32(c.nextPC)
}

func armSwap(c *CPU, opcode uint32) {
	address := c.r[(opcode>>16)&0xF]
	rd := (opcode >> 12) & 0xF
	source := c.r[opcode&0xF]

	if opcode&(1<<22) != 0 {
		value := uint32(c.bus.Read8(address))
		c.bus.Write8(address, uint8(source))
		c.r[rd] = value
		c.ticks = 4 + c.timing.Data16(address)*2 + c.timing.Code32(c.nextPC)
		return
	}
	value := c.bus.Read32(address)
	c.bus.Write32(address, source)
	c.r[rd] = value
	c.ticks = 4 + c.timing.Data32(address)*2 + c.timing.Code32(c.nextPC)
}

// transferAddress resolves the P/U/W addressing of single transfers.
func transferAddress(opcode, base, offset uint32) (address, target uint32, writeBack bool) {
	if opcode&(1<<23) != 0 {
		target = base + offset
	} else {
		target = base - offset
	}
	pre := opcode&(1<<24) != 0
	address = base
	if pre {
		address = target
	}
	return address, target, !pre || opcode&(1<<21) != 0
}

// loadResult stores a loaded value, refilling the pipeline for PC.
func (c *CPU) loadResult(rd uint32, value uint32) {
	if rd != PC {
		c.r[rd] = value
		return
	}
	c.flushARM(value)
	c.ticks += 2 + c.timing.CodeSeq32(c.nextPC)*2
}

func armSingleTransfer(c *CPU, opcode uint32) {
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF

	offset := opcode & 0xFFF
	if opcode&(1<<25) != 0 {
		offset, _ = c.shiftByImmediate((opcode>>5)&3, c.r[opcode&0xF], (opcode>>7)&0x1F)
	}
	address, target, writeBack := transferAddress(opcode, c.r[rn], offset)
	byteAccess := opcode&(1<<22) != 0

	if opcode&(1<<20) != 0 {
		var value uint32
		var cost int
		if byteAccess {
			value = uint32(c.bus.Read8(address))
			cost = c.timing.Data16(address)
		} else {
			value = c.bus.Read32(address)
			cost = c.timing.Data32(address)
		}
		if writeBack {
			c.r[rn] = target
		}
		c.ticks = 3 + cost + c.timing.Code32(c.nextPC)
		c.loadResult(rd, value)
		return
	}

	value := c.r[rd]
	if rd == PC {
		value += 4
	}
	var cost int
	if byteAccess {
		c.bus.Write8(address, uint8(value))
		cost = c.timing.Data16(address)
	} else {
		c.bus.Write32(address, value)
		cost = c.timing.Data32(address)
	}
	if writeBack {
		c.r[rn] = target
	}
	c.ticks = 2 + cost + c.timing.Code32(c.nextPC)
}

func armHalfwordTransfer(c *CPU, opcode uint32) {
	rn := (opcode >> 16) & 0xF
	rd := (opcode >> 12) & 0xF

	var offset uint32
	if opcode&(1<<22) != 0 {
		offset = (opcode>>4)&0xF0 | opcode&0xF
	} else {
		offset = c.r[opcode&0xF]
	}
	address, target, writeBack := transferAddress(opcode, c.r[rn], offset)
	kind := (opcode >> 5) & 3

	if opcode&(1<<20) != 0 {
		var value uint32
		switch kind {
		case 1: // LDRH
			value = c.bus.Read16(address)
		case 2: // LDRSB
			value = uint32(int32(int8(c.bus.Read8(address))))
		case 3: // LDRSH
			if address&1 != 0 {
				value = uint32(int32(int8(c.bus.Read8(address))))
			} else {
				value = uint32(int32(int16(c.bus.Read16(address))))
			}
		}
		if writeBack {
			c.r[rn] = target
		}
		c.ticks = 3 + c.timing.Data16(address) + c.timing.Code32(c.nextPC)
		c.loadResult(rd, value)
		return
	}

	// only STRH exists on ARMv4T
	if kind == 1 {
		value := c.r[rd]
		if rd == PC {
			value += 4
		}
		c.bus.Write16(address, uint16(value))
	}
	if writeBack {
		c.r[rn] = target
	}
	c.ticks = 2 + c.timing.Data16(address) + c.timing.Code32(c.nextPC)
}

func armBlockTransfer(c *CPU, opcode uint32) {
	rn := int((opcode >> 16) & 0xF)
	list := opcode & 0xFFFF
	pre := opcode&(1<<24) != 0
	up := opcode&(1<<23) != 0
	psr := opcode&(1<<22) != 0
	writeBack := opcode&(1<<21) != 0
	load := opcode&(1<<20) != 0

	count := uint32(bits.OnesCount32(list))
	if list == 0 {
		// empty list transfers R15 and moves the base by 0x40
		list = 1 << PC
		count = 16
	}

	base := c.r[rn]
	var address, newBase uint32
	if up {
		newBase = base + count*4
		address = base
		if pre {
			address += 4
		}
	} else {
		newBase = base - count*4
		address = newBase
		if !pre {
			address += 4
		}
	}
	address &^= 3

	userBank := psr && !(load && list&(1<<PC) != 0)
	cost := 0
	first := true
	access := func(a uint32) {
		if first {
			cost += c.timing.Data32(a)
			first = false
		} else {
			cost += c.timing.DataSeq32(a)
		}
	}

	if load {
		if writeBack {
			c.r[rn] = newBase
		}
		for i := 0; i < 16; i++ {
			if list&(1<<i) == 0 {
				continue
			}
			value := c.bus.Read32(address)
			access(address)
			if userBank {
				c.setUserReg(i, value)
			} else {
				c.r[i] = value
			}
			address += 4
		}
		c.ticks = 2 + cost + c.timing.Code32(c.nextPC)
		if list&(1<<PC) != 0 {
			if psr {
				c.RestoreCPSR()
			}
			c.Jump(c.r[PC])
			c.ticks += c.branchCost()
		}
		return
	}

	lowest := bits.TrailingZeros32(list)
	for i := 0; i < 16; i++ {
		if list&(1<<i) == 0 {
			continue
		}
		var value uint32
		if userBank {
			value = c.userReg(i)
		} else {
			value = c.r[i]
		}
		if i == rn && i != lowest && writeBack {
			value = newBase
		}
		if i == PC {
			value += 4
		}
		c.bus.Write32(address, value)
		access(address)
		address += 4
	}
	if writeBack {
		c.r[rn] = newBase
	}
	c.ticks = 1 + cost + c.timing.Code32(c.nextPC)
}

func armSoftwareInterrupt(c *CPU, opcode uint32) {
	c.ticks = 1 + c.timing.CodeSeq32(c.nextPC)
	c.bus.SoftwareInterrupt((opcode >> 16) & 0xFF)
}
