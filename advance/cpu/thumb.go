package cpu

import (
	"math/bits"

	"github.com/valerio/go-advance/advance/bit"
)

// thumbInstruction executes one decoded Thumb opcode.
type thumbInstruction func(c *CPU, opcode uint16)

// thumbTable is indexed by opcode bits 15-6.
var thumbTable [1024]thumbInstruction

func init() {
	for i := range thumbTable {
		thumbTable[i] = decodeThumb(uint16(i) << 6)
	}
}

func decodeThumb(op uint16) thumbInstruction {
	switch {
	case op&0xF800 == 0x1800:
		return thumbAddSubtract
	case op&0xE000 == 0x0000:
		return thumbShiftImmediate
	case op&0xE000 == 0x2000:
		return thumbImmediate
	case op&0xFC00 == 0x4000:
		return thumbALU
	case op&0xFC00 == 0x4400:
		return thumbHighRegister
	case op&0xF800 == 0x4800:
		return thumbLoadPCRelative
	case op&0xF200 == 0x5000:
		return thumbLoadStoreRegister
	case op&0xF200 == 0x5200:
		return thumbLoadStoreSigned
	case op&0xE000 == 0x6000:
		return thumbLoadStoreImmediate
	case op&0xF000 == 0x8000:
		return thumbLoadStoreHalfword
	case op&0xF000 == 0x9000:
		return thumbLoadStoreSP
	case op&0xF000 == 0xA000:
		return thumbLoadAddress
	case op&0xFF00 == 0xB000:
		return thumbAdjustSP
	case op&0xF600 == 0xB400:
		return thumbPushPop
	case op&0xF000 == 0xC000:
		return thumbMultipleLoadStore
	case op&0xFF00 == 0xDF00:
		return thumbSoftwareInterrupt
	case op&0xFF00 == 0xDE00:
		return thumbUndefined
	case op&0xF000 == 0xD000:
		return thumbConditionalBranch
	case op&0xF800 == 0xE000:
		return thumbBranch
	case op&0xF800 == 0xF000:
		return thumbLinkHigh
	case op&0xF800 == 0xF800:
		return thumbLinkLow
	}
	return thumbUndefined
}

func thumbUndefined(c *CPU, _ uint16) {
	c.undefined()
	c.ticks = c.branchCost()
}

func thumbShiftImmediate(c *CPU, op uint16) {
	rd := op & 7
	value := c.r[(op>>3)&7]
	result, carry := c.shiftByImmediate(uint32(op>>11)&3, value, uint32(op>>6)&0x1F)
	c.r[rd] = result
	c.setNZ(result)
	c.c = carry
}

func thumbAddSubtract(c *CPU, op uint16) {
	rd := op & 7
	first := c.r[(op>>3)&7]
	operand := uint32(op>>6) & 7
	if op&(1<<10) == 0 {
		operand = c.r[operand]
	}
	if op&(1<<9) != 0 {
		c.r[rd] = c.sub(first, operand, true, true)
	} else {
		c.r[rd] = c.add(first, operand, false, true)
	}
}

func thumbImmediate(c *CPU, op uint16) {
	rd := (op >> 8) & 7
	imm := uint32(op & 0xFF)
	switch (op >> 11) & 3 {
	case 0: // MOV
		c.r[rd] = imm
		c.setNZ(imm)
	case 1: // CMP
		c.sub(c.r[rd], imm, true, true)
	case 2: // ADD
		c.r[rd] = c.add(c.r[rd], imm, false, true)
	case 3: // SUB
		c.r[rd] = c.sub(c.r[rd], imm, true, true)
	}
}

func thumbALU(c *CPU, op uint16) {
	rd := op & 7
	first := c.r[rd]
	operand := c.r[(op>>3)&7]

	var result uint32
	var carry bool
	switch (op >> 6) & 0xF {
	case 0x0: // AND
		result = first & operand
		c.setNZ(result)
	case 0x1: // EOR
		result = first ^ operand
		c.setNZ(result)
	case 0x2: // LSL
		result, carry = c.shiftByRegister(shiftLSL, first, operand)
		c.setNZ(result)
		c.c = carry
		c.ticks = 2 + c.timing.CodeSeq16(c.nextPC)
	case 0x3: // LSR
		result, carry = c.shiftByRegister(shiftLSR, first, operand)
		c.setNZ(result)
		c.c = carry
		c.ticks = 2 + c.timing.CodeSeq16(c.nextPC)
	case 0x4: // ASR
		result, carry = c.shiftByRegister(shiftASR, first, operand)
		c.setNZ(result)
		c.c = carry
		c.ticks = 2 + c.timing.CodeSeq16(c.nextPC)
	case 0x5: // ADC
		result = c.add(first, operand, c.c, true)
	case 0x6: // SBC
		result = c.sub(first, operand, c.c, true)
	case 0x7: // ROR
		result, carry = c.shiftByRegister(shiftROR, first, operand)
		c.setNZ(result)
		c.c = carry
		c.ticks = 2 + c.timing.CodeSeq16(c.nextPC)
	case 0x8: // TST
		c.setNZ(first & operand)
		return
	case 0x9: // NEG
		result = c.sub(0, operand, true, true)
	case 0xA: // CMP
		c.sub(first, operand, true, true)
		return
	case 0xB: // CMN
		c.add(first, operand, false, true)
		return
	case 0xC: // ORR
		result = first | operand
		c.setNZ(result)
	case 0xD: // MUL
		result = first * operand
		c.setNZ(result)
		c.ticks = 1 + multiplyCycles(first, true) + c.timing.CodeSeq16(c.nextPC)
	case 0xE: // BIC
		result = first &^ operand
		c.setNZ(result)
	case 0xF: // MVN
		result = ^operand
		c.setNZ(result)
	}
	c.r[rd] = result
}

func thumbHighRegister(c *CPU, op uint16) {
	rd := op&7 | (op>>4)&8
	value := c.r[(op>>3)&0xF]

	switch (op >> 8) & 3 {
	case 0: // ADD
		result := c.r[rd] + value
		if rd == PC {
			c.flushThumb(result)
			c.ticks = c.branchCost()
			return
		}
		c.r[rd] = result
	case 1: // CMP
		c.sub(c.r[rd], value, true, true)
	case 2: // MOV
		if rd == PC {
			c.flushThumb(value)
			c.ticks = c.branchCost()
			return
		}
		c.r[rd] = value
	case 3: // BX
		c.thumb = value&1 != 0
		c.Jump(value)
		c.ticks = c.branchCost()
	}
}

func thumbLoadPCRelative(c *CPU, op uint16) {
	address := (c.r[PC] &^ 2) + uint32(op&0xFF)<<2
	c.r[(op>>8)&7] = c.bus.Read32(address)
	c.ticks = 3 + c.timing.Data32(address) + c.timing.Code16(c.nextPC)
}

func thumbLoadStoreRegister(c *CPU, op uint16) {
	rd := op & 7
	address := c.r[(op>>3)&7] + c.r[(op>>6)&7]

	switch (op >> 10) & 3 {
	case 0: // STR
		c.bus.Write32(address, c.r[rd])
		c.ticks = 2 + c.timing.Data32(address) + c.timing.Code16(c.nextPC)
	case 1: // STRB
		c.bus.Write8(address, uint8(c.r[rd]))
		c.ticks = 2 + c.timing.Data16(address) + c.timing.Code16(c.nextPC)
	case 2: // LDR
		c.r[rd] = c.bus.Read32(address)
		c.ticks = 3 + c.timing.Data32(address) + c.timing.Code16(c.nextPC)
	case 3: // LDRB
		c.r[rd] = uint32(c.bus.Read8(address))
		c.ticks = 3 + c.timing.Data16(address) + c.timing.Code16(c.nextPC)
	}
}

func thumbLoadStoreSigned(c *CPU, op uint16) {
	rd := op & 7
	address := c.r[(op>>3)&7] + c.r[(op>>6)&7]

	switch (op >> 10) & 3 {
	case 0: // STRH
		c.bus.Write16(address, uint16(c.r[rd]))
		c.ticks = 2 + c.timing.Data16(address) + c.timing.Code16(c.nextPC)
		return
	case 1: // LDSB
		c.r[rd] = uint32(int32(int8(c.bus.Read8(address))))
	case 2: // LDRH
		c.r[rd] = c.bus.Read16(address)
	case 3: // LDSH
		if address&1 != 0 {
			c.r[rd] = uint32(int32(int8(c.bus.Read8(address))))
		} else {
			c.r[rd] = uint32(int32(int16(c.bus.Read16(address))))
		}
	}
	c.ticks = 3 + c.timing.Data16(address) + c.timing.Code16(c.nextPC)
}

func thumbLoadStoreImmediate(c *CPU, op uint16) {
	rd := op & 7
	base := c.r[(op>>3)&7]
	offset := uint32(op>>6) & 0x1F
	byteAccess := op&(1<<12) != 0
	load := op&(1<<11) != 0

	if byteAccess {
		address := base + offset
		if load {
			c.r[rd] = uint32(c.bus.Read8(address))
			c.ticks = 3 + c.timing.Data16(address) + c.timing.Code16(c.nextPC)
		} else {
			c.bus.Write8(address, uint8(c.r[rd]))
			c.ticks = 2 + c.timing.Data16(address) + c.timing.Code16(c.nextPC)
		}
		return
	}

	address := base + offset<<2
	if load {
		c.r[rd] = c.bus.Read32(address)
		c.ticks = 3 + c.timing.Data32(address) + c.timing.Code16(c.nextPC)
	} else {
		c.bus.Write32(address, c.r[rd])
		c.ticks = 2 + c.timing.Data32(address) + c.timing.Code16(c.nextPC)
	}
}

func thumbLoadStoreHalfword(c *CPU, op uint16) {
	rd := op & 7
	address := c.r[(op>>3)&7] + (uint32(op>>6)&0x1F)<<1
	if op&(1<<11) != 0 {
		c.r[rd] = c.bus.Read16(address)
		c.ticks = 3 + c.timing.Data16(address) + c.timing.Code16(c.nextPC)
		return
	}
	c.bus.Write16(address, uint16(c.r[rd]))
	c.ticks = 2 + c.timing.Data16(address) + c.timing.Code16(c.nextPC)
}

func thumbLoadStoreSP(c *CPU, op uint16) {
	rd := (op >> 8) & 7
	address := c.r[SP] + uint32(op&0xFF)<<2
	if op&(1<<11) != 0 {
		c.r[rd] = c.bus.Read32(address)
		c.ticks = 3 + c.timing.Data32(address) + c.timing.Code16(c.nextPC)
		return
	}
	c.bus.Write32(address, c.r[rd])
	c.ticks = 2 + c.timing.Data32(address) + c.timing.Code16(c.nextPC)
}

func thumbLoadAddress(c *CPU, op uint16) {
	rd := (op >> 8) & 7
	offset := uint32(op&0xFF) << 2
	if op&(1<<11) != 0 {
		c.r[rd] = c.r[SP] + offset
	} else {
		c.r[rd] = (c.r[PC] &^ 2) + offset
	}
}

func thumbAdjustSP(c *CPU, op uint16) {
	offset := uint32(op&0x7F) << 2
	if op&0x80 != 0 {
		c.r[SP] -= offset
	} else {
		c.r[SP] += offset
	}
}

// thumbTransfer walks a register list of words starting at address and
// returns the data access cost.
func (c *CPU) thumbTransfer(list uint32, address uint32, load bool) int {
	cost := 0
	first := true
	for i := 0; i < 16; i++ {
		if list&(1<<i) == 0 {
			continue
		}
		if load {
			c.r[i] = c.bus.Read32(address)
		} else {
			value := c.r[i]
			if i == PC {
				value += 2
			}
			c.bus.Write32(address, value)
		}
		if first {
			cost += c.timing.Data32(address)
			first = false
		} else {
			cost += c.timing.DataSeq32(address)
		}
		address += 4
	}
	return cost
}

func thumbPushPop(c *CPU, op uint16) {
	list := uint32(op & 0xFF)
	load := op&(1<<11) != 0
	if op&(1<<8) != 0 {
		if load {
			list |= 1 << PC
		} else {
			list |= 1 << LR
		}
	}
	size := uint32(bits.OnesCount32(list)) * 4
	if list == 0 {
		list = 1 << PC
		size = 0x40
	}

	if load {
		address := c.r[SP] &^ 3
		cost := c.thumbTransfer(list, address, true)
		c.r[SP] += size
		c.ticks = 2 + cost + c.timing.Code16(c.nextPC)
		if list&(1<<PC) != 0 {
			c.flushThumb(c.r[PC])
			c.ticks += c.branchCost()
		}
		return
	}

	c.r[SP] -= size
	cost := c.thumbTransfer(list, c.r[SP]&^3, false)
	c.ticks = 1 + cost + c.timing.Code16(c.nextPC)
}

func thumbMultipleLoadStore(c *CPU, op uint16) {
	rb := int((op >> 8) & 7)
	list := uint32(op & 0xFF)
	load := op&(1<<11) != 0

	size := uint32(bits.OnesCount32(list)) * 4
	if list == 0 {
		list = 1 << PC
		size = 0x40
	}
	address := c.r[rb]
	newBase := address + size

	if load {
		cost := c.thumbTransfer(list, address&^3, true)
		if list&(1<<rb) == 0 {
			c.r[rb] = newBase
		}
		c.ticks = 2 + cost + c.timing.Code16(c.nextPC)
		if list&(1<<PC) != 0 {
			c.flushThumb(c.r[PC])
			c.ticks += c.branchCost()
		}
		return
	}

	// a base that is not the first register is stored already updated
	if list&(1<<rb) != 0 && bits.TrailingZeros32(list) != rb {
		old := c.r[rb]
		c.r[rb] = newBase
		cost := c.thumbTransfer(list, address&^3, false)
		c.r[rb] = old
		c.ticks = 1 + cost + c.timing.Code16(c.nextPC)
	} else {
		cost := c.thumbTransfer(list, address&^3, false)
		c.ticks = 1 + cost + c.timing.Code16(c.nextPC)
	}
	c.r[rb] = newBase
}

func thumbConditionalBranch(c *CPU, op uint16) {
	if !c.conditionPassed(uint32(op>>8) & 0xF) {
		return
	}
	offset := bit.SignExtend(uint32(op&0xFF), 8) << 1
	c.flushThumb(c.r[PC] + offset)
	c.ticks = c.branchCost()
}

func thumbSoftwareInterrupt(c *CPU, op uint16) {
	c.ticks = 1 + c.timing.CodeSeq16(c.nextPC)
	c.bus.SoftwareInterrupt(uint32(op & 0xFF))
}

func thumbBranch(c *CPU, op uint16) {
	offset := bit.SignExtend(uint32(op&0x7FF), 11) << 1
	c.flushThumb(c.r[PC] + offset)
	c.ticks = c.branchCost()
}

func thumbLinkHigh(c *CPU, op uint16) {
	c.r[LR] = c.r[PC] + bit.SignExtend(uint32(op&0x7FF), 11)<<12
}

func thumbLinkLow(c *CPU, op uint16) {
	target := c.r[LR] + uint32(op&0x7FF)<<1
	c.r[LR] = (c.r[PC] - 2) | 1
	c.flushThumb(target)
	c.ticks = c.branchCost()
}
