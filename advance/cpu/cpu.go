package cpu

import (
	"github.com/valerio/go-advance/advance/memory"
	"github.com/valerio/go-advance/advance/savestate"
)

// Bus provides the interface for component communication. Unaligned
// 16/32-bit reads come back rotated the way the ARM7TDMI sees them.
type Bus interface {
	Read8(address uint32) uint8
	Read16(address uint32) uint32
	Read32(address uint32) uint32
	Write8(address uint32, value uint8)
	Write16(address uint32, value uint16)
	Write32(address uint32, value uint32)

	// Fetch16/Fetch32 read opcodes for the prefetch pipeline.
	Fetch16(address uint32) uint16
	Fetch32(address uint32) uint32

	// SoftwareInterrupt receives the BIOS call number of a swi.
	SoftwareInterrupt(number uint32)
	// IRQPending reports IE & IF != 0 with IME set.
	IRQPending() bool
	// ScheduleNow asks the scheduler to dispatch events before the next
	// instruction.
	ScheduleNow()
}

// Exception vectors.
const (
	VectorReset     uint32 = 0x00
	VectorUndefined uint32 = 0x04
	VectorSWI       uint32 = 0x08
	VectorIRQ       uint32 = 0x18
)

// CPU is the ARM7TDMI core: one register file driven by the ARM and Thumb
// front ends.
type CPU struct {
	registerFile

	// nextPC is the address of the instruction in pipeline[0].
	nextPC   uint32
	pipeline [2]uint32

	// cycles consumed by the instruction being executed
	ticks int

	bus    Bus
	timing *memory.Timing
}

// New returns a CPU in Supervisor mode with IRQ and FIQ masked.
func New(bus Bus, timing *memory.Timing) *CPU {
	c := &CPU{
		bus:    bus,
		timing: timing,
	}
	c.Reset()
	return c
}

// Reset clears every register and enters Supervisor mode in ARM state.
func (c *CPU) Reset() {
	c.registerFile = registerFile{}
	c.mode = ModeSupervisor
	c.irqDisabled = true
	c.fiqDisabled = true
	c.nextPC = 0
	c.pipeline = [2]uint32{}
	c.ticks = 0
}

// Reg returns register i of the current mode.
func (c *CPU) Reg(i int) uint32 {
	return c.r[i]
}

// SetReg writes register i of the current mode. Writing PC does not
// refill the pipeline; use Jump for that.
func (c *CPU) SetReg(i int, value uint32) {
	c.r[i] = value
}

// Mode returns the current processor mode.
func (c *CPU) Mode() Mode {
	return c.mode
}

// Thumb reports whether the T bit is set.
func (c *CPU) Thumb() bool {
	return c.thumb
}

// IRQEnabled reports whether the I bit is clear.
func (c *CPU) IRQEnabled() bool {
	return !c.irqDisabled
}

// NextPC is the address of the next instruction to execute.
func (c *CPU) NextPC() uint32 {
	return c.nextPC
}

// CurrentPC is the value R15 holds between instructions.
func (c *CPU) CurrentPC() uint32 {
	return c.r[PC]
}

// SetCPSR replaces the status register, banking registers when the mode
// field changes.
func (c *CPU) SetCPSR(value uint32) {
	c.SwitchMode(Mode(value&modeMask), false, false)
	c.setCPSRBits(value)
}

// SetSPSR writes the saved status register of the current mode.
func (c *CPU) SetSPSR(value uint32) {
	if bankOf(c.mode) != bankUser {
		c.spsr = value
	}
}

// SwitchMode banks out the current mode, banks in mode and keeps the
// condition and control bits. With saveState the old CPSR becomes the new
// mode's SPSR; otherwise the SPSR comes from the bank. With recompute a
// pending unmasked IRQ makes the scheduler dispatch immediately.
func (c *CPU) SwitchMode(mode Mode, saveState, recompute bool) {
	old := c.CPSR()
	c.bankOut()
	c.bankIn(mode)
	if saveState && bankOf(mode) != bankUser {
		c.spsr = old
	}
	c.mode = mode
	if recompute {
		c.checkIRQ()
	}
}

// RestoreCPSR copies SPSR into CPSR, the exception-return path.
func (c *CPU) RestoreCPSR() {
	spsr := c.SPSR()
	c.SwitchMode(Mode(spsr&modeMask), false, false)
	c.setCPSRBits(spsr)
	c.checkIRQ()
}

func (c *CPU) checkIRQ() {
	if !c.irqDisabled && c.bus.IRQPending() {
		c.bus.ScheduleNow()
	}
}

// Jump refills the pipeline at target in the current instruction set.
func (c *CPU) Jump(target uint32) {
	if c.thumb {
		c.flushThumb(target)
	} else {
		c.flushARM(target)
	}
}

// Flush refills the pipeline at the next instruction, used after state
// loads and instruction-set changes outside of the interpreters.
func (c *CPU) Flush() {
	c.Jump(c.nextPC)
}

func (c *CPU) flushARM(target uint32) {
	target &^= 3
	c.nextPC = target
	c.r[PC] = target + 4
	c.pipeline[0] = c.bus.Fetch32(target)
	c.pipeline[1] = c.bus.Fetch32(target + 4)
}

func (c *CPU) flushThumb(target uint32) {
	target &^= 1
	c.nextPC = target
	c.r[PC] = target + 2
	c.pipeline[0] = uint32(c.bus.Fetch16(target))
	c.pipeline[1] = uint32(c.bus.Fetch16(target + 2))
}

// Step executes one instruction and returns the cycles it took.
func (c *CPU) Step() int {
	if c.thumb {
		return c.stepThumb()
	}
	return c.stepARM()
}

func (c *CPU) stepARM() int {
	c.timing.BeginInstruction(c.nextPC)

	opcode := c.pipeline[0]
	c.pipeline[0] = c.pipeline[1]
	c.ticks = 0

	pc := c.nextPC
	c.nextPC = c.r[PC]
	c.r[PC] += 4
	c.pipeline[1] = c.bus.Fetch32(c.nextPC + 4)

	if c.conditionPassed(opcode >> 28) {
		armTable[((opcode>>16)&0xFF0)|((opcode>>4)&0xF)](c, opcode)
	}

	if c.ticks == 0 {
		c.ticks = 1 + c.timing.CodeSeq32(pc)
	}
	return c.ticks
}

func (c *CPU) stepThumb() int {
	c.timing.BeginInstruction(c.nextPC)

	opcode := uint16(c.pipeline[0])
	c.pipeline[0] = c.pipeline[1]
	c.ticks = 0

	pc := c.nextPC
	c.nextPC = c.r[PC]
	c.r[PC] += 2
	c.pipeline[1] = uint32(c.bus.Fetch16(c.nextPC + 2))

	thumbTable[opcode>>6](c, opcode)

	if c.ticks == 0 {
		c.ticks = 1 + c.timing.CodeSeq16(pc)
	}
	return c.ticks
}

// Interrupt takes the IRQ exception.
func (c *CPU) Interrupt() {
	pc := c.r[PC]
	thumb := c.thumb
	c.SwitchMode(ModeIRQ, true, false)
	c.r[LR] = pc
	if thumb {
		c.r[LR] += 2
	}
	c.thumb = false
	c.irqDisabled = true
	c.flushARM(VectorIRQ)
}

// SoftwareTrap enters Supervisor mode at the SWI vector, used when a swi
// is executed by BIOS code.
func (c *CPU) SoftwareTrap() {
	c.exception(ModeSupervisor, VectorSWI)
}

func (c *CPU) undefined() {
	c.exception(ModeUndefined, VectorUndefined)
}

// exception runs while R15 still points two instructions ahead, so the
// return address is one instruction back from it.
func (c *CPU) exception(mode Mode, vector uint32) {
	pc := c.r[PC]
	thumb := c.thumb
	c.SwitchMode(mode, true, false)
	if thumb {
		c.r[LR] = pc - 2
	} else {
		c.r[LR] = pc - 4
	}
	c.thumb = false
	c.irqDisabled = true
	c.flushARM(vector)
}

// StateAction saves or restores the register file. The pipeline is not
// part of the state: callers Flush after loading.
func (c *CPU) StateAction(s *savestate.Section) {
	cpsr := c.CPSR()
	s.Uint32s(c.r[:])
	s.Uint32(&cpsr)
	s.Uint32(&c.spsr)
	s.Uint32s(c.bankSP[:])
	s.Uint32s(c.bankLR[:])
	s.Uint32s(c.bankSPSR[:])
	s.Uint32s(c.hiBank[:])
	s.Uint32(&c.nextPC)
	if s.Loading() {
		c.setCPSRBits(cpsr)
	}
}

// SetBankedSP sets the stack pointer of mode, whether or not it is the
// current one.
func (c *CPU) SetBankedSP(mode Mode, value uint32) {
	if bankOf(mode) == bankOf(c.mode) {
		c.r[SP] = value
		return
	}
	c.bankSP[bankOf(mode)] = value
}
