package cpu

import (
	"github.com/valerio/go-advance/advance/bit"
	"github.com/valerio/go-advance/advance/memory"
)

// testBus is a flat 64KiB memory that records swi calls.
type testBus struct {
	mem       [0x10000]byte
	swi       []uint32
	irq       bool
	scheduled bool
}

func (b *testBus) Read8(address uint32) uint8 { return b.mem[address&0xFFFF] }

func (b *testBus) Read16(address uint32) uint32 {
	value := uint32(memory.Read16(b.mem[:], address&0xFFFE))
	return bit.ROR(value, uint(address&1)*8)
}

func (b *testBus) Read32(address uint32) uint32 {
	value := memory.Read32(b.mem[:], address&0xFFFC)
	return bit.ROR(value, uint(address&3)*8)
}

func (b *testBus) Write8(address uint32, value uint8) { b.mem[address&0xFFFF] = value }

func (b *testBus) Write16(address uint32, value uint16) {
	memory.Write16(b.mem[:], address&0xFFFE, value)
}

func (b *testBus) Write32(address uint32, value uint32) {
	memory.Write32(b.mem[:], address&0xFFFC, value)
}

func (b *testBus) Fetch16(address uint32) uint16 { return memory.Read16(b.mem[:], address&0xFFFE) }
func (b *testBus) Fetch32(address uint32) uint32 { return memory.Read32(b.mem[:], address&0xFFFC) }

func (b *testBus) SoftwareInterrupt(number uint32) { b.swi = append(b.swi, number) }
func (b *testBus) IRQPending() bool                { return b.irq }
func (b *testBus) ScheduleNow()                    { b.scheduled = true }

var _ Bus = (*testBus)(nil)

// newARM loads ARM words at address 0 and returns a CPU in System mode
// ready to execute them.
func newARM(program ...uint32) (*CPU, *testBus) {
	bus := &testBus{}
	for i, op := range program {
		memory.Write32(bus.mem[:], uint32(i*4), op)
	}
	c := New(bus, memory.NewTiming())
	c.SetCPSR(uint32(ModeSystem))
	c.Jump(0)
	return c, bus
}

// newThumb loads Thumb halfwords at address 0 and starts in Thumb state.
func newThumb(program ...uint16) (*CPU, *testBus) {
	bus := &testBus{}
	for i, op := range program {
		memory.Write16(bus.mem[:], uint32(i*2), op)
	}
	c := New(bus, memory.NewTiming())
	c.SetCPSR(uint32(ModeSystem) | FlagT)
	c.Jump(0)
	return c, bus
}

func (c *CPU) run(steps int) {
	for i := 0; i < steps; i++ {
		c.Step()
	}
}
