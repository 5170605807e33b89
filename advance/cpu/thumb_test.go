package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-advance/advance/memory"
)

func TestThumbArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		program []uint16
		reg     int
		want    uint32
		n, z, c bool
	}{
		{"mov immediate", []uint16{0x2005}, 0, 5, false, false, false},
		{"add registers", []uint16{0x2005, 0x2103, 0x1842}, 2, 8, false, false, false},
		{"sub negative", []uint16{0x2005, 0x2103, 0x1A0B}, 3, 0xFFFFFFFE, true, false, false},
		{"lsl immediate", []uint16{0x2005, 0x0084}, 4, 20, false, false, false},
		{"mul", []uint16{0x2005, 0x2103, 0x4348}, 0, 15, false, false, false},
		{"neg", []uint16{0x2103, 0x424A}, 2, 0xFFFFFFFD, true, false, false},
		{"sub immediate to zero", []uint16{0x2005, 0x3805}, 0, 0, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newThumb(tt.program...)
			c.run(len(tt.program))

			assert.Equal(t, tt.want, c.Reg(tt.reg))
			assert.Equal(t, tt.n, c.n, "N")
			assert.Equal(t, tt.z, c.z, "Z")
			assert.Equal(t, tt.c, c.c, "C")
		})
	}
}

func TestThumbConditionalBranch(t *testing.T) {
	// MOV r0,#5; CMP r0,#5; BEQ +0; MOV r1,#1; MOV r2,#7
	c, _ := newThumb(0x2005, 0x2805, 0xD000, 0x2101, 0x2207)
	c.run(4)

	assert.Equal(t, uint32(0), c.Reg(1))
	assert.Equal(t, uint32(7), c.Reg(2))
}

func TestThumbBranchLink(t *testing.T) {
	c, _ := newThumb(0xF000, 0xF802, 0x0000, 0x0000, 0x2109)
	c.run(3)

	assert.Equal(t, uint32(5), c.Reg(LR))
	assert.Equal(t, uint32(9), c.Reg(1))
}

func TestThumbPushPop(t *testing.T) {
	// MOV r0,#5; MOV r1,#3; PUSH {r0,r1}; POP {r2,r3}
	c, bus := newThumb(0x2005, 0x2103, 0xB403, 0xBC0C)
	c.SetReg(SP, 0x1000)
	c.run(3)

	assert.Equal(t, uint32(0xFF8), c.Reg(SP))
	assert.Equal(t, uint32(5), memory.Read32(bus.mem[:], 0xFF8))
	assert.Equal(t, uint32(3), memory.Read32(bus.mem[:], 0xFFC))

	c.run(1)
	assert.Equal(t, uint32(0x1000), c.Reg(SP))
	assert.Equal(t, uint32(5), c.Reg(2))
	assert.Equal(t, uint32(3), c.Reg(3))
}

func TestThumbLoadStoreImmediate(t *testing.T) {
	// STR r1,[r0,#4]; LDR r2,[r0,#4]
	c, bus := newThumb(0x6041, 0x6842)
	c.SetReg(0, 0x200)
	c.SetReg(1, 0xCAFE)
	c.run(2)

	assert.Equal(t, uint32(0xCAFE), memory.Read32(bus.mem[:], 0x204))
	assert.Equal(t, uint32(0xCAFE), c.Reg(2))
}

func TestThumbLoadPCRelative(t *testing.T) {
	// LDR r0,[pc,#4] at 0 reads the word at 8
	c, bus := newThumb(0x4801)
	memory.Write32(bus.mem[:], 8, 0x12345678)
	c.run(1)

	assert.Equal(t, uint32(0x12345678), c.Reg(0))
}

func TestThumbBranchExchangeToARM(t *testing.T) {
	// MOV r0,#8; BX r0; then ARM MOV r1,#0x2A at 8
	c, bus := newThumb(0x2008, 0x4700)
	memory.Write32(bus.mem[:], 8, 0xE3A0102A)
	c.run(3)

	assert.False(t, c.Thumb())
	assert.Equal(t, uint32(0x2A), c.Reg(1))
}

func TestThumbSoftwareInterrupt(t *testing.T) {
	c, bus := newThumb(0xDF05)
	c.run(1)

	assert.Equal(t, []uint32{5}, bus.swi)
}

func TestThumbHighRegisterMove(t *testing.T) {
	// MOV r8,r0; ADD r8,r8
	c, _ := newThumb(0x2007, 0x4680, 0x44C0)
	c.run(3)

	assert.Equal(t, uint32(14), c.Reg(8))
}
