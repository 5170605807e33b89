package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allModes = []Mode{ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor, ModeAbort, ModeUndefined, ModeSystem}

func TestSwitchModeRoundTrip(t *testing.T) {
	for _, m1 := range allModes {
		for _, m2 := range allModes {
			t.Run(m1.String()+"->"+m2.String(), func(t *testing.T) {
				c, _ := newARM()
				c.SwitchMode(m1, false, false)
				for i := 0; i < 15; i++ {
					c.r[i] = uint32(0x1000 + i)
				}
				c.spsr = 0xF000001F
				before := c.r
				spsrBefore := c.SPSR()

				c.SwitchMode(m2, false, false)
				if bankOf(m1) != bankOf(m2) {
					// scribble over what m2 banks privately
					c.r[SP], c.r[LR] = 0xDEAD, 0xBEEF
					if m2 == ModeFIQ {
						for i := 8; i < 13; i++ {
							c.r[i] = 0xF1F1
						}
					}
				}
				c.SwitchMode(m1, false, false)

				assert.Equal(t, before, c.r)
				if bankOf(m1) != bankUser {
					assert.Equal(t, spsrBefore, c.SPSR())
				}
			})
		}
	}
}

func TestFIQBanksHighRegisters(t *testing.T) {
	c, _ := newARM()
	c.r[8] = 1
	c.r[12] = 5

	c.SwitchMode(ModeFIQ, true, false)
	assert.Equal(t, uint32(0), c.r[8])
	c.r[8] = 99

	c.SwitchMode(ModeIRQ, true, false)
	assert.Equal(t, uint32(1), c.r[8], "IRQ shares R8-R12 with User")
	assert.Equal(t, uint32(5), c.r[12])

	c.SwitchMode(ModeFIQ, false, false)
	assert.Equal(t, uint32(99), c.r[8])
}

func TestSwitchModeSavesCPSR(t *testing.T) {
	c, _ := newARM()
	c.z = true
	c.c = true
	old := c.CPSR()

	c.SwitchMode(ModeIRQ, true, false)

	assert.Equal(t, ModeIRQ, c.Mode())
	assert.Equal(t, old, c.SPSR())
	assert.True(t, c.z, "flags survive the switch")
}

func TestSwitchModeRecomputesIRQ(t *testing.T) {
	c, bus := newARM()
	bus.irq = true
	c.irqDisabled = false

	c.SwitchMode(ModeSupervisor, true, false)
	assert.False(t, bus.scheduled)

	c.SwitchMode(ModeSystem, false, true)
	assert.True(t, bus.scheduled)
}

func TestUserModeHasNoSPSR(t *testing.T) {
	c, _ := newARM()
	c.SwitchMode(ModeUser, false, false)
	c.SetSPSR(0x12345678)
	assert.Equal(t, c.CPSR(), c.SPSR())
}

func TestCPSRComposition(t *testing.T) {
	c, _ := newARM()
	c.setCPSRBits(FlagN | FlagV | FlagT | FlagI | uint32(ModeIRQ))

	assert.True(t, c.n)
	assert.False(t, c.z)
	assert.True(t, c.v)
	assert.True(t, c.Thumb())
	assert.False(t, c.IRQEnabled())
	assert.Equal(t, FlagN|FlagV|FlagT|FlagI|uint32(ModeIRQ), c.CPSR())
}
