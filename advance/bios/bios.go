// Package bios emulates the GBA system calls at a high level for when no
// BIOS image is available, and provides the small built-in image that
// handles IRQ dispatch and the interrupt-wait calls.
package bios

import (
	"fmt"

	"github.com/valerio/go-advance/advance/memory"
)

// Registers is the subset of the CPU register file the calls use.
type Registers interface {
	Reg(i int) uint32
	SetReg(i int, value uint32)
}

// Memory is the system bus as seen by the calls. Read16 returns the
// halfword zero-extended.
type Memory interface {
	Read8(address uint32) uint8
	Read16(address uint32) uint32
	Read32(address uint32) uint32
	Write8(address uint32, value uint8)
	Write16(address uint32, value uint16)
	Write32(address uint32, value uint32)
}

// Call numbers.
const (
	SoftReset            = 0x00
	RegisterRamReset     = 0x01
	Halt                 = 0x02
	Stop                 = 0x03
	IntrWait             = 0x04
	VBlankIntrWait       = 0x05
	Div                  = 0x06
	DivArm               = 0x07
	Sqrt                 = 0x08
	ArcTan               = 0x09
	ArcTan2              = 0x0A
	CpuSet               = 0x0B
	CpuFastSet           = 0x0C
	BgAffineSet          = 0x0E
	ObjAffineSet         = 0x0F
	BitUnPack            = 0x10
	LZ77UnCompWram       = 0x11
	LZ77UnCompVram       = 0x12
	HuffUnComp           = 0x13
	RLUnCompWram         = 0x14
	RLUnCompVram         = 0x15
	Diff8bitUnFilterWram = 0x16
	Diff8bitUnFilterVram = 0x17
	Diff16bitUnFilter    = 0x18
	SoundBias            = 0x19
	MidiKey2Freq         = 0x1F
	SndDriverJmpTable    = 0x2A
	// NoCash is the debugger message call, ignored.
	NoCash = 0xFA
)

var names = map[uint32]string{
	SoftReset:            "SoftReset",
	RegisterRamReset:     "RegisterRamReset",
	Halt:                 "Halt",
	Stop:                 "Stop",
	IntrWait:             "IntrWait",
	VBlankIntrWait:       "VBlankIntrWait",
	Div:                  "Div",
	DivArm:               "DivArm",
	Sqrt:                 "Sqrt",
	ArcTan:               "ArcTan",
	ArcTan2:              "ArcTan2",
	CpuSet:               "CpuSet",
	CpuFastSet:           "CpuFastSet",
	BgAffineSet:          "BgAffineSet",
	ObjAffineSet:         "ObjAffineSet",
	BitUnPack:            "BitUnPack",
	LZ77UnCompWram:       "LZ77UnCompWram",
	LZ77UnCompVram:       "LZ77UnCompVram",
	HuffUnComp:           "HuffUnComp",
	RLUnCompWram:         "RLUnCompWram",
	RLUnCompVram:         "RLUnCompVram",
	Diff8bitUnFilterWram: "Diff8bitUnFilterWram",
	Diff8bitUnFilterVram: "Diff8bitUnFilterVram",
	Diff16bitUnFilter:    "Diff16bitUnFilter",
	SoundBias:            "SoundBias",
	MidiKey2Freq:         "MidiKey2Freq",
	SndDriverJmpTable:    "SndDriverJmpTableCopy",
	NoCash:               "NoCash",
}

// Name returns the conventional name of call n.
func Name(n uint32) string {
	if name, ok := names[n]; ok {
		return name
	}
	return fmt.Sprintf("Unknown%02X", n)
}

// fromBIOS reports whether a block of length bytes at source starts or
// ends inside the BIOS region. Such calls are refused by the real BIOS and
// are never charged.
func fromBIOS(source, length uint32) bool {
	return source&0x0E000000 == 0 || (source+length)&0x0E000000 == 0
}

// Call runs system call n against regs and mem. It returns the extra
// cycles the call costs and false when n is not one of the calls handled
// here; the machine itself handles reset, halt, stop and the wait calls.
func Call(n uint32, regs Registers, mem Memory, t *memory.Timing) (int, bool) {
	r0, r1, r2 := regs.Reg(0), regs.Reg(1), regs.Reg(2)
	ticks := 0

	switch n {
	case Div:
		div(regs)
	case DivArm:
		regs.SetReg(0, r1)
		regs.SetReg(1, r0)
		div(regs)
	case Sqrt:
		sqrt(regs)
	case ArcTan:
		arcTan(regs)
	case ArcTan2:
		arcTan2(regs)
	case CpuSet:
		length := (r2 & 0x1FFFFF) >> 1
		if !fromBIOS(r0, length) {
			ticks = cpuSetTicks(r0, r1, r2, length, t)
		}
		cpuSet(regs, mem)
	case CpuFastSet:
		length := (r2 & 0x1FFFFF) >> 5
		if !fromBIOS(r0, length) {
			ticks = cpuFastSetTicks(r0, r1, r2, length, t)
		}
		cpuFastSet(regs, mem)
	case BgAffineSet:
		bgAffineSet(regs, mem)
	case ObjAffineSet:
		objAffineSet(regs, mem)
	case BitUnPack:
		length := mem.Read16(r2)
		if !fromBIOS(r0, length) {
			ticks = (32 + t.Wait[memory.Region(r0)]) * int(length)
		}
		bitUnPack(regs, mem)
	case LZ77UnCompWram, LZ77UnCompVram, HuffUnComp, RLUnCompWram,
		Diff8bitUnFilterWram:
		ticks = streamTicks(n, r0, r1, mem.Read32(r0)>>8, t)
		decompress(n, regs, mem)
	case RLUnCompVram, Diff8bitUnFilterVram, Diff16bitUnFilter:
		ticks = streamTicks(n, r0, r1, mem.Read32(r0)>>9, t)
		decompress(n, regs, mem)
	case SoundBias:
	case MidiKey2Freq:
		midiKey2Freq(regs, mem)
	case SndDriverJmpTable:
		for i := uint32(0); i < 0x24; i++ {
			mem.Write32(r0+i*4, 0x9C)
		}
		regs.SetReg(0, r0+0x24*4)
	default:
		return 0, false
	}
	return ticks, true
}

func cpuSetTicks(src, dst, cnt, length uint32, t *memory.Timing) int {
	s, d := memory.Region(src), memory.Region(dst)
	fill := cnt&(1<<24) != 0
	wide := cnt&(1<<26) != 0
	switch {
	case fill && wide:
		return (7 + t.Wait32[d]) * int(length>>1)
	case fill:
		return (8 + t.Wait[d]) * int(length)
	case wide:
		return (10 + t.Wait32[s] + t.Wait32[d]) * int(length>>1)
	}
	return (11 + t.Wait[s] + t.Wait[d]) * int(length)
}

func cpuFastSetTicks(src, dst, cnt, length uint32, t *memory.Timing) int {
	s, d := memory.Region(src), memory.Region(dst)
	if cnt&(1<<24) != 0 {
		return (6 + t.Wait32[d] + 7*(t.WaitSeq32[d]+1)) * int(length)
	}
	return (9 + t.Wait32[s] + t.Wait32[d] + 7*(t.WaitSeq32[s]+t.WaitSeq32[d]+2)) * int(length)
}

// streamTicks charges the decompressors per header length unit.
func streamTicks(n, src, dst, length uint32, t *memory.Timing) int {
	if fromBIOS(src, length&0x1FFFFF) {
		return 0
	}
	s, d := t.Wait[memory.Region(src)], t.Wait[memory.Region(dst)]
	var per int
	switch n {
	case LZ77UnCompWram:
		per = 9 + d
	case LZ77UnCompVram:
		per = 19 + d
	case HuffUnComp:
		per = 29 + s<<1
	case RLUnCompWram:
		per = 11 + s + d
	case RLUnCompVram:
		per = 34 + s<<1 + d
	case Diff8bitUnFilterWram:
		per = 13 + s + d
	case Diff8bitUnFilterVram:
		per = 39 + s<<1 + d
	case Diff16bitUnFilter:
		per = 13 + s + d
	}
	return per * int(length)
}
