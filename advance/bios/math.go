package bios

import "math"

// sineTable holds sin(2πi/256) in 1.14 fixed point.
var sineTable [256]int32

func init() {
	for i := range sineTable {
		sineTable[i] = int32(math.Sin(2*math.Pi*float64(i)/256) * 0x4000)
	}
}

// div leaves the quotient in r0, the remainder in r1 and the absolute
// quotient in r3. Division by zero leaves the registers alone.
func div(regs Registers) {
	number := int32(regs.Reg(0))
	denom := int32(regs.Reg(1))
	if denom == 0 {
		return
	}
	quotient := number / denom
	regs.SetReg(0, uint32(quotient))
	regs.SetReg(1, uint32(number%denom))
	if quotient < 0 {
		quotient = -quotient
	}
	regs.SetReg(3, uint32(quotient))
}

func sqrt(regs Registers) {
	regs.SetReg(0, uint32(math.Sqrt(float64(regs.Reg(0)))))
}

// arcTan evaluates the BIOS polynomial for r0 in 1.14 fixed point.
func arcTan(regs Registers) {
	x := int32(regs.Reg(0))
	a := -((x * x) >> 14)
	b := ((0xA9 * a) >> 14) + 0x390
	b = ((b * a) >> 14) + 0x91C
	b = ((b * a) >> 14) + 0xFB6
	b = ((b * a) >> 14) + 0x16AA
	b = ((b * a) >> 14) + 0x2081
	b = ((b * a) >> 14) + 0x3651
	b = ((b * a) >> 14) + 0xA2F9
	regs.SetReg(0, uint32((x*b)>>16))
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// arcTan2 returns the angle of (r0, r1) as 0..0xFFFF.
func arcTan2(regs Registers) {
	x := int32(regs.Reg(0))
	y := int32(regs.Reg(1))
	var res uint32

	switch {
	case y == 0:
		res = uint32(x>>16) & 0x8000
	case x == 0:
		res = uint32(y>>16)&0x8000 + 0x4000
	case abs32(x) > abs32(y) || (abs32(x) == abs32(y) && !(x < 0 && y < 0)):
		regs.SetReg(1, uint32(x))
		regs.SetReg(0, uint32(y<<14))
		div(regs)
		arcTan(regs)
		if x < 0 {
			res = 0x8000 + regs.Reg(0)
		} else {
			res = (uint32(y>>16)&0x8000)<<1 + regs.Reg(0)
		}
	default:
		regs.SetReg(0, uint32(x<<14))
		div(regs)
		arcTan(regs)
		res = 0x4000 + uint32(y>>16)&0x8000 - regs.Reg(0)
	}
	regs.SetReg(0, res)
}

// bgAffineSet converts r2 entries of (centre, display origin, scale,
// angle) at r0 into PA-PD and reference point blocks at r1.
func bgAffineSet(regs Registers, mem Memory) {
	src, dest := regs.Reg(0), regs.Reg(1)
	for n := regs.Reg(2); n > 0; n-- {
		cx := int32(mem.Read32(src))
		cy := int32(mem.Read32(src + 4))
		dispX := int32(int16(mem.Read16(src + 8)))
		dispY := int32(int16(mem.Read16(src + 10)))
		rx := int32(int16(mem.Read16(src + 12)))
		ry := int32(int16(mem.Read16(src + 14)))
		theta := mem.Read16(src+16) >> 8
		src += 20

		a := sineTable[(theta+0x40)&0xFF]
		b := sineTable[theta&0xFF]
		dx := int32(int16((rx * a) >> 14))
		dmx := int32(int16((rx * b) >> 14))
		dy := int32(int16((ry * b) >> 14))
		dmy := int32(int16((ry * a) >> 14))

		mem.Write16(dest, uint16(dx))
		mem.Write16(dest+2, uint16(-dmx))
		mem.Write16(dest+4, uint16(dy))
		mem.Write16(dest+6, uint16(dmy))
		mem.Write32(dest+8, uint32(cx-dx*dispX+dmx*dispY))
		mem.Write32(dest+12, uint32(cy-dy*dispX-dmy*dispY))
		dest += 16
	}
}

// objAffineSet writes r2 parameter sets to r1, r3 bytes apart.
func objAffineSet(regs Registers, mem Memory) {
	src, dest := regs.Reg(0), regs.Reg(1)
	offset := regs.Reg(3)
	for n := regs.Reg(2); n > 0; n-- {
		rx := int32(int16(mem.Read16(src)))
		ry := int32(int16(mem.Read16(src + 2)))
		theta := mem.Read16(src+4) >> 8
		src += 8

		a := sineTable[(theta+0x40)&0xFF]
		b := sineTable[theta&0xFF]
		for _, v := range [4]int32{(rx * a) >> 14, -((rx * b) >> 14), (ry * b) >> 14, (ry * a) >> 14} {
			mem.Write16(dest, uint16(v))
			dest += offset
		}
	}
}

// midiKey2Freq computes the sample rate for MIDI key r1 with fine
// adjust r2 from the WaveData header at r0.
func midiKey2Freq(regs Registers, mem Memory) {
	freq := float64(mem.Read32(regs.Reg(0) + 4))
	exp := float64(180-int32(regs.Reg(1))) - float64(regs.Reg(2))/256
	regs.SetReg(0, uint32(int32(freq/math.Pow(2, exp/12))))
}
