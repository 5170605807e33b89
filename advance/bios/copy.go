package bios

// cpuSet copies or fills r2&0x1FFFFF units from r0 to r1; bit 24 of r2
// selects fill and bit 26 selects 32-bit units.
func cpuSet(regs Registers, mem Memory) {
	source, dest, cnt := regs.Reg(0), regs.Reg(1), regs.Reg(2)
	if fromBIOS(source, ((cnt<<11)>>9)&0x1FFFFF) {
		return
	}
	count := cnt & 0x1FFFFF
	fill := cnt&(1<<24) != 0

	if cnt&(1<<26) != 0 {
		source &^= 3
		dest &^= 3
		value := mem.Read32(source)
		for ; count > 0; count-- {
			if !fill {
				value = mem.Read32(source)
				source += 4
			}
			mem.Write32(dest, value)
			dest += 4
		}
		return
	}

	source &^= 1
	dest &^= 1
	value := mem.Read16(source)
	for ; count > 0; count-- {
		if !fill {
			value = mem.Read16(source)
			source += 2
		}
		mem.Write16(dest, uint16(value))
		dest += 2
	}
}

// cpuFastSet works in blocks of eight words.
func cpuFastSet(regs Registers, mem Memory) {
	source, dest, cnt := regs.Reg(0), regs.Reg(1), regs.Reg(2)
	if fromBIOS(source, ((cnt<<11)>>9)&0x1FFFFF) {
		return
	}
	source &^= 3
	dest &^= 3
	count := int(cnt & 0x1FFFFF)
	fill := cnt&(1<<24) != 0

	for ; count > 0; count -= 8 {
		value := mem.Read32(source)
		for i := 0; i < 8; i++ {
			if !fill {
				value = mem.Read32(source)
				source += 4
			}
			mem.Write32(dest, value)
			dest += 4
		}
	}
}

// bitUnPack widens packed fields. The header at r2 gives the source
// length, source width, destination width and a base offset whose top bit
// applies it to zero fields too.
func bitUnPack(regs Registers, mem Memory) {
	source, dest, header := regs.Reg(0), regs.Reg(1), regs.Reg(2)

	length := int(mem.Read16(header))
	width := uint32(mem.Read8(header + 2))
	destWidth := uint32(mem.Read8(header + 3))
	base := mem.Read32(header + 4)
	addBase := base&0x80000000 != 0
	base &= 0x7FFFFFFF
	if width == 0 || width > 8 {
		return
	}

	var data uint32
	var shift uint32
	for ; length > 0; length-- {
		b := uint32(mem.Read8(source))
		source++
		mask := uint32(0xFF) >> (8 - width)
		for bitCount := uint32(0); bitCount < 8; bitCount += width {
			d := b & mask
			field := d >> bitCount
			if d != 0 || addBase {
				field += base
			}
			data |= field << shift
			shift += destWidth
			if shift >= 32 {
				mem.Write32(dest, data)
				dest += 4
				data = 0
				shift = 0
			}
			mask <<= width
		}
	}
}
