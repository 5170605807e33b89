package bios

// sink writes decompressed bytes either one at a time (WRAM) or in
// halfword pairs (VRAM, which ignores byte writes).
type sink struct {
	mem     Memory
	dest    uint32
	vram    bool
	pending uint8
	left    uint32
}

// put stores b and reports whether more output is expected.
func (s *sink) put(b uint8) bool {
	if s.left == 0 {
		return false
	}
	if !s.vram {
		s.mem.Write8(s.dest, b)
	} else if s.dest&1 == 0 {
		s.pending = b
	} else {
		s.mem.Write16(s.dest-1, uint16(s.pending)|uint16(b)<<8)
	}
	s.dest++
	s.left--
	return s.left > 0
}

// back reads the output byte distance positions behind the write cursor.
func (s *sink) back(distance uint32) uint8 {
	address := s.dest - distance
	if s.vram && s.dest&1 == 1 && address == s.dest-1 {
		return s.pending
	}
	return s.mem.Read8(address)
}

func decompress(n uint32, regs Registers, mem Memory) {
	source, dest := regs.Reg(0), regs.Reg(1)
	header := mem.Read32(source)
	length := header >> 8
	if fromBIOS(source, length&0x1FFFFF) || length == 0 {
		return
	}
	out := &sink{mem: mem, dest: dest, left: length}
	source += 4

	switch n {
	case LZ77UnCompVram:
		out.vram = true
		fallthrough
	case LZ77UnCompWram:
		lz77(source, mem, out)
	case HuffUnComp:
		huffman(source, header, mem, dest)
	case RLUnCompVram:
		out.vram = true
		fallthrough
	case RLUnCompWram:
		runLength(source, mem, out)
	case Diff8bitUnFilterVram:
		out.vram = true
		fallthrough
	case Diff8bitUnFilterWram:
		diff8(source, mem, out)
	case Diff16bitUnFilter:
		diff16(source, dest, length, mem)
	}
}

func lz77(source uint32, mem Memory, out *sink) {
	for {
		flags := mem.Read8(source)
		source++
		for i := 0; i < 8; i++ {
			if flags&0x80 == 0 {
				if !out.put(mem.Read8(source)) {
					return
				}
				source++
			} else {
				block := uint32(mem.Read8(source))<<8 | uint32(mem.Read8(source+1))
				source += 2
				count := int(block>>12) + 3
				distance := block&0x0FFF + 1
				for ; count > 0; count-- {
					if !out.put(out.back(distance)) {
						return
					}
				}
			}
			flags <<= 1
		}
	}
}

func runLength(source uint32, mem Memory, out *sink) {
	for {
		flag := mem.Read8(source)
		source++
		count := int(flag & 0x7F)
		if flag&0x80 != 0 {
			value := mem.Read8(source)
			source++
			for count += 3; count > 0; count-- {
				if !out.put(value) {
					return
				}
			}
			continue
		}
		for count++; count > 0; count-- {
			value := mem.Read8(source)
			source++
			if !out.put(value) {
				return
			}
		}
	}
}

func diff8(source uint32, mem Memory, out *sink) {
	var value uint8
	for {
		value += mem.Read8(source)
		source++
		if !out.put(value) {
			return
		}
	}
}

func diff16(source, dest, length uint32, mem Memory) {
	var value uint16
	for ; length >= 2; length -= 2 {
		value += uint16(mem.Read16(source))
		mem.Write16(dest, value)
		source += 2
		dest += 2
	}
}

// huffman walks the tree after the header for each bit of the 32-bit
// little-endian bitstream, most significant bit first. Nodes carry the
// child offset in bits 0-5 and leaf flags for the left (bit 7) and right
// (bit 6) children.
func huffman(source, header uint32, mem Memory, dest uint32) {
	dataBits := header & 0xF
	if dataBits != 4 && dataBits != 8 {
		return
	}
	length := header >> 8
	treeSize := uint32(mem.Read8(source))
	root := source + 1
	stream := source + (treeSize+1)*2

	var word, written uint32
	var shift uint32
	node := root
	nodeValue := mem.Read8(root)

	for written < length {
		bits := mem.Read32(stream)
		stream += 4
		for mask := uint32(0x80000000); mask != 0 && written < length; mask >>= 1 {
			child := node&^1 + uint32(nodeValue&0x3F)*2 + 2
			leaf := nodeValue&0x80 != 0
			if bits&mask != 0 {
				child++
				leaf = nodeValue&0x40 != 0
			}
			if !leaf {
				node = child
				nodeValue = mem.Read8(child)
				continue
			}

			word |= (uint32(mem.Read8(child)) & (1<<dataBits - 1)) << shift
			shift += dataBits
			node = root
			nodeValue = mem.Read8(root)
			if shift == 32 {
				mem.Write32(dest, word)
				dest += 4
				written += 4
				word = 0
				shift = 0
			}
		}
	}
}
