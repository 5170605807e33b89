package video

import (
	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/memory"
)

type bitmapKind int

const (
	bitmap16 bitmapKind = iota
	bitmapPaletted
)

func (r *Renderer) enabled(bg int) bool {
	return r.layerEnable&(0x100<<bg) != 0
}

func (r *Renderer) frameBase() uint32 {
	if r.reg(addr.DISPCNT)&0x10 != 0 {
		return 0xA000
	}
	return 0
}

func clearLine(line *[ScreenWidth]uint32) {
	for x := range line {
		line[x] = transparent
	}
}

// textBackground draws a scrolling tiled background into its line buffer.
func (r *Renderer) textBackground(bg, y int) {
	line := &r.bg[bg]
	if !r.enabled(bg) {
		clearLine(line)
		return
	}

	offset := uint32(bg) * 2
	cnt := r.reg(addr.BG0CNT + offset)
	hofs := int(r.reg(addr.BG0HOFS+offset*2) & 0x1FF)
	vofs := int(r.reg(addr.BG0VOFS+offset*2) & 0x1FF)

	priority := uint32(cnt&3) << priorityShift
	charBase := uint32(cnt>>2&3) * 0x4000
	screenBase := uint32(cnt>>8&0x1F) * 0x800
	color256 := cnt&0x80 != 0
	width := 256 << (cnt >> 14 & 1)
	height := 256 << (cnt >> 15)

	vram := r.mem.VRAM
	py := (y + vofs) & (height - 1)
	for x := range line {
		px := (x + hofs) & (width - 1)

		block := screenBase
		tx, ty := px>>3, py>>3
		if tx >= 32 {
			block += 0x800
			tx -= 32
		}
		if ty >= 32 {
			block += 0x800 * uint32(width/256)
			ty -= 32
		}
		entry := uint32(memory.Read16(vram, (block+uint32(ty*32+tx)*2)&0xFFFF))

		col, row := uint32(px&7), uint32(py&7)
		if entry&0x400 != 0 {
			col = 7 - col
		}
		if entry&0x800 != 0 {
			row = 7 - row
		}
		tile := entry & 0x3FF

		var index uint32
		if color256 {
			at := charBase + tile*64 + row*8 + col
			if at < 0x10000 {
				index = uint32(vram[at])
			}
		} else {
			at := charBase + tile*32 + row*4 + col/2
			if at < 0x10000 {
				index = uint32(vram[at]>>(col&1*4)) & 0xF
				if index != 0 {
					index |= entry >> 12 << 4
				}
			}
		}

		if index == 0 {
			line[x] = transparent
			continue
		}
		line[x] = r.paletteColor(index) | priority
	}
}

// affineBackground draws a rotation/scaling background (2 or 3) and steps
// its reference point to the next line.
func (r *Renderer) affineBackground(bg int) {
	line := &r.bg[bg]
	defer r.advanceAffine(bg)
	if !r.enabled(bg) {
		clearLine(line)
		return
	}

	offset := uint32(bg) * 2
	cnt := r.reg(addr.BG0CNT + offset)
	priority := uint32(cnt&3) << priorityShift
	charBase := uint32(cnt>>2&3) * 0x4000
	screenBase := uint32(cnt>>8&0x1F) * 0x800
	wrap := cnt&0x2000 != 0
	size := int32(128 << (cnt >> 14))

	i := bg - 2
	base := uint32(i) * 0x10
	pa := int32(int16(r.reg(addr.BG2PA + base)))
	pc := int32(int16(r.reg(addr.BG2PC + base)))
	fx, fy := r.refX[i], r.refY[i]

	vram := r.mem.VRAM
	for x := range line {
		tx, ty := fx>>8, fy>>8
		fx += pa
		fy += pc

		if wrap {
			tx &= size - 1
			ty &= size - 1
		} else if tx < 0 || ty < 0 || tx >= size || ty >= size {
			line[x] = transparent
			continue
		}

		tile := uint32(vram[(screenBase+uint32(ty>>3*(size>>3)+tx>>3))&0xFFFF])
		at := charBase + tile*64 + uint32(ty&7)*8 + uint32(tx&7)
		var index uint32
		if at < 0x10000 {
			index = uint32(vram[at])
		}
		if index == 0 {
			line[x] = transparent
			continue
		}
		line[x] = r.paletteColor(index) | priority
	}
}

// bitmapBackground draws BG2 in one of the bitmap modes, with the affine
// transform applied and no wrapping.
func (r *Renderer) bitmapBackground(kind bitmapKind, frame uint32, width, height int32) {
	line := &r.bg[2]
	defer r.advanceAffine(2)
	if !r.enabled(2) {
		clearLine(line)
		return
	}

	priority := uint32(r.reg(addr.BG2CNT)&3) << priorityShift
	pa := int32(int16(r.reg(addr.BG2PA)))
	pc := int32(int16(r.reg(addr.BG2PC)))
	fx, fy := r.refX[0], r.refY[0]

	vram := r.mem.VRAM
	for x := range line {
		tx, ty := fx>>8, fy>>8
		fx += pa
		fy += pc

		if tx < 0 || ty < 0 || tx >= width || ty >= height {
			line[x] = transparent
			continue
		}
		pixel := uint32(ty*width + tx)
		if kind == bitmapPaletted {
			index := uint32(vram[frame+pixel])
			if index == 0 {
				line[x] = transparent
				continue
			}
			line[x] = r.paletteColor(index) | priority
			continue
		}
		line[x] = uint32(memory.Read16(vram, frame+pixel*2)&0x7FFF) | priority
	}
}
