package video

import (
	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/memory"
)

const (
	objTileBase    = 0x10000
	objPaletteBase = 0x100
	spriteCount    = 128
)

// spriteSizes is indexed by shape, then size: width and height in pixels.
var spriteSizes = [4][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},
	{{8, 8}, {8, 8}, {8, 8}, {8, 8}},
}

// Sprite is one decoded OAM entry.
type Sprite struct {
	Index    int
	X, Y     int
	Width    int
	Height   int
	Tile     uint32
	Priority uint32
	Palette  uint32
	Mode     uint16 // 0 normal, 1 semi-transparent, 2 window
	Color256 bool
	FlipX    bool
	FlipY    bool
	Affine   bool
	Double   bool
	Group    uint32
	Hidden   bool
}

// ParseSprite decodes the three attribute halfwords of an OAM entry.
func ParseSprite(index int, a0, a1, a2 uint16) Sprite {
	shape, size := a0>>14, a1>>14
	s := Sprite{
		Index:    index,
		Y:        int(a0 & 0xFF),
		X:        int(a1 & 0x1FF),
		Width:    spriteSizes[shape][size][0],
		Height:   spriteSizes[shape][size][1],
		Tile:     uint32(a2 & 0x3FF),
		Priority: uint32(a2 >> 10 & 3),
		Palette:  uint32(a2 >> 12),
		Mode:     a0 >> 10 & 3,
		Color256: a0&0x2000 != 0,
		Affine:   a0&0x100 != 0,
	}
	if s.Y >= ScreenHeight {
		s.Y -= 256
	}
	if s.X >= ScreenWidth {
		s.X -= 512
	}
	if s.Affine {
		s.Double = a0&0x200 != 0
		s.Group = uint32(a1 >> 9 & 0x1F)
	} else {
		s.Hidden = a0&0x200 != 0
		s.FlipX = a1&0x1000 != 0
		s.FlipY = a1&0x2000 != 0
	}
	if shape == 3 || s.Mode == 3 {
		s.Hidden = true
	}
	return s
}

// Bounds is the on-screen size, doubled for double-size affine sprites.
func (s Sprite) Bounds() (int, int) {
	if s.Double {
		return s.Width * 2, s.Height * 2
	}
	return s.Width, s.Height
}

func (r *Renderer) sprite(n int) Sprite {
	base := uint32(n) * 8
	oam := r.mem.OAM
	return ParseSprite(n, memory.Read16(oam, base), memory.Read16(oam, base+2), memory.Read16(oam, base+4))
}

// sprites fills the OBJ line and the OBJ window mask for line y. Lower
// OAM indices win over higher ones of the same priority.
func (r *Renderer) sprites(y int) {
	for x := range r.obj {
		r.obj[x] = transparent
		r.objWin[x] = false
	}
	if r.layerEnable&0x1000 == 0 {
		return
	}

	dispcnt := r.reg(addr.DISPCNT)
	oneD := dispcnt&0x40 != 0
	bitmapMode := dispcnt&7 >= 3

	for n := 0; n < spriteCount; n++ {
		s := r.sprite(n)
		if s.Hidden {
			continue
		}
		boundW, boundH := s.Bounds()
		iy := y - s.Y
		if iy < 0 || iy >= boundH {
			// sprites wrap vertically around line 256
			iy += 256
			if iy < 0 || iy >= boundH {
				continue
			}
		}
		if bitmapMode && s.Tile < 512 {
			continue
		}

		pa, pb, pc, pd := int32(0x100), int32(0), int32(0), int32(0x100)
		if s.Affine {
			group := s.Group * 32
			pa = int32(int16(memory.Read16(r.mem.OAM, group+6)))
			pb = int32(int16(memory.Read16(r.mem.OAM, group+14)))
			pc = int32(int16(memory.Read16(r.mem.OAM, group+22)))
			pd = int32(int16(memory.Read16(r.mem.OAM, group+30)))
		}

		for ix := 0; ix < boundW; ix++ {
			sx := s.X + ix
			if sx < 0 || sx >= ScreenWidth {
				continue
			}

			tx, ty := ix, iy
			if s.Affine {
				cx, cy := int32(ix-boundW/2), int32(iy-boundH/2)
				tx = int((pa*cx+pb*cy)>>8) + s.Width/2
				ty = int((pc*cx+pd*cy)>>8) + s.Height/2
				if tx < 0 || ty < 0 || tx >= s.Width || ty >= s.Height {
					continue
				}
			} else {
				if s.FlipX {
					tx = s.Width - 1 - tx
				}
				if s.FlipY {
					ty = s.Height - 1 - ty
				}
			}

			color, ok := r.spritePixel(s, tx, ty, oneD)
			if !ok {
				continue
			}
			if s.Mode == 2 {
				r.objWin[sx] = true
				continue
			}

			current := r.obj[sx]
			if current&transparent == 0 && current>>priorityShift&3 <= s.Priority {
				continue
			}
			entry := color | s.Priority<<priorityShift
			if s.Mode == 1 {
				entry |= semiTransparent
			}
			r.obj[sx] = entry
		}
	}
}

// spritePixel returns the color of texel tx, ty of s, or false when it is
// transparent.
func (r *Renderer) spritePixel(s Sprite, tx, ty int, oneD bool) (uint32, bool) {
	units := uint32(1)
	if s.Color256 {
		units = 2
	}

	tile := s.Tile
	if oneD {
		tile += uint32(ty>>3) * uint32(s.Width>>3) * units
	} else {
		if s.Color256 {
			tile &^= 1
		}
		tile += uint32(ty>>3) * 32
	}
	tile += uint32(tx>>3) * units

	at := objTileBase + (tile&0x3FF)*32
	col, row := uint32(tx&7), uint32(ty&7)

	var index uint32
	if s.Color256 {
		index = uint32(r.mem.VRAM[(at+row*8+col)&0x1FFFF])
		if index == 0 {
			return 0, false
		}
	} else {
		index = uint32(r.mem.VRAM[(at+row*4+col/2)&0x1FFFF]>>(col&1*4)) & 0xF
		if index == 0 {
			return 0, false
		}
		index |= s.Palette << 4
	}
	return r.paletteColor(objPaletteBase + index), true
}
