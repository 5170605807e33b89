package video

import (
	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/memory"
	"github.com/valerio/go-advance/advance/savestate"
)

// Layer line entries carry the BGR555 color in the low half, the layer
// priority in bits 25-26 and a transparency marker in bit 31.
const (
	transparent     uint32 = 0x80000000
	semiTransparent uint32 = 0x00010000
	priorityShift          = 25
)

const (
	layerOBJ      = 4
	layerBackdrop = 5
)

// Memory is the view of the machine the renderer reads. IO is the raw
// register window, kept up to date by the register dispatcher.
type Memory struct {
	IO      []byte
	Palette []byte
	VRAM    []byte
	OAM     []byte
}

// Renderer produces one composed scanline per call to RenderLine.
type Renderer struct {
	mem Memory

	layerSettings    uint16
	layerEnable      uint16
	layerEnableDelay int

	mode    int
	effects Effects
	draw    LineFunc

	inWin0 [ScreenWidth]bool
	inWin1 [ScreenWidth]bool

	bg     [4][ScreenWidth]uint32
	obj    [ScreenWidth]uint32
	objWin [ScreenWidth]bool
	mix    [ScreenWidth]uint32

	// internal affine reference points for BG2 and BG3, 20.8 fixed point
	refX    [2]int32
	refY    [2]int32
	changed [2]uint8
}

// NewRenderer returns a renderer over mem with every layer enabled.
func NewRenderer(mem Memory) *Renderer {
	r := &Renderer{mem: mem, layerSettings: 0xFF00}
	r.Reset()
	return r
}

func (r *Renderer) reg(offset uint32) uint16 {
	return memory.Read16(r.mem.IO, offset)
}

func (r *Renderer) paletteColor(index uint32) uint32 {
	return uint32(memory.Read16(r.mem.Palette, index*2) & 0x7FFF)
}

// Reset clears the line state and reselects from the current registers.
func (r *Renderer) Reset() {
	r.layerEnableDelay = 0
	r.layerEnable = r.layerSettings & r.reg(addr.DISPCNT)
	r.refX = [2]int32{}
	r.refY = [2]int32{}
	r.changed = [2]uint8{3, 3}
	r.clearLayers()
	r.Resync()
}

func (r *Renderer) clearLayers() {
	for i := range r.bg {
		for x := range r.bg[i] {
			r.bg[i][x] = transparent
		}
	}
	for x := range r.obj {
		r.obj[x] = transparent
		r.objWin[x] = false
	}
}

// SetLayerSettings sets the host layer mask: bits 8-11 BG0-BG3, bit 12
// OBJ, bits 13-15 the windows.
func (r *Renderer) SetLayerSettings(mask uint16) {
	r.layerSettings = mask
	r.layerEnable = mask & r.reg(addr.DISPCNT)
	r.Select()
}

// LayerEnable returns the layers currently drawn.
func (r *Renderer) LayerEnable() uint16 {
	return r.layerEnable
}

// SetDisplayControl handles a DISPCNT write. Backgrounds switched on show
// up after a few lines, like on hardware.
func (r *Renderer) SetDisplayControl(old, value uint16) {
	turnedOn := ^old & value & 0x0F00
	if turnedOn != 0 {
		r.layerEnableDelay = 4
		r.layerEnable = r.layerSettings & value &^ turnedOn
	} else {
		r.layerEnable = r.layerSettings & value
	}
	r.Select()
}

// AffineChanged marks the BG2 (bg 2) or BG3 (bg 3) reference point as
// rewritten: bit 0 for X, bit 1 for Y. The new value is latched before the
// next line is drawn.
func (r *Renderer) AffineChanged(bg int, which uint8) {
	r.changed[bg-2] |= which
}

func referencePoint(low, high uint16) int32 {
	v := uint32(low) | uint32(high&0xFFF)<<16
	return int32(v<<4) >> 4
}

func (r *Renderer) latchAffine(force bool) {
	for i := 0; i < 2; i++ {
		base := uint32(i) * 0x10
		if force || r.changed[i]&1 != 0 {
			r.refX[i] = referencePoint(r.reg(addr.BG2X_L+base), r.reg(addr.BG2X_H+base))
		}
		if force || r.changed[i]&2 != 0 {
			r.refY[i] = referencePoint(r.reg(addr.BG2Y_L+base), r.reg(addr.BG2Y_H+base))
		}
		r.changed[i] = 0
	}
}

func (r *Renderer) advanceAffine(bg int) {
	i := bg - 2
	base := uint32(i) * 0x10
	r.refX[i] += int32(int16(r.reg(addr.BG2PB + base)))
	r.refY[i] += int32(int16(r.reg(addr.BG2PD + base)))
}

// RenderLine draws visible line y and returns the composed BGR555 line.
func (r *Renderer) RenderLine(y int) *[ScreenWidth]uint32 {
	if r.layerEnableDelay > 0 {
		r.layerEnableDelay--
		if r.layerEnableDelay == 1 {
			r.layerEnable = r.layerSettings & r.reg(addr.DISPCNT)
		}
	}
	r.latchAffine(y == 0)

	if r.reg(addr.DISPCNT)&0x80 != 0 {
		// forced blank
		for x := range r.mix {
			r.mix[x] = 0x7FFF
		}
		return &r.mix
	}
	r.draw(r, y)
	return &r.mix
}

// Line returns the last composed line.
func (r *Renderer) Line() *[ScreenWidth]uint32 {
	return &r.mix
}

// UpdateWindow recomputes the horizontal membership table of window n
// from its WINnH value.
func (r *Renderer) UpdateWindow(n int, winh uint16) {
	table := &r.inWin0
	if n == 1 {
		table = &r.inWin1
	}
	left, right := int(winh>>8), int(winh&0xFF)
	for x := range table {
		if left <= right {
			table[x] = x >= left && x < right
		} else {
			table[x] = x >= left || x < right
		}
	}
}

// InWindow reports whether column x is inside window n.
func (r *Renderer) InWindow(n, x int) bool {
	if n == 1 {
		return r.inWin1[x]
	}
	return r.inWin0[x]
}

// Resync rebuilds everything derived from registers after a state load.
func (r *Renderer) Resync() {
	r.UpdateWindow(0, r.reg(addr.WIN0H))
	r.UpdateWindow(1, r.reg(addr.WIN1H))
	r.Select()
}

// StateAction saves or restores the latched line state.
func (r *Renderer) StateAction(s *savestate.Section) {
	s.Uint16(&r.layerEnable)
	s.Int(&r.layerEnableDelay)
	s.Int32(&r.refX[0])
	s.Int32(&r.refX[1])
	s.Int32(&r.refY[0])
	s.Int32(&r.refY[1])
	s.Bytes(r.changed[:])
}
