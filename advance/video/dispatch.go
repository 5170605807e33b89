package video

import "github.com/valerio/go-advance/advance/addr"

// Effects classifies how much composition a line needs.
type Effects int

const (
	// EffectsNone draws layers by priority only.
	EffectsNone Effects = iota
	// EffectsNoWindow applies color effects without windows.
	EffectsNoWindow
	// EffectsAll applies windows and color effects.
	EffectsAll
)

// LineFunc draws one visible line into the renderer's mix buffer.
type LineFunc func(r *Renderer, y int)

// lineFuncs is indexed by video mode and effects class.
var lineFuncs = [6][3]LineFunc{
	{mode0Line, mode0LineNoWindow, mode0LineAll},
	{mode1Line, mode1LineNoWindow, mode1LineAll},
	{mode2Line, mode2LineNoWindow, mode2LineAll},
	{mode3Line, mode3LineNoWindow, mode3LineAll},
	{mode4Line, mode4LineNoWindow, mode4LineAll},
	{mode5Line, mode5LineNoWindow, mode5LineAll},
}

// Select picks the line function for the current DISPCNT and BLDCNT.
// Called on writes to either register, never per line.
func (r *Renderer) Select() {
	fxOn := r.reg(addr.BLDCNT)>>6&3 != 0
	windowOn := r.layerEnable&0x6000 != 0
	objWindow := r.layerEnable&0x8000 != 0

	switch {
	case !fxOn && !windowOn && !objWindow:
		r.effects = EffectsNone
	case fxOn && !windowOn && !objWindow:
		r.effects = EffectsNoWindow
	default:
		r.effects = EffectsAll
	}

	r.mode = int(r.reg(addr.DISPCNT) & 7)
	if r.mode >= len(lineFuncs) {
		r.draw = blankLine
		return
	}
	r.draw = lineFuncs[r.mode][r.effects]
}

// Selection returns the video mode and effects class last selected.
func (r *Renderer) Selection() (int, Effects) {
	return r.mode, r.effects
}

// blankLine is used for the invalid modes 6 and 7, which show the backdrop.
func blankLine(r *Renderer, y int) {
	backdrop := r.paletteColor(0)
	for x := range r.mix {
		r.mix[x] = backdrop
	}
}

func mode0Layers(r *Renderer, y int) uint16 {
	for bg := 0; bg < 4; bg++ {
		r.textBackground(bg, y)
	}
	r.sprites(y)
	return 0x1F00
}

func mode1Layers(r *Renderer, y int) uint16 {
	r.textBackground(0, y)
	r.textBackground(1, y)
	r.affineBackground(2)
	r.sprites(y)
	return 0x1700
}

func mode2Layers(r *Renderer, y int) uint16 {
	r.affineBackground(2)
	r.affineBackground(3)
	r.sprites(y)
	return 0x1C00
}

func mode3Layers(r *Renderer, y int) uint16 {
	r.bitmapBackground(bitmap16, 0, ScreenWidth, ScreenHeight)
	r.sprites(y)
	return 0x1400
}

func mode4Layers(r *Renderer, y int) uint16 {
	r.bitmapBackground(bitmapPaletted, r.frameBase(), ScreenWidth, ScreenHeight)
	r.sprites(y)
	return 0x1400
}

func mode5Layers(r *Renderer, y int) uint16 {
	r.bitmapBackground(bitmap16, r.frameBase(), 160, 128)
	r.sprites(y)
	return 0x1400
}

func mode0Line(r *Renderer, y int)         { r.compose(mode0Layers(r, y), y, false, false) }
func mode0LineNoWindow(r *Renderer, y int) { r.compose(mode0Layers(r, y), y, true, false) }
func mode0LineAll(r *Renderer, y int)      { r.compose(mode0Layers(r, y), y, true, true) }
func mode1Line(r *Renderer, y int)         { r.compose(mode1Layers(r, y), y, false, false) }
func mode1LineNoWindow(r *Renderer, y int) { r.compose(mode1Layers(r, y), y, true, false) }
func mode1LineAll(r *Renderer, y int)      { r.compose(mode1Layers(r, y), y, true, true) }
func mode2Line(r *Renderer, y int)         { r.compose(mode2Layers(r, y), y, false, false) }
func mode2LineNoWindow(r *Renderer, y int) { r.compose(mode2Layers(r, y), y, true, false) }
func mode2LineAll(r *Renderer, y int)      { r.compose(mode2Layers(r, y), y, true, true) }
func mode3Line(r *Renderer, y int)         { r.compose(mode3Layers(r, y), y, false, false) }
func mode3LineNoWindow(r *Renderer, y int) { r.compose(mode3Layers(r, y), y, true, false) }
func mode3LineAll(r *Renderer, y int)      { r.compose(mode3Layers(r, y), y, true, true) }
func mode4Line(r *Renderer, y int)         { r.compose(mode4Layers(r, y), y, false, false) }
func mode4LineNoWindow(r *Renderer, y int) { r.compose(mode4Layers(r, y), y, true, false) }
func mode4LineAll(r *Renderer, y int)      { r.compose(mode4Layers(r, y), y, true, true) }
func mode5Line(r *Renderer, y int)         { r.compose(mode5Layers(r, y), y, false, false) }
func mode5LineNoWindow(r *Renderer, y int) { r.compose(mode5Layers(r, y), y, true, false) }
func mode5LineAll(r *Renderer, y int)      { r.compose(mode5Layers(r, y), y, true, true) }
