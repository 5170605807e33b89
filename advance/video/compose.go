package video

import "github.com/valerio/go-advance/advance/addr"

func clamp16(v uint16) uint32 {
	if v > 16 {
		return 16
	}
	return uint32(v)
}

func alphaBlend(top, bottom, eva, evb uint32) uint32 {
	r := (top&0x1F*eva + bottom&0x1F*evb) >> 4
	g := (top>>5&0x1F*eva + bottom>>5&0x1F*evb) >> 4
	b := (top>>10&0x1F*eva + bottom>>10&0x1F*evb) >> 4
	return min(r, 31) | min(g, 31)<<5 | min(b, 31)<<10
}

func brighten(color, evy uint32) uint32 {
	r, g, b := color&0x1F, color>>5&0x1F, color>>10&0x1F
	r += (31 - r) * evy >> 4
	g += (31 - g) * evy >> 4
	b += (31 - b) * evy >> 4
	return r | g<<5 | b<<10
}

func darken(color, evy uint32) uint32 {
	r, g, b := color&0x1F, color>>5&0x1F, color>>10&0x1F
	r -= r * evy >> 4
	g -= g * evy >> 4
	b -= b * evy >> 4
	return r | g<<5 | b<<10
}

// layerOrder is the lookup order within one priority level.
var layerOrder = [5]int{layerOBJ, 0, 1, 2, 3}

// windowLine reports whether line y is inside the vertical span of a
// WINnV value.
func windowLine(winv uint16, y int) bool {
	top, bottom := int(winv>>8), int(winv&0xFF)
	if top <= bottom {
		return y >= top && y < bottom
	}
	return y >= top || y < bottom
}

// compose merges the layer lines into the mix buffer. layers is the DISPCNT
// style mask of the layers the mode provides; fx enables color effects and
// windows enables window masking.
func (r *Renderer) compose(layers uint16, y int, fx, windows bool) {
	enabled := layers & r.layerEnable
	dispcnt := r.reg(addr.DISPCNT)
	bldcnt := uint32(r.reg(addr.BLDCNT))
	alpha := r.reg(addr.BLDALPHA)
	eva, evb := clamp16(alpha&0x1F), clamp16(alpha>>8&0x1F)
	evy := clamp16(r.reg(addr.BLDY) & 0x1F)
	effect := bldcnt >> 6 & 3

	winIn, winOut := r.reg(addr.WININ), r.reg(addr.WINOUT)
	win0 := windows && dispcnt&0x2000 != 0 && windowLine(r.reg(addr.WIN0V), y)
	win1 := windows && dispcnt&0x4000 != 0 && windowLine(r.reg(addr.WIN1V), y)
	objWin := windows && dispcnt&0x8000 != 0

	backdrop := r.paletteColor(0) | 3<<priorityShift

	for x := 0; x < ScreenWidth; x++ {
		mask := uint16(0x3F)
		if windows {
			switch {
			case win0 && r.inWin0[x]:
				mask = winIn & 0x3F
			case win1 && r.inWin1[x]:
				mask = winIn >> 8 & 0x3F
			case objWin && r.objWin[x]:
				mask = winOut >> 8 & 0x3F
			default:
				mask = winOut & 0x3F
			}
		}

		top, second := backdrop, backdrop
		topLayer, secondLayer := layerBackdrop, layerBackdrop
		found := 0
		for prio := uint32(0); prio < 4 && found < 2; prio++ {
			for _, l := range layerOrder {
				if found == 2 {
					break
				}
				if enabled&(0x100<<l) == 0 || mask&(1<<l) == 0 {
					continue
				}
				var px uint32
				if l == layerOBJ {
					px = r.obj[x]
				} else {
					px = r.bg[l][x]
				}
				if px&transparent != 0 || px>>priorityShift&3 != prio {
					continue
				}
				if found == 0 {
					top, topLayer = px, l
				} else {
					second, secondLayer = px, l
				}
				found++
			}
		}

		color := top & 0x7FFF
		secondTarget := bldcnt&(0x100<<secondLayer) != 0
		switch {
		case topLayer == layerOBJ && top&semiTransparent != 0 && secondTarget:
			color = alphaBlend(color, second&0x7FFF, eva, evb)
		case fx && mask&0x20 != 0 && bldcnt&(1<<topLayer) != 0:
			switch effect {
			case 1:
				if secondTarget {
					color = alphaBlend(color, second&0x7FFF, eva, evb)
				}
			case 2:
				color = brighten(color, evy)
			case 3:
				color = darken(color, evy)
			}
		}
		r.mix[x] = color
	}
}
