// Package video turns the picture registers and video memories into
// scanlines: per-layer line buffers, sprite evaluation, window and blend
// composition, and the final conversion into the host pixel format.
package video

// PixelFormat describes how the host surface packs a pixel.
type PixelFormat struct {
	BPP    int
	RShift uint
	GShift uint
	BShift uint
	// AMask is ORed into every 32-bit pixel.
	AMask uint32
}

var (
	// FormatRGBA32 lays out bytes R, G, B, A in memory, as image.RGBA does.
	FormatRGBA32 = PixelFormat{BPP: 32, RShift: 0, GShift: 8, BShift: 16, AMask: 0xFF000000}
	// FormatARGB32 is the 0xAARRGGBB word layout SDL and tcell expect.
	FormatARGB32 = PixelFormat{BPP: 32, RShift: 16, GShift: 8, BShift: 0, AMask: 0xFF000000}
	// FormatRGB565 is the 16bpp layout.
	FormatRGB565 = PixelFormat{BPP: 16, RShift: 11, GShift: 5, BShift: 0}
)

// MakeColor packs 8-bit channels.
func (f PixelFormat) MakeColor(r, g, b uint32) uint32 {
	if f.BPP == 16 {
		return r>>3<<f.RShift | g>>2<<f.GShift | b>>3<<f.BShift
	}
	return r<<f.RShift | g<<f.GShift | b<<f.BShift | f.AMask
}

// Components unpacks a pixel made by MakeColor back into 8-bit channels.
func (f PixelFormat) Components(p uint32) (r, g, b uint8) {
	if f.BPP == 16 {
		r5 := p >> f.RShift & 0x1F
		g6 := p >> f.GShift & 0x3F
		b5 := p >> f.BShift & 0x1F
		return uint8(r5<<3 | r5>>2), uint8(g6<<2 | g6>>4), uint8(b5<<3 | b5>>2)
	}
	return uint8(p >> f.RShift), uint8(p >> f.GShift), uint8(p >> f.BShift)
}

// ColorMap converts 15-bit BGR555 colors to host pixels. It has an entry
// for every 16-bit value so the line copy can index it with the low half
// of a composed pixel without masking.
type ColorMap struct {
	format PixelFormat
	table  [0x10000]uint32
}

// NewColorMap builds the table for format. 16bpp channels are rescaled to
// the full 8-bit range first; 32bpp keeps the plain shift.
func NewColorMap(format PixelFormat) *ColorMap {
	c := &ColorMap{format: format}
	for x := range c.table {
		r := uint32(x & 0x1F)
		g := uint32(x & 0x3E0 >> 5)
		b := uint32(x & 0x7C00 >> 10)
		if format.BPP == 16 {
			r = (r*255 + 15) / 31
			g = (g*255 + 15) / 31
			b = (b*255 + 15) / 31
		} else {
			r <<= 3
			g <<= 3
			b <<= 3
		}
		c.table[x] = format.MakeColor(r, g, b)
	}
	return c
}

// Format returns the pixel format the table was built for.
func (c *ColorMap) Format() PixelFormat {
	return c.format
}

// Lookup returns the host pixel for a BGR555 color.
func (c *ColorMap) Lookup(color uint16) uint32 {
	return c.table[color]
}
