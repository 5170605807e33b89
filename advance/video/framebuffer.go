package video

import "image"

const (
	ScreenWidth  = 240
	ScreenHeight = 160
)

// FrameBuffer is the host surface a frame is drawn into, either 16 or 32
// bits per pixel.
type FrameBuffer struct {
	format PixelFormat
	pix32  []uint32
	pix16  []uint16
}

// NewFrameBuffer allocates a 240x160 surface in format.
func NewFrameBuffer(format PixelFormat) *FrameBuffer {
	fb := &FrameBuffer{format: format}
	if format.BPP == 16 {
		fb.pix16 = make([]uint16, ScreenWidth*ScreenHeight)
	} else {
		fb.pix32 = make([]uint32, ScreenWidth*ScreenHeight)
	}
	return fb
}

func (fb *FrameBuffer) Format() PixelFormat {
	return fb.format
}

// Pix32 returns the pixels of a 32bpp surface, nil otherwise.
func (fb *FrameBuffer) Pix32() []uint32 {
	return fb.pix32
}

// Pix16 returns the pixels of a 16bpp surface, nil otherwise.
func (fb *FrameBuffer) Pix16() []uint16 {
	return fb.pix16
}

// WriteLine converts a composed scanline through cm into row y.
func (fb *FrameBuffer) WriteLine(y int, line *[ScreenWidth]uint32, cm *ColorMap) {
	if y < 0 || y >= ScreenHeight {
		return
	}
	if fb.format.BPP == 16 {
		dest := fb.pix16[y*ScreenWidth : (y+1)*ScreenWidth]
		for x := range dest {
			dest[x] = uint16(cm.table[uint16(line[x])])
		}
		return
	}
	dest := fb.pix32[y*ScreenWidth : (y+1)*ScreenWidth]
	for x := range dest {
		dest[x] = cm.table[uint16(line[x])]
	}
}

// Pixel returns the raw host pixel at x, y.
func (fb *FrameBuffer) Pixel(x, y int) uint32 {
	if fb.format.BPP == 16 {
		return uint32(fb.pix16[y*ScreenWidth+x])
	}
	return fb.pix32[y*ScreenWidth+x]
}

// RGB returns the 8-bit channels at x, y.
func (fb *FrameBuffer) RGB(x, y int) (r, g, b uint8) {
	return fb.format.Components(fb.Pixel(x, y))
}

// Image copies the frame into an image.RGBA.
func (fb *FrameBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			r, g, b := fb.RGB(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 0xFF
		}
	}
	return img
}
