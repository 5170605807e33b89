package debug

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-advance/advance/video"
)

func testData() *CompleteDebugData {
	d := &CompleteDebugData{
		CPU: &CPUState{
			CPSR:   0x6000009F,
			Mode:   "sys",
			NextPC: 0x08000104,
		},
		IO: &IOState{
			DISPCNT:  0x0403,
			VCOUNT:   159,
			IE:       0x0001,
			IME:      1,
			KEYINPUT: 0x03FE,
		},
		Frame:         42,
		DebuggerState: DebuggerPaused,
	}
	for i := range d.CPU.R {
		d.CPU.R[i] = uint32(i) * 0x11
	}
	return d
}

func TestRegisterLines(t *testing.T) {
	lines := RegisterLines(testData())
	require.Len(t, lines, 10)

	assert.Equal(t, "R0  00000000  R1  00000011  R2  00000022  R3  00000033", lines[0])
	assert.True(t, strings.HasPrefix(lines[3], "R12 000000CC"))
	assert.Equal(t, "CPSR 6000009F [-ZC-I-] sys ARM", lines[4])
	assert.Equal(t, "SPSR 00000000  next 08000104", lines[5])
	assert.Equal(t, "DISPCNT 0403 DISPSTAT 0000 VCOUNT 159", lines[6])
	assert.Equal(t, "IE 0001 IF 0000 IME 1 WAITCNT 0000", lines[7])
	assert.Equal(t, "KEYINPUT 03FE", lines[8])
	assert.Equal(t, "frame 42 (paused)", lines[9])
}

func TestRegisterLinesPartial(t *testing.T) {
	assert.Nil(t, RegisterLines(nil))
	assert.Nil(t, RegisterLines(&CompleteDebugData{}))

	d := testData()
	d.IO = nil
	d.CPU.Thumb = true
	lines := RegisterLines(d)
	assert.Len(t, lines, 7)
	assert.True(t, strings.HasSuffix(lines[4], "THUMB"))
}

func TestWriteRegisters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRegisters(&buf, testData()))
	assert.Equal(t, 10, strings.Count(buf.String(), "\n"))

	buf.Reset()
	require.NoError(t, WriteRegisters(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestDebuggerStateString(t *testing.T) {
	assert.Equal(t, "running", DebuggerRunning.String())
	assert.Equal(t, "step", DebuggerStepFrame.String())
	assert.Equal(t, "unknown", DebuggerState(9).String())
}

type fakeLevels struct{}

func (fakeLevels) ChannelStatus() (ch1, ch2, ch3, ch4 bool) { return true, false, true, false }
func (fakeLevels) FIFOLevel(n int) int                     { return 8 * (n + 1) }

func TestExtractAudioData(t *testing.T) {
	data := ExtractAudioData(fakeLevels{}, 0x80)
	assert.True(t, data.Enabled)
	assert.Equal(t, [4]bool{true, false, true, false}, data.Channels)
	assert.Equal(t, 8, data.FIFOA)
	assert.Equal(t, 16, data.FIFOB)

	data = ExtractAudioData(nil, 0)
	assert.False(t, data.Enabled)
	assert.Equal(t, [4]bool{}, data.Channels)
}

func TestSaveFramePNG(t *testing.T) {
	for _, format := range []video.PixelFormat{video.FormatRGBA32, video.FormatARGB32, video.FormatRGB565} {
		frame := video.NewFrameBuffer(format)
		if format.BPP == 16 {
			frame.Pix16()[0] = uint16(format.MakeColor(0xFF, 0, 0))
		} else {
			frame.Pix32()[0] = format.MakeColor(0xFF, 0, 0)
		}

		dir := t.TempDir()
		path, err := SaveFramePNGToDir(frame, "test", dir)
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasPrefix(filepath.Base(path), "test_"))

		f, err := os.Open(path)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)

		assert.Equal(t, video.ScreenWidth, img.Bounds().Dx())
		assert.Equal(t, video.ScreenHeight, img.Bounds().Dy())
		r, g, b, _ := img.At(0, 0).RGBA()
		assert.Equal(t, uint32(0xFFFF), r)
		assert.Zero(t, g)
		assert.Zero(t, b)
	}
}

func TestSaveFramePNGBadPath(t *testing.T) {
	frame := video.NewFrameBuffer(video.FormatRGBA32)
	err := SaveFramePNG(frame, filepath.Join(t.TempDir(), "missing", "x.png"))
	assert.Error(t, err)
}
