package terminal

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-advance/advance/debug"
	"github.com/valerio/go-advance/advance/video"
)

const (
	// maxStep is the coarsest downsampling tried before giving up.
	maxStep       = 4
	minPanelWidth = 30
)

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	regStyle    = tcell.StyleDefault.Foreground(tcell.ColorAqua)
)

// layout picks the pixel step that fits the frame into the terminal: the
// frame takes 240/step columns and 80/step rows below the title line.
func layout(termWidth, termHeight int) (step int, ok bool) {
	for step = 1; step <= maxStep; step++ {
		cols := (video.ScreenWidth + step - 1) / step
		rows := (video.ScreenHeight/2 + step - 1) / step
		if cols <= termWidth && rows+1 <= termHeight {
			return step, true
		}
	}
	return 0, false
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	step, ok := layout(termWidth, termHeight)
	if !ok {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d",
			video.ScreenWidth/maxStep, video.ScreenHeight/2/maxStep+1)
		drawText(t.screen, 0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	cols := drawFrame(t.screen, frame, 0, 1, step)
	rows := (video.ScreenHeight/2 + step - 1) / step

	var data *debug.CompleteDebugData
	if t.config.DebugProvider != nil {
		data = t.config.DebugProvider()
	}
	t.drawTitle(cols, step, data)

	panelX := cols + 1
	panelWidth := termWidth - panelX
	if panelWidth >= minPanelWidth {
		for y := 0; y < termHeight; y++ {
			t.screen.SetContent(cols, y, '│', nil, borderStyle)
		}
		y := 0
		if t.config.ShowDebug && data != nil {
			y = t.drawRegisters(panelX, y, panelWidth, data)
			for x := panelX; x < termWidth; x++ {
				t.screen.SetContent(x, y, '─', nil, borderStyle)
			}
			y++
		}
		t.drawLogs(panelX, y, panelWidth, termHeight-y)
		return
	}

	// no room on the side: logs go under the picture
	if below := termHeight - rows - 1; below > 0 {
		t.drawLogs(0, rows+1, termWidth, below)
	}
}

// drawFrame samples every step-th pixel and draws two pixel rows per
// cell with an upper half block. It returns the number of columns used.
func drawFrame(screen tcell.Screen, frame *video.FrameBuffer, x0, y0, step int) int {
	cols := 0
	for cy := 0; cy*2*step < video.ScreenHeight; cy++ {
		top := cy * 2 * step
		bottom := top + step
		cols = 0
		for px := 0; px < video.ScreenWidth; px += step {
			fg := pixelColor(frame, px, top)
			bg := fg
			if bottom < video.ScreenHeight {
				bg = pixelColor(frame, px, bottom)
			}
			screen.SetContent(x0+cols, y0+cy, '▀', nil, tcell.StyleDefault.Foreground(fg).Background(bg))
			cols++
		}
	}
	return cols
}

func pixelColor(frame *video.FrameBuffer, x, y int) tcell.Color {
	r, g, b := frame.RGB(x, y)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (t *Backend) drawTitle(width, step int, data *debug.CompleteDebugData) {
	title := " Game Boy Advance "
	if step > 1 {
		title += fmt.Sprintf("1/%d ", step)
	}
	if data != nil && data.DebuggerState != debug.DebuggerRunning {
		title += "[" + data.DebuggerState.String() + "] "
	}
	drawText(t.screen, 1, 0, width-1, title, titleStyle)
}

func (t *Backend) drawRegisters(x, y, width int, data *debug.CompleteDebugData) int {
	drawText(t.screen, x+1, y, width-1, " CPU ", titleStyle)
	y++
	for _, line := range debug.RegisterLines(data) {
		drawText(t.screen, x+1, y, width-1, line, regStyle)
		y++
	}
	return y
}

func (t *Backend) drawLogs(x, y, width, height int) {
	if height <= 1 {
		return
	}
	drawText(t.screen, x+1, y, width-1, " Logs ", titleStyle)

	entries := t.logBuffer.Recent(height - 1)
	for i, entry := range entries {
		drawText(t.screen, x+1, y+1+i, width-1, FormatLogEntry(entry), logStyle(entry.Level))
	}
}

func logStyle(level slog.Level) tcell.Style {
	switch {
	case level >= slog.LevelError:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	case level >= slog.LevelWarn:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case level >= slog.LevelInfo:
		return tcell.StyleDefault.Foreground(tcell.ColorBlue)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorGray)
}

// drawText writes s from x, y and clips it to width cells.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	i := 0
	for _, ch := range s {
		if i >= width {
			return
		}
		screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}
