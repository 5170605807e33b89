package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-advance/advance/backend"
	"github.com/valerio/go-advance/advance/debug"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
	"github.com/valerio/go-advance/advance/video"
)

var _ backend.Backend = (*Backend)(nil)
var _ backend.ActionHandler = (*Backend)(nil)

func newTestBackend(t *testing.T, width, height int, cfg backend.Config) (*Backend, tcell.SimulationScreen, *time.Time) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	screen := tcell.NewSimulationScreen("UTF-8")
	b := NewWithScreen(screen)
	clock := time.Unix(0, 0)
	b.now = func() time.Time { return clock }
	require.NoError(t, b.Init(cfg))
	screen.SetSize(width, height)
	t.Cleanup(func() { b.Cleanup() })
	return b, screen, &clock
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		step          int
		ok            bool
	}{
		{"full size", 300, 90, 1, true},
		{"exact fit", 240, 81, 1, true},
		{"half", 120, 41, 2, true},
		{"narrow", 100, 90, 3, true},
		{"too small", 40, 10, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, ok := layout(tt.width, tt.height)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.step, step)
		})
	}
}

func TestRenderHalfBlocks(t *testing.T) {
	b, screen, _ := newTestBackend(t, 300, 90, backend.Config{})

	frame := video.NewFrameBuffer(video.FormatRGBA32)
	frame.Pix32()[0] = video.FormatRGBA32.MakeColor(255, 0, 0)
	frame.Pix32()[video.ScreenWidth] = video.FormatRGBA32.MakeColor(0, 0, 255)

	_, err := b.Update(frame)
	require.NoError(t, err)

	ch, _, style, _ := screen.GetContent(0, 1)
	assert.Equal(t, '▀', ch)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)

	ch, _, _, _ = screen.GetContent(video.ScreenWidth, 1)
	assert.Equal(t, '│', ch, "divider after the picture")
}

func TestRenderTooSmall(t *testing.T) {
	b, screen, _ := newTestBackend(t, 40, 10, backend.Config{})

	_, err := b.Update(video.NewFrameBuffer(video.FormatRGBA32))
	require.NoError(t, err)

	ch, _, _, _ := screen.GetContent(0, 5)
	assert.Equal(t, 'T', ch)
}

func TestButtonEvents(t *testing.T) {
	b, screen, clock := newTestBackend(t, 300, 90, backend.Config{})
	frame := video.NewFrameBuffer(video.FormatRGBA32)

	screen.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.ButtonA, Type: event.Press}}, events)

	*clock = clock.Add(16 * time.Millisecond)
	events, _ = b.Update(frame)
	assert.Equal(t, []backend.InputEvent{{Action: action.ButtonA, Type: event.Hold}}, events)

	*clock = clock.Add(keyTimeout)
	events, _ = b.Update(frame)
	assert.Equal(t, []backend.InputEvent{{Action: action.ButtonA, Type: event.Release}}, events)

	events, _ = b.Update(frame)
	assert.Empty(t, events)
}

func TestDirectionReplacesHeldDirection(t *testing.T) {
	b, screen, _ := newTestBackend(t, 300, 90, backend.Config{})
	frame := video.NewFrameBuffer(video.FormatRGBA32)

	screen.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	_, err := b.Update(frame)
	require.NoError(t, err)

	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	events, _ := b.Update(frame)
	assert.ElementsMatch(t, []backend.InputEvent{
		{Action: action.DPadLeft, Type: event.Press},
		{Action: action.DPadUp, Type: event.Release},
	}, events)
}

func TestEmulatorKeysAreQueued(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want action.Action
	}{
		{tcell.KeyEscape, 0, action.EmulatorQuit},
		{tcell.KeyCtrlC, 0, action.EmulatorQuit},
		{tcell.KeyRune, ' ', action.EmulatorPauseToggle},
		{tcell.KeyRune, 'P', action.EmulatorPauseToggle},
		{tcell.KeyF5, 0, action.EmulatorSaveState},
		{tcell.KeyRune, '1', action.AudioSoloChannel1},
	}
	for _, tt := range tests {
		t.Run(action.GetInfo(tt.want).Description, func(t *testing.T) {
			b, screen, _ := newTestBackend(t, 300, 90, backend.Config{})
			screen.InjectKey(tt.key, tt.r, tcell.ModNone)
			events, err := b.Update(video.NewFrameBuffer(video.FormatRGBA32))
			require.NoError(t, err)
			assert.Equal(t, []backend.InputEvent{{Action: tt.want, Type: event.Press}}, events)
		})
	}
}

func TestHandleAction(t *testing.T) {
	b, _, _ := newTestBackend(t, 300, 90, backend.Config{})

	b.HandleAction(action.EmulatorDebugToggle)
	assert.True(t, b.config.ShowDebug)

	b.HandleAction(action.DebugLogLevelIncrease)
	assert.Equal(t, slog.LevelDebug, b.logLevel.Level())
	b.HandleAction(action.DebugLogLevelIncrease)
	assert.Equal(t, slog.LevelDebug, b.logLevel.Level(), "clamped at debug")

	for i := 0; i < 5; i++ {
		b.HandleAction(action.DebugLogLevelDecrease)
	}
	assert.Equal(t, slog.LevelError, b.logLevel.Level())
}

func TestDebugPanel(t *testing.T) {
	data := &debug.CompleteDebugData{CPU: &debug.CPUState{Mode: "SVC"}}
	b, screen, _ := newTestBackend(t, 300, 90, backend.Config{
		ShowDebug:     true,
		DebugProvider: func() *debug.CompleteDebugData { return data },
	})

	_, err := b.Update(video.NewFrameBuffer(video.FormatRGBA32))
	require.NoError(t, err)

	var row []rune
	for x := video.ScreenWidth + 2; x < video.ScreenWidth+5; x++ {
		ch, _, _, _ := screen.GetContent(x, 1)
		row = append(row, ch)
	}
	assert.Equal(t, "R0 ", string(row))
}

func TestLogBuffer(t *testing.T) {
	lb := NewLogBuffer(3)
	for i := 0; i < 5; i++ {
		lb.Add(LogEntry{Message: string(rune('a' + i))})
	}

	recent := lb.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "e", recent[0].Message)
	assert.Equal(t, "c", recent[2].Message)
	assert.Len(t, lb.Recent(2), 2)
}

func TestLogHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	level := new(slog.LevelVar)
	logger := slog.New(NewLogHandler(lb, level)).With("component", "dma")

	logger.Debug("hidden")
	logger.Info("transfer", "channel", 3)

	entries := lb.Recent(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "transfer component=dma channel=3", entries[0].Message)
	assert.Contains(t, FormatLogEntry(entries[0]), "[INF] transfer")
}
