package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-advance/advance/backend"
	"github.com/valerio/go-advance/advance/debug"
	"github.com/valerio/go-advance/advance/input"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
	"github.com/valerio/go-advance/advance/video"
)

// Terminals only report key presses, and repeat them while held. A button
// counts as held until keyTimeout passes without a repeat.
const keyTimeout = 100 * time.Millisecond

const logCapacity = 200

// Backend draws frames with half-block characters using tcell, two pixel
// rows per terminal row.
type Backend struct {
	screen  tcell.Screen
	config  backend.Config
	running bool

	logBuffer *LogBuffer
	logLevel  *slog.LevelVar

	keyStates  map[action.Action]time.Time
	activeKeys map[action.Action]bool
	eventQueue []backend.InputEvent
	signals    chan os.Signal
	now        func() time.Time

	currentFrame *video.FrameBuffer
}

func New() *Backend {
	return &Backend{now: time.Now}
}

// NewWithScreen uses screen instead of the process terminal.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.screen = screen
	return b
}

func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.running = true

	// stderr belongs to the screen now, so logs go to the panel.
	t.logBuffer = NewLogBuffer(logCapacity)
	t.logLevel = new(slog.LevelVar)
	t.logLevel.Set(slog.LevelInfo)
	slog.SetDefault(slog.New(NewLogHandler(t.logBuffer, t.logLevel)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	slog.Info("Terminal backend initialized")
	return nil
}

func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	select {
	case sig := <-t.signals:
		slog.Info("Received signal", "signal", sig)
		t.queue(action.EmulatorQuit)
	default:
	}

	now := t.now()
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.buttonEvents(now)
	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	if t.running && frame != nil {
		t.currentFrame = frame
		t.render(frame)
		t.screen.Show()
	}
	return events, nil
}

// buttonEvents turns the key timestamps into press, hold and release
// events.
func (t *Backend) buttonEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	active := make(map[action.Action]bool)

	for act, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		active[act] = true
		typ := event.Hold
		if !t.activeKeys[act] {
			typ = event.Press
		}
		events = append(events, backend.InputEvent{Action: act, Type: typ})
	}
	for act := range t.activeKeys {
		if !active[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = active
	return events
}

func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

// HandleAction handles the actions that only affect the display.
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(t.currentFrame)
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		slog.Info("Debug panel", "visible", t.config.ShowDebug)
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(-4)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(4)
	}
}

// changeLogLevel moves the panel filter by delta, within debug and error.
// A lower level shows more.
func (t *Backend) changeLogLevel(delta slog.Level) {
	old := t.logLevel.Level()
	level := min(max(old+delta, slog.LevelDebug), slog.LevelError)
	if level == old {
		return
	}
	t.logLevel.Set(level)
	slog.Warn("Log filter changed", "from", old, "to", level)
}

func (t *Backend) queue(act action.Action) {
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := lookupKey(ev)
	if !ok {
		return
	}
	if act == action.EmulatorQuit {
		t.running = false
	}
	if action.GetInfo(act).Category != action.CategoryGameInput {
		t.queue(act)
		return
	}

	// Only one direction can be reported at a time without releases, so a
	// new direction replaces the held one.
	if act.IsDPad() {
		for _, d := range []action.Action{action.DPadUp, action.DPadDown, action.DPadLeft, action.DPadRight} {
			delete(t.keyStates, d)
		}
	}
	t.keyStates[act] = now
}

var keyNames = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyEscape:     "Escape",
	tcell.KeyBackspace:  "Select",
	tcell.KeyBackspace2: "Select",
	tcell.KeyF1:         "F1",
	tcell.KeyF2:         "F2",
	tcell.KeyF3:         "F3",
	tcell.KeyF4:         "F4",
	tcell.KeyF5:         "F5",
	tcell.KeyF7:         "F7",
	tcell.KeyF8:         "F8",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
}

func lookupKey(ev *tcell.EventKey) (action.Action, bool) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return action.EmulatorQuit, true
	case tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			return input.GetDefaultMapping("Space")
		}
		if act, ok := input.GetDefaultMapping(string(r)); ok {
			return act, true
		}
		return input.GetDefaultMapping(string(unicode.ToLower(r)))
	}
	if name, ok := keyNames[ev.Key()]; ok {
		return input.GetDefaultMapping(name)
	}
	return 0, false
}
