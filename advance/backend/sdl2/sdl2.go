//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"github.com/valerio/go-advance/advance/backend"
	"github.com/valerio/go-advance/advance/debug"
	"github.com/valerio/go-advance/advance/input"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
	"github.com/valerio/go-advance/advance/video"
	"github.com/veandco/go-sdl2/sdl"
)

const defaultScale = 3

// Backend implements the Backend interface using SDL2 bindings.
// Building it requires the SDL2 development libraries; default builds use
// the stub, see the sdl2 build tag.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	format   uint32
	config   backend.Config

	events       []backend.InputEvent
	currentFrame *video.FrameBuffer
}

func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.Config) error {
	s.config = config
	scale := config.Scale
	if scale <= 0 {
		scale = defaultScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.ScreenWidth*scale),
		int32(video.ScreenHeight*scale),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer
	renderer.SetLogicalSize(video.ScreenWidth, video.ScreenHeight)

	slog.Info("SDL2 backend initialized", "scale", scale)
	return nil
}

// ensureTexture (re)creates the streaming texture for the frame format.
// ARGB frames upload as they are; anything else goes through an RGBA
// conversion.
func (s *Backend) ensureTexture(frame *video.FrameBuffer) error {
	format := uint32(sdl.PIXELFORMAT_ABGR8888)
	if frame.Format() == video.FormatARGB32 {
		format = sdl.PIXELFORMAT_ARGB8888
	}
	if s.texture != nil && s.format == format {
		return nil
	}
	if s.texture != nil {
		s.texture.Destroy()
	}
	texture, err := s.renderer.CreateTexture(format, sdl.TEXTUREACCESS_STREAMING,
		video.ScreenWidth, video.ScreenHeight)
	if err != nil {
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture
	s.format = format
	return nil
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}
	events := s.events
	s.events = nil

	if frame == nil {
		return events, nil
	}
	s.currentFrame = frame
	if err := s.renderFrame(frame); err != nil {
		return events, err
	}
	return events, nil
}

func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

// HandleAction handles the actions that only affect the display.
func (s *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(s.currentFrame)
	case action.EmulatorDebugToggle:
		if s.config.DebugProvider == nil {
			return
		}
		if err := debug.WriteRegisters(os.Stderr, s.config.DebugProvider()); err != nil {
			slog.Warn("Failed to dump registers", "error", err)
		}
	}
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.push(action.EmulatorQuit, event.Press)

	case *sdl.KeyboardEvent:
		act, ok := lookupKey(e.Keysym.Sym)
		if !ok {
			return
		}
		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat == 0:
			s.push(act, event.Press)
		case e.Type == sdl.KEYUP && action.GetInfo(act).Category == action.CategoryGameInput:
			s.push(act, event.Release)
		}
	}
}

func (s *Backend) push(act action.Action, typ event.Type) {
	s.events = append(s.events, backend.InputEvent{Action: act, Type: typ})
}

var keyNames = map[sdl.Keycode]string{
	sdl.K_RETURN:    "Enter",
	sdl.K_LSHIFT:    "Shift",
	sdl.K_RSHIFT:    "Shift",
	sdl.K_BACKSPACE: "Select",
	sdl.K_UP:        "Up",
	sdl.K_DOWN:      "Down",
	sdl.K_LEFT:      "Left",
	sdl.K_RIGHT:     "Right",
	sdl.K_SPACE:     "Space",
	sdl.K_ESCAPE:    "Escape",
	sdl.K_F1:        "F1",
	sdl.K_F2:        "F2",
	sdl.K_F3:        "F3",
	sdl.K_F4:        "F4",
	sdl.K_F5:        "F5",
	sdl.K_F7:        "F7",
	sdl.K_F8:        "F8",
	sdl.K_F9:        "F9",
	sdl.K_F10:       "F10",
	sdl.K_KP_PLUS:   "+",
	sdl.K_KP_MINUS:  "-",
}

func lookupKey(key sdl.Keycode) (action.Action, bool) {
	if name, ok := keyNames[key]; ok {
		return input.GetDefaultMapping(name)
	}
	// printable keys use their ASCII code as the keycode
	if key >= 0x20 && key < 0x7F {
		return input.GetDefaultMapping(string(rune(key)))
	}
	return 0, false
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	if err := s.ensureTexture(frame); err != nil {
		return err
	}

	var pixels []byte
	if s.format == sdl.PIXELFORMAT_ARGB8888 {
		pix := frame.Pix32()
		pixels = unsafe.Slice((*byte)(unsafe.Pointer(&pix[0])), len(pix)*4)
	} else {
		pixels = frame.Image().Pix
	}
	if err := s.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.ScreenWidth*4); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}
