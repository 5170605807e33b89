package backend

import (
	"github.com/valerio/go-advance/advance/debug"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
	"github.com/valerio/go-advance/advance/video"
)

// Backend is a host platform: it shows frames and turns host input into
// actions. Audio goes through an audio.Sink, not the backend.
type Backend interface {
	// Init prepares the backend. It must be called before Update.
	Init(config Config) error

	// Update presents frame and returns the input that arrived since the
	// previous call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases host resources.
	Cleanup() error
}

// InputEvent is an action raised by host input.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// Config holds the settings shared by every backend. Backends ignore the
// ones they do not support.
type Config struct {
	Title     string
	Scale     int
	ShowDebug bool
	// DebugProvider, when set, supplies the data for debug overlays.
	DebugProvider func() *debug.CompleteDebugData
}

// ActionHandler is implemented by backends that handle some actions
// themselves, such as snapshots or toggling a debug panel.
type ActionHandler interface {
	HandleAction(act action.Action)
}
