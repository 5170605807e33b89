package input

import (
	"time"

	"github.com/valerio/go-advance/advance"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// Keypad receives console button changes.
type Keypad interface {
	Press(k advance.Key)
	Release(k advance.Key)
}

// Manager routes actions: console buttons go to the keypad, everything
// else to the callbacks registered with On.
type Manager struct {
	handlers map[action.Action]map[event.Type][]func()
	debounce *Handler
	keypad   Keypad
}

func NewManager(k Keypad) *Manager {
	return &Manager{
		handlers: make(map[action.Action]map[event.Type][]func()),
		debounce: NewHandler(),
		keypad:   k,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	if !m.debounce.ProcessEvent(act, evt) {
		return
	}

	if key, ok := advance.KeyForAction(act); ok && m.keypad != nil {
		switch evt {
		case event.Press, event.Hold:
			m.keypad.Press(key)
		case event.Release:
			m.keypad.Release(key)
		}
		return
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}
