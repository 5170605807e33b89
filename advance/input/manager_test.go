package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-advance/advance"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
)

func TestManager_ButtonsGoToKeypad(t *testing.T) {
	var keys advance.Keys
	m := NewManager(&keys)

	called := false
	m.On(action.ButtonA, event.Press, func() { called = true })

	m.Trigger(action.ButtonA, event.Press)
	m.Trigger(action.DPadUp, event.Hold)
	assert.True(t, keys.Held(advance.KeyA))
	assert.True(t, keys.Held(advance.KeyUp))
	assert.False(t, called, "buttons never reach callbacks")

	m.Trigger(action.ButtonA, event.Release)
	assert.False(t, keys.Held(advance.KeyA))
	assert.True(t, keys.Held(advance.KeyUp))
}

func TestManager_Callbacks(t *testing.T) {
	m := NewManager(nil)
	now, advanceClock := stepClock()
	m.debounce.now = now

	var pressed, released int
	m.On(action.EmulatorPauseToggle, event.Press, func() { pressed++ })
	m.On(action.EmulatorPauseToggle, event.Press, func() { pressed++ })
	m.On(action.EmulatorPauseToggle, event.Release, func() { released++ })

	m.Trigger(action.EmulatorPauseToggle, event.Press)
	assert.Equal(t, 2, pressed, "every callback runs")

	m.Trigger(action.EmulatorPauseToggle, event.Press)
	assert.Equal(t, 2, pressed, "rapid repeat is debounced")

	advanceClock(time.Second)
	m.Trigger(action.EmulatorPauseToggle, event.Press)
	m.Trigger(action.EmulatorPauseToggle, event.Release)
	assert.Equal(t, 4, pressed)
	assert.Equal(t, 1, released)

	m.Trigger(action.EmulatorReset, event.Press)
}

func TestManager_NilKeypadUsesCallbacks(t *testing.T) {
	m := NewManager(nil)

	called := false
	m.On(action.ButtonB, event.Press, func() { called = true })
	m.Trigger(action.ButtonB, event.Press)
	assert.True(t, called)
}

func TestDefaultMappings(t *testing.T) {
	tests := []struct {
		key    string
		action action.Action
	}{
		{"z", action.ButtonA},
		{"x", action.ButtonB},
		{"a", action.ButtonL},
		{"s", action.ButtonR},
		{"Enter", action.ButtonStart},
		{"Up", action.DPadUp},
		{"Space", action.EmulatorPauseToggle},
		{"F5", action.EmulatorSaveState},
		{"F7", action.EmulatorLoadState},
		{"Escape", action.EmulatorQuit},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			act, ok := GetDefaultMapping(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.action, act)
		})
	}

	_, ok := GetDefaultMapping("F12")
	assert.False(t, ok)
}

func TestEveryButtonHasAKey(t *testing.T) {
	for _, act := range action.All() {
		if action.GetInfo(act).Category != action.CategoryGameInput {
			continue
		}
		_, ok := advance.KeyForAction(act)
		assert.True(t, ok, "%s has no console key", action.GetInfo(act).Description)
	}
}
