package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
)

// stepClock returns a clock that only moves when advanced.
func stepClock() (func() time.Time, func(time.Duration)) {
	now := time.Unix(0, 0)
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestHandler_Debouncing(t *testing.T) {
	tests := []struct {
		name           string
		action         action.Action
		eventType      event.Type
		timeBetween    time.Duration
		expectDebounce bool
	}{
		{
			name:           "UI action rapid press - should debounce",
			action:         action.EmulatorDebugToggle,
			eventType:      event.Press,
			timeBetween:    100 * time.Millisecond,
			expectDebounce: true,
		},
		{
			name:           "UI action slow press - should not debounce",
			action:         action.EmulatorDebugToggle,
			eventType:      event.Press,
			timeBetween:    400 * time.Millisecond,
			expectDebounce: false,
		},
		{
			name:           "console button rapid press - should not debounce",
			action:         action.ButtonA,
			eventType:      event.Press,
			timeBetween:    10 * time.Millisecond,
			expectDebounce: false,
		},
		{
			name:           "UI action release event - should not debounce",
			action:         action.EmulatorSaveState,
			eventType:      event.Release,
			timeBetween:    10 * time.Millisecond,
			expectDebounce: false,
		},
		{
			name:           "Hold event type - should not debounce",
			action:         action.EmulatorDebugToggle,
			eventType:      event.Hold,
			timeBetween:    10 * time.Millisecond,
			expectDebounce: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler()
			now, advance := stepClock()
			handler.now = now

			assert.True(t, handler.ProcessEvent(tt.action, tt.eventType), "First event should always pass")

			advance(tt.timeBetween)
			result := handler.ProcessEvent(tt.action, tt.eventType)

			if tt.expectDebounce {
				assert.False(t, result, "Second event should be debounced")
			} else {
				assert.True(t, result, "Second event should not be debounced")
			}
		})
	}
}

func TestHandler_MultipleActions(t *testing.T) {
	handler := NewHandler()
	now, _ := stepClock()
	handler.now = now

	assert.True(t, handler.ProcessEvent(action.EmulatorDebugToggle, event.Press))
	assert.True(t, handler.ProcessEvent(action.EmulatorSnapshot, event.Press), "actions debounce independently")

	assert.False(t, handler.ProcessEvent(action.EmulatorDebugToggle, event.Press))
	assert.False(t, handler.ProcessEvent(action.EmulatorSnapshot, event.Press))
}
