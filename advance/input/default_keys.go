package input

import "github.com/valerio/go-advance/advance/input/action"

// DefaultKeyMap provides default key mappings that work across backends.
// Backends can use these mappings as a base and override/extend as needed.
var DefaultKeyMap = map[string]action.Action{
	// Console buttons
	"z":      action.ButtonA,
	"x":      action.ButtonB,
	"a":      action.ButtonL,
	"s":      action.ButtonR,
	"Enter":  action.ButtonStart,
	"Shift":  action.ButtonSelect,
	"Select": action.ButtonSelect,
	"Up":     action.DPadUp,
	"Down":   action.DPadDown,
	"Left":   action.DPadLeft,
	"Right":  action.DPadRight,

	// Alternative directions for keyboards without arrows
	"i": action.DPadUp,
	"k": action.DPadDown,
	"j": action.DPadLeft,
	"l": action.DPadRight,

	// Emulator controls
	"Space":  action.EmulatorPauseToggle,
	"p":      action.EmulatorPauseToggle,
	"o":      action.EmulatorStepFrame,
	"F5":     action.EmulatorSaveState,
	"F7":     action.EmulatorLoadState,
	"F8":     action.EmulatorReset,
	"F9":     action.EmulatorSnapshot,
	"F10":    action.EmulatorDebugToggle,
	"Escape": action.EmulatorQuit,
	"q":      action.EmulatorQuit,

	// Audio debug controls
	"F1": action.AudioToggleChannel1,
	"F2": action.AudioToggleChannel2,
	"F3": action.AudioToggleChannel3,
	"F4": action.AudioToggleChannel4,
	"1":  action.AudioSoloChannel1,
	"2":  action.AudioSoloChannel2,
	"3":  action.AudioSoloChannel3,
	"4":  action.AudioSoloChannel4,
	"0":  action.AudioShowStatus,

	// Debug controls
	"+": action.DebugLogLevelIncrease,
	"=": action.DebugLogLevelIncrease,
	"-": action.DebugLogLevelDecrease,
	"_": action.DebugLogLevelDecrease,
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}
