package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Console buttons
	ButtonA Action = iota
	ButtonB
	ButtonL
	ButtonR
	ButtonStart
	ButtonSelect
	DPadUp
	DPadDown
	DPadLeft
	DPadRight

	// Emulator features
	EmulatorDebugToggle
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorSaveState
	EmulatorLoadState
	EmulatorReset
	EmulatorQuit

	// Audio debugging
	AudioToggleChannel1
	AudioToggleChannel2
	AudioToggleChannel3
	AudioToggleChannel4
	AudioSoloChannel1
	AudioSoloChannel2
	AudioSoloChannel3
	AudioSoloChannel4
	AudioShowStatus

	// Log filtering
	DebugLogLevelIncrease
	DebugLogLevelDecrease

	actionCount
)

// Category groups actions by who consumes them.
type Category int

const (
	CategoryGameInput Category = iota
	CategoryEmulator
	CategoryAudio
	CategoryDebug
)

// Info describes an action for logs and help screens.
type Info struct {
	Category    Category
	Description string
}

var infos = [actionCount]Info{
	ButtonA:      {CategoryGameInput, "A"},
	ButtonB:      {CategoryGameInput, "B"},
	ButtonL:      {CategoryGameInput, "L"},
	ButtonR:      {CategoryGameInput, "R"},
	ButtonStart:  {CategoryGameInput, "Start"},
	ButtonSelect: {CategoryGameInput, "Select"},
	DPadUp:       {CategoryGameInput, "Up"},
	DPadDown:     {CategoryGameInput, "Down"},
	DPadLeft:     {CategoryGameInput, "Left"},
	DPadRight:    {CategoryGameInput, "Right"},

	EmulatorDebugToggle: {CategoryEmulator, "Toggle debug panel"},
	EmulatorSnapshot:    {CategoryEmulator, "Save PNG snapshot"},
	EmulatorPauseToggle: {CategoryEmulator, "Pause/resume"},
	EmulatorStepFrame:   {CategoryEmulator, "Step one frame"},
	EmulatorSaveState:   {CategoryEmulator, "Save state"},
	EmulatorLoadState:   {CategoryEmulator, "Load state"},
	EmulatorReset:       {CategoryEmulator, "Reset"},
	EmulatorQuit:        {CategoryEmulator, "Quit"},

	AudioToggleChannel1: {CategoryAudio, "Toggle channel 1"},
	AudioToggleChannel2: {CategoryAudio, "Toggle channel 2"},
	AudioToggleChannel3: {CategoryAudio, "Toggle channel 3"},
	AudioToggleChannel4: {CategoryAudio, "Toggle channel 4"},
	AudioSoloChannel1:   {CategoryAudio, "Solo channel 1"},
	AudioSoloChannel2:   {CategoryAudio, "Solo channel 2"},
	AudioSoloChannel3:   {CategoryAudio, "Solo channel 3"},
	AudioSoloChannel4:   {CategoryAudio, "Solo channel 4"},
	AudioShowStatus:     {CategoryAudio, "Show channel status"},

	DebugLogLevelIncrease: {CategoryDebug, "More log output"},
	DebugLogLevelDecrease: {CategoryDebug, "Less log output"},
}

// GetInfo returns the description of act.
func GetInfo(act Action) Info {
	if act < 0 || act >= actionCount {
		return Info{Category: CategoryDebug, Description: "Unknown"}
	}
	return infos[act]
}

// IsDPad reports whether act is one of the four directions.
func (act Action) IsDPad() bool {
	return act >= DPadUp && act <= DPadRight
}

// All returns every action in declaration order.
func All() []Action {
	acts := make([]Action, actionCount)
	for i := range acts {
		acts[i] = Action(i)
	}
	return acts
}
