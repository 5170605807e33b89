package advance

import (
	"log/slog"

	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/audio"
	"github.com/valerio/go-advance/advance/debug"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/video"
)

// Emulator drives a Machine for the frontends: it owns the held keys, the
// pause state and the audio sink.
type Emulator struct {
	machine *Machine
	keys    Keys
	sink    audio.Sink

	frame     uint64
	state     debug.DebuggerState
	statePath string
}

// NewEmulator wraps m.
func NewEmulator(m *Machine) *Emulator {
	return &Emulator{machine: m}
}

// Machine returns the wrapped machine.
func (e *Emulator) Machine() *Machine {
	return e.machine
}

// Keys returns the held button set, for input managers.
func (e *Emulator) Keys() *Keys {
	return &e.keys
}

// SetSink sends the samples of every frame to s.
func (e *Emulator) SetSink(s audio.Sink) {
	e.sink = s
}

// SetStatePath sets the file used by the save and load state actions.
func (e *Emulator) SetStatePath(path string) {
	e.statePath = path
}

// RunUntilFrame emulates one frame unless paused.
func (e *Emulator) RunUntilFrame() error {
	switch e.state {
	case debug.DebuggerPaused:
		return nil
	case debug.DebuggerStepFrame:
		e.state = debug.DebuggerPaused
	}

	n := e.machine.Emulate(uint16(e.keys))
	e.frame++
	if e.sink != nil && n > 0 {
		if err := e.sink.WriteSamples(e.machine.Samples()); err != nil {
			return err
		}
	}
	return nil
}

// CurrentFrame returns the last completed frame.
func (e *Emulator) CurrentFrame() *video.FrameBuffer {
	return e.machine.Frame()
}

// Samples returns the audio produced by the last frame.
func (e *Emulator) Samples() []int16 {
	return e.machine.Samples()
}

// Frames returns the number of frames emulated so far.
func (e *Emulator) Frames() uint64 {
	return e.frame
}

// Paused reports whether emulation is paused.
func (e *Emulator) Paused() bool {
	return e.state == debug.DebuggerPaused
}

// KeyForAction maps a button action to its key.
func KeyForAction(act action.Action) (Key, bool) {
	switch act {
	case action.ButtonA:
		return KeyA, true
	case action.ButtonB:
		return KeyB, true
	case action.ButtonL:
		return KeyL, true
	case action.ButtonR:
		return KeyR, true
	case action.ButtonStart:
		return KeyStart, true
	case action.ButtonSelect:
		return KeySelect, true
	case action.DPadUp:
		return KeyUp, true
	case action.DPadDown:
		return KeyDown, true
	case action.DPadLeft:
		return KeyLeft, true
	case action.DPadRight:
		return KeyRight, true
	}
	return 0, false
}

// HandleAction applies an action. Buttons follow pressed; the other
// actions only fire on press.
func (e *Emulator) HandleAction(act action.Action, pressed bool) {
	if key, ok := KeyForAction(act); ok {
		if pressed {
			e.keys.Press(key)
		} else {
			e.keys.Release(key)
		}
		return
	}
	if !pressed {
		return
	}

	switch act {
	case action.EmulatorPauseToggle:
		if e.state == debug.DebuggerRunning {
			e.state = debug.DebuggerPaused
			slog.Info("Emulation paused")
		} else {
			e.state = debug.DebuggerRunning
			slog.Info("Emulation resumed")
		}
	case action.EmulatorStepFrame:
		e.state = debug.DebuggerStepFrame
	case action.EmulatorReset:
		e.machine.Reset()
		slog.Info("Machine reset")
	case action.EmulatorSaveState:
		if e.statePath == "" {
			slog.Warn("No state file configured")
			return
		}
		if err := e.machine.SaveStateFile(e.statePath); err != nil {
			slog.Error("Failed to save state", "error", err)
		}
	case action.EmulatorLoadState:
		if e.statePath == "" {
			slog.Warn("No state file configured")
			return
		}
		if err := e.machine.LoadStateFile(e.statePath); err != nil {
			slog.Error("Failed to load state", "error", err)
		}
	default:
		e.handleAudioAction(act)
	}
}

func (e *Emulator) handleAudioAction(act action.Action) {
	mixer, ok := e.machine.Sound().(audio.Mixer)
	if !ok {
		return
	}
	switch act {
	case action.AudioToggleChannel1, action.AudioToggleChannel2,
		action.AudioToggleChannel3, action.AudioToggleChannel4:
		mixer.ToggleChannel(int(act-action.AudioToggleChannel1) + 1)
	case action.AudioSoloChannel1, action.AudioSoloChannel2,
		action.AudioSoloChannel3, action.AudioSoloChannel4:
		mixer.SoloChannel(int(act-action.AudioSoloChannel1) + 1)
	case action.AudioShowStatus:
		ch1, ch2, ch3, ch4 := mixer.ChannelStatus()
		slog.Info("Audio channels", "ch1", ch1, "ch2", ch2, "ch3", ch3, "ch4", ch4)
	}
}

// ExtractDebugData snapshots the CPU and key registers for debug panels.
func (e *Emulator) ExtractDebugData() *debug.CompleteDebugData {
	m := e.machine
	c := m.cpu

	cpuState := &debug.CPUState{
		CPSR:   c.CPSR(),
		SPSR:   c.SPSR(),
		Mode:   c.Mode().String(),
		Thumb:  c.Thumb(),
		NextPC: c.NextPC(),
	}
	for i := range cpuState.R {
		cpuState.R[i] = c.Reg(i)
	}

	data := &debug.CompleteDebugData{
		CPU: cpuState,
		IO: &debug.IOState{
			DISPCNT:  m.reg(addr.DISPCNT),
			DISPSTAT: m.reg(addr.DISPSTAT),
			VCOUNT:   m.reg(addr.VCOUNT),
			IE:       m.intEnable,
			IF:       m.intFlags,
			IME:      m.intMaster,
			WAITCNT:  m.reg(addr.WAITCNT),
			KEYINPUT: m.reg(addr.KEYINPUT),
		},
		Frame:         e.frame,
		DebuggerState: e.state,
	}
	if levels, ok := m.sound.(debug.ChannelLevels); ok {
		data.Audio = debug.ExtractAudioData(levels, m.readIO16(addr.SOUNDCNT_X))
	}
	return data
}
