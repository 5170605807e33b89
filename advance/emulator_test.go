package advance

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/debug"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/savestate"
)

// fakeSound produces a fixed number of silent samples per flush and
// records mixer calls.
type fakeSound struct {
	frames  int
	muted   [4]bool
	flushes int
}

func (f *fakeSound) Reset()                                   {}
func (f *fakeSound) SetDMARequest(func(int))                  {}
func (f *fakeSound) WriteRegister(int, uint32, uint8)         {}
func (f *fakeSound) WriteRegister16(int, uint32, uint16)      {}
func (f *fakeSound) ReadRegister(uint32) uint8                { return 0 }
func (f *fakeSound) TimerOverflow(int, int)                   {}
func (f *fakeSound) StateAction(*savestate.Section)           {}
func (f *fakeSound) ChannelStatus() (ch1, ch2, ch3, ch4 bool) { return !f.muted[0], !f.muted[1], !f.muted[2], !f.muted[3] }
func (f *fakeSound) FIFOLevel(int) int                        { return 16 }
func (f *fakeSound) ToggleChannel(ch int)                     { f.muted[ch-1] = !f.muted[ch-1] }
func (f *fakeSound) UnmuteAll()                               { f.muted = [4]bool{} }

func (f *fakeSound) SoloChannel(ch int) {
	for i := range f.muted {
		f.muted[i] = i != ch-1
	}
}

func (f *fakeSound) Flush(_ int, buf []int16) int {
	f.flushes++
	clear(buf[:f.frames*2])
	return f.frames
}

type recordingSamples struct {
	writes [][]int16
}

func (r *recordingSamples) WriteSamples(samples []int16) error {
	r.writes = append(r.writes, append([]int16(nil), samples...))
	return nil
}

func (r *recordingSamples) Close() error { return nil }

func newTestEmulator(t *testing.T) (*Emulator, *fakeSound) {
	t.Helper()
	sound := &fakeSound{frames: 4}
	return NewEmulator(newTestMachine(t, WithSound(sound))), sound
}

func TestKeyForAction(t *testing.T) {
	tests := []struct {
		act action.Action
		key Key
		ok  bool
	}{
		{action.ButtonA, KeyA, true},
		{action.ButtonB, KeyB, true},
		{action.ButtonL, KeyL, true},
		{action.ButtonR, KeyR, true},
		{action.ButtonStart, KeyStart, true},
		{action.ButtonSelect, KeySelect, true},
		{action.DPadUp, KeyUp, true},
		{action.DPadDown, KeyDown, true},
		{action.DPadLeft, KeyLeft, true},
		{action.DPadRight, KeyRight, true},
		{action.EmulatorPauseToggle, 0, false},
		{action.AudioToggleChannel1, 0, false},
	}
	for _, tt := range tests {
		t.Run(action.GetInfo(tt.act).Description, func(t *testing.T) {
			key, ok := KeyForAction(tt.act)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestEmulatorButtons(t *testing.T) {
	emu, _ := newTestEmulator(t)

	emu.HandleAction(action.ButtonA, true)
	emu.HandleAction(action.DPadLeft, true)
	assert.True(t, emu.Keys().Held(KeyA))
	assert.True(t, emu.Keys().Held(KeyLeft))

	require.NoError(t, emu.RunUntilFrame())
	require.NoError(t, emu.RunUntilFrame())
	assert.Equal(t, uint16(0x3FF&^(1<<KeyA|1<<KeyLeft)), emu.Machine().reg(addr.KEYINPUT))

	emu.HandleAction(action.ButtonA, false)
	assert.False(t, emu.Keys().Held(KeyA))
	assert.True(t, emu.Keys().Held(KeyLeft))
}

func TestEmulatorPauseAndStep(t *testing.T) {
	emu, sound := newTestEmulator(t)

	require.NoError(t, emu.RunUntilFrame())
	assert.Equal(t, uint64(1), emu.Frames())

	emu.HandleAction(action.EmulatorPauseToggle, true)
	assert.True(t, emu.Paused())
	emu.HandleAction(action.EmulatorPauseToggle, false)
	assert.True(t, emu.Paused(), "releases do nothing")

	require.NoError(t, emu.RunUntilFrame())
	assert.Equal(t, uint64(1), emu.Frames())
	assert.Equal(t, 1, sound.flushes)

	emu.HandleAction(action.EmulatorStepFrame, true)
	assert.False(t, emu.Paused())
	require.NoError(t, emu.RunUntilFrame())
	assert.Equal(t, uint64(2), emu.Frames())
	assert.True(t, emu.Paused(), "a step pauses again")

	emu.HandleAction(action.EmulatorPauseToggle, true)
	assert.False(t, emu.Paused())
	require.NoError(t, emu.RunUntilFrame())
	assert.Equal(t, uint64(3), emu.Frames())
}

func TestEmulatorSink(t *testing.T) {
	emu, sound := newTestEmulator(t)
	sink := &recordingSamples{}
	emu.SetSink(sink)

	require.NoError(t, emu.RunUntilFrame())
	require.Len(t, sink.writes, 1)
	assert.Len(t, sink.writes[0], 8)
	assert.Len(t, emu.Samples(), 8)

	sound.frames = 0
	require.NoError(t, emu.RunUntilFrame())
	assert.Len(t, sink.writes, 1, "empty frames are not written")
}

func TestEmulatorAudioActions(t *testing.T) {
	emu, sound := newTestEmulator(t)

	emu.HandleAction(action.AudioToggleChannel3, true)
	assert.Equal(t, [4]bool{false, false, true, false}, sound.muted)

	emu.HandleAction(action.AudioSoloChannel2, true)
	assert.Equal(t, [4]bool{true, false, true, true}, sound.muted)

	emu.HandleAction(action.AudioShowStatus, true)
	assert.Equal(t, [4]bool{true, false, true, true}, sound.muted)
}

func TestEmulatorStateActions(t *testing.T) {
	emu, _ := newTestEmulator(t)
	m := emu.Machine()

	// no path configured: both actions are ignored
	emu.HandleAction(action.EmulatorSaveState, true)
	emu.HandleAction(action.EmulatorLoadState, true)

	path := filepath.Join(t.TempDir(), "test.state")
	emu.SetStatePath(path)

	m.Write32(0x02000000, 0x12345678)
	emu.HandleAction(action.EmulatorSaveState, true)
	assert.FileExists(t, path)

	m.Write32(0x02000000, 0)
	emu.HandleAction(action.EmulatorLoadState, true)
	assert.Equal(t, uint32(0x12345678), m.Read32(0x02000000))

	emu.HandleAction(action.EmulatorReset, true)
	assert.Zero(t, m.Read32(0x02000000))
	assert.Equal(t, addr.ROMBase, m.CPU().NextPC())
}

func TestExtractDebugData(t *testing.T) {
	emu, _ := newTestEmulator(t)
	m := emu.Machine()
	m.Write16(addr.IOBase+addr.IE, 0x0001)
	require.NoError(t, emu.RunUntilFrame())

	data := emu.ExtractDebugData()
	require.NotNil(t, data.CPU)
	require.NotNil(t, data.IO)
	require.NotNil(t, data.Audio)

	assert.Equal(t, "sys", data.CPU.Mode)
	assert.False(t, data.CPU.Thumb)
	assert.Equal(t, uint32(0x03007F00), data.CPU.R[13])
	assert.Equal(t, uint16(visibleLines-1), data.IO.VCOUNT)
	assert.Equal(t, uint16(1), data.IO.IE)
	assert.Equal(t, uint16(0x3FF), data.IO.KEYINPUT)
	assert.Equal(t, uint64(1), data.Frame)
	assert.Equal(t, debug.DebuggerRunning, data.DebuggerState)

	assert.Equal(t, [4]bool{true, true, true, true}, data.Audio.Channels)
	assert.Equal(t, 16, data.Audio.FIFOA)
}
