package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-advance/advance"
	"github.com/valerio/go-advance/advance/backend"
	"github.com/valerio/go-advance/advance/backend/headless"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
	"github.com/valerio/go-advance/advance/timing"
	"github.com/valerio/go-advance/advance/video"
)

// mockBackend returns one batch of events per Update call.
type mockBackend struct {
	batches     [][]backend.InputEvent
	initialized bool
	cleanedUp   bool
	updateCalls int
	handled     []action.Action
	updateErr   error
}

func (m *mockBackend) Init(cfg backend.Config) error {
	m.initialized = true
	return nil
}

func (m *mockBackend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	m.updateCalls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if m.updateCalls <= len(m.batches) {
		return m.batches[m.updateCalls-1], nil
	}
	return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
}

func (m *mockBackend) Cleanup() error {
	m.cleanedUp = true
	return nil
}

func (m *mockBackend) HandleAction(act action.Action) {
	m.handled = append(m.handled, act)
}

type countingLimiter struct {
	waits, resets int
}

func (l *countingLimiter) WaitForNextFrame() { l.waits++ }
func (l *countingLimiter) Reset()            { l.resets++ }

func newTestEmulator(t *testing.T) *advance.Emulator {
	t.Helper()
	rom := make([]byte, 0x200)
	for i := 0; i < len(rom); i += 4 {
		// b .
		rom[i], rom[i+1], rom[i+2], rom[i+3] = 0xFE, 0xFF, 0xFF, 0xEA
	}
	m, err := advance.Load("test.gba", rom, advance.WithRenderer(false))
	require.NoError(t, err)
	return advance.NewEmulator(m)
}

func TestRunEventFlow(t *testing.T) {
	tests := []struct {
		name        string
		batches     [][]backend.InputEvent
		wantFrames  uint64
		wantHandled []action.Action
		wantResets  int
		wantPaused  bool
	}{
		{
			name:       "quit stops the loop",
			wantFrames: 1,
		},
		{
			name: "buttons do not reach the backend",
			batches: [][]backend.InputEvent{
				{{Action: action.ButtonA, Type: event.Press}},
				{{Action: action.ButtonA, Type: event.Release}},
			},
			wantFrames: 3,
		},
		{
			name: "pause stops frames, unpause resets the limiter",
			batches: [][]backend.InputEvent{
				{{Action: action.EmulatorPauseToggle, Type: event.Press}},
				nil,
				{{Action: action.EmulatorStepFrame, Type: event.Press}},
			},
			wantFrames:  2,
			wantHandled: []action.Action{action.EmulatorPauseToggle, action.EmulatorStepFrame},
			wantResets:  1,
			wantPaused:  true,
		},
		{
			name: "backend actions are forwarded",
			batches: [][]backend.InputEvent{
				{{Action: action.EmulatorSnapshot, Type: event.Press}},
			},
			wantFrames:  2,
			wantHandled: []action.Action{action.EmulatorSnapshot},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := newTestEmulator(t)
			be := &mockBackend{batches: tt.batches}
			limiter := &countingLimiter{}

			require.NoError(t, run(emu, be, limiter, backend.Config{}))

			assert.True(t, be.initialized)
			assert.True(t, be.cleanedUp)
			assert.Equal(t, tt.wantFrames, emu.Frames())
			assert.Equal(t, tt.wantHandled, be.handled)
			assert.Equal(t, tt.wantResets, limiter.resets)
			assert.Equal(t, tt.wantPaused, emu.Paused())
			assert.Equal(t, be.updateCalls, limiter.waits)
		})
	}
}

func TestRunUpdateError(t *testing.T) {
	emu := newTestEmulator(t)
	errBoom := errors.New("boom")
	be := &mockBackend{updateErr: errBoom}

	err := run(emu, be, timing.NewNoOpLimiter(), backend.Config{})
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, be.cleanedUp)
}

func TestRunHeadless(t *testing.T) {
	emu := newTestEmulator(t)
	be := headless.New(5, headless.SnapshotConfig{})

	require.NoError(t, run(emu, be, timing.NewNoOpLimiter(), backend.Config{Title: "test"}))
	assert.Equal(t, uint64(5), emu.Frames())
}
