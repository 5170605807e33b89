package headless_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-advance/advance/backend"
	"github.com/valerio/go-advance/advance/backend/headless"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
	"github.com/valerio/go-advance/advance/video"
)

var _ backend.Backend = (*headless.Backend)(nil)

func TestHeadlessBackend(t *testing.T) {
	h := headless.New(3, headless.SnapshotConfig{})
	require.NoError(t, h.Init(backend.Config{Title: "Test"}))

	frame := video.NewFrameBuffer(video.FormatRGBA32)
	for i := 0; i < 3; i++ {
		events, err := h.Update(frame)
		require.NoError(t, err)

		if i < 2 {
			assert.Empty(t, events)
			continue
		}
		require.Len(t, events, 1)
		assert.Equal(t, action.EmulatorQuit, events[0].Action)
		assert.Equal(t, event.Press, events[0].Type)
	}
	assert.NoError(t, h.Cleanup())
}

func TestHeadlessSnapshots(t *testing.T) {
	tests := []struct {
		name      string
		frames    int
		interval  int
		snapshots int
	}{
		{"on interval", 4, 2, 2},
		{"final frame off interval", 5, 2, 3},
		{"disabled", 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "shots")
			cfg, err := headless.CreateSnapshotConfig(tt.interval, dir, "/roms/game.gba")
			require.NoError(t, err)

			h := headless.New(tt.frames, cfg)
			require.NoError(t, h.Init(backend.Config{}))

			frame := video.NewFrameBuffer(video.FormatRGBA32)
			for i := 0; i < tt.frames; i++ {
				_, err := h.Update(frame)
				require.NoError(t, err)
			}
			assert.Len(t, h.Snapshots(), tt.snapshots)

			for _, path := range h.Snapshots() {
				assert.Equal(t, dir, filepath.Dir(path))
				assert.Contains(t, filepath.Base(path), "game_frame_")

				f, err := os.Open(path)
				require.NoError(t, err)
				img, err := png.Decode(f)
				f.Close()
				require.NoError(t, err)
				assert.Equal(t, video.ScreenWidth, img.Bounds().Dx())
				assert.Equal(t, video.ScreenHeight, img.Bounds().Dy())
			}
		})
	}
}

func TestCreateSnapshotConfig(t *testing.T) {
	cfg, err := headless.CreateSnapshotConfig(0, "", "game.gba")
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.Directory)

	cfg, err = headless.CreateSnapshotConfig(10, "", "path/to/Some Game.gba")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(cfg.Directory) })
	assert.True(t, cfg.Enabled)
	assert.DirExists(t, cfg.Directory)
	assert.Equal(t, "Some Game", cfg.ROMName)
}
