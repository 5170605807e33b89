package integration

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-advance/advance"
	"github.com/valerio/go-advance/advance/cartridge"
	"github.com/valerio/go-advance/advance/debug"
	"github.com/valerio/go-advance/advance/video"
)

const romDir = "../../test-roms/gba-tests"

type IntegrationTestCase struct {
	Name     string
	ROMPath  string
	Frames   int
	SaveType cartridge.SaveType
	AutoSave bool
	// FailRegister is checked for zero at the end: the suite leaves the
	// number of the first failed test in r12.
	FailRegister bool
}

func GetIntegrationTests() []IntegrationTestCase {
	return []IntegrationTestCase{
		{Name: "arm", ROMPath: filepath.Join(romDir, "arm", "arm.gba"), Frames: 60, AutoSave: true, FailRegister: true},
		{Name: "thumb", ROMPath: filepath.Join(romDir, "thumb", "thumb.gba"), Frames: 60, AutoSave: true, FailRegister: true},
		{Name: "memory", ROMPath: filepath.Join(romDir, "memory", "memory.gba"), Frames: 60, AutoSave: true, FailRegister: true},
		{Name: "bios", ROMPath: filepath.Join(romDir, "bios", "bios.gba"), Frames: 60, AutoSave: true, FailRegister: true},
		{Name: "sram", ROMPath: filepath.Join(romDir, "save", "sram.gba"), Frames: 60, SaveType: cartridge.SaveSRAM},
		{Name: "flash64", ROMPath: filepath.Join(romDir, "save", "flash64.gba"), Frames: 60, SaveType: cartridge.SaveFlash},
		{Name: "hello", ROMPath: filepath.Join(romDir, "ppu", "hello.gba"), Frames: 30, AutoSave: true},
		{Name: "shades", ROMPath: filepath.Join(romDir, "ppu", "shades.gba"), Frames: 30, AutoSave: true},
		{Name: "stripes", ROMPath: filepath.Join(romDir, "ppu", "stripes.gba"), Frames: 30, AutoSave: true},
	}
}

// frameBytes flattens the frame to RGB so the hash does not depend on the
// host pixel format.
func frameBytes(fb *video.FrameBuffer) []byte {
	data := make([]byte, 0, video.ScreenWidth*video.ScreenHeight*3)
	for y := 0; y < video.ScreenHeight; y++ {
		for x := 0; x < video.ScreenWidth; x++ {
			r, g, b := fb.RGB(x, y)
			data = append(data, r, g, b)
		}
	}
	return data
}

func runIntegrationTest(t *testing.T, tc IntegrationTestCase) {
	if _, err := os.Stat(tc.ROMPath); os.IsNotExist(err) {
		t.Skipf("test ROM not found: %s", tc.ROMPath)
	}

	var opts []advance.Option
	if !tc.AutoSave {
		opts = append(opts, advance.WithSaveType(tc.SaveType))
	}
	m, err := advance.LoadFile(tc.ROMPath, opts...)
	require.NoError(t, err)

	for i := 0; i < tc.Frames; i++ {
		m.Emulate(0)
	}

	if tc.FailRegister {
		assert.Zero(t, m.CPU().Reg(12), "failed test number")
	}

	data := frameBytes(m.Frame())
	hash := fmt.Sprintf("%x", md5.Sum(data))

	screenDataPath := filepath.Join("testdata", tc.Name+".bin")
	snapshotPath := filepath.Join("testdata", "snapshots", tc.Name+".png")
	require.NoError(t, os.MkdirAll(filepath.Join("testdata", "snapshots"), 0o755))

	if os.Getenv("ADVANCE_GENERATE_GOLDEN") == "true" {
		require.NoError(t, os.WriteFile(screenDataPath, data, 0o644))
		require.NoError(t, debug.SaveFramePNG(m.Frame(), snapshotPath))
		t.Logf("reference files generated - hash: %s", hash)
		return
	}

	expected, err := os.ReadFile(screenDataPath)
	if os.IsNotExist(err) {
		t.Skipf("no reference frame for %s; run with ADVANCE_GENERATE_GOLDEN=true", tc.Name)
	}
	require.NoError(t, err)

	expectedHash := fmt.Sprintf("%x", md5.Sum(expected))
	if hash != expectedHash {
		actualBin := filepath.Join("testdata", tc.Name+"_actual.bin")
		actualPNG := filepath.Join("testdata", "snapshots", tc.Name+"_actual.png")
		os.WriteFile(actualBin, data, 0o644)
		debug.SaveFramePNG(m.Frame(), actualPNG)

		t.Errorf("frame differs from reference\n  expected hash: %s\n  actual hash:   %s\n  files saved:   %s, %s",
			expectedHash, hash, actualBin, actualPNG)
	}
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	if _, err := os.Stat(romDir); os.IsNotExist(err) {
		t.Skipf("test ROMs not found at %s", romDir)
	}

	for _, tc := range GetIntegrationTests() {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			runIntegrationTest(t, tc)
		})
	}
}
