package cartridge

import (
	"crypto/md5"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-advance/advance/memory"
)

func testImage(size int, id string) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = uint8(i)
	}
	copy(data[titleAddress:], "ADVANCE TEST")
	copy(data[gameIDAddress:], id)
	copy(data[makerAddress:], "01")
	data[fixedAddress] = 0x96
	data[unitAddress] = 0
	data[versionAddress] = 2
	data[checksumAddress] = ComplementCheck(data)
	return data
}

func TestNew(t *testing.T) {
	data := testImage(0x1001, "AXVE")
	c, err := New(data, false)
	require.NoError(t, err)

	assert.Equal(t, "ADVANCE TEST", c.Header.Title)
	assert.Equal(t, "AXVE", c.Header.GameID)
	assert.Equal(t, "01", c.Header.Maker)
	assert.Equal(t, uint8(2), c.Header.Version)
	assert.Equal(t, md5.Sum(data), c.MD5)
	assert.Len(t, c.ROM, MaxSize)
	assert.Equal(t, data, c.ROM[:len(data)])

	// the odd trailing byte keeps the 0xFF fill, open bus starts at the
	// next halfword
	assert.Equal(t, uint8(0xFF), c.ROM[0x1001])
	assert.Equal(t, uint16(0x0801), memory.Read16(c.ROM, 0x1002))
	assert.Equal(t, uint16(0xFFFF), memory.Read16(c.ROM, 0x1FFFE))
	assert.Equal(t, uint16(0x0000), memory.Read16(c.ROM, 0x20000))
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil, false)
	assert.ErrorIs(t, err, ErrEmptyROM)

	_, err = New(make([]byte, MaxMultibootSize+1), true)
	assert.ErrorIs(t, err, ErrROMTooLarge)
}

func TestMultiboot(t *testing.T) {
	data := testImage(0x400, "MBOT")
	c, err := New(data, true)
	require.NoError(t, err)

	assert.True(t, c.Multiboot)
	assert.Equal(t, data, c.Image)
	assert.Equal(t, uint8(0xFF), c.ROM[0])
	assert.Equal(t, uint16(0x0200), memory.Read16(c.ROM, 0x400))
}

func TestPatchEEPROM(t *testing.T) {
	c, err := New(testImage(0x200, "AAAA"), false)
	require.NoError(t, err)

	c.PatchEEPROM()
	assert.Equal(t, uint16(0xDFFA), memory.Read16(c.ROM, eepromPatchAddress))
	assert.Equal(t, uint16(0x4770), memory.Read16(c.ROM, eepromPatchAddress+2))
}

func TestMirror(t *testing.T) {
	c, err := New(testImage(0x100000, "FSME"), false)
	require.NoError(t, err)

	c.Mirror()
	for _, base := range []int{0x100000, 0x800000, 0xF00000} {
		assert.Equal(t, c.ROM[:0x100], c.ROM[base:base+0x100], "mirror at %#x", base)
	}
	assert.Equal(t, uint16(0x0001), memory.Read16(c.ROM, 0x1000002), "open bus past 16 MiB")
}

func TestHardware(t *testing.T) {
	tests := []struct {
		id   string
		want Hardware
	}{
		{"RZWE", HardwareRumble | HardwareGyro},
		{"U3IE", HardwareSolar},
		{"V49E", HardwareRumble},
		{"AXVE", HardwareNone},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c, err := New(testImage(0x200, tt.id), false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Hardware())
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "ZELDA", cleanText([]byte("ZELDA\x00\x00\x00")))
	assert.Equal(t, "A?B", cleanText([]byte("A\x01B")))
	assert.Equal(t, "(Untitled)", cleanText([]byte{0, 0, 0}))
}

func TestTestMagic(t *testing.T) {
	header := testImage(0xC0, "AAAA")
	branch := make([]byte, 0xC0)
	branch[0], branch[3] = 0x2E, 0xEA

	tests := []struct {
		name string
		file string
		data []byte
		want bool
	}{
		{"gba extension", "game.GBA", []byte{1}, true},
		{"agb extension", "game.agb", []byte{1}, true},
		{"psf signature", "song.minigsf", []byte("PSF\x22...."), true},
		{"bin with header", "game.bin", header, true},
		{"bin with branch", "game.bin", branch, true},
		{"short bin", "game.bin", header[:0xBF], false},
		{"bin without signature", "game.bin", make([]byte, 0xC0), false},
		{"other extension", "game.nes", header, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TestMagic(tt.file, tt.data))
		})
	}

	assert.True(t, IsMultiboot("demo.MB"))
	assert.False(t, IsMultiboot("demo.gba"))
}

func TestLookupOverride(t *testing.T) {
	o, ok := LookupOverride("AXVE")
	require.True(t, ok)
	assert.Equal(t, Override{FlashSize: Flash128K, RTC: true}, o)

	o, ok = LookupOverride("FSME")
	require.True(t, ok)
	assert.Equal(t, Override{SaveType: SaveEEPROM, Mirroring: true}, o)

	o, ok = LookupOverride("KYGJ")
	require.True(t, ok)
	assert.Equal(t, SaveEEPROMSensor, o.SaveType)

	_, ok = LookupOverride("ZZZZ")
	assert.False(t, ok)
}

func TestParseOverrides(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		override Override
		devices  Devices
	}{
		{"empty", "", Override{}, Devices{}},
		{"sram", "sram\n", Override{}, Devices{SRAM: true}},
		{"flash bytes", "flash 131072\n", Override{FlashSize: Flash128K}, Devices{Flash: true}},
		{"flash kib", "FLASH 64\n", Override{FlashSize: Flash64K}, Devices{Flash: true}},
		{"flash bad size", "flash 99\n", Override{}, Devices{Flash: true}},
		{"flash1m", "flash1m", Override{FlashSize: Flash128K}, Devices{Flash: true}},
		{"eeprom sensor rtc", "eeprom\nsensor\nrtc\n", Override{RTC: true}, Devices{EEPROM: true, Sensor: true}},
		{"mirror and junk", "mirror\nbogus\n\n", Override{Mirroring: true}, Devices{}},
		{"none resets", "sram\nnone\n", Override{}, Devices{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, d, err := ParseOverrides(strings.NewReader(tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.override, o)
			assert.Equal(t, tt.devices, d)
		})
	}
}

func TestSaveType(t *testing.T) {
	assert.Equal(t, "eeprom+sensor", SaveEEPROMSensor.String())
	assert.Equal(t, Devices{SRAM: true, Flash: true, EEPROM: true, Sensor: true}, SaveAuto.Devices())
	assert.Equal(t, Devices{Flash: true}, SaveFlash.Devices())

	st, ok := ParseSaveType("FLASH")
	assert.True(t, ok)
	assert.Equal(t, SaveFlash, st)
	_, ok = ParseSaveType("tape")
	assert.False(t, ok)
}
