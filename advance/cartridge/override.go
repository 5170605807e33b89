package cartridge

import (
	"bufio"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/valerio/go-advance/advance/backup"
)

// SaveType selects which backup devices respond on the cartridge bus.
type SaveType int

const (
	// SaveAuto enables every device and lets the game's first access decide.
	SaveAuto SaveType = iota
	SaveEEPROM
	SaveSRAM
	SaveFlash
	SaveEEPROMSensor
	SaveNone
)

var saveTypeNames = [...]string{"auto", "eeprom", "sram", "flash", "eeprom+sensor", "none"}

func (s SaveType) String() string {
	if s < 0 || int(s) >= len(saveTypeNames) {
		return "SaveType(" + strconv.Itoa(int(s)) + ")"
	}
	return saveTypeNames[s]
}

// ParseSaveType maps a name as printed by String back to a SaveType.
func ParseSaveType(name string) (SaveType, bool) {
	for i, n := range saveTypeNames {
		if strings.EqualFold(n, name) {
			return SaveType(i), true
		}
	}
	return SaveAuto, false
}

// Devices is the set of backup devices a save type enables.
type Devices struct {
	SRAM   bool
	Flash  bool
	EEPROM bool
	Sensor bool
}

// Devices returns the devices enabled for s.
func (s SaveType) Devices() Devices {
	switch s {
	case SaveEEPROM:
		return Devices{EEPROM: true}
	case SaveSRAM:
		return Devices{SRAM: true}
	case SaveFlash:
		return Devices{Flash: true}
	case SaveEEPROMSensor:
		return Devices{EEPROM: true, Sensor: true}
	case SaveNone:
		return Devices{}
	}
	return Devices{SRAM: true, Flash: true, EEPROM: true, Sensor: true}
}

// Override is the hardware description for a game that autodetection
// gets wrong. A zero FlashSize keeps the 64 KiB default.
type Override struct {
	SaveType  SaveType
	FlashSize int
	RTC       bool
	Mirroring bool
}

const (
	Flash64K  = backup.Flash64K
	Flash128K = backup.Flash128K
)

// LookupOverride returns the built-in override for a game id.
func LookupOverride(gameID string) (Override, bool) {
	o, ok := overrides[gameID]
	return o, ok
}

// ParseOverrides reads a backup type file: one device per line, among
// sram, flash [size], flash512, flash1m, eeprom, sensor, rtc, none and
// mirror. Flash sizes are given in bytes or KiB. Devices listed are the
// only ones enabled.
func ParseOverrides(r io.Reader) (Override, Devices, error) {
	var o Override
	var d Devices

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "sram":
			d.SRAM = true
		case "flash":
			d.Flash = true
			if len(fields) > 1 {
				size, err := strconv.Atoi(fields[1])
				switch {
				case err != nil:
					slog.Warn("invalid flash size in override file", "value", fields[1])
				case size == Flash64K || size == Flash128K:
					o.FlashSize = size
				case size == 64 || size == 128:
					o.FlashSize = size * 1024
				default:
					slog.Warn("invalid flash size in override file", "size", size)
				}
			}
		case "flash512":
			d.Flash = true
			o.FlashSize = Flash64K
		case "flash1m":
			d.Flash = true
			o.FlashSize = Flash128K
		case "eeprom":
			d.EEPROM = true
		case "sensor":
			d.Sensor = true
		case "rtc":
			o.RTC = true
		case "mirror":
			o.Mirroring = true
		case "none":
			d = Devices{}
		default:
			slog.Warn("unknown line in override file", "line", scanner.Text())
		}
	}
	return o, d, scanner.Err()
}

var overrides = map[string]Override{
	"BLFE": {SaveType: SaveEEPROM},
	"BUFE": {SaveType: SaveEEPROM},
	"U3IP": {RTC: true},
	"U3IE": {RTC: true},
	"U32E": {RTC: true},
	"U32P": {RTC: true},
	"U3IJ": {RTC: true},
	"PSAJ": {FlashSize: Flash128K},
	"FBME": {SaveType: SaveEEPROM, Mirroring: true},
	"FADE": {SaveType: SaveEEPROM, Mirroring: true},
	"FDKE": {SaveType: SaveEEPROM, Mirroring: true},
	"FDME": {SaveType: SaveEEPROM, Mirroring: true},
	"FEBE": {SaveType: SaveEEPROM, Mirroring: true},
	"FZLE": {SaveType: SaveEEPROM, Mirroring: true},
	"FICE": {SaveType: SaveEEPROM, Mirroring: true},
	"FMRE": {SaveType: SaveEEPROM, Mirroring: true},
	"FP7E": {SaveType: SaveEEPROM, Mirroring: true},
	"FSME": {SaveType: SaveEEPROM, Mirroring: true},
	"FXVE": {SaveType: SaveEEPROM, Mirroring: true},
	"FLBE": {SaveType: SaveEEPROM, Mirroring: true},
	"BDKJ": {SaveType: SaveEEPROM},
	"PSAE": {FlashSize: Flash128K},
	"BT4E": {SaveType: SaveEEPROM},
	"BG3E": {SaveType: SaveEEPROM},
	"BDBP": {SaveType: SaveEEPROM},
	"BDBE": {SaveType: SaveEEPROM},
	"ALFJ": {SaveType: SaveEEPROM},
	"ALFP": {SaveType: SaveEEPROM},
	"ALFE": {SaveType: SaveEEPROM},
	"ALGP": {SaveType: SaveEEPROM},
	"ALGE": {SaveType: SaveEEPROM, FlashSize: Flash128K},
	"BFTJ": {FlashSize: Flash128K},
	"FMBJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FCLJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FBFJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FWCJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FDMJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FTBJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FMKJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FTWJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FGGJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FM2J": {SaveType: SaveEEPROM, Mirroring: true},
	"FNMJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FMRJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FPTJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FLBJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FFMJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FTKJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FTUJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FADJ": {SaveType: SaveEEPROM, Mirroring: true},
	"FSDJ": {SaveType: SaveEEPROM, Mirroring: true},
	"BGWJ": {FlashSize: Flash128K},
	"AGFE": {FlashSize: Flash64K, Mirroring: true},
	"AGSE": {FlashSize: Flash64K, Mirroring: true},
	"AI2P": {SaveType: SaveNone},
	"AI2E": {SaveType: SaveNone},
	"KHPJ": {SaveType: SaveEEPROMSensor},
	"BM5P": {SaveType: SaveFlash},
	"BPEJ": {FlashSize: Flash128K, RTC: true},
	"BPRJ": {FlashSize: Flash128K},
	"BPGJ": {FlashSize: Flash128K},
	"AXVJ": {FlashSize: Flash128K, RTC: true},
	"AXPJ": {FlashSize: Flash128K, RTC: true},
	"B24E": {FlashSize: Flash128K},
	"B24P": {FlashSize: Flash128K},
	"BPGD": {FlashSize: Flash128K},
	"AXVS": {FlashSize: Flash128K, RTC: true},
	"BPES": {FlashSize: Flash128K, RTC: true},
	"BPRS": {SaveType: SaveEEPROM, FlashSize: Flash128K},
	"BPGS": {SaveType: SaveEEPROM, FlashSize: Flash128K},
	"AXPS": {FlashSize: Flash128K, RTC: true},
	"BPEE": {FlashSize: Flash128K, RTC: true},
	"BPRD": {FlashSize: Flash128K},
	"BPRE": {FlashSize: Flash128K},
	"BPGE": {FlashSize: Flash128K},
	"AXVD": {FlashSize: Flash128K, RTC: true},
	"AXVE": {FlashSize: Flash128K, RTC: true},
	"AXPE": {FlashSize: Flash128K, RTC: true},
	"AXPD": {FlashSize: Flash128K, RTC: true},
	"BPED": {FlashSize: Flash128K, RTC: true},
	"BPEF": {FlashSize: Flash128K, RTC: true},
	"BPRF": {FlashSize: Flash128K},
	"AXVF": {FlashSize: Flash128K, RTC: true},
	"AXPF": {FlashSize: Flash128K, RTC: true},
	"BPGF": {FlashSize: Flash128K},
	"AXVI": {FlashSize: Flash128K, RTC: true},
	"BPRI": {FlashSize: Flash128K},
	"BPEI": {FlashSize: Flash128K, RTC: true},
	"BPGI": {FlashSize: Flash128K},
	"AXPI": {FlashSize: Flash128K, RTC: true},
	"BR4J": {RTC: true},
	"AROP": {SaveType: SaveEEPROM},
	"AR8e": {SaveType: SaveEEPROM},
	"BKAJ": {FlashSize: Flash128K, RTC: true},
	"U33J": {SaveType: SaveEEPROM, RTC: true},
	"AX4J": {FlashSize: Flash128K},
	"AX4P": {FlashSize: Flash128K},
	"AX4E": {FlashSize: Flash128K},
	"A2YE": {SaveType: SaveNone},
	"KYGP": {SaveType: SaveEEPROMSensor},
	"KYGJ": {SaveType: SaveEEPROMSensor},
	"KYGE": {SaveType: SaveEEPROM},
	"BYGE": {SaveType: SaveSRAM},
	"BY6P": {SaveType: SaveSRAM},
	"U32J": {RTC: true},
}
