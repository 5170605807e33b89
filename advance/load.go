package advance

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/backup"
	"github.com/valerio/go-advance/advance/bios"
	"github.com/valerio/go-advance/advance/cartridge"
	"github.com/valerio/go-advance/advance/cpu"
)

// ErrInvalidBIOS is returned by ReadBIOS for images of the wrong size.
var ErrInvalidBIOS = errors.New("advance: invalid BIOS image")

// Start-up stack pointers set by the BIOS.
const (
	stackSystem     uint32 = 0x03007F00
	stackIRQ        uint32 = 0x03007FA0
	stackSupervisor uint32 = 0x03007FE0
)

// Load builds a machine around a ROM image and resets it. name is only
// looked at for its extension, which marks multiboot images.
func Load(name string, data []byte, opts ...Option) (*Machine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cart, err := cartridge.New(data, cartridge.IsMultiboot(name))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(name), err)
	}

	m := newMachine(cfg)
	m.cart = cart
	m.configureHardware()
	m.loadBIOS()

	slog.Info("loaded ROM",
		"size", cart.Size,
		"game_id", cart.Header.GameID,
		"title", cart.Header.Title,
		"md5", hex.EncodeToString(cart.MD5[:]),
		"multiboot", cart.Multiboot,
		"bios", m.useBIOS)

	m.Reset()
	return m, nil
}

// LoadFile reads a ROM from disk. A backup type file with the same name
// and a .type extension, when present, selects the backup devices.
func LoadFile(path string, opts ...Option) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	typePath := strings.TrimSuffix(path, filepath.Ext(path)) + ".type"
	if f, err := os.Open(typePath); err == nil {
		settings, devices, err := cartridge.ParseOverrides(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", typePath, err)
		}
		slog.Info("using backup type file", "path", typePath)
		opts = append([]Option{WithOverride(settings, devices)}, opts...)
	}

	return Load(path, data, opts...)
}

// ReadBIOS reads a BIOS image and checks its size.
func ReadBIOS(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) != bios.Size {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrInvalidBIOS, path, len(data), bios.Size)
	}
	return data, nil
}

// configureHardware decides the backup devices and GPIO hardware: a
// backup type file first, then the built-in table, then the options.
func (m *Machine) configureHardware() {
	cfg := &m.cfg
	gameID := m.cart.Header.GameID

	var settings cartridge.Override
	m.devices = cartridge.SaveAuto.Devices()
	if cfg.override != nil {
		settings = cfg.override.settings
		m.devices = cfg.override.devices
	} else if o, ok := cartridge.LookupOverride(gameID); ok {
		slog.Info("found game in override table", "game_id", gameID)
		settings = o
		m.devices = o.SaveType.Devices()
	}

	if cfg.saveType != nil {
		m.devices = cfg.saveType.Devices()
	}
	if cfg.flashSize != 0 {
		settings.FlashSize = cfg.flashSize
	}
	settings.RTC = settings.RTC || cfg.rtc
	settings.Mirroring = settings.Mirroring || cfg.mirroring

	if settings.FlashSize != 0 {
		m.flash.SetSize(settings.FlashSize)
	}
	if settings.Mirroring {
		m.cart.Mirror()
	}
	if m.devices.EEPROM {
		m.cart.PatchEEPROM()
	}

	hw := m.cart.Hardware()
	if settings.RTC || hw != cartridge.HardwareNone {
		m.rtc = backup.NewRTC(cfg.clock)
		switch {
		case hw&cartridge.HardwareSolar != 0:
			m.rtc.SetSensor(backup.SensorSolar)
		case hw&cartridge.HardwareGyro != 0:
			m.rtc.SetSensor(backup.SensorTilt)
		}
		m.rtc.Darkness = cfg.darkness
		m.rtc.TiltZ = cfg.tilt
	}

	slog.Info("cartridge hardware",
		"sram", m.devices.SRAM,
		"flash", m.devices.Flash,
		"flash_size", m.flash.Size(),
		"eeprom", m.devices.EEPROM,
		"rtc", m.rtc != nil)
}

func (m *Machine) loadBIOS() {
	switch {
	case len(m.cfg.bios) == bios.Size:
		m.bios = make([]byte, bios.Size)
		copy(m.bios, m.cfg.bios)
		m.useBIOS = true
		return
	case m.cfg.bios != nil:
		slog.Warn("BIOS image has the wrong size, using the built-in BIOS",
			"size", len(m.cfg.bios), "want", bios.Size)
	}
	m.bios = bios.Stub()
	m.useBIOS = false
}

// Reset powers the console back on with the same cartridge.
func (m *Machine) Reset() {
	if m.rtc != nil {
		m.rtc.Reset()
	}

	clear(m.oam)
	clear(m.palette)
	clear(m.vram)
	clear(m.io)
	clear(m.iwram)
	clear(m.wram)
	if m.cart.Multiboot {
		copy(m.wram, m.cart.Image)
	}

	m.cpu.Reset()
	m.timing.Reset()

	m.setReg(addr.DISPCNT, 0x80)
	if m.useBIOS {
		m.setReg(addr.VCOUNT, 0)
	} else {
		m.setReg(addr.VCOUNT, 0x7E)
	}
	m.setReg(addr.BG2PA, 0x100)
	m.setReg(addr.BG2PD, 0x100)
	m.setReg(addr.BG3PA, 0x100)
	m.setReg(addr.BG3PD, 0x100)
	m.setReg(addr.KEYINPUT, 0x3FF)

	m.intEnable, m.intFlags, m.intMaster = 0, 0, 0
	m.intState = false
	m.irqTicks = 0
	m.dma = [4]dmaChannel{}
	m.timers = [4]timer{}

	entry := addr.ROMBase
	if m.cart.Multiboot {
		entry = cartridge.MultibootEntry
	}
	if m.cart.Multiboot || !m.useBIOS {
		m.cpu.SetCPSR(uint32(cpu.ModeSystem) | cpu.FlagF)
		m.cpu.SetReg(cpu.SP, stackSystem)
		m.cpu.SetBankedSP(cpu.ModeIRQ, stackIRQ)
		m.cpu.SetBankedSP(cpu.ModeSupervisor, stackSupervisor)
	} else {
		entry = 0
	}

	m.holdState = false
	m.holdType = 0
	m.stopState = false
	m.biosProtected = bios.ProtectedAfterReset

	m.lcdTicks = 208
	if m.useBIOS {
		m.lcdTicks = 1008
	}
	m.totalTicks = 0
	m.nextEvent = 0
	m.soundTS = 0
	m.dmaTicks = 0
	m.dmaLast = 0
	m.dmaCount = 0

	m.eeprom.Reset()
	m.flash.Reset()
	m.sound.Reset()
	m.sound.WriteRegister16(0, addr.SOUNDBIAS, 0x200)
	m.renderer.Reset()

	switch {
	case m.cart.Multiboot:
		m.registerRAMReset(0xFE)
	case !m.useBIOS:
		m.registerRAMReset(0xFF)
	}

	m.cpu.Jump(entry)
	m.dmaHack = false
	m.swiTicks = 0
}

// softReset is SWI 0x00: back to System mode with fresh stacks, entering
// work RAM or ROM depending on the flag at 0x03007FFA.
func (m *Machine) softReset() {
	c := m.cpu
	c.SetCPSR(uint32(cpu.ModeSystem) | cpu.FlagI)
	c.SetReg(cpu.SP, stackSystem)
	c.SetReg(cpu.LR, 0)
	c.SetBankedSP(cpu.ModeIRQ, stackIRQ)
	c.SetBankedSP(cpu.ModeSupervisor, stackSupervisor)

	toWRAM := m.iwram[0x7FFA] != 0
	clear(m.iwram[0x7E00:])
	if toWRAM {
		c.Jump(cartridge.MultibootEntry)
	} else {
		c.Jump(addr.ROMBase)
	}
}

// registerRAMReset is SWI 0x01: clear the memories and register groups
// selected by flags.
func (m *Machine) registerRAMReset(flags uint32) {
	m.updateRegister(addr.DISPCNT, 0x80)
	if flags == 0 {
		return
	}

	if flags&0x01 != 0 {
		clear(m.wram)
	}
	if flags&0x02 != 0 {
		clear(m.iwram[:0x7E00])
	}
	if flags&0x04 != 0 {
		clear(m.palette)
	}
	if flags&0x08 != 0 {
		clear(m.vram[:0x18000])
	}
	if flags&0x10 != 0 {
		clear(m.oam)
	}

	if flags&0x80 != 0 {
		for i := uint32(0); i < 0x10; i++ {
			m.updateRegister(0x200+i*2, 0)
		}
		for i := uint32(0); i < 0xF; i++ {
			m.updateRegister(0x4+i*2, 0)
		}
		for i := uint32(0); i < 0x20; i++ {
			m.updateRegister(0x20+i*2, 0)
		}
		for i := uint32(0); i < 0x18; i++ {
			m.updateRegister(0xB0+i*2, 0)
		}
		m.updateRegister(addr.KEYINPUT, 0)
		m.updateRegister(addr.BG2PA, 0x100)
		m.updateRegister(addr.BG3PA, 0x100)
		m.updateRegister(addr.BG2PD, 0x100)
		m.updateRegister(addr.BG3PD, 0x100)
	}

	if flags&0x20 != 0 {
		for i := uint32(0); i < 8; i++ {
			m.updateRegister(0x110+i*2, 0)
		}
		m.updateRegister(addr.RCNT, 0x8000)
		for i := uint32(0); i < 7; i++ {
			m.updateRegister(0x140+i*2, 0)
		}
	}

	if flags&0x40 != 0 {
		m.Write8(addr.IOBase+addr.SOUNDCNT_X, 0)
		m.Write8(addr.IOBase+addr.SOUNDCNT_X, 0x80)
		m.Write32(addr.IOBase+addr.SOUNDCNT_L, 0x880E0000)
		m.updateRegister(addr.SOUNDBIAS, uint16(m.Read16(addr.IOBase+addr.SOUNDBIAS))&0x3FF)
		m.Write8(addr.IOBase+addr.SOUND3CNT_L, 0x70)
		for i := uint32(0); i < 8; i++ {
			m.updateRegister(addr.WaveRAM+i*2, 0)
		}
		m.Write8(addr.IOBase+addr.SOUND3CNT_L, 0)
		for i := uint32(0); i < 8; i++ {
			m.updateRegister(addr.WaveRAM+i*2, 0)
		}
		m.Write8(addr.IOBase+addr.SOUNDCNT_X, 0)
	}
}
