// Package advance is the Game Boy Advance machine: the memory router, the
// I/O register dispatcher, DMA, timers, the interrupt controller and the
// event scheduler that drives the CPU a frame at a time.
package advance

import (
	"github.com/valerio/go-advance/advance/audio"
	"github.com/valerio/go-advance/advance/backup"
	"github.com/valerio/go-advance/advance/cartridge"
	"github.com/valerio/go-advance/advance/cpu"
	"github.com/valerio/go-advance/advance/memory"
	"github.com/valerio/go-advance/advance/video"
)

// Memory sizes.
const (
	wramSize    = 0x40000
	iwramSize   = 0x8000
	ioSize      = 0x400
	paletteSize = 0x400
	vramSize    = 0x20000
	oamSize     = 0x400
)

const (
	// CyclesPerFrame is one full 228-line frame of the 16.78 MHz clock.
	CyclesPerFrame = 280896
	// sampleBudget bounds the cycles a single Emulate call may run.
	sampleBudget = 300000
	// irqLatency is the delay between an interrupt becoming eligible and
	// the CPU taking it.
	irqLatency = 7
	// sampleBufferSize holds a little over one budget of stereo samples.
	sampleBufferSize = 16384
)

// Machine is the whole console. It implements cpu.Bus for the CPU and the
// bus interfaces of the HLE BIOS.
type Machine struct {
	cpu    *cpu.CPU
	timing *memory.Timing
	cfg    config

	bios          []byte
	useBIOS       bool
	biosProtected uint32

	wram    []byte
	iwram   []byte
	io      []byte
	palette []byte
	vram    []byte
	oam     []byte
	cart    *cartridge.Cartridge

	devices cartridge.Devices
	flash   *backup.Flash
	eeprom  *backup.EEPROM
	rtc     *backup.RTC

	renderer *video.Renderer
	frame    *video.FrameBuffer
	colors   *video.ColorMap

	sound        audio.Sound
	samples      []int16
	sampleFrames int

	dma    [4]dmaChannel
	timers [4]timer

	intEnable uint16
	intFlags  uint16
	intMaster uint16
	// intState is set while an eligible interrupt waits out irqTicks.
	intState bool
	irqTicks int

	// scheduler
	totalTicks int
	nextEvent  int
	lcdTicks   int
	swiTicks   int
	soundTS    int
	breakLoop  bool
	frameReady bool

	// DMA cost not yet folded into the event clock
	dmaTicks int
	dmaHack  bool
	dmaLast  uint32
	dmaCount int

	holdState bool
	holdType  int
	stopState bool

	keys uint16

	warnedSWI map[uint32]bool
}

var _ cpu.Bus = (*Machine)(nil)

func newMachine(cfg config) *Machine {
	m := &Machine{
		cfg:       cfg,
		timing:    memory.NewTiming(),
		wram:      make([]byte, wramSize),
		iwram:     make([]byte, iwramSize),
		io:        make([]byte, ioSize),
		palette:   make([]byte, paletteSize),
		vram:      make([]byte, vramSize),
		oam:       make([]byte, oamSize),
		flash:     backup.NewFlash(),
		eeprom:    backup.NewEEPROM(),
		frame:     video.NewFrameBuffer(cfg.format),
		colors:    video.NewColorMap(cfg.format),
		samples:   make([]int16, sampleBufferSize),
		warnedSWI: make(map[uint32]bool),
	}
	m.renderer = video.NewRenderer(video.Memory{
		IO:      m.io,
		Palette: m.palette,
		VRAM:    m.vram,
		OAM:     m.oam,
	})

	m.sound = cfg.sound
	if m.sound == nil {
		m.sound = audio.New()
	}
	m.sound.SetDMARequest(m.requestFIFO)

	m.cpu = cpu.New(m, m.timing)
	return m
}

// CPU exposes the processor, mostly for debuggers and tests.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

// Cartridge returns the loaded game.
func (m *Machine) Cartridge() *cartridge.Cartridge {
	return m.cart
}

// Frame returns the frame buffer, complete after each Emulate call that
// reported a frame.
func (m *Machine) Frame() *video.FrameBuffer {
	return m.frame
}

// Renderer returns the line renderer.
func (m *Machine) Renderer() *video.Renderer {
	return m.renderer
}

// Sound returns the audio collaborator.
func (m *Machine) Sound() audio.Sound {
	return m.sound
}

// Devices reports which backup devices respond on the cartridge bus.
func (m *Machine) Devices() cartridge.Devices {
	return m.devices
}

// RTC returns the cartridge clock, nil when the game has none.
func (m *Machine) RTC() *backup.RTC {
	return m.rtc
}

// UsingBIOS reports whether a real BIOS image is mapped.
func (m *Machine) UsingBIOS() bool {
	return m.useBIOS
}

// SetPixelFormat rebuilds the frame buffer and color map for format.
func (m *Machine) SetPixelFormat(format video.PixelFormat) {
	m.cfg.format = format
	m.frame = video.NewFrameBuffer(format)
	m.colors = video.NewColorMap(format)
}

// SetLayerMask hides layers on the host side: bits 8-11 BG0-BG3, bit 12
// OBJ, bits 13-15 the windows.
func (m *Machine) SetLayerMask(mask uint16) {
	m.renderer.SetLayerSettings(mask)
}

// SetDarkness sets the solar sensor level: 0xE8 is full dark.
func (m *Machine) SetDarkness(level uint8) {
	if m.rtc != nil {
		m.rtc.Darkness = level
	}
}

// SetTilt sets the rotation sensor reading.
func (m *Machine) SetTilt(z int) {
	if m.rtc != nil {
		m.rtc.TiltZ = z
	}
}
