package advance

import (
	"github.com/valerio/go-advance/advance/audio"
	"github.com/valerio/go-advance/advance/backup"
	"github.com/valerio/go-advance/advance/cartridge"
	"github.com/valerio/go-advance/advance/video"
)

// Option configures a Machine at load time.
type Option func(*config)

type config struct {
	bios []byte

	saveType  *cartridge.SaveType
	flashSize int
	rtc       bool
	mirroring bool
	override  *override

	render bool
	sound  audio.Sound
	format video.PixelFormat

	darkness uint8
	tilt     int
	clock    backup.Clock
}

// override is the content of a backup type file.
type override struct {
	settings cartridge.Override
	devices  cartridge.Devices
}

func defaultConfig() config {
	return config{
		render:   true,
		format:   video.FormatRGBA32,
		darkness: 0xE8,
		clock:    backup.SystemClock,
	}
}

// WithBIOS uses a real BIOS image instead of the built-in one. An image
// that is not exactly 16 KiB is ignored with a warning.
func WithBIOS(image []byte) Option {
	return func(c *config) {
		c.bios = image
	}
}

// WithSaveType forces the backup devices, overriding the built-in table
// and any backup type file.
func WithSaveType(t cartridge.SaveType) Option {
	return func(c *config) {
		c.saveType = &t
	}
}

// WithFlashSize selects a 64 KiB or 128 KiB flash chip.
func WithFlashSize(size int) Option {
	return func(c *config) {
		c.flashSize = size
	}
}

// WithRTC adds the real-time clock even when the game is not known to
// have one.
func WithRTC(enabled bool) Option {
	return func(c *config) {
		c.rtc = enabled
	}
}

// WithMirroring repeats small ROMs across the cartridge window.
func WithMirroring(enabled bool) Option {
	return func(c *config) {
		c.mirroring = enabled
	}
}

// WithOverride applies a parsed backup type file. Devices listed are the
// only ones enabled.
func WithOverride(settings cartridge.Override, devices cartridge.Devices) Option {
	return func(c *config) {
		c.override = &override{settings: settings, devices: devices}
	}
}

// WithRenderer turns scanline rendering on or off. With rendering off the
// frame buffer is never written, which suits runs that only want sound or
// timing.
func WithRenderer(enabled bool) Option {
	return func(c *config) {
		c.render = enabled
	}
}

// WithSound replaces the built-in APU.
func WithSound(s audio.Sound) Option {
	return func(c *config) {
		c.sound = s
	}
}

// WithPixelFormat selects the frame buffer layout.
func WithPixelFormat(f video.PixelFormat) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithDarkness sets the initial solar sensor level.
func WithDarkness(level uint8) Option {
	return func(c *config) {
		c.darkness = level
	}
}

// WithTilt sets the initial rotation sensor reading.
func WithTilt(z int) Option {
	return func(c *config) {
		c.tilt = z
	}
}

// WithClock sets the wall clock the RTC starts from.
func WithClock(clock backup.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}
