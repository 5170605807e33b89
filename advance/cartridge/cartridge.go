// Package cartridge holds the ROM image and everything derived from its
// header: game id, title, checksum and the backup hardware the game needs.
package cartridge

import (
	"crypto/md5"
	"errors"
	"fmt"

	"github.com/valerio/go-advance/advance/memory"
)

const (
	// MaxSize is the whole 32 MiB cartridge window.
	MaxSize = 0x2000000
	// MaxMultibootSize is the work RAM a multiboot image loads into.
	MaxMultibootSize = 0x40000
	// MultibootEntry is where execution starts for multiboot images.
	MultibootEntry uint32 = 0x02000000

	eepromPatchLimit   = 0x1FE2000
	eepromPatchAddress = 0x1FE209C
)

var (
	ErrEmptyROM    = errors.New("cartridge: empty ROM image")
	ErrROMTooLarge = errors.New("cartridge: ROM image too large")
)

// Cartridge is a loaded game image. ROM always spans the full 32 MiB window
// so reads past the end of the dump see the open bus pattern instead of
// needing bounds checks.
type Cartridge struct {
	ROM       []byte
	Size      int
	Multiboot bool
	// Image is the multiboot program copied into work RAM at reset.
	Image  []byte
	Header Header
	MD5    [md5.Size]byte
}

// New builds a cartridge from a raw dump. Multiboot images are kept in
// Image for the machine to copy into work RAM; their ROM window holds no
// game code.
func New(data []byte, multiboot bool) (*Cartridge, error) {
	if len(data) == 0 {
		return nil, ErrEmptyROM
	}
	limit := MaxSize
	if multiboot {
		limit = MaxMultibootSize
	}
	if len(data) > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrROMTooLarge, len(data), limit)
	}

	c := &Cartridge{
		ROM:       make([]byte, MaxSize),
		Size:      len(data),
		Multiboot: multiboot,
		MD5:       md5.Sum(data),
	}
	for i := range c.ROM {
		c.ROM[i] = 0xFF
	}
	if multiboot {
		c.Image = make([]byte, len(data))
		copy(c.Image, data)
	} else {
		copy(c.ROM, data)
	}
	c.fillOpenBus()
	c.Header = parseHeader(data)
	return c, nil
}

// fillOpenBus fills the window past the dump with the value the cartridge
// bus floats to: the halfword address itself.
func (c *Cartridge) fillOpenBus() {
	start := (c.Size + 1) &^ 1
	for i := start; i < MaxSize; i += 2 {
		memory.Write16(c.ROM, uint32(i), uint16(i>>1))
	}
}

// PatchEEPROM replaces the EEPROM handshake routine some games probe at
// the end of the window with SWI 0xFA; BX LR.
func (c *Cartridge) PatchEEPROM() {
	if c.Size >= eepromPatchLimit {
		return
	}
	memory.Write16(c.ROM, eepromPatchAddress, 0xDFFA)
	memory.Write16(c.ROM, eepromPatchAddress+2, 0x4770)
}

// Mirror repeats an image of up to 8 MiB across the first 16 MiB, as the
// Classic NES series expects.
func (c *Cartridge) Mirror() {
	size := (c.Size >> 20 & 0x3F) << 20
	if size > 0x800000 {
		return
	}
	at := size
	if size == 0 {
		size = 0x100000
	}
	for ; at < 0x1000000; at += size {
		copy(c.ROM[at:at+size], c.ROM[:size])
	}
}

// Hardware reports the extra cartridge hardware implied by the first
// letter of the game id.
func (c *Cartridge) Hardware() Hardware {
	if len(c.Header.GameID) == 0 {
		return HardwareNone
	}
	switch c.Header.GameID[0] {
	case 'R':
		return HardwareRumble | HardwareGyro
	case 'U':
		return HardwareSolar
	case 'V':
		return HardwareRumble
	}
	return HardwareNone
}

// Hardware is a set of extra devices wired to the cartridge GPIO port.
type Hardware uint8

const (
	HardwareRumble Hardware = 1 << iota
	HardwareGyro
	HardwareSolar

	HardwareNone Hardware = 0
)
