package cartridge

import (
	"bytes"
	"path/filepath"
	"strings"
)

// TestMagic reports whether name/data look like a GBA image: a PSF
// container, a .gba or .agb file, or a .bin whose header carries the fixed
// 0x96 byte or which starts with a branch instruction.
func TestMagic(name string, data []byte) bool {
	if bytes.HasPrefix(data, []byte("PSF\x22")) {
		return true
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "gba", "agb":
		return true
	case "bin":
		if len(data) < headerSize {
			return false
		}
		return (data[fixedAddress] == 0x96 && data[unitAddress] == 0x00) ||
			(data[0] == 0x2E && data[3] == 0xEA)
	}
	return false
}

// IsMultiboot reports whether name is a multiboot image by extension.
func IsMultiboot(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".mb")
}
