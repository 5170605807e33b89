package cartridge

import (
	"strings"
	"unicode"
)

const (
	titleAddress    = 0xA0
	titleLength     = 12
	gameIDAddress   = 0xAC
	makerAddress    = 0xB0
	fixedAddress    = 0xB2
	unitAddress     = 0xB3
	versionAddress  = 0xBC
	checksumAddress = 0xBD
	headerSize      = 0xC0
)

// Header is the part of the cartridge header the emulator cares about.
type Header struct {
	Title    string
	GameID   string
	Maker    string
	Version  uint8
	Checksum uint8
}

func parseHeader(data []byte) Header {
	if len(data) < headerSize {
		return Header{Title: "(Untitled)"}
	}
	return Header{
		Title:    cleanText(data[titleAddress : titleAddress+titleLength]),
		GameID:   string(data[gameIDAddress : gameIDAddress+4]),
		Maker:    string(data[makerAddress : makerAddress+2]),
		Version:  data[versionAddress],
		Checksum: data[checksumAddress],
	}
}

// ComplementCheck computes the header checksum stored at 0xBD.
func ComplementCheck(data []byte) uint8 {
	var sum uint8
	for _, b := range data[titleAddress:checksumAddress] {
		sum -= b
	}
	return sum - 0x19
}

// cleanText turns a padded header field into a printable string.
func cleanText(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
