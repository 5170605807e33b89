package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// eepromBits builds a request: two command bits, the address MSB first,
// optional data MSB first and the stop bit.
func eepromBits(read bool, address, addressBits int, data []uint8) []uint16 {
	bits := []uint16{1, 0}
	if read {
		bits[1] = 1
	}
	for i := addressBits - 1; i >= 0; i-- {
		bits = append(bits, uint16(address>>i)&1)
	}
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, uint16(b>>i)&1)
		}
	}
	return append(bits, 0)
}

func send(e *EEPROM, bits []uint16) {
	for _, b := range bits {
		e.Write(b, len(bits))
	}
}

func receive(e *EEPROM) []uint8 {
	for i := 0; i < 4; i++ {
		e.Read()
	}
	out := make([]uint8, 8)
	for i := 0; i < 64; i++ {
		out[i/8] = out[i/8]<<1 | uint8(e.Read())
	}
	return out
}

func TestEEPROMRoundTrip(t *testing.T) {
	payload := []uint8{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x23, 0x45, 0x67}

	tests := []struct {
		name        string
		address     int
		addressBits int
		size        int
	}{
		{"512 bytes", 3, 6, EEPROM512},
		{"8 KiB", 0x2F1, 14, EEPROM8K},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEEPROM()
			assert.False(t, e.InUse())

			write := eepromBits(false, tt.address, tt.addressBits, payload)
			send(e, write)
			assert.True(t, e.InUse())
			assert.Equal(t, tt.size, e.Size())
			assert.Equal(t, payload, e.Bytes()[tt.address*8:tt.address*8+8])

			// the chip reports ready between requests
			assert.Equal(t, uint16(1), e.Read())

			send(e, eepromBits(true, tt.address, tt.addressBits, nil))
			assert.Equal(t, payload, receive(e))
			assert.Equal(t, uint16(1), e.Read())
		})
	}
}

func TestEEPROMIgnoresCPUWrites(t *testing.T) {
	e := NewEEPROM()
	e.Write(1, 0)
	e.Write(1, 0)
	assert.False(t, e.InUse())
	assert.Equal(t, uint16(1), e.Read())
}

func TestEEPROMLoad(t *testing.T) {
	e := NewEEPROM()
	data := make([]uint8, EEPROM8K)
	data[0x10] = 0x80
	e.Load(data)
	assert.Equal(t, EEPROM8K, e.Size())

	send(e, eepromBits(true, 2, 14, nil))
	got := receive(e)
	assert.Equal(t, uint8(0x80), got[0])

	e.Load(make([]uint8, EEPROM512))
	assert.Equal(t, EEPROM512, e.Size())
}
