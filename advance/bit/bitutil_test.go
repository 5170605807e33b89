package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(0, 0x1))
	assert.False(t, IsSet(1, 0x1))
	assert.True(t, IsSet(31, 0x80000000))
	assert.True(t, IsSet16(15, 0x8000))
}

func TestSetClear(t *testing.T) {
	assert.Equal(t, uint32(0x81), Set(7, 0x01))
	assert.Equal(t, uint32(0x01), Clear(7, 0x81))
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		value  uint32
		hi, lo uint
		want   uint32
	}{
		{"middle bits", 0b11010110, 6, 4, 0b101},
		{"single bit", 0x80000000, 31, 31, 1},
		{"condition field", 0xE3A00001, 31, 28, 0xE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.value, tt.hi, tt.lo))
		})
	}
}

func TestROR(t *testing.T) {
	assert.Equal(t, uint32(0x80000000), ROR(1, 1))
	assert.Equal(t, uint32(0x12345678), ROR(0x12345678, 0))
	assert.Equal(t, uint32(0x78123456), ROR(0x12345678, 8))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, uint32(0xFFFFFFFF), SignExtend(0xFF, 8))
	assert.Equal(t, uint32(0x7F), SignExtend(0x7F, 8))
	assert.Equal(t, uint32(0xFF800000), SignExtend(0x800000, 24))
}

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0xABCD), Combine(0xAB, 0xCD))
	assert.Equal(t, uint8(0xAB), High(0xABCD))
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
}
