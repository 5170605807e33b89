package audio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-advance/advance/savestate"
)

func TestAPU_RegisterMapping(t *testing.T) {
	tests := []struct {
		name     string
		register uint32
		value    uint16
		testFunc func(t *testing.T, apu *APU)
	}{
		{
			name:     "SOUND1CNT_L sweep",
			register: regSound1Sweep, value: 0x5E,
			testFunc: func(t *testing.T, apu *APU) {
				assert.Equal(t, uint8(5), apu.channels[0].sweepPace)
				assert.True(t, apu.channels[0].sweepDown)
				assert.Equal(t, uint8(6), apu.channels[0].sweepShift)
			},
		},
		{
			name:     "SOUND1CNT_H duty, length and envelope",
			register: regSound1Duty, value: 0xF7BF,
			testFunc: func(t *testing.T, apu *APU) {
				assert.Equal(t, uint8(2), apu.channels[0].duty)
				assert.Equal(t, 1, apu.channels[0].length)
				assert.Equal(t, uint8(15), apu.channels[0].volume)
				assert.False(t, apu.channels[0].envelopeUp)
				assert.Equal(t, uint8(7), apu.channels[0].envelopePace)
				assert.True(t, apu.channels[0].dacEnabled)
			},
		},
		{
			name:     "SOUNDCNT_L volume and panning",
			register: regControlL, value: 0x9A53,
			testFunc: func(t *testing.T, apu *APU) {
				assert.Equal(t, uint8(3), apu.volRight)
				assert.Equal(t, uint8(5), apu.volLeft)
				assert.Equal(t, uint8(0xA), apu.rightMask)
				assert.Equal(t, uint8(0x9), apu.leftMask)
			},
		},
		{
			name:     "SOUNDCNT_H DirectSound routing",
			register: regControlH, value: 0x6306,
			testFunc: func(t *testing.T, apu *APU) {
				assert.Equal(t, uint8(2), apu.psgVolume)
				assert.True(t, apu.fifos[0].full)
				assert.False(t, apu.fifos[1].full)
				assert.True(t, apu.fifos[0].right)
				assert.True(t, apu.fifos[0].left)
				assert.Equal(t, 0, apu.fifos[0].timer)
				assert.False(t, apu.fifos[1].right)
				assert.True(t, apu.fifos[1].left)
				assert.Equal(t, 1, apu.fifos[1].timer)
			},
		},
		{
			name:     "SOUND4CNT_H noise divider",
			register: regSound4Freq, value: 0x0021,
			testFunc: func(t *testing.T, apu *APU) {
				assert.Equal(t, 32<<3, apu.channels[3].period)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apu := New()
			apu.WriteRegister16(0, tt.register, tt.value)
			tt.testFunc(t, apu)
		})
	}
}

func TestAPU_ReadMasks(t *testing.T) {
	apu := New()

	apu.WriteRegister16(0, regSound1Freq, 0xC7FF)
	assert.Equal(t, uint8(0), apu.ReadRegister(regSound1Freq), "frequency is write-only")
	assert.Equal(t, uint8(0x40), apu.ReadRegister(regSound1Freq+1), "only the length flag reads back")

	apu.WriteRegister16(0, regControlH, 0xFF0F)
	assert.Equal(t, uint8(0x77), apu.ReadRegister(regControlH+1), "FIFO reset bits read as zero")
}

func TestAPU_PowerOff(t *testing.T) {
	apu := New()
	apu.WriteRegister16(0, regSound1Duty, 0xF080)
	apu.WriteRegister16(0, regControlL, 0xFF77)
	apu.WriteRegister(0, regSound1Freq+1, 0x80)
	require.True(t, apu.channels[0].enabled)

	apu.WriteRegister(0, regControlX, 0x00)
	assert.False(t, apu.enabled)
	assert.False(t, apu.channels[0].enabled)
	assert.Equal(t, uint8(0), apu.volLeft)
	assert.Equal(t, uint8(0), apu.ReadRegister(regControlL))

	apu.WriteRegister(0, regControlL, 0x77)
	assert.Equal(t, uint8(0), apu.volLeft, "PSG writes are ignored while powered off")

	apu.WriteRegister(0, regWaveRAM, 0xAB)
	assert.Equal(t, uint8(0xAB), apu.ReadRegister(regWaveRAM), "wave RAM stays writable")

	apu.WriteRegister(0, regControlX, 0x80)
	apu.WriteRegister(0, regControlL, 0x66)
	assert.Equal(t, uint8(6), apu.volLeft)
	assert.Equal(t, uint8(0x80), apu.ReadRegister(regControlX))
}

func TestAPU_WaveBanks(t *testing.T) {
	apu := New()

	// bank 0 playing: the CPU sees bank 1
	apu.WriteRegister(0, regSound3Select, 0x00)
	apu.WriteRegister(0, regWaveRAM, 0x12)
	assert.Equal(t, uint8(0x12), apu.waveRAM[1][0])

	apu.WriteRegister(0, regSound3Select, 0x40)
	apu.WriteRegister(0, regWaveRAM, 0x34)
	assert.Equal(t, uint8(0x34), apu.waveRAM[0][0])
	assert.Equal(t, uint8(0x34), apu.ReadRegister(regWaveRAM))

	apu.WriteRegister(0, regSound3Select, 0x00)
	assert.Equal(t, uint8(0x12), apu.ReadRegister(regWaveRAM))
}

func TestAPU_FIFORefillRequest(t *testing.T) {
	apu := New()
	var requests []int
	apu.SetDMARequest(func(fifo int) { requests = append(requests, fifo) })

	// FIFO A on timer 0, FIFO B on timer 1, both to both sides
	apu.WriteRegister16(0, regControlH, 0x730C)
	for i := 0; i < 10; i++ {
		apu.WriteRegister16(0, regFIFOA, 0x0101)
	}
	require.Equal(t, 20, apu.FIFOLevel(0))

	for i := 0; i < 3; i++ {
		apu.TimerOverflow(0, 0)
	}
	assert.Empty(t, requests)
	assert.Equal(t, 17, apu.FIFOLevel(0))

	apu.TimerOverflow(0, 0)
	assert.Equal(t, []int{0}, requests)

	apu.TimerOverflow(0, 1)
	assert.Equal(t, 16, apu.FIFOLevel(0), "timer 1 does not drive FIFO A")
	assert.Equal(t, []int{0, 1}, requests, "empty FIFO B asks for data")
}

func TestAPU_FIFOFull(t *testing.T) {
	apu := New()
	for i := 0; i < 40; i++ {
		apu.WriteRegister(0, regFIFOB, uint8(i))
	}
	assert.Equal(t, fifoSize, apu.FIFOLevel(1))

	apu.WriteRegister(0, regControlH+1, 0x80)
	assert.Equal(t, 0, apu.FIFOLevel(1), "reset bit empties the FIFO")
}

func TestAPU_FlushSampleCount(t *testing.T) {
	apu := New()
	buf := make([]int16, SampleRate*2)

	n := apu.Flush(ClockRate, buf)
	assert.Equal(t, SampleRate, n)

	n = apu.Flush(0, buf)
	assert.Equal(t, 0, n, "timestamps restart after a flush")

	n = apu.Flush(ClockRate/2, buf[:100])
	assert.Equal(t, 50, n, "frames beyond the buffer stay queued")
	n = apu.Flush(0, buf)
	assert.Equal(t, SampleRate/2-50, n)
}

func peak(samples []int16) (lo, hi int16) {
	for _, v := range samples {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func TestAPU_SquareOutput(t *testing.T) {
	apu := New()
	apu.WriteRegister16(0, regControlL, 0xFF77)
	apu.WriteRegister16(0, regControlH, 0x0002)
	apu.WriteRegister16(0, regSound1Duty, 0xF080)
	apu.WriteRegister16(0, regSound1Freq, 0x8700)

	buf := make([]int16, 2048)
	n := apu.Flush(ClockRate/60, buf)
	require.NotZero(t, n)

	lo, hi := peak(buf[:n*2])
	assert.Equal(t, int16(15*8*outputScale), hi)
	assert.Equal(t, int16(-15*8*outputScale), lo)
}

func TestAPU_MutedChannelIsSilent(t *testing.T) {
	apu := New()
	apu.WriteRegister16(0, regControlL, 0xFF77)
	apu.WriteRegister16(0, regControlH, 0x0002)
	apu.WriteRegister16(0, regSound2Duty, 0xF080)
	apu.WriteRegister16(0, regSound2Freq, 0x8700)
	apu.SoloChannel(1)

	_, ch2, _, _ := apu.ChannelStatus()
	assert.False(t, ch2)

	buf := make([]int16, 2048)
	n := apu.Flush(ClockRate/60, buf)
	lo, hi := peak(buf[:n*2])
	assert.Zero(t, lo)
	assert.Zero(t, hi)

	apu.UnmuteAll()
	_, ch2, _, _ = apu.ChannelStatus()
	assert.True(t, ch2)
}

func TestAPU_DirectSoundOutput(t *testing.T) {
	apu := New()
	// FIFO A at 100% to both sides on timer 0
	apu.WriteRegister16(0, regControlH, 0x0304)
	apu.WriteRegister(0, regFIFOA, 0x40)
	apu.TimerOverflow(0, 0)

	buf := make([]int16, 64)
	n := apu.Flush(ClockRate/1000, buf)
	require.NotZero(t, n)
	assert.Equal(t, int16(0x40*2*outputScale), buf[0])
	assert.Equal(t, int16(0x40*2*outputScale), buf[1])
}

func TestAPU_LengthCounter(t *testing.T) {
	apu := New()
	apu.WriteRegister16(0, regSound1Duty, 0xF03F)
	apu.WriteRegister16(0, regSound1Freq, 0xC400)
	require.True(t, apu.channels[0].enabled)

	apu.Flush(cyclesPerStep, nil)
	assert.False(t, apu.channels[0].enabled, "a length of one expires on the first length clock")

	on, _, _, _ := apu.ChannelStatus()
	assert.False(t, on)
	assert.Equal(t, uint8(0), apu.ReadRegister(regControlX)&0x0F)
}

func TestAPU_StateRoundTrip(t *testing.T) {
	apu := New()
	apu.WriteRegister16(0, regControlL, 0xFF77)
	apu.WriteRegister16(0, regSound1Duty, 0xF080)
	apu.WriteRegister16(0, regSound1Freq, 0x8700)
	apu.WriteRegister16(0, regControlH, 0x0304)
	apu.WriteRegister16(0, regFIFOA, 0x1234)
	apu.WriteRegister(0, regWaveRAM, 0x5A)
	apu.Flush(12345, nil)

	var buf bytes.Buffer
	w, err := savestate.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Section("SND", apu.StateAction))

	restored := New()
	r, err := savestate.NewReader(&buf)
	require.NoError(t, err)
	require.NoError(t, r.Section("SND", restored.StateAction))

	assert.Equal(t, apu.regs, restored.regs)
	assert.Equal(t, apu.channels, restored.channels)
	assert.Equal(t, apu.waveRAM, restored.waveRAM)
	assert.Equal(t, apu.fifos, restored.fifos)
	assert.Equal(t, apu.seqTimer, restored.seqTimer)
	assert.Equal(t, apu.phase, restored.phase)
}
