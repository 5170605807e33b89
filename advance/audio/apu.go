package audio

import (
	"github.com/valerio/go-advance/advance/bit"
	"github.com/valerio/go-advance/advance/savestate"
)

const (
	// maxBufferSize bounds the queued output when nobody drains it.
	maxBufferSize = SampleRate * 2
	// bufferRetainSize is what is kept when the bound is hit.
	bufferRetainSize = SampleRate

	outputScale = 32
)

// readMasks hold the readable bits of each sound register byte.
var readMasks = [registerCount]uint8{
	0x7F, 0x00, 0xC0, 0xFF, 0x00, 0x40, 0x00, 0x00, // 0x60
	0xC0, 0xFF, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, // 0x68
	0xE0, 0x00, 0x00, 0xE0, 0x00, 0x40, 0x00, 0x00, // 0x70
	0x3F, 0xFF, 0x00, 0x00, 0xFF, 0x40, 0x00, 0x00, // 0x78
	0x77, 0xFF, 0x0F, 0x77, 0x80, 0x00, 0x00, 0x00, // 0x80
	0xFF, 0xC3, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // 0x88
}

// APU renders the four PSG channels and the two DirectSound FIFOs into
// 44100 Hz stereo samples. Register writes and timer overflows carry the
// master-clock timestamp they happened at, and the APU catches up to it
// before applying them.
type APU struct {
	enabled bool
	regs    [registerCount]uint8

	channels [4]channel
	waveRAM  [2][waveBankSize]uint8
	lfsr     uint16

	fifos [2]fifo
	// request is called with the FIFO index when it runs low.
	request func(fifo int)

	lastTS     int
	seqTimer   int
	seqStep    int
	phase      int
	buffer     []int16
	volLeft    uint8
	volRight   uint8
	psgVolume  uint8
	leftMask   uint8
	rightMask  uint8
	waveBank   int
	waveDouble bool
}

// New returns an APU with sound powered on and empty queues.
func New() *APU {
	a := &APU{}
	a.Reset()
	return a
}

// Reset powers the sound unit on with every register cleared.
func (a *APU) Reset() {
	a.regs = [registerCount]uint8{}
	a.channels = [4]channel{}
	a.waveRAM = [2][waveBankSize]uint8{}
	a.lfsr = lfsrInitialValue
	a.fifos = [2]fifo{}
	a.lastTS = 0
	a.seqTimer = cyclesPerStep
	a.seqStep = 0
	a.phase = 0
	a.buffer = a.buffer[:0]
	a.volLeft, a.volRight = 0, 0
	a.psgVolume = 0
	a.leftMask, a.rightMask = 0, 0
	a.waveBank = 0
	a.waveDouble = false
	a.enabled = true
	a.regs[regControlX-regSound1Sweep] = 0x80
}

// SetDMARequest installs the callback asked to refill a FIFO.
func (a *APU) SetDMARequest(fn func(fifo int)) {
	a.request = fn
}

// WriteRegister applies a byte write to a sound register at ts.
func (a *APU) WriteRegister(ts int, offset uint32, value uint8) {
	a.run(ts)

	if offset >= regFIFOA && offset < regFIFOA+8 {
		a.fifos[(offset-regFIFOA)/4].push(int8(value))
		return
	}
	if offset < regSound1Sweep || offset >= regSound1Sweep+registerCount {
		return
	}
	if offset >= regWaveRAM && offset < regWaveRAM+waveBankSize {
		a.waveRAM[a.waveBank^1][offset-regWaveRAM] = value
		return
	}

	if offset == regControlX {
		a.setPower(value&0x80 != 0)
		a.regs[offset-regSound1Sweep] = value & 0x80
		return
	}
	// PSG registers ignore writes while powered off.
	if !a.enabled && offset < regControlH {
		return
	}
	a.regs[offset-regSound1Sweep] = value
	a.mapRegisterToState(offset, value)
}

// WriteRegister16 applies a halfword write as two byte writes.
func (a *APU) WriteRegister16(ts int, offset uint32, value uint16) {
	a.WriteRegister(ts, offset, uint8(value))
	a.WriteRegister(ts, offset+1, uint8(value>>8))
}

// ReadRegister reads a sound register byte with unreadable bits cleared.
func (a *APU) ReadRegister(offset uint32) uint8 {
	if offset < regSound1Sweep || offset >= regSound1Sweep+registerCount {
		return 0
	}
	if offset >= regWaveRAM && offset < regWaveRAM+waveBankSize {
		return a.waveRAM[a.waveBank^1][offset-regWaveRAM]
	}
	index := offset - regSound1Sweep
	value := a.regs[index] & readMasks[index]
	if offset == regControlX {
		for i := range a.channels {
			if a.channels[i].enabled {
				value |= 1 << i
			}
		}
	}
	return value
}

func (a *APU) setPower(on bool) {
	if a.enabled && !on {
		for i := regSound1Sweep; i < regControlH; i++ {
			a.regs[i-regSound1Sweep] = 0
		}
		a.channels = [4]channel{}
		a.volLeft, a.volRight = 0, 0
		a.leftMask, a.rightMask = 0, 0
	}
	a.enabled = on
}

// mapRegisterToState updates channel state from a register byte write.
func (a *APU) mapRegisterToState(offset uint32, value uint8) {
	ch1, ch2, ch3, ch4 := &a.channels[0], &a.channels[1], &a.channels[2], &a.channels[3]

	switch offset {
	case regSound1Sweep:
		ch1.sweepShift = value & 7
		ch1.sweepDown = bit.IsSet(3, uint32(value))
		ch1.sweepPace = (value >> 4) & 7
	case regSound1Duty:
		ch1.duty = value >> 6
		ch1.length = 64 - int(value&0x3F)
	case regSound1Duty + 1:
		ch1.setEnvelope(value)
	case regSound1Freq:
		ch1.freq = ch1.freq&0x700 | uint16(value)
	case regSound1Freq + 1:
		ch1.freq = ch1.freq&0xFF | uint16(value&7)<<8
		ch1.lengthEnabled = bit.IsSet(6, uint32(value))
		if bit.IsSet(7, uint32(value)) {
			a.triggerSquare(0)
		}

	case regSound2Duty:
		ch2.duty = value >> 6
		ch2.length = 64 - int(value&0x3F)
	case regSound2Duty + 1:
		ch2.setEnvelope(value)
	case regSound2Freq:
		ch2.freq = ch2.freq&0x700 | uint16(value)
	case regSound2Freq + 1:
		ch2.freq = ch2.freq&0xFF | uint16(value&7)<<8
		ch2.lengthEnabled = bit.IsSet(6, uint32(value))
		if bit.IsSet(7, uint32(value)) {
			a.triggerSquare(1)
		}

	case regSound3Select:
		a.waveDouble = bit.IsSet(5, uint32(value))
		a.waveBank = int(value>>6) & 1
		ch3.dacEnabled = bit.IsSet(7, uint32(value))
		if !ch3.dacEnabled {
			ch3.enabled = false
		}
	case regSound3Length:
		ch3.length = 256 - int(value)
	case regSound3Length + 1:
		ch3.volume = (value >> 5) & 7
	case regSound3Freq:
		ch3.freq = ch3.freq&0x700 | uint16(value)
	case regSound3Freq + 1:
		ch3.freq = ch3.freq&0xFF | uint16(value&7)<<8
		ch3.lengthEnabled = bit.IsSet(6, uint32(value))
		if bit.IsSet(7, uint32(value)) && ch3.dacEnabled {
			ch3.enabled = true
			ch3.step = 0
			ch3.period = wavePeriod(ch3.freq)
			ch3.timer = ch3.period
			if ch3.length == 0 {
				ch3.length = 256
			}
		}

	case regSound4Envelope:
		ch4.length = 64 - int(value&0x3F)
	case regSound4Envelope + 1:
		ch4.setEnvelope(value)
	case regSound4Freq:
		ch4.period = noisePeriod(value)
	case regSound4Freq + 1:
		ch4.lengthEnabled = bit.IsSet(6, uint32(value))
		if bit.IsSet(7, uint32(value)) && ch4.dacEnabled {
			a.lfsr = lfsrInitialValue
			ch4.enabled = true
			ch4.timer = ch4.period
			ch4.envelopeTimer = 0
			ch4.volume = a.regs[regSound4Envelope+1-regSound1Sweep] >> 4
			if ch4.length == 0 {
				ch4.length = 64
			}
		}

	case regControlL:
		a.volRight = value & 7
		a.volLeft = (value >> 4) & 7
	case regControlL + 1:
		a.rightMask = value & 0x0F
		a.leftMask = value >> 4

	case regControlH:
		a.psgVolume = value & 3
		a.fifos[0].full = bit.IsSet(2, uint32(value))
		a.fifos[1].full = bit.IsSet(3, uint32(value))
	case regControlH + 1:
		for i := range a.fifos {
			f := &a.fifos[i]
			bits := value >> (4 * i)
			f.right = bits&1 != 0
			f.left = bits&2 != 0
			f.timer = int(bits>>2) & 1
			if bits&8 != 0 {
				f.reset()
			}
		}
	}
}

func (a *APU) triggerSquare(n int) {
	c := &a.channels[n]
	if !c.dacEnabled {
		return
	}
	c.enabled = true
	c.period = squarePeriod(c.freq)
	c.timer = c.period
	c.envelopeTimer = 0
	c.volume = a.regs[regSound1Duty+1-regSound1Sweep+uint32(n)*6] >> 4
	if c.length == 0 {
		c.length = 64
	}
	if n == 0 {
		c.shadowFreq = c.freq
		c.sweepTimer = 0
		c.sweepEnabled = c.sweepPace != 0 || c.sweepShift != 0
		if c.sweepShift != 0 {
			if _, ok := c.sweepTarget(); !ok {
				c.enabled = false
			}
		}
	}
}

// TimerOverflow pops one sample from every FIFO bound to timer and asks
// for a refill when a FIFO holds 16 bytes or fewer.
func (a *APU) TimerOverflow(ts int, timer int) {
	a.run(ts)
	if !a.enabled {
		return
	}
	for i := range a.fifos {
		f := &a.fifos[i]
		if f.timer != timer || !(f.left || f.right) {
			continue
		}
		f.pop()
		if f.count <= fifoLowWater && a.request != nil {
			a.request(i)
		}
	}
}

// Flush renders up to ts, copies queued stereo samples into buf and
// returns the number of stereo frames written. Timestamps restart from
// zero after a flush.
func (a *APU) Flush(ts int, buf []int16) int {
	a.run(ts)
	n := copy(buf, a.buffer) &^ 1
	rest := copy(a.buffer, a.buffer[n:])
	a.buffer = a.buffer[:rest]
	a.lastTS = 0
	return n / 2
}

func (a *APU) run(ts int) {
	for a.lastTS < ts {
		n := ts - a.lastTS
		if n > a.seqTimer {
			n = a.seqTimer
		}
		if s := (ClockRate - a.phase + SampleRate - 1) / SampleRate; n > s {
			n = s
		}

		a.clockChannels(n)
		a.lastTS += n

		a.seqTimer -= n
		if a.seqTimer <= 0 {
			a.seqTimer += cyclesPerStep
			a.updateFrameSequencer()
		}

		a.phase += n * SampleRate
		if a.phase >= ClockRate {
			a.phase -= ClockRate
			a.generateSample()
		}
	}
}

func (a *APU) clockChannels(cycles int) {
	for i := 0; i < 2; i++ {
		c := &a.channels[i]
		if c.enabled {
			c.step = (c.step + c.clock(cycles)) & 7
		}
	}

	if c := &a.channels[2]; c.enabled {
		samples := 32
		if a.waveDouble {
			samples = 64
		}
		c.step = (c.step + c.clock(cycles)) % samples
	}

	if c := &a.channels[3]; c.enabled {
		for n := c.clock(cycles); n > 0; n-- {
			feedback := (a.lfsr ^ a.lfsr>>1) & 1
			a.lfsr = a.lfsr>>1 | feedback<<14
			if bit.IsSet(3, uint32(a.regs[regSound4Freq-regSound1Sweep])) {
				a.lfsr = a.lfsr&^0x40 | feedback<<6
			}
		}
	}
}

// updateFrameSequencer clocks length at 256 Hz, sweep at 128 Hz and the
// envelopes at 64 Hz.
func (a *APU) updateFrameSequencer() {
	switch a.seqStep {
	case 0, 4:
		a.updateLengthCounters()
	case 2, 6:
		a.updateLengthCounters()
		a.channels[0].clockSweep()
	case 7:
		a.channels[0].clockEnvelope()
		a.channels[1].clockEnvelope()
		a.channels[3].clockEnvelope()
	}
	a.seqStep = (a.seqStep + 1) & 7
}

func (a *APU) updateLengthCounters() {
	for i := range a.channels {
		a.channels[i].clockLength()
	}
}

func (a *APU) generateSample() {
	left, right := a.mixChannels()
	a.buffer = append(a.buffer, left, right)
	if len(a.buffer) > maxBufferSize {
		rest := copy(a.buffer, a.buffer[len(a.buffer)-bufferRetainSize:])
		a.buffer = a.buffer[:rest]
	}
}

func (a *APU) channelOutput(i int) int32 {
	c := &a.channels[i]
	if !c.enabled || c.muted {
		return 0
	}
	switch i {
	case 0, 1:
		if dutyPatterns[c.duty&3]>>(7-c.step)&1 != 0 {
			return int32(c.volume)
		}
		return -int32(c.volume)
	case 2:
		bank := a.waveBank
		pos := c.step
		if pos >= 32 {
			bank ^= 1
			pos -= 32
		}
		sample := a.waveRAM[bank][pos/2]
		if pos&1 == 0 {
			sample >>= 4
		}
		v := int32(sample&0x0F)*2 - 15
		switch {
		case c.volume&4 != 0:
			return v * 3 / 4
		case c.volume&3 == 1:
			return v
		case c.volume&3 == 2:
			return v / 2
		case c.volume&3 == 3:
			return v / 4
		}
		return 0
	default:
		if a.lfsr&1 == 0 {
			return int32(c.volume)
		}
		return -int32(c.volume)
	}
}

func (a *APU) mixChannels() (int16, int16) {
	if !a.enabled {
		return 0, 0
	}

	var left, right int32
	for i := range a.channels {
		out := a.channelOutput(i)
		if a.leftMask&(1<<i) != 0 {
			left += out
		}
		if a.rightMask&(1<<i) != 0 {
			right += out
		}
	}
	shift := psgShift[a.psgVolume]
	left = left * int32(a.volLeft+1) >> shift
	right = right * int32(a.volRight+1) >> shift

	for i := range a.fifos {
		f := &a.fifos[i]
		out := int32(f.output)
		if f.full {
			out *= 2
		}
		if f.left {
			left += out
		}
		if f.right {
			right += out
		}
	}
	return clampSample(left * outputScale), clampSample(right * outputScale)
}

func clampSample(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// FIFOLevel returns the number of bytes queued in FIFO n.
func (a *APU) FIFOLevel(n int) int {
	return a.fifos[n].count
}

// ToggleChannel toggles muting for PSG channel 1-4.
func (a *APU) ToggleChannel(channel int) {
	if channel >= 1 && channel <= 4 {
		a.channels[channel-1].muted = !a.channels[channel-1].muted
	}
}

// SoloChannel mutes every PSG channel but one.
func (a *APU) SoloChannel(channel int) {
	for i := range a.channels {
		a.channels[i].muted = i != channel-1
	}
}

// UnmuteAll unmutes every PSG channel.
func (a *APU) UnmuteAll() {
	for i := range a.channels {
		a.channels[i].muted = false
	}
}

// ChannelStatus reports which PSG channels are playing and not muted.
func (a *APU) ChannelStatus() (ch1, ch2, ch3, ch4 bool) {
	on := func(i int) bool { return a.channels[i].enabled && !a.channels[i].muted }
	return on(0), on(1), on(2), on(3)
}

// StateAction saves or restores the sound unit.
func (a *APU) StateAction(s *savestate.Section) {
	s.Bool(&a.enabled)
	s.Bytes(a.regs[:])
	for i := range a.channels {
		a.channels[i].stateAction(s)
	}
	s.Bytes(a.waveRAM[0][:])
	s.Bytes(a.waveRAM[1][:])
	s.Uint16(&a.lfsr)
	for i := range a.fifos {
		a.fifos[i].stateAction(s)
	}
	s.Int(&a.lastTS)
	s.Int(&a.seqTimer)
	s.Int(&a.seqStep)
	s.Int(&a.phase)
	s.Uint8(&a.volLeft)
	s.Uint8(&a.volRight)
	s.Uint8(&a.psgVolume)
	s.Uint8(&a.leftMask)
	s.Uint8(&a.rightMask)
	s.Int(&a.waveBank)
	s.Bool(&a.waveDouble)
	if s.Loading() {
		a.buffer = a.buffer[:0]
		a.waveBank &= 1
		a.seqStep &= 7
	}
}
