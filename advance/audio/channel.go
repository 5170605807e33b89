package audio

import "github.com/valerio/go-advance/advance/savestate"

// channel holds the state shared by the four PSG generators. Unused
// fields stay zero for the channels that lack the feature.
type channel struct {
	enabled    bool
	dacEnabled bool
	muted      bool

	// frequency divider
	freq   uint16
	timer  int
	period int
	step   int

	lengthEnabled bool
	length        int

	volume        uint8
	envelopeUp    bool
	envelopePace  uint8
	envelopeTimer uint8

	duty uint8

	sweepPace    uint8
	sweepDown    bool
	sweepShift   uint8
	sweepTimer   uint8
	sweepEnabled bool
	shadowFreq   uint16
}

func (c *channel) stateAction(s *savestate.Section) {
	s.Bool(&c.enabled)
	s.Bool(&c.dacEnabled)
	s.Uint16(&c.freq)
	s.Int(&c.timer)
	s.Int(&c.period)
	s.Int(&c.step)
	s.Bool(&c.lengthEnabled)
	s.Int(&c.length)
	s.Uint8(&c.volume)
	s.Bool(&c.envelopeUp)
	s.Uint8(&c.envelopePace)
	s.Uint8(&c.envelopeTimer)
	s.Uint8(&c.duty)
	s.Uint8(&c.sweepPace)
	s.Bool(&c.sweepDown)
	s.Uint8(&c.sweepShift)
	s.Uint8(&c.sweepTimer)
	s.Bool(&c.sweepEnabled)
	s.Uint16(&c.shadowFreq)
}

// clock advances the frequency divider by cycles and returns how many
// times it expired.
func (c *channel) clock(cycles int) int {
	if c.period <= 0 {
		return 0
	}
	c.timer -= cycles
	n := 0
	for c.timer <= 0 {
		c.timer += c.period
		n++
	}
	return n
}

func (c *channel) clockLength() {
	if c.lengthEnabled && c.length > 0 {
		c.length--
		if c.length == 0 {
			c.enabled = false
		}
	}
}

func (c *channel) clockEnvelope() {
	if c.envelopePace == 0 {
		return
	}
	c.envelopeTimer++
	if c.envelopeTimer < c.envelopePace {
		return
	}
	c.envelopeTimer = 0
	if c.envelopeUp && c.volume < 15 {
		c.volume++
	} else if !c.envelopeUp && c.volume > 0 {
		c.volume--
	}
}

// setEnvelope decodes the NRx2-style envelope byte.
func (c *channel) setEnvelope(value uint8) {
	c.volume = value >> 4
	c.envelopeUp = value&0x08 != 0
	c.envelopePace = value & 0x07
	c.dacEnabled = value&0xF8 != 0
	if !c.dacEnabled {
		c.enabled = false
	}
}

// squarePeriod is the length of one duty step: the full wave is
// 131072/(2048-freq) Hz over eight steps.
func squarePeriod(freq uint16) int {
	return 16 * (2048 - int(freq&0x7FF))
}

// wavePeriod is the length of one 4-bit sample: 2097152/(2048-freq) Hz.
func wavePeriod(freq uint16) int {
	return 8 * (2048 - int(freq&0x7FF))
}

// noisePeriod is the LFSR clock period for a SOUND4CNT_H value:
// 524288 Hz / r / 2^(s+1), with r = 0 counting as 0.5.
func noisePeriod(value uint8) int {
	r := int(value & 7)
	s := uint(value >> 4)
	base := 16
	if r != 0 {
		base = 32 * r
	}
	return base << (s + 1)
}

// sweepTarget computes the next sweep frequency; ok is false on overflow.
func (c *channel) sweepTarget() (uint16, bool) {
	delta := c.shadowFreq >> c.sweepShift
	if c.sweepDown {
		return c.shadowFreq - delta, true
	}
	next := c.shadowFreq + delta
	return next, next <= 2047
}

func (c *channel) clockSweep() {
	if !c.sweepEnabled || c.sweepPace == 0 {
		return
	}
	c.sweepTimer++
	if c.sweepTimer < c.sweepPace {
		return
	}
	c.sweepTimer = 0
	next, ok := c.sweepTarget()
	if !ok {
		c.enabled = false
		return
	}
	if c.sweepShift != 0 {
		c.shadowFreq = next
		c.freq = next
		c.period = squarePeriod(next)
		if _, ok := c.sweepTarget(); !ok {
			c.enabled = false
		}
	}
}
