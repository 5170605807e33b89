package audio

import "github.com/valerio/go-advance/advance/savestate"

// Sound is the audio collaborator driven by the machine. Timestamps are
// master-clock cycles since the last Flush.
type Sound interface {
	Reset()
	SetDMARequest(fn func(fifo int))

	WriteRegister(ts int, offset uint32, value uint8)
	WriteRegister16(ts int, offset uint32, value uint16)
	ReadRegister(offset uint32) uint8

	// TimerOverflow is called for every overflow of timer 0 or 1.
	TimerOverflow(ts int, timer int)
	// Flush renders up to ts and drains samples into buf.
	Flush(ts int, buf []int16) int

	StateAction(s *savestate.Section)
}

// Mixer exposes the channel debugging controls.
type Mixer interface {
	ToggleChannel(channel int)
	SoloChannel(channel int)
	UnmuteAll()
	ChannelStatus() (ch1, ch2, ch3, ch4 bool)
}

var (
	_ Sound = (*APU)(nil)
	_ Mixer = (*APU)(nil)
)
