package debug

// AudioData is the mixer state shown by the audio status action.
type AudioData struct {
	Enabled  bool
	Channels [4]bool
	// FIFO fill levels in bytes, out of 32.
	FIFOA int
	FIFOB int
}

// ChannelLevels reports which PSG channels are audible and how full the
// DirectSound FIFOs are.
type ChannelLevels interface {
	ChannelStatus() (ch1, ch2, ch3, ch4 bool)
	FIFOLevel(n int) int
}

// ExtractAudioData builds the status from the mixer and SOUNDCNT_X.
func ExtractAudioData(levels ChannelLevels, soundcntX uint16) *AudioData {
	data := &AudioData{Enabled: soundcntX&0x80 != 0}
	if levels == nil {
		return data
	}
	ch1, ch2, ch3, ch4 := levels.ChannelStatus()
	data.Channels = [4]bool{ch1, ch2, ch3, ch4}
	data.FIFOA = levels.FIFOLevel(0)
	data.FIFOB = levels.FIFOLevel(1)
	return data
}
