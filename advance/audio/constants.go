package audio

// Clock and output rates.
const (
	// ClockRate is the master clock the timestamps count in.
	ClockRate = 1 << 24
	// SampleRate of the rendered stereo output.
	SampleRate = 44100

	// cyclesPerStep is the frame sequencer period: 512 Hz at 16.78 MHz.
	cyclesPerStep = ClockRate / 512
)

// Register offsets inside the I/O window.
const (
	regSound1Sweep    = 0x60
	regSound1Duty     = 0x62
	regSound1Freq     = 0x64
	regSound2Duty     = 0x68
	regSound2Freq     = 0x6C
	regSound3Select   = 0x70
	regSound3Length   = 0x72
	regSound3Freq     = 0x74
	regSound4Envelope = 0x78
	regSound4Freq     = 0x7C
	regControlL       = 0x80
	regControlH       = 0x82
	regControlX       = 0x84
	regBias           = 0x88
	regWaveRAM        = 0x90
	regFIFOA          = 0xA0
	regFIFOB          = 0xA4

	registerCount = 0x40
)

// Channel constants.
const (
	// waveBankSize is the size of one wave pattern bank (32 nibbles).
	waveBankSize = 16
	fifoSize     = 32
	// fifoLowWater is the level at which a FIFO asks for a refill.
	fifoLowWater = 16

	lfsrInitialValue = 0x7FFF
)

var dutyPatterns = [4]uint8{
	0b00000001, // 12.5%
	0b10000001, // 25%
	0b10000111, // 50%
	0b01111110, // 75%
}

// psgShift scales the summed PSG output by SOUNDCNT_H bits 0-1.
var psgShift = [4]uint{2, 1, 0, 0}
