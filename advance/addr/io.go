package addr

// Memory region prefixes, selected by address >> 24.
const (
	RegionBIOS    = 0x00
	RegionWRAM    = 0x02
	RegionIWRAM   = 0x03
	RegionIO      = 0x04
	RegionPalette = 0x05
	RegionVRAM    = 0x06
	RegionOAM     = 0x07
	RegionROM0    = 0x08
	RegionROM2Hi  = 0x0D
	RegionBackup  = 0x0E
)

// Base addresses.
const (
	IOBase       uint32 = 0x04000000
	WRAMBase     uint32 = 0x02000000
	IWRAMBase    uint32 = 0x03000000
	ROMBase      uint32 = 0x08000000
	BackupBase   uint32 = 0x0E000000
	IOWindowSize uint32 = 0x400
)

// Display registers, as offsets into the I/O window.
const (
	DISPCNT  uint32 = 0x000
	DISPSTAT uint32 = 0x004
	VCOUNT   uint32 = 0x006
	BG0CNT   uint32 = 0x008
	BG1CNT   uint32 = 0x00A
	BG2CNT   uint32 = 0x00C
	BG3CNT   uint32 = 0x00E
	BG0HOFS  uint32 = 0x010
	BG0VOFS  uint32 = 0x012
	BG1HOFS  uint32 = 0x014
	BG1VOFS  uint32 = 0x016
	BG2HOFS  uint32 = 0x018
	BG2VOFS  uint32 = 0x01A
	BG3HOFS  uint32 = 0x01C
	BG3VOFS  uint32 = 0x01E
	BG2PA    uint32 = 0x020
	BG2PB    uint32 = 0x022
	BG2PC    uint32 = 0x024
	BG2PD    uint32 = 0x026
	BG2X_L   uint32 = 0x028
	BG2X_H   uint32 = 0x02A
	BG2Y_L   uint32 = 0x02C
	BG2Y_H   uint32 = 0x02E
	BG3PA    uint32 = 0x030
	BG3PB    uint32 = 0x032
	BG3PC    uint32 = 0x034
	BG3PD    uint32 = 0x036
	BG3X_L   uint32 = 0x038
	BG3X_H   uint32 = 0x03A
	BG3Y_L   uint32 = 0x03C
	BG3Y_H   uint32 = 0x03E
	WIN0H    uint32 = 0x040
	WIN1H    uint32 = 0x042
	WIN0V    uint32 = 0x044
	WIN1V    uint32 = 0x046
	WININ    uint32 = 0x048
	WINOUT   uint32 = 0x04A
	MOSAIC   uint32 = 0x04C
	BLDCNT   uint32 = 0x050
	BLDALPHA uint32 = 0x052
	BLDY     uint32 = 0x054
)

// Sound registers.
const (
	SOUND1CNT_L uint32 = 0x060
	SOUND1CNT_H uint32 = 0x062
	SOUND1CNT_X uint32 = 0x064
	SOUND2CNT_L uint32 = 0x068
	SOUND2CNT_H uint32 = 0x06C
	SOUND3CNT_L uint32 = 0x070
	SOUND3CNT_H uint32 = 0x072
	SOUND3CNT_X uint32 = 0x074
	SOUND4CNT_L uint32 = 0x078
	SOUND4CNT_H uint32 = 0x07C
	SOUNDCNT_L  uint32 = 0x080
	SOUNDCNT_H  uint32 = 0x082
	SOUNDCNT_X  uint32 = 0x084
	SOUNDBIAS   uint32 = 0x088
	WaveRAM     uint32 = 0x090
	WaveRAMEnd  uint32 = 0x09F
	FIFO_A      uint32 = 0x0A0
	FIFO_B      uint32 = 0x0A4
)

// DMA registers. Channel n starts at DMA0SAD + n*DMAStride.
const (
	DMA0SAD   uint32 = 0x0B0
	DMA0DAD   uint32 = 0x0B4
	DMA0CNT_L uint32 = 0x0B8
	DMA0CNT_H uint32 = 0x0BA
	DMAStride uint32 = 0x00C
)

// Timer registers. Timer n starts at TM0CNT_L + n*4.
const (
	TM0CNT_L uint32 = 0x100
	TM0CNT_H uint32 = 0x102
	TM1CNT_L uint32 = 0x104
	TM1CNT_H uint32 = 0x106
	TM2CNT_L uint32 = 0x108
	TM2CNT_H uint32 = 0x10A
	TM3CNT_L uint32 = 0x10C
	TM3CNT_H uint32 = 0x10E
)

// Serial, keypad and system control registers.
const (
	SIOCNT   uint32 = 0x128
	SIODATA  uint32 = 0x12A
	KEYINPUT uint32 = 0x130
	KEYCNT   uint32 = 0x132
	RCNT     uint32 = 0x134
	IE       uint32 = 0x200
	IF       uint32 = 0x202
	WAITCNT  uint32 = 0x204
	IME      uint32 = 0x208
	POSTFLG  uint32 = 0x300
	HALTCNT  uint32 = 0x301
)

// Interrupt is a bit in IE/IF.
type Interrupt uint16

const (
	VBlankInterrupt Interrupt = 1 << iota
	HBlankInterrupt
	VCountInterrupt
	Timer0Interrupt
	Timer1Interrupt
	Timer2Interrupt
	Timer3Interrupt
	SerialInterrupt
	DMA0Interrupt
	DMA1Interrupt
	DMA2Interrupt
	DMA3Interrupt
	KeypadInterrupt
	GamePakInterrupt
)

// StopWakeMask is the set of interrupts able to wake the CPU from stop.
const StopWakeMask = 0x3080

// Cartridge GPIO port used by the RTC and sensors.
const (
	GPIOData      uint32 = 0x080000C4
	GPIODirection uint32 = 0x080000C6
	GPIOControl   uint32 = 0x080000C8
)
