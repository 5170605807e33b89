package cpu

// Mode is the 5-bit processor mode field of the CPSR.
type Mode uint32

const (
	ModeUser       Mode = 0x10
	ModeFIQ        Mode = 0x11
	ModeIRQ        Mode = 0x12
	ModeSupervisor Mode = 0x13
	ModeAbort      Mode = 0x17
	ModeUndefined  Mode = 0x1B
	ModeSystem     Mode = 0x1F
)

// CPSR bits.
const (
	FlagN uint32 = 1 << 31
	FlagZ uint32 = 1 << 30
	FlagC uint32 = 1 << 29
	FlagV uint32 = 1 << 28
	FlagI uint32 = 1 << 7
	FlagF uint32 = 1 << 6
	FlagT uint32 = 1 << 5

	modeMask uint32 = 0x1F
)

// Register aliases.
const (
	SP = 13
	LR = 14
	PC = 15
)

// bank indexes: User and System share bank 0, which has no SPSR.
const (
	bankUser = iota
	bankFIQ
	bankIRQ
	bankSupervisor
	bankAbort
	bankUndefined
	bankCount
)

func bankOf(m Mode) int {
	switch m {
	case ModeFIQ:
		return bankFIQ
	case ModeIRQ:
		return bankIRQ
	case ModeSupervisor:
		return bankSupervisor
	case ModeAbort:
		return bankAbort
	case ModeUndefined:
		return bankUndefined
	}
	return bankUser
}

// Valid reports whether m is one of the seven architected modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor, ModeAbort, ModeUndefined, ModeSystem:
		return true
	}
	return false
}

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "usr"
	case ModeFIQ:
		return "fiq"
	case ModeIRQ:
		return "irq"
	case ModeSupervisor:
		return "svc"
	case ModeAbort:
		return "abt"
	case ModeUndefined:
		return "und"
	case ModeSystem:
		return "sys"
	}
	return "???"
}

// registerFile is the 37-word ARM7TDMI register set. r holds the view of
// the current mode; the banked copies of the other modes live in the
// bank arrays. hiBank holds whichever R8-R12 set is not active: the FIQ
// copies outside FIQ mode, the shared copies while in FIQ mode.
type registerFile struct {
	r [16]uint32

	n, z, c, v  bool
	thumb       bool
	irqDisabled bool
	fiqDisabled bool
	mode        Mode

	spsr     uint32
	bankSP   [bankCount]uint32
	bankLR   [bankCount]uint32
	bankSPSR [bankCount]uint32
	hiBank   [5]uint32
}

// CPSR composes the current program status register.
func (rf *registerFile) CPSR() uint32 {
	cpsr := uint32(rf.mode)
	if rf.n {
		cpsr |= FlagN
	}
	if rf.z {
		cpsr |= FlagZ
	}
	if rf.c {
		cpsr |= FlagC
	}
	if rf.v {
		cpsr |= FlagV
	}
	if rf.irqDisabled {
		cpsr |= FlagI
	}
	if rf.fiqDisabled {
		cpsr |= FlagF
	}
	if rf.thumb {
		cpsr |= FlagT
	}
	return cpsr
}

// setCPSRBits decomposes value into the flag fields without touching banks.
func (rf *registerFile) setCPSRBits(value uint32) {
	rf.n = value&FlagN != 0
	rf.z = value&FlagZ != 0
	rf.c = value&FlagC != 0
	rf.v = value&FlagV != 0
	rf.irqDisabled = value&FlagI != 0
	rf.fiqDisabled = value&FlagF != 0
	rf.thumb = value&FlagT != 0
	rf.mode = Mode(value & modeMask)
}

// SPSR returns the saved status register of the current mode. User and
// System have none and read back the CPSR.
func (rf *registerFile) SPSR() uint32 {
	if bankOf(rf.mode) == bankUser {
		return rf.CPSR()
	}
	return rf.spsr
}

func (rf *registerFile) swapHigh() {
	for i := range rf.hiBank {
		rf.r[8+i], rf.hiBank[i] = rf.hiBank[i], rf.r[8+i]
	}
}

// bankOut parks the current mode's banked registers.
func (rf *registerFile) bankOut() {
	b := bankOf(rf.mode)
	rf.bankSP[b] = rf.r[SP]
	rf.bankLR[b] = rf.r[LR]
	if b != bankUser {
		rf.bankSPSR[b] = rf.spsr
	}
	if b == bankFIQ {
		rf.swapHigh()
	}
}

// bankIn loads the banked registers of mode.
func (rf *registerFile) bankIn(mode Mode) {
	b := bankOf(mode)
	if b == bankFIQ {
		rf.swapHigh()
	}
	rf.r[SP] = rf.bankSP[b]
	rf.r[LR] = rf.bankLR[b]
	if b != bankUser {
		rf.spsr = rf.bankSPSR[b]
	}
}

// userReg reads register i as seen from User mode, used by LDM/STM with
// the S bit.
func (rf *registerFile) userReg(i int) uint32 {
	b := bankOf(rf.mode)
	switch {
	case b == bankUser || i < 8 || i == PC:
		return rf.r[i]
	case i < 13:
		if b == bankFIQ {
			return rf.hiBank[i-8]
		}
		return rf.r[i]
	case i == SP:
		return rf.bankSP[bankUser]
	}
	return rf.bankLR[bankUser]
}

func (rf *registerFile) setUserReg(i int, value uint32) {
	b := bankOf(rf.mode)
	switch {
	case b == bankUser || i < 8 || i == PC:
		rf.r[i] = value
	case i < 13:
		if b == bankFIQ {
			rf.hiBank[i-8] = value
		} else {
			rf.r[i] = value
		}
	case i == SP:
		rf.bankSP[bankUser] = value
	default:
		rf.bankLR[bankUser] = value
	}
}
