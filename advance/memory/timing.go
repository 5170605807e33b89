package memory

// Wait-state selections for WAITCNT fields.
var (
	gamepakRAMWaitState = [4]int{4, 3, 2, 8}
	gamepakWaitState    = [4]int{4, 3, 2, 8}
	gamepakWaitState0   = [2]int{2, 1}
	gamepakWaitState1   = [2]int{4, 1}
	gamepakWaitState2   = [2]int{8, 1}
)

// Timing holds the per-region wait-state tables and the cartridge prefetch
// buffer state. Tables are indexed by address >> 24 (clamped to 15).
type Timing struct {
	Wait      [16]int
	WaitSeq   [16]int
	Wait32    [16]int
	WaitSeq32 [16]int

	PrefetchEnable bool
	// prefetching is set while the current instruction runs from cartridge
	// space with the prefetch unit enabled.
	prefetching bool
	// prefetchCount is a shift register of buffered halfwords; bit 8 and up
	// mark an interrupted sequence.
	prefetchCount uint32
}

// NewTiming returns tables with the power-on defaults (WAITCNT = 0).
func NewTiming() *Timing {
	t := &Timing{}
	t.Reset()
	return t
}

// Reset restores the power-on tables.
func (t *Timing) Reset() {
	t.Wait = [16]int{0, 0, 2, 0, 0, 0, 0, 0, 4, 4, 4, 4, 4, 4, 4, 0}
	t.Wait32 = [16]int{0, 0, 5, 0, 0, 1, 1, 0, 7, 7, 9, 9, 13, 13, 4, 0}
	t.WaitSeq = [16]int{0, 0, 2, 0, 0, 0, 0, 0, 2, 2, 4, 4, 8, 8, 4, 0}
	t.WaitSeq32 = [16]int{0, 0, 5, 0, 0, 1, 1, 0, 5, 5, 9, 9, 17, 17, 4, 0}
	t.PrefetchEnable = false
	t.prefetching = false
	t.prefetchCount = 0
}

// SetWaitControl recomputes the cartridge rows from a WAITCNT value.
func (t *Timing) SetWaitControl(value uint16) {
	t.Wait[0x0E] = gamepakRAMWaitState[value&3]
	t.WaitSeq[0x0E] = t.Wait[0x0E]

	t.Wait[0x08] = gamepakWaitState[(value>>2)&3]
	t.Wait[0x09] = t.Wait[0x08]
	t.WaitSeq[0x08] = gamepakWaitState0[(value>>4)&1]
	t.WaitSeq[0x09] = t.WaitSeq[0x08]

	t.Wait[0x0A] = gamepakWaitState[(value>>5)&3]
	t.Wait[0x0B] = t.Wait[0x0A]
	t.WaitSeq[0x0A] = gamepakWaitState1[(value>>7)&1]
	t.WaitSeq[0x0B] = t.WaitSeq[0x0A]

	t.Wait[0x0C] = gamepakWaitState[(value>>8)&3]
	t.Wait[0x0D] = t.Wait[0x0C]
	t.WaitSeq[0x0C] = gamepakWaitState2[(value>>10)&1]
	t.WaitSeq[0x0D] = t.WaitSeq[0x0C]

	for i := 8; i < 15; i++ {
		t.Wait32[i] = t.Wait[i] + t.WaitSeq[i] + 1
		t.WaitSeq32[i] = t.WaitSeq[i]*2 + 1
	}

	t.PrefetchEnable = value&0x4000 != 0
	t.prefetching = false
	t.prefetchCount = 0
}

// Region returns the table index for address.
func Region(address uint32) int {
	r := int(address >> 24)
	if r > 15 {
		r = 15
	}
	return r
}

func inCartridge(region int) bool {
	return region >= 0x08 && region <= 0x0D
}

// BeginInstruction updates the prefetch state before executing the
// instruction at pc.
func (t *Timing) BeginInstruction(pc uint32) {
	if pc&0x0803FFFF == 0x08020000 {
		t.prefetchCount = 0x100
	}
	t.prefetching = false
	if t.prefetchCount&0xFFFFFF00 != 0 {
		t.prefetchCount = 0x100 | (t.prefetchCount & 0xFF)
	}
	if t.PrefetchEnable && inCartridge(Region(pc)) {
		t.prefetching = true
	}
}

func (t *Timing) data(address uint32, table *[16]int) int {
	region := Region(address)
	value := table[region]
	if region >= 0x08 || region < 0x02 {
		t.prefetchCount = 0
		t.prefetching = false
	} else if t.prefetching {
		waitState := value
		if waitState == 0 {
			waitState = 1
		}
		t.prefetchCount = ((t.prefetchCount + 1) << uint(waitState)) - 1
	}
	return value
}

// Data16 is the cost of a non-sequential 16-bit data access.
func (t *Timing) Data16(address uint32) int { return t.data(address, &t.Wait) }

// Data32 is the cost of a non-sequential 32-bit data access.
func (t *Timing) Data32(address uint32) int { return t.data(address, &t.Wait32) }

// DataSeq16 is the cost of a sequential 16-bit data access.
func (t *Timing) DataSeq16(address uint32) int { return t.data(address, &t.WaitSeq) }

// DataSeq32 is the cost of a sequential 32-bit data access.
func (t *Timing) DataSeq32(address uint32) int { return t.data(address, &t.WaitSeq32) }

func (t *Timing) shiftPrefetch(n uint) {
	t.prefetchCount = ((t.prefetchCount & 0xFF) >> n) | (t.prefetchCount & 0xFFFFFF00)
}

// Code16 is the cost of a non-sequential Thumb opcode fetch.
func (t *Timing) Code16(address uint32) int {
	region := Region(address)
	if inCartridge(region) && t.prefetchCount&1 != 0 {
		if t.prefetchCount&2 != 0 {
			t.shiftPrefetch(2)
			return 0
		}
		t.shiftPrefetch(1)
		return t.WaitSeq[region] - 1
	}
	t.prefetchCount = 0
	return t.Wait[region]
}

// Code32 is the cost of a non-sequential ARM opcode fetch.
func (t *Timing) Code32(address uint32) int {
	region := Region(address)
	if inCartridge(region) && t.prefetchCount&1 != 0 {
		if t.prefetchCount&2 != 0 {
			t.shiftPrefetch(2)
			return 0
		}
		t.shiftPrefetch(1)
		return t.WaitSeq[region] - 1
	}
	t.prefetchCount = 0
	return t.Wait32[region]
}

// CodeSeq16 is the cost of a sequential Thumb opcode fetch.
func (t *Timing) CodeSeq16(address uint32) int {
	region := Region(address)
	if !inCartridge(region) {
		t.prefetchCount = 0
		return t.WaitSeq[region]
	}
	switch {
	case t.prefetchCount&1 != 0:
		t.shiftPrefetch(1)
		return 0
	case t.prefetchCount > 0xFF:
		t.prefetchCount = 0
		return t.Wait[region]
	}
	return t.WaitSeq[region]
}

// CodeSeq32 is the cost of a sequential ARM opcode fetch.
func (t *Timing) CodeSeq32(address uint32) int {
	region := Region(address)
	if !inCartridge(region) {
		t.prefetchCount = 0
		return t.WaitSeq32[region]
	}
	switch {
	case t.prefetchCount&1 != 0:
		if t.prefetchCount&2 != 0 {
			t.shiftPrefetch(2)
			return 0
		}
		t.shiftPrefetch(1)
		return t.WaitSeq[region]
	case t.prefetchCount > 0xFF:
		t.prefetchCount = 0
		return t.Wait32[region]
	}
	return t.WaitSeq32[region]
}
