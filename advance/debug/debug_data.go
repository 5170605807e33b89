package debug

// CPUState contains all CPU register information for debugging
type CPUState struct {
	R     [16]uint32
	CPSR  uint32
	SPSR  uint32
	Mode  string
	Thumb bool
	// NextPC is the address of the next instruction to execute.
	NextPC uint32
}

// IOState holds the registers most useful when a game misbehaves.
type IOState struct {
	DISPCNT  uint16
	DISPSTAT uint16
	VCOUNT   uint16
	IE       uint16
	IF       uint16
	IME      uint16
	WAITCNT  uint16
	KEYINPUT uint16
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepFrame
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerRunning:
		return "running"
	case DebuggerPaused:
		return "paused"
	case DebuggerStepFrame:
		return "step"
	}
	return "unknown"
}

// CompleteDebugData contains all debug information needed by debug displays
type CompleteDebugData struct {
	CPU           *CPUState
	IO            *IOState
	Audio         *AudioData
	Frame         uint64
	DebuggerState DebuggerState
}
