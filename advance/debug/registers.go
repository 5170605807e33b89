package debug

import (
	"fmt"
	"io"
	"strings"
)

// RegisterLines formats the CPU and I/O state, one row per line, for the
// debug panels.
func RegisterLines(d *CompleteDebugData) []string {
	if d == nil || d.CPU == nil {
		return nil
	}
	c := d.CPU
	state := "ARM"
	if c.Thumb {
		state = "THUMB"
	}

	lines := make([]string, 0, 12)
	for i := 0; i < 16; i += 4 {
		lines = append(lines, fmt.Sprintf("R%-2d %08X  R%-2d %08X  R%-2d %08X  R%-2d %08X",
			i, c.R[i], i+1, c.R[i+1], i+2, c.R[i+2], i+3, c.R[i+3]))
	}
	lines = append(lines,
		fmt.Sprintf("CPSR %08X [%s] %s %s", c.CPSR, flags(c.CPSR), c.Mode, state),
		fmt.Sprintf("SPSR %08X  next %08X", c.SPSR, c.NextPC))

	if regs := d.IO; regs != nil {
		lines = append(lines,
			fmt.Sprintf("DISPCNT %04X DISPSTAT %04X VCOUNT %3d", regs.DISPCNT, regs.DISPSTAT, regs.VCOUNT),
			fmt.Sprintf("IE %04X IF %04X IME %d WAITCNT %04X", regs.IE, regs.IF, regs.IME, regs.WAITCNT),
			fmt.Sprintf("KEYINPUT %04X", regs.KEYINPUT))
	}
	lines = append(lines, fmt.Sprintf("frame %d (%s)", d.Frame, d.DebuggerState))
	return lines
}

// WriteRegisters dumps the register state as text.
func WriteRegisters(w io.Writer, d *CompleteDebugData) error {
	lines := RegisterLines(d)
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func flags(cpsr uint32) string {
	const names = "NZCV"
	var b strings.Builder
	for i, name := range names {
		if cpsr&(1<<(31-i)) != 0 {
			b.WriteRune(name)
		} else {
			b.WriteByte('-')
		}
	}
	if cpsr&0x80 != 0 {
		b.WriteByte('I')
	} else {
		b.WriteByte('-')
	}
	if cpsr&0x40 != 0 {
		b.WriteByte('F')
	} else {
		b.WriteByte('-')
	}
	return b.String()
}
