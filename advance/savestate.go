package advance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/valerio/go-advance/advance/addr"
	"github.com/valerio/go-advance/advance/savestate"
)

// ErrStateMismatch is returned when a state was saved from a machine with
// different cartridge hardware.
var ErrStateMismatch = errors.New("advance: state does not match the cartridge hardware")

// SaveState writes a snapshot of the whole machine to w.
func (m *Machine) SaveState(w io.Writer) error {
	sw, err := savestate.NewWriter(w)
	if err != nil {
		return err
	}
	return m.stateAction(sw)
}

// LoadState restores a snapshot written by SaveState. On error the
// machine may be partially restored and should be reset.
func (m *Machine) LoadState(r io.Reader) error {
	sr, err := savestate.NewReader(r)
	if err != nil {
		return err
	}
	if err := m.stateAction(sr); err != nil {
		return err
	}

	m.timing.SetWaitControl(m.reg(addr.WAITCNT))
	m.renderer.Resync()
	m.cpu.Flush()
	return nil
}

// SaveStateFile writes a snapshot to path.
func (m *Machine) SaveStateFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := m.SaveState(bw); err != nil {
		f.Close()
		return fmt.Errorf("saving state to %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("saved state", "path", path)
	return nil
}

// LoadStateFile restores a snapshot from path.
func (m *Machine) LoadStateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := m.LoadState(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("loading state from %s: %w", path, err)
	}
	slog.Info("loaded state", "path", path)
	return nil
}

// stateAction visits the sections in their fixed order. The MAIN section
// carries the device flags, so on load it decides which of the optional
// sections follow.
func (m *Machine) stateAction(v savestate.Visitor) error {
	hasRTC := m.rtc != nil
	if err := v.Section("MAIN", func(s *savestate.Section) {
		m.mainState(s)
		s.Bool(&hasRTC)
	}); err != nil {
		return err
	}
	if hasRTC != (m.rtc != nil) {
		return fmt.Errorf("%w: saved with rtc=%t", ErrStateMismatch, hasRTC)
	}

	if err := v.Section("RAM", func(s *savestate.Section) {
		s.Bytes(m.iwram)
		s.Bytes(m.palette)
		s.Bytes(m.wram)
		s.Bytes(m.vram)
		s.Bytes(m.oam)
		s.Bytes(m.io)
	}); err != nil {
		return err
	}

	if m.devices.EEPROM {
		if err := v.Section("EEPR", m.eeprom.StateAction); err != nil {
			return err
		}
	}
	if err := v.Section("FLSH", m.flash.StateAction); err != nil {
		return err
	}
	if m.rtc != nil {
		if err := v.Section("RTC", m.rtc.StateAction); err != nil {
			return err
		}
	}
	if err := v.Section("JOY", func(s *savestate.Section) {
		s.Uint16(&m.keys)
	}); err != nil {
		return err
	}
	return v.Section("SND", m.sound.StateAction)
}

func (m *Machine) mainState(s *savestate.Section) {
	m.cpu.StateAction(s)

	s.Bool(&m.dmaHack)
	s.Uint32(&m.dmaLast)
	s.Int(&m.dmaTicks)
	s.Int(&m.dmaCount)
	s.Bool(&m.stopState)
	s.Bool(&m.intState)
	s.Int(&m.irqTicks)
	s.Int(&m.swiTicks)
	s.Int(&m.lcdTicks)
	s.Bool(&m.holdState)
	s.Int(&m.holdType)

	for i := range m.dma {
		m.dma[i].stateAction(s)
	}
	for i := range m.timers {
		m.timers[i].stateAction(s)
	}

	s.Uint16(&m.intEnable)
	s.Uint16(&m.intFlags)
	s.Uint16(&m.intMaster)
	s.Uint32(&m.biosProtected)

	m.renderer.StateAction(s)

	s.Bool(&m.devices.SRAM)
	s.Bool(&m.devices.Flash)
	s.Bool(&m.devices.EEPROM)
	s.Bool(&m.devices.Sensor)
}
