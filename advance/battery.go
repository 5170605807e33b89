package advance

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/valerio/go-advance/advance/backup"
)

// sramSize is the battery file size for SRAM games.
const sramSize = 0x10000

// HasBattery reports whether the cartridge has a backup device worth
// writing to disk.
func (m *Machine) HasBattery() bool {
	return m.devices.EEPROM || m.devices.Flash || m.devices.SRAM
}

// batteryBytes returns the backing store of the active device.
func (m *Machine) batteryBytes() []byte {
	switch {
	case m.devices.EEPROM:
		return m.eeprom.Bytes()
	case m.devices.Flash:
		return m.flash.Bytes()
	case m.devices.SRAM:
		return m.flash.Bytes()[:sramSize]
	}
	return nil
}

// SaveBattery writes the backup device contents to w.
func (m *Machine) SaveBattery(w io.Writer) error {
	_, err := w.Write(m.batteryBytes())
	return err
}

// LoadBattery replaces the backup device contents with a battery file.
// The file length picks the EEPROM and flash sizes.
func (m *Machine) LoadBattery(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	switch {
	case m.devices.EEPROM:
		m.eeprom.Load(data)
	case m.devices.Flash:
		if len(data) == backup.Flash128K {
			m.flash.SetSize(backup.Flash128K)
		}
		copy(m.flash.Bytes(), data)
	case m.devices.SRAM:
		copy(m.flash.Bytes()[:sramSize], data)
	}
	return nil
}

// SaveBatteryFile writes the battery file to path when the cartridge has
// backup memory.
func (m *Machine) SaveBatteryFile(path string) error {
	if !m.HasBattery() {
		return nil
	}
	if err := os.WriteFile(path, m.batteryBytes(), 0o644); err != nil {
		return fmt.Errorf("saving battery: %w", err)
	}
	slog.Info("saved battery", "path", path, "size", len(m.batteryBytes()))
	return nil
}

// LoadBatteryFile reads the battery file at path. A missing file is not
// an error: the game starts with erased memory.
func (m *Machine) LoadBatteryFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if err := m.LoadBattery(f); err != nil {
		return fmt.Errorf("loading battery %s: %w", path, err)
	}
	slog.Info("loaded battery", "path", path)
	return nil
}
