package backup

import (
	"time"

	"github.com/valerio/go-advance/advance/savestate"
)

// GPIO port addresses in cartridge space.
const (
	GPIOData      uint32 = 0x080000C4
	GPIODirection uint32 = 0x080000C6
	GPIOControl   uint32 = 0x080000C8
)

// CyclesPerSecond is the master clock rate driving AddTime.
const CyclesPerSecond = 1 << 24

// Clock supplies the host time the RTC starts from.
type Clock interface {
	Now() time.Time
}

type systemClockFunc func() time.Time

func (s systemClockFunc) Now() time.Time {
	return s()
}

// SystemClock reads the host wall clock.
var SystemClock Clock = systemClockFunc(time.Now)

// Sensor is the extra device sharing the GPIO port with the clock.
type Sensor uint8

const (
	SensorNone Sensor = iota
	SensorSolar
	SensorTilt
)

type rtcState uint8

const (
	rtcIdle rtcState = iota
	rtcCommand
	rtcData
	rtcReadData
)

// RTC is the serial S-3511 clock behind the cartridge GPIO port. The same
// port also carries the solar sensor (select 7) and the tilt sensor
// (select 0x0B) found on some cartridges, and a rumble motor.
//   - 0x60 reset
//   - 0x62 write control register
//   - 0x63 read control register
//   - 0x65 read date and time: 7 BCD bytes
//   - 0x67 read time: 3 BCD bytes
type RTC struct {
	byte0   uint8
	sel     uint8
	enable  uint8
	command uint8
	dataLen int
	bits    int
	state   rtcState
	data    [12]uint8

	clockCounter uint32

	sec, min, hour  uint8
	wday, mday, mon uint8
	year            uint8

	// sensor ADC counter shared by the solar and tilt sensors
	sensorCounter uint8
	sensorClock   uint8

	// Darkness is the solar sensor level: 0xE8 is full dark, lower values
	// are brighter.
	Darkness uint8
	// TiltZ is the rotation sensor reading around the centre value.
	TiltZ int

	sensor Sensor
	rumble bool
}

// NewRTC returns a clock set from clock's current local time.
func NewRTC(clock Clock) *RTC {
	r := &RTC{Darkness: 0xE8}
	r.SetTime(clock.Now())
	r.Reset()
	return r
}

func toBCD(value int) uint8 {
	value %= 100
	return uint8(value/10<<4 | value%10)
}

// SetTime loads t into the date and time registers.
func (r *RTC) SetTime(t time.Time) {
	r.sec = toBCD(t.Second())
	r.min = toBCD(t.Minute())
	r.hour = toBCD(t.Hour())
	r.wday = toBCD(int(t.Weekday()))
	r.mday = toBCD(t.Day())
	r.mon = toBCD(int(t.Month()))
	r.year = toBCD(t.Year() % 100)
	if r.sec >= 0x60 {
		r.sec = 0x59
	}
}

// Reset clears the serial state; the time keeps running.
func (r *RTC) Reset() {
	r.byte0 = 0
	r.sel = 0
	r.enable = 0
	r.command = 0
	r.dataLen = 0
	r.bits = 0
	r.state = rtcIdle
	r.data = [12]uint8{}
	r.clockCounter = 0
	r.sensorCounter = 0
	r.rumble = false
}

// SetSensor selects the sensor wired next to the clock.
func (r *RTC) SetSensor(sensor Sensor) {
	r.sensor = sensor
}

// Rumble reports whether the rumble motor is on.
func (r *RTC) Rumble() bool {
	return r.rumble
}

// bcdIncrement advances a BCD value and wraps it to reset once it
// reaches limit, reporting the wrap.
func bcdIncrement(v *uint8, limit, reset uint8) bool {
	*v = (*v+1)&0x0F | *v&0xF0
	if *v&0x0F >= 0x0A {
		*v &= 0xF0
		*v += 0x10
		if *v&0xF0 >= 0xA0 {
			*v &= 0x0F
		}
	}
	if *v >= limit {
		*v = reset
		return true
	}
	return false
}

func (r *RTC) clockSeconds() {
	if !bcdIncrement(&r.sec, 0x60, 0) || !bcdIncrement(&r.min, 0x60, 0) || !bcdIncrement(&r.hour, 0x24, 0) {
		return
	}

	monthEnd := uint8(0x32)
	switch r.mon {
	case 0x02:
		monthEnd = 0x29
		leap := uint8(0x00)
		if r.year&0x10 != 0 {
			leap = 0x02
		}
		if (r.year&0x0F)%4 == leap {
			monthEnd = 0x30
		}
	case 0x04, 0x06, 0x09, 0x11:
		monthEnd = 0x31
	}

	bcdIncrement(&r.wday, 0x07, 0)
	if bcdIncrement(&r.mday, monthEnd, 0x01) && bcdIncrement(&r.mon, 0x13, 0x01) {
		bcdIncrement(&r.year, 0xA0, 0)
	}
}

// AddTime advances the clock by cycles of the 16.78 MHz master clock.
func (r *RTC) AddTime(cycles int) {
	r.clockCounter += uint32(cycles)
	for r.clockCounter >= CyclesPerSecond {
		r.clockCounter -= CyclesPerSecond
		r.clockSeconds()
	}
}

// Handles reports whether address is one of the GPIO registers.
func Handles(address uint32) bool {
	return address == GPIOData || address == GPIODirection || address == GPIOControl
}

// Read returns the GPIO register at address.
func (r *RTC) Read(address uint32) uint16 {
	switch address {
	case GPIOControl:
		return uint16(r.enable)
	case GPIODirection:
		return uint16(r.sel)
	}

	if r.enable&1 == 0 {
		return 0
	}
	var value uint16
	if r.sensor == SensorSolar && r.sel == 7 && r.sensorCounter >= r.Darkness {
		value |= 8
	}
	if r.sensor == SensorTilt && r.sel == 0x0B {
		v := uint16(r.TiltZ + 0x6C0)
		value |= ((v >> r.sensorCounter) & 1) << 2
	}
	if r.sel&4 != 0 {
		value |= uint16(r.byte0)
	}
	return value
}

// Write updates the GPIO register at address.
func (r *RTC) Write(address uint32, value uint16) {
	switch address {
	case GPIOControl:
		r.enable = uint8(value)
		return
	case GPIODirection:
		r.sel = uint8(value)
		if value&8 == 0 {
			r.rumble = false
		}
		return
	case GPIOData:
	default:
		return
	}

	if r.sel&8 != 0 {
		r.rumble = value&8 != 0
	}

	if r.sensor == SensorSolar && r.sel == 7 {
		if value&2 != 0 {
			r.sensorCounter = 0
		}
		if value&1 != 0 && r.sensorClock&1 == 0 {
			r.sensorCounter++
		}
		r.sensorClock = uint8(value) & r.sel
	}
	if r.sensor == SensorTilt && r.sel == 0x0B {
		if value&2 != 0 {
			r.sensorCounter--
		}
		if value&1 != 0 {
			r.sensorCounter = 15
		}
		r.byte0 = uint8(value) & r.sel
		return
	}

	if r.sel&1 != 0 {
		r.serial(value)
	}
}

func (r *RTC) serial(value uint16) {
	if r.state == rtcIdle && r.byte0 == 1 && value == 5 {
		r.state = rtcCommand
		r.bits = 0
		r.command = 0
		return
	}
	// bits move on the rising edge of SCK
	if r.byte0&1 != 0 || value&1 == 0 {
		r.byte0 = uint8(value)
		return
	}
	r.byte0 = uint8(value)

	switch r.state {
	case rtcCommand:
		r.command |= uint8(value&2) >> 1 << (7 - r.bits)
		r.bits++
		if r.bits == 8 {
			r.bits = 0
			r.execute()
		}
	case rtcData:
		if r.sel&2 == 0 && r.sel&4 != 0 {
			out := (r.data[r.bits>>3] >> (r.bits & 7)) & 1
			r.byte0 = r.byte0&^2 | out<<1
			r.bits++
			if r.bits == 8*r.dataLen {
				r.bits = 0
				r.state = rtcIdle
			}
		}
	case rtcReadData:
		if r.sel&2 != 0 {
			i := r.bits >> 3
			r.data[i] = r.data[i]>>1 | uint8(value<<6)&0x80
			r.bits++
			if r.bits == 8*r.dataLen {
				r.bits = 0
				r.state = rtcIdle
			}
		}
	}
}

func (r *RTC) execute() {
	switch r.command {
	case 0x60:
		r.state = rtcIdle
	case 0x62:
		r.state = rtcReadData
		r.dataLen = 1
	case 0x63:
		r.dataLen = 1
		r.data[0] = 0x40
		r.state = rtcData
	case 0x64:
	case 0x65:
		r.dataLen = 7
		copy(r.data[:], []uint8{r.year, r.mon, r.mday, r.wday, r.hour, r.min, r.sec})
		r.state = rtcData
	case 0x67:
		r.dataLen = 3
		copy(r.data[:], []uint8{r.hour, r.min, r.sec})
		r.state = rtcData
	default:
		r.state = rtcIdle
	}
}

// StateAction saves or restores the clock and serial state.
func (r *RTC) StateAction(s *savestate.Section) {
	state := uint8(r.state)
	s.Uint8(&r.byte0)
	s.Uint8(&r.sel)
	s.Uint8(&r.enable)
	s.Uint8(&r.command)
	s.Int(&r.dataLen)
	s.Int(&r.bits)
	s.Uint8(&state)
	s.Bytes(r.data[:])
	s.Uint32(&r.clockCounter)
	for _, v := range []*uint8{&r.sec, &r.min, &r.hour, &r.wday, &r.mday, &r.mon, &r.year} {
		s.Uint8(v)
	}
	s.Uint8(&r.sensorCounter)
	s.Uint8(&r.sensorClock)
	if s.Loading() {
		r.state = rtcState(state)
	}
}
