package rtc

import (
	"github.com/sugarbeard/sugarbeardd/internal/bcdcodec"
	"github.com/sugarbeard/sugarbeardd/internal/i2cbus"
	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

// Shared (family-C) RTC register map: seven separate BCD time registers,
// an alarm block mirroring that layout, and a single enable bit.
const (
	regSSec     = 0x31
	regSMin     = 0x32
	regSHour    = 0x33
	regSWeekday = 0x34
	regSDay     = 0x35
	regSMonth   = 0x36
	regSYear    = 0x37

	regSAlarmSec     = 0x38
	regSAlarmMin     = 0x39
	regSAlarmHour    = 0x3a
	regSAlarmWeekday = 0x3b
	regSAlarmDay     = 0x3c
	regSAlarmMonth   = 0x3d
	regSAlarmYear    = 0x3e

	regSAlarmEnable = 0x40
)

type shared struct {
	bus i2cbus.RegisterIO
}

// NewShared constructs the newer RTC driver that shares its I2C address
// with the family-C battery chip.
func NewShared(bus i2cbus.RegisterIO) Driver {
	return &shared{bus: bus}
}

func (r *shared) Init() error { return nil }

func (r *shared) readFields(secReg uint8) (model.RawTime, error) {
	regs := []uint8{secReg, secReg + 1, secReg + 2, secReg + 3, secReg + 4, secReg + 5, secReg + 6}
	vals := make([]uint8, len(regs))
	for i, reg := range regs {
		v, err := r.bus.ReadByte(reg)
		if err != nil {
			return model.RawTime{}, err
		}
		vals[i] = bcdcodec.ToDecimal(v)
	}
	return model.RawTime{
		Sec: vals[0], Min: vals[1], Hour: vals[2],
		Weekday: vals[3], Day: vals[4], Month: vals[5], Year: vals[6],
	}, nil
}

func (r *shared) writeFields(secReg uint8, t model.RawTime) error {
	vals := []uint8{t.Sec, t.Min, t.Hour, t.Weekday, t.Day, t.Month, t.Year}
	for i, v := range vals {
		if err := r.bus.WriteByte(secReg+uint8(i), bcdcodec.ToBCD(v)); err != nil {
			return err
		}
	}
	return nil
}

func (r *shared) ReadTime() (model.RawTime, error) { return r.readFields(regSSec) }
func (r *shared) WriteTime(t model.RawTime) error  { return r.writeFields(regSSec, t) }

func (r *shared) ReadAlarmTime() (model.RawTime, error) { return r.readFields(regSAlarmSec) }

func (r *shared) SetAlarm(t model.RawTime, mask WeekdayMask) error {
	t.Weekday = uint8(mask)
	return r.writeFields(regSAlarmSec, t)
}

func (r *shared) IsAlarmEnabled() (bool, error) {
	return r.bus.Bit(regSAlarmEnable, 7)
}

func (r *shared) ToggleAlarmEnabled(enable bool) error {
	return r.bus.SetBit(regSAlarmEnable, 7, enable)
}

// ReadAlarmFlag and the frequency alarm are not implemented on this chip;
// backup-cell charging concepts don't apply to a chip with no separate
// backup cell of its own.
func (r *shared) ReadAlarmFlag() (bool, error)       { return false, nil }
func (r *shared) ClearAlarmFlag() error              { return nil }
func (r *shared) ToggleFrequencyAlarm(bool) error    { return nil }
func (r *shared) ReadBatteryLowFlag() (bool, error)  { return false, nil }
func (r *shared) ReadBatteryHighFlag() (bool, error) { return false, nil }
func (r *shared) ToggleCharging(bool) error           { return nil }

func (r *shared) SetTestWake(now model.RawTime) error {
	return defaultTestWake(r, now)
}

func (r *shared) ForceShutdown() error {
	return daemonerrors.Unsupportedf("force_shutdown on shared RTC")
}
