package rtc

import (
	"time"

	"github.com/sugarbeard/sugarbeardd/internal/bcdcodec"
	"github.com/sugarbeard/sugarbeardd/internal/i2cbus"
	"github.com/sugarbeard/sugarbeardd/internal/model"
)

// Legacy (SD3078-style) register map.
const (
	regLSec     = 0x00
	regLMin     = 0x01
	regLHour    = 0x02
	regLWeekday = 0x03
	regLDay     = 0x04
	regLMonth   = 0x05
	regLYear    = 0x06

	regLAlarmSec  = 0x07
	regLAlarmMin  = 0x08
	regLAlarmHour = 0x09
	regLAlarmWeek = 0x0a // "weekday mask in slot 3" of the alarm block
	regLAlarmEn   = 0x0e

	regLCtrl1 = 0x0f // write-protect bits {7,2}; alarm flag bit 4
	regLCtrl2 = 0x10 // write-protect bit 7
	regLCtrl3 = 0x18 // backup-cell trickle charge, bit 7, pattern 0x82

	hour24Bit = 7
	hourPMBit = 5
)

type legacy struct {
	bus i2cbus.RegisterIO
}

// NewLegacy constructs the legacy SD3078-style RTC driver.
func NewLegacy(bus i2cbus.RegisterIO) Driver {
	return &legacy{bus: bus}
}

// unprotect and protect bracket every mutating register sequence: the chip
// refuses writes to its time/alarm registers unless explicitly unlocked.
func (r *legacy) unprotect() error {
	if err := r.bus.SetBit(regLCtrl2, 7, true); err != nil {
		return err
	}
	if err := r.bus.SetBit(regLCtrl1, 7, true); err != nil {
		return err
	}
	return r.bus.SetBit(regLCtrl1, 2, true)
}

func (r *legacy) protect() error {
	if err := r.bus.SetBit(regLCtrl1, 2, false); err != nil {
		return err
	}
	if err := r.bus.SetBit(regLCtrl1, 7, false); err != nil {
		return err
	}
	return r.bus.SetBit(regLCtrl2, 7, false)
}

func (r *legacy) Init() error { return nil }

func (r *legacy) readHour(reg uint8) (uint8, error) {
	raw, err := r.bus.ReadByte(reg)
	if err != nil {
		return 0, err
	}
	if raw&(1<<hour24Bit) != 0 {
		// 24-hour mode: remaining bits are the BCD hour directly.
		return bcdcodec.ToDecimal(raw &^ (1 << hour24Bit)), nil
	}
	hour := bcdcodec.ToDecimal(raw &^ ((1 << hour24Bit) | (1 << hourPMBit)))
	if raw&(1<<hourPMBit) != 0 {
		hour += 12
	}
	return hour, nil
}

func (r *legacy) writeHour(reg uint8, hour uint8) error {
	// Always write in 24-hour mode.
	return r.bus.WriteByte(reg, bcdcodec.ToBCD(hour)|(1<<hour24Bit))
}

func (r *legacy) ReadTime() (model.RawTime, error) {
	sec, err := r.bus.ReadByte(regLSec)
	if err != nil {
		return model.RawTime{}, err
	}
	min, err := r.bus.ReadByte(regLMin)
	if err != nil {
		return model.RawTime{}, err
	}
	hour, err := r.readHour(regLHour)
	if err != nil {
		return model.RawTime{}, err
	}
	wd, err := r.bus.ReadByte(regLWeekday)
	if err != nil {
		return model.RawTime{}, err
	}
	day, err := r.bus.ReadByte(regLDay)
	if err != nil {
		return model.RawTime{}, err
	}
	month, err := r.bus.ReadByte(regLMonth)
	if err != nil {
		return model.RawTime{}, err
	}
	year, err := r.bus.ReadByte(regLYear)
	if err != nil {
		return model.RawTime{}, err
	}
	return model.RawTime{
		Sec:     bcdcodec.ToDecimal(sec),
		Min:     bcdcodec.ToDecimal(min),
		Hour:    hour,
		Weekday: bcdcodec.ToDecimal(wd),
		Day:     bcdcodec.ToDecimal(day),
		Month:   bcdcodec.ToDecimal(month),
		Year:    bcdcodec.ToDecimal(year),
	}, nil
}

func (r *legacy) WriteTime(t model.RawTime) error {
	if err := r.unprotect(); err != nil {
		return err
	}
	defer r.protect()
	if err := r.bus.WriteByte(regLSec, bcdcodec.ToBCD(t.Sec)); err != nil {
		return err
	}
	if err := r.bus.WriteByte(regLMin, bcdcodec.ToBCD(t.Min)); err != nil {
		return err
	}
	if err := r.writeHour(regLHour, t.Hour); err != nil {
		return err
	}
	if err := r.bus.WriteByte(regLWeekday, bcdcodec.ToBCD(t.Weekday)); err != nil {
		return err
	}
	if err := r.bus.WriteByte(regLDay, bcdcodec.ToBCD(t.Day)); err != nil {
		return err
	}
	if err := r.bus.WriteByte(regLMonth, bcdcodec.ToBCD(t.Month)); err != nil {
		return err
	}
	return r.bus.WriteByte(regLYear, bcdcodec.ToBCD(t.Year))
}

func (r *legacy) ReadAlarmTime() (model.RawTime, error) {
	sec, err := r.bus.ReadByte(regLAlarmSec)
	if err != nil {
		return model.RawTime{}, err
	}
	min, err := r.bus.ReadByte(regLAlarmMin)
	if err != nil {
		return model.RawTime{}, err
	}
	hour, err := r.readHour(regLAlarmHour)
	if err != nil {
		return model.RawTime{}, err
	}
	return model.RawTime{Sec: bcdcodec.ToDecimal(sec), Min: bcdcodec.ToDecimal(min), Hour: hour}, nil
}

func (r *legacy) SetAlarm(t model.RawTime, mask WeekdayMask) error {
	if err := r.unprotect(); err != nil {
		return err
	}
	defer r.protect()
	if err := r.bus.WriteByte(regLAlarmSec, bcdcodec.ToBCD(t.Sec)); err != nil {
		return err
	}
	if err := r.bus.WriteByte(regLAlarmMin, bcdcodec.ToBCD(t.Min)); err != nil {
		return err
	}
	if err := r.writeHour(regLAlarmHour, t.Hour); err != nil {
		return err
	}
	if err := r.bus.WriteByte(regLAlarmWeek, uint8(mask)); err != nil {
		return err
	}
	// Enable bitmap: hour/min/sec match required, per 0b0000_1111.
	return r.bus.WriteByte(regLAlarmEn, 0b0000_1111)
}

func (r *legacy) IsAlarmEnabled() (bool, error) {
	v, err := r.bus.ReadByte(regLAlarmEn)
	if err != nil {
		return false, err
	}
	return v&0b0000_1111 != 0, nil
}

func (r *legacy) ToggleAlarmEnabled(enable bool) error {
	if err := r.unprotect(); err != nil {
		return err
	}
	defer r.protect()
	if !enable {
		return r.bus.WriteByte(regLAlarmEn, 0)
	}
	return r.bus.WriteByte(regLAlarmEn, 0b0000_1111)
}

func (r *legacy) ReadAlarmFlag() (bool, error) {
	return r.bus.Bit(regLCtrl1, 4)
}

func (r *legacy) ClearAlarmFlag() error {
	if err := r.unprotect(); err != nil {
		return err
	}
	defer r.protect()
	return r.bus.SetBit(regLCtrl1, 4, false)
}

func (r *legacy) ToggleFrequencyAlarm(enable bool) error {
	if err := r.unprotect(); err != nil {
		return err
	}
	defer r.protect()
	return r.bus.SetBit(regLCtrl1, 5, enable)
}

func (r *legacy) SetTestWake(now model.RawTime) error {
	return defaultTestWake(r, now)
}

func (r *legacy) ForceShutdown() error {
	if err := r.unprotect(); err != nil {
		return err
	}
	defer r.protect()
	return r.bus.SetBit(regLCtrl3, 0, true)
}

func (r *legacy) ReadBatteryLowFlag() (bool, error) {
	return r.bus.Bit(regLCtrl3, 1)
}

func (r *legacy) ReadBatteryHighFlag() (bool, error) {
	return r.bus.Bit(regLCtrl3, 2)
}

func (r *legacy) ToggleCharging(enable bool) error {
	if err := r.unprotect(); err != nil {
		return err
	}
	defer r.protect()
	if !enable {
		return r.bus.WriteByte(regLCtrl3, 0x00)
	}
	return r.bus.WriteByte(regLCtrl3, 0x82)
}

// defaultTestWake implements the shared "write now, alarm 90s later, all
// weekdays" behavior both RTC implementations expose by default.
func defaultTestWake(d Driver, now model.RawTime) error {
	if err := d.WriteTime(now); err != nil {
		return err
	}
	t, err := now.ToTime()
	if err != nil {
		return err
	}
	wake, err := model.FromTime(t.Add(90 * time.Second))
	if err != nil {
		return err
	}
	if err := d.SetAlarm(wake, AllDays); err != nil {
		return err
	}
	return d.ToggleAlarmEnabled(true)
}
