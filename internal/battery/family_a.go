package battery

import (
	"time"

	"github.com/sugarbeard/sugarbeardd/internal/curve"
	"github.com/sugarbeard/sugarbeardd/internal/i2cbus"
	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

// Family-A (legacy) register map, shared by the 4-LED and 2-LED board
// variants; a handful of registers differ by variant, handled by the
// ledAmount field below.
const (
	regAVoltageLo = 0xa2
	regAVoltageHi = 0xa3
	regACurrentLo = 0xa4
	regACurrentHi = 0xa5

	regAGPIORoute1 = 0x26
	regAGPIORoute2 = 0x51
	regAGPIORoute3 = 0x52
	regAGPIORoute4 = 0x53

	regAChargeEnableLo = 0x54
	regATapStatus      = 0x55 // bit4: power-plugged/tap(4LED); bit1: tap(2LED); bit2: allow-charging inverted (2LED)

	regALightLoadThresh = 0x0c
	regALightLoadDwell  = 0x04
	regALightLoadEnable = 0x02
	regAHardShutdown    = 0x01
)

// familyA drives the legacy PMIC shared by the 4-LED and 2-LED variants.
type familyA struct {
	base
	bus    i2cbus.RegisterIO
	mdl    model.Model
	crv    curve.Curve
	twoLED bool
}

// NewFamilyA constructs the legacy family-A driver for either the 4-LED or
// 2-LED board variant, selected by mdl.
func NewFamilyA(bus i2cbus.RegisterIO, mdl model.Model, crv curve.Curve) Driver {
	return &familyA{
		base:   newBase(),
		bus:    bus,
		mdl:    mdl,
		crv:    crv,
		twoLED: mdl == model.V2_2LED,
	}
}

func (f *familyA) Model() model.Model { return f.mdl }

func (f *familyA) Init(autoPowerOn bool) error {
	// Route the tap GPIO so its state lands in the status register read by
	// poll(); the exact routing bits are board-fixed, write them enabled.
	if err := f.bus.WriteByte(regAGPIORoute1, 0x02); err != nil {
		return err
	}
	if f.twoLED {
		if err := f.bus.WriteByte(regAGPIORoute2, 0x00); err != nil {
			return err
		}
	}
	if err := f.bus.WriteByte(regAGPIORoute3, 0x00); err != nil {
		return err
	}
	if err := f.bus.WriteByte(regAGPIORoute4, 0x00); err != nil {
		return err
	}

	if err := f.ToggleLightLoadShutdown(!autoPowerOn); err != nil {
		return err
	}

	v, err := f.readVoltageMv()
	if err != nil {
		return err
	}
	f.voltages.Push(v)
	f.levels.Push(curve.Level(v/1000.0, f.crv))
	c, err := f.readCurrentMa()
	if err != nil {
		return err
	}
	f.currents.Push(c)
	f.initialized = true
	return nil
}

func (f *familyA) readVoltageMv() (float64, error) {
	lo, err := f.bus.ReadByte(regAVoltageLo)
	if err != nil {
		return 0, err
	}
	hi, err := f.bus.ReadByte(regAVoltageHi)
	if err != nil {
		return 0, err
	}
	mag := uint16(lo) | (uint16(hi&0x1f) << 8)
	negative := hi&0x20 != 0
	if negative {
		return 2600 - float64(mag)*0.26855, nil
	}
	return 2600 + float64(mag)*0.26855, nil
}

func (f *familyA) readCurrentMa() (float64, error) {
	lo, err := f.bus.ReadByte(regACurrentLo)
	if err != nil {
		return 0, err
	}
	hi, err := f.bus.ReadByte(regACurrentHi)
	if err != nil {
		return 0, err
	}
	mag := uint16(lo) | (uint16(hi&0x1f) << 8)
	val := float64(mag) * 0.745985
	if hi&0x20 != 0 {
		val = -val
	}
	return val, nil
}

func (f *familyA) Voltage() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery voltage")
	}
	mv, err := f.readVoltageMv()
	if err != nil {
		return 0, err
	}
	return mv / 1000.0, nil
}

func (f *familyA) VoltageAvg() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery voltage_avg")
	}
	return f.voltages.Average() / 1000.0, nil
}

func (f *familyA) Current() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery current")
	}
	mc, err := f.readCurrentMa()
	if err != nil {
		return 0, err
	}
	return mc / 1000.0, nil
}

func (f *familyA) CurrentAvg() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery current_avg")
	}
	return f.currents.Average() / 1000.0, nil
}

func (f *familyA) Level() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery level")
	}
	avgMv, err := f.VoltageAvg()
	if err != nil {
		return 0, err
	}
	return curve.Level(avgMv, f.crv), nil
}

func (f *familyA) statusByte() (uint8, error) {
	return f.bus.ReadByte(regATapStatus)
}

func (f *familyA) IsPowerPlugged() (bool, error) {
	st, err := f.statusByte()
	if err != nil {
		return false, err
	}
	return st&(1<<4) != 0, nil
}

func (f *familyA) IsAllowCharging() (bool, error) {
	if !f.twoLED {
		return false, daemonerrors.Unsupportedf("is_allow_charging on family A 4-LED variant")
	}
	st, err := f.statusByte()
	if err != nil {
		return false, err
	}
	return st&(1<<2) == 0, nil // inverted semantics
}

func (f *familyA) ToggleAllowCharging(enable bool) error {
	if !f.twoLED {
		return daemonerrors.Unsupportedf("toggle_allow_charging on family A 4-LED variant")
	}
	// Inverted semantics: clearing the bit allows charging.
	return f.bus.SetBit(regAChargeEnableLo, 2, !enable)
}

func (f *familyA) IsCharging() (bool, error) {
	// No direct charging bit on this family; infer a monotone-up trend in
	// the voltage ring: first sample strictly below the average, and the
	// average strictly below the most recent sample.
	if f.voltages.Len() < 2 {
		return false, nil
	}
	first, _ := f.voltages.First()
	last, _ := f.voltages.Last()
	avg := f.voltages.Average()
	return first < avg && avg < last, nil
}

func (f *familyA) IsInputProtected() (bool, error) {
	return false, daemonerrors.Unsupportedf("input protection on family A")
}

func (f *familyA) ToggleInputProtected(bool) error {
	return daemonerrors.Unsupportedf("input protection on family A")
}

func (f *familyA) OutputEnabled() (bool, error) {
	v, err := f.bus.ReadByte(regAHardShutdown)
	if err != nil {
		return false, err
	}
	return v&(1<<2) != 0, nil
}

func (f *familyA) ToggleOutputEnabled(enable bool) error {
	return f.bus.SetBit(regAHardShutdown, 2, enable)
}

func (f *familyA) Shutdown() error {
	return f.ToggleOutputEnabled(false)
}

func (f *familyA) ToggleLightLoadShutdown(enable bool) error {
	if !enable {
		return f.bus.SetBit(regALightLoadEnable, 1, false)
	}
	thresh := uint8(110 / 12)
	if thresh > 31 {
		thresh = 31
	}
	v, err := f.bus.ReadByte(regALightLoadThresh)
	if err != nil {
		return err
	}
	v = (v &^ 0xf8) | (thresh << 3)
	if err := f.bus.WriteByte(regALightLoadThresh, v); err != nil {
		return err
	}
	if err := f.bus.SetBit(regALightLoadDwell, 7, false); err != nil {
		return err
	}
	if err := f.bus.SetBit(regALightLoadDwell, 6, false); err != nil {
		return err
	}
	if err := f.bus.SetBit(regALightLoadEnable, 0, true); err != nil {
		return err
	}
	return f.bus.SetBit(regALightLoadEnable, 1, true)
}

func (f *familyA) ToggleSoftPoweroff(bool) error {
	return daemonerrors.Unsupportedf("soft poweroff on family A")
}

func (f *familyA) Poll(now time.Time) ([]Event, error) {
	if !f.initialized {
		return nil, daemonerrors.Uninitializedf("poll")
	}
	mv, err := f.readVoltageMv()
	if err != nil {
		return nil, err
	}
	f.voltages.Push(mv)

	mc, err := f.readCurrentMa()
	if err != nil {
		return nil, err
	}
	f.currents.Push(mc)

	level := curve.Level(f.voltages.Average()/1000.0, f.crv)
	f.levels.Push(level)

	st, err := f.statusByte()
	if err != nil {
		return nil, err
	}
	tapBit := byte('0')
	if f.twoLED {
		if st&(1<<1) != 0 {
			tapBit = '1'
		}
	} else {
		if st&(1<<4) != 0 {
			tapBit = '1'
		}
	}
	cls := f.pushTapBit(tapBit)

	f.lastPoll = now
	if cls == 0 {
		return nil, nil
	}
	return []Event{TapEvent{Classification: cls}}, nil
}
