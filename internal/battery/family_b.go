package battery

import (
	"encoding/binary"
	"time"

	"github.com/sugarbeard/sugarbeardd/internal/curve"
	"github.com/sugarbeard/sugarbeardd/internal/i2cbus"
	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

// Family-B ("Pro") register map.
const (
	regBVoltageLo = 0xd0
	regBVoltageHi = 0xd1
	regBCurrentLo = 0xd2
	regBCurrentHi = 0xd3

	regBBoostIntensity = 0x30
	regBLightLoadThresh = 0xc9
	regBLightLoadEnable = 0x03
	regBBatLow          = 0x13
	regBHardShutdown    = 0x01

	regBChargeStatusLo = 0xdc
	regBChargeStatusHi = 0xdd
)

type familyB struct {
	base
	bus i2cbus.RegisterIO
	mdl model.Model
	crv curve.Curve
}

// NewFamilyB constructs the legacy "Pro" family-B driver.
func NewFamilyB(bus i2cbus.RegisterIO, mdl model.Model, crv curve.Curve) Driver {
	return &familyB{base: newBase(), bus: bus, mdl: mdl, crv: crv}
}

func (f *familyB) Model() model.Model { return f.mdl }

func (f *familyB) Init(autoPowerOn bool) error {
	if err := f.bus.WriteByte(regBBoostIntensity, 0x3f); err != nil {
		return err
	}
	if err := f.ToggleLightLoadShutdown(!autoPowerOn); err != nil {
		return err
	}

	mv, err := f.readVoltageMv()
	if err != nil {
		return err
	}
	f.voltages.Push(mv)
	f.levels.Push(curve.Level(mv/1000.0, f.crv))

	mc, err := f.readCurrentMa()
	if err != nil {
		return err
	}
	f.currents.Push(mc)
	f.initialized = true
	return nil
}

func (f *familyB) readVoltageMv() (float64, error) {
	lo, err := f.bus.ReadByte(regBVoltageLo)
	if err != nil {
		return 0, err
	}
	hi, err := f.bus.ReadByte(regBVoltageHi)
	if err != nil {
		return 0, err
	}
	if lo == 0 && hi == 0 {
		return 0, daemonerrors.Unsupportedf("battery voltage register reads all-zero")
	}
	raw := uint16(lo) | (uint16(hi&0x3f) << 8)
	return float64(raw)*0.26855 + 2600, nil
}

func (f *familyB) readCurrentMa() (float64, error) {
	lo, err := f.bus.ReadByte(regBCurrentLo)
	if err != nil {
		return 0, err
	}
	hi, err := f.bus.ReadByte(regBCurrentHi)
	if err != nil {
		return 0, err
	}
	raw := int16(binary.BigEndian.Uint16([]byte{hi, lo}))
	return float64(raw) * 2.68554, nil
}

func (f *familyB) Voltage() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery voltage")
	}
	mv, err := f.readVoltageMv()
	if err != nil {
		return 0, err
	}
	return mv / 1000.0, nil
}

func (f *familyB) VoltageAvg() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery voltage_avg")
	}
	return f.voltages.Average() / 1000.0, nil
}

func (f *familyB) Current() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery current")
	}
	mc, err := f.readCurrentMa()
	if err != nil {
		return 0, err
	}
	return mc / 1000.0, nil
}

func (f *familyB) CurrentAvg() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery current_avg")
	}
	return f.currents.Average() / 1000.0, nil
}

func (f *familyB) Level() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery level")
	}
	avgMv, err := f.VoltageAvg()
	if err != nil {
		return 0, err
	}
	return curve.Level(avgMv, f.crv), nil
}

func (f *familyB) IsPowerPlugged() (bool, error) {
	lo, err := f.bus.ReadByte(regBChargeStatusLo)
	if err != nil {
		return false, err
	}
	hi, err := f.bus.ReadByte(regBChargeStatusHi)
	if err != nil {
		return false, err
	}
	return lo == 0xff && hi == 0x1f, nil
}

func (f *familyB) IsAllowCharging() (bool, error) {
	return f.IsPowerPlugged()
}

func (f *familyB) ToggleAllowCharging(enable bool) error {
	return f.bus.SetBit(regBLightLoadEnable, 5, enable)
}

func (f *familyB) IsCharging() (bool, error) {
	// Sum of consecutive voltage deltas across the ring; a net-positive
	// trend across the window indicates charging.
	vals := f.voltages.Values()
	if len(vals) < 2 {
		return false, nil
	}
	var sum float64
	for i := 1; i < len(vals); i++ {
		sum += vals[i] - vals[i-1]
	}
	return sum > 0, nil
}

func (f *familyB) IsInputProtected() (bool, error) {
	return false, daemonerrors.Unsupportedf("input protection on family B")
}

func (f *familyB) ToggleInputProtected(bool) error {
	return daemonerrors.Unsupportedf("input protection on family B")
}

func (f *familyB) OutputEnabled() (bool, error) {
	v, err := f.bus.ReadByte(regBHardShutdown)
	if err != nil {
		return false, err
	}
	return v&(1<<2) != 0, nil
}

func (f *familyB) ToggleOutputEnabled(enable bool) error {
	return f.bus.SetBit(regBHardShutdown, 2, enable)
}

func (f *familyB) Shutdown() error {
	return f.bus.SetBit(regBHardShutdown, 2, false)
}

func (f *familyB) ToggleLightLoadShutdown(enable bool) error {
	if !enable {
		return f.bus.SetBit(regBLightLoadEnable, 5, false)
	}
	thresh := uint8(250 / 4.3)
	if thresh > 63 {
		thresh = 63
	}
	v, err := f.bus.ReadByte(regBLightLoadThresh)
	if err != nil {
		return err
	}
	v = (v &^ 0x3f) | (thresh & 0x3f)
	if err := f.bus.WriteByte(regBLightLoadThresh, v); err != nil {
		return err
	}
	if err := f.bus.SetBit(regBLightLoadEnable, 5, true); err != nil {
		return err
	}
	return f.bus.SetBit(regBBatLow, 0, true)
}

func (f *familyB) ToggleSoftPoweroff(bool) error {
	return daemonerrors.Unsupportedf("soft poweroff on family B")
}

func (f *familyB) Poll(now time.Time) ([]Event, error) {
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

	f.lastPoll = now
	return nil, nil
}
