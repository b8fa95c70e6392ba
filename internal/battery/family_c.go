package battery

import (
	"encoding/binary"
	"time"

	"github.com/sugarbeard/sugarbeardd/internal/curve"
	"github.com/sugarbeard/sugarbeardd/internal/i2cbus"
	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/internal/tapdetector"
	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

// Family-C (V3) register map. Shares its I2C address with the RTC.
const (
	regCControl  = 0x02
	regCControl2 = 0x03
	regCTap      = 0x08
	regCBatCtrl  = 0x20
	regCVoltLo   = 0x22
	regCVoltHi   = 0x23
	regCPercent  = 0x2a
	regCCurrLo   = 0x26
	regCCurrHi   = 0x27

	pollThrottle = 500 * time.Millisecond
)

type familyC struct {
	base
	bus i2cbus.RegisterIO
	mdl model.Model
	crv curve.Curve
}

// NewFamilyC constructs the newer shared battery+RTC chip driver.
func NewFamilyC(bus i2cbus.RegisterIO, mdl model.Model, crv curve.Curve) Driver {
	return &familyC{base: newBase(), bus: bus, mdl: mdl, crv: crv}
}

func (f *familyC) Model() model.Model { return f.mdl }

func (f *familyC) Init(autoPowerOn bool) error {
	if err := f.ToggleLightLoadShutdown(!autoPowerOn); err != nil {
		return err
	}
	v, err := f.readVoltageMv()
	if err != nil {
		return err
	}
	f.voltages.Push(v)
	lvl, err := f.readPercent()
	if err != nil {
		return err
	}
	f.levels.Push(lvl)
	c, err := f.readCurrentMa()
	if err != nil {
		return err
	}
	f.currents.Push(c)
	f.initialized = true
	return nil
}

func (f *familyC) readVoltageMv() (float64, error) {
	buf, err := f.bus.BlockRead(regCVoltLo, 2)
	if err != nil {
		return 0, err
	}
	return float64(binary.LittleEndian.Uint16(buf)), nil
}

func (f *familyC) readCurrentMa() (float64, error) {
	buf, err := f.bus.BlockRead(regCCurrLo, 2)
	if err != nil {
		return 0, err
	}
	return float64(binary.LittleEndian.Uint16(buf)), nil
}

func (f *familyC) readPercent() (float64, error) {
	v, err := f.bus.ReadByte(regCPercent)
	if err != nil {
		return 0, err
	}
	return float64(v), nil
}

func (f *familyC) Voltage() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery voltage")
	}
	mv, err := f.readVoltageMv()
	if err != nil {
		return 0, err
	}
	return mv / 1000.0, nil
}

func (f *familyC) VoltageAvg() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery voltage_avg")
	}
	return f.voltages.Average() / 1000.0, nil
}

func (f *familyC) Current() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery current")
	}
	mc, err := f.readCurrentMa()
	if err != nil {
		return 0, err
	}
	return mc / 1000.0, nil
}

func (f *familyC) CurrentAvg() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery current_avg")
	}
	return f.currents.Average() / 1000.0, nil
}

func (f *familyC) Level() (float64, error) {
	if !f.initialized {
		return 0, daemonerrors.Uninitializedf("battery level")
	}
	return f.levels.Average(), nil
}

func (f *familyC) control() (uint8, error) {
	return f.bus.ReadByte(regCControl)
}

func (f *familyC) IsPowerPlugged() (bool, error) {
	v, err := f.control()
	if err != nil {
		return false, err
	}
	return v&(1<<7) != 0, nil
}

func (f *familyC) IsAllowCharging() (bool, error) {
	v, err := f.control()
	if err != nil {
		return false, err
	}
	return v&(1<<6) != 0, nil
}

func (f *familyC) ToggleAllowCharging(enable bool) error {
	return f.bus.SetBit(regCControl, 6, enable)
}

func (f *familyC) IsCharging() (bool, error) {
	plugged, err := f.IsPowerPlugged()
	if err != nil {
		return false, err
	}
	allow, err := f.IsAllowCharging()
	if err != nil {
		return false, err
	}
	return plugged && allow, nil
}

func (f *familyC) IsInputProtected() (bool, error) {
	v, err := f.bus.ReadByte(regCBatCtrl)
	if err != nil {
		return false, err
	}
	return v&(1<<7) != 0, nil
}

func (f *familyC) ToggleInputProtected(enable bool) error {
	return f.bus.SetBit(regCBatCtrl, 7, enable)
}

func (f *familyC) OutputEnabled() (bool, error) {
	v, err := f.control()
	if err != nil {
		return false, err
	}
	return v&(1<<5) != 0, nil
}

func (f *familyC) ToggleOutputEnabled(enable bool) error {
	return f.bus.SetBit(regCControl, 5, enable)
}

func (f *familyC) Shutdown() error {
	return f.ToggleOutputEnabled(false)
}

func (f *familyC) ToggleLightLoadShutdown(enable bool) error {
	return f.bus.SetBit(regCBatCtrl, 5, enable)
}

func (f *familyC) ToggleSoftPoweroff(bool) error {
	return daemonerrors.Unsupportedf("soft poweroff on family C")
}

// readTap reads the tap status bits and acknowledges them by clearing bits
// 1:0, as required so the chip doesn't keep re-reporting a stale gesture.
func (f *familyC) readTap() (tapdetector.Classification, error) {
	v, err := f.bus.ReadByte(regCTap)
	if err != nil {
		return tapdetector.None, err
	}
	code := v & 0x03
	if code == 0 {
		return tapdetector.None, nil
	}
	if err := f.bus.WriteByte(regCTap, v&^0x03); err != nil {
		return tapdetector.None, err
	}
	switch code {
	case 1:
		return tapdetector.Single, nil
	case 2:
		return tapdetector.Double, nil
	case 3:
		return tapdetector.Long, nil
	default:
		return tapdetector.None, nil
	}
}

func (f *familyC) Poll(now time.Time) ([]Event, error) {
	if !f.initialized {
		return nil, daemonerrors.Uninitializedf("poll")
	}
	if !f.lastPoll.IsZero() && now.Sub(f.lastPoll) < pollThrottle {
		return nil, nil
	}
	f.lastPoll = now

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

	pct, err := f.readPercent()
	if err != nil {
		return nil, err
	}
	// This chip already integrates its own level; refill the ring every
	// poll rather than averaging a noisy instantaneous read.
	for i := 0; i < f.levels.Cap(); i++ {
		f.levels.Push(pct)
	}

	cls, err := f.readTap()
	if err != nil {
		return nil, err
	}
	if cls == tapdetector.None {
		return nil, nil
	}
	return []Event{TapEvent{Classification: cls}}, nil
}
