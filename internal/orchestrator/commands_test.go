package orchestrator

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/sugarbeard/sugarbeardd/internal/config"
	"github.com/sugarbeard/sugarbeardd/internal/eventbus"
	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/pkg/debug"
)

// fakeBus is a minimal in-memory i2cbus.RegisterIO, mirroring the fake used
// by internal/battery and internal/rtc's own driver tests so the
// orchestrator can be exercised end-to-end without real hardware.
type fakeBus struct {
	regs map[uint8]uint8
}

func newFakeBus() *fakeBus { return &fakeBus{regs: make(map[uint8]uint8)} }

func (f *fakeBus) ReadByte(reg uint8) (uint8, error) { return f.regs[reg], nil }

func (f *fakeBus) WriteByte(reg uint8, val uint8) error {
	f.regs[reg] = val
	return nil
}

func (f *fakeBus) BlockRead(reg uint8, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = f.regs[reg+uint8(i)]
	}
	return out, nil
}

func (f *fakeBus) BlockWrite(reg uint8, data []byte) error {
	for i, b := range data {
		f.regs[reg+uint8(i)] = b
	}
	return nil
}

func (f *fakeBus) SetBit(reg uint8, bit uint, set bool) error {
	v := f.regs[reg]
	if set {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	f.regs[reg] = v
	return nil
}

func (f *fakeBus) Bit(reg uint8, bit uint) (bool, error) {
	return f.regs[reg]&(1<<bit) != 0, nil
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	trace := debug.New(log, debug.Config{})

	cfgPath := filepath.Join(t.TempDir(), "config.json")
	cfg := config.Default()

	o := New(model.V3, newFakeBus(), cfg, cfgPath, eventbus.New(), log, trace)
	if err := o.lazyInit(); err != nil {
		t.Fatalf("lazyInit() error = %v", err)
	}
	return o
}

func TestGetModel(t *testing.T) {
	o := newTestOrchestrator(t)
	got := o.HandleCommand("get model\n")
	want := "get model: PiSugar 3\n"
	if got != want {
		t.Fatalf("HandleCommand(get model) = %q, want %q", got, want)
	}
}

func TestSetBatteryChargingRangeRejectsInvertedRange(t *testing.T) {
	o := newTestOrchestrator(t)
	got := o.HandleCommand("set_battery_charging_range 80,20\n")
	if !strings.Contains(got, "error") {
		t.Fatalf("HandleCommand(set_battery_charging_range 80,20) = %q, want an error response", got)
	}
}

func TestSetBatteryChargingRangeAcceptsValidRange(t *testing.T) {
	o := newTestOrchestrator(t)
	got := o.HandleCommand("set_battery_charging_range 30,90\n")
	want := "set_battery_charging_range 30,90: 30,90\n"
	if got != want {
		t.Fatalf("HandleCommand(set_battery_charging_range 30,90) = %q, want %q", got, want)
	}

	got = o.HandleCommand("get battery_charging_range\n")
	want = "get battery_charging_range: 30,90\n"
	if got != want {
		t.Fatalf("HandleCommand(get battery_charging_range) = %q, want %q", got, want)
	}
}

func TestRTCAlarmSetConflictsWithAutoPowerOn(t *testing.T) {
	o := newTestOrchestrator(t)
	o.cfg.AutoPowerOn = true

	got := o.HandleCommand("rtc_alarm_set 2026-08-01T07:00:00Z 127\n")
	if !strings.Contains(got, "error") {
		t.Fatalf("HandleCommand(rtc_alarm_set) with auto_power_on set = %q, want a Conflict error", got)
	}
}

func TestRTCAlarmSetSucceedsWithoutAutoPowerOn(t *testing.T) {
	o := newTestOrchestrator(t)
	got := o.HandleCommand("rtc_alarm_set 2026-08-01T07:00:00Z 127\n")
	want := "rtc_alarm_set 2026-08-01T07:00:00Z 127: ok\n"
	if got != want {
		t.Fatalf("HandleCommand(rtc_alarm_set) = %q, want %q", got, want)
	}
}

func TestHandleCommandUnknownFieldIsInvalidArgument(t *testing.T) {
	o := newTestOrchestrator(t)
	got := o.HandleCommand("get not_a_real_field\n")
	if !strings.Contains(got, "error") {
		t.Fatalf("HandleCommand(get not_a_real_field) = %q, want an error response", got)
	}
}

func TestHandleCommandBlankLineIsIgnored(t *testing.T) {
	o := newTestOrchestrator(t)
	if got := o.HandleCommand(""); got != "" {
		t.Fatalf("HandleCommand(\"\") = %q, want empty", got)
	}
}
