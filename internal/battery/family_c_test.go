package battery

import (
	"testing"
	"time"

	"github.com/sugarbeard/sugarbeardd/internal/curve"
	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/internal/tapdetector"
)

func newTestFamilyC() (*familyC, *fakeBus) {
	bus := newFakeBus()
	f := &familyC{base: newBase(), bus: bus, mdl: model.V3, crv: curve.DefaultFamilyBC}
	return f, bus
}

func TestFamilyCIsChargingRequiresPluggedAndAllowed(t *testing.T) {
	f, bus := newTestFamilyC()
	bus.regs[regCControl] = 0 // neither bit set
	charging, err := f.IsCharging()
	if err != nil || charging {
		t.Fatalf("expected not charging, got %v, %v", charging, err)
	}
	bus.regs[regCControl] = (1 << 7) | (1 << 6)
	charging, err = f.IsCharging()
	if err != nil || !charging {
		t.Fatalf("expected charging, got %v, %v", charging, err)
	}
}

func TestFamilyCTapReadAcknowledges(t *testing.T) {
	f, bus := newTestFamilyC()
	bus.regs[regCTap] = 0x03 // Long
	cls, err := f.readTap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls != tapdetector.Long {
		t.Fatalf("expected Long, got %v", cls)
	}
	if bus.regs[regCTap]&0x03 != 0 {
		t.Fatal("expected tap bits cleared after read")
	}
}

func TestFamilyCPollThrottled(t *testing.T) {
	f, bus := newTestFamilyC()
	bus.regs[regCVoltLo] = 0x10
	if err := f.Init(true); err != nil {
		t.Fatalf("init: %v", err)
	}
	now := time.Now()
	evts, err := f.Poll(now)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if evts != nil {
		t.Fatalf("expected no events, got %v", evts)
	}
	before := f.voltages.Len()
	_, err = f.Poll(now.Add(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if f.voltages.Len() != before {
		t.Fatal("expected throttled poll to skip sampling")
	}
}
