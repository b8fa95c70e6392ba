package rtc

import (
	"testing"

	"github.com/sugarbeard/sugarbeardd/internal/model"
)

func TestSharedTimeRoundTrip(t *testing.T) {
	bus := newFakeBus()
	r := NewShared(bus)
	in := model.RawTime{Sec: 45, Min: 59, Hour: 23, Weekday: 6, Day: 31, Month: 12, Year: 99}
	if err := r.WriteTime(in); err != nil {
		t.Fatalf("WriteTime: %v", err)
	}
	out, err := r.ReadTime()
	if err != nil {
		t.Fatalf("ReadTime: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestSharedNoFlagOrFrequencyAlarm(t *testing.T) {
	r := NewShared(newFakeBus())
	if flag, err := r.ReadAlarmFlag(); err != nil || flag {
		t.Fatalf("expected no-op false flag, got %v, %v", flag, err)
	}
	if err := r.ToggleFrequencyAlarm(true); err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
}

func TestSharedAlarmEnableBit(t *testing.T) {
	bus := newFakeBus()
	r := NewShared(bus)
	if err := r.ToggleAlarmEnabled(true); err != nil {
		t.Fatalf("ToggleAlarmEnabled: %v", err)
	}
	if bus.regs[regSAlarmEnable]&(1<<7) == 0 {
		t.Fatal("expected enable bit set")
	}
}
