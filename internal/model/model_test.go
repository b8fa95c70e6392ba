package model

import (
	"testing"
	"time"
)

func TestModelStrings(t *testing.T) {
	cases := map[Model]string{
		V2_4LED: "PiSugar 2 (4-LEDs)",
		V2_2LED: "PiSugar 2 (2-LEDs)",
		V2Pro:   "PiSugar 2 Pro",
		V3:      "PiSugar 3",
	}
	for m, want := range cases {
		if got := m.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", m, got, want)
		}
		parsed, err := ParseModel(want)
		if err != nil || parsed != m {
			t.Errorf("ParseModel(%q) = %v, %v; want %v, nil", want, parsed, err, m)
		}
	}
}

func TestRawTimeRoundTrip(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC)
	for ts := start; !ts.After(end); ts = ts.Add(37 * time.Hour) {
		rt, err := FromTime(ts)
		if err != nil {
			t.Fatalf("FromTime(%v): %v", ts, err)
		}
		back, err := rt.ToTime()
		if err != nil {
			t.Fatalf("ToTime: %v", err)
		}
		if !back.Equal(ts) {
			t.Fatalf("round trip mismatch: %v != %v", back, ts)
		}
	}
}

func TestLEDAmount(t *testing.T) {
	if V2_4LED.LEDAmount() != 4 {
		t.Error("expected 4 LEDs")
	}
	if V2_2LED.LEDAmount() != 2 {
		t.Error("expected 2 LEDs")
	}
}
