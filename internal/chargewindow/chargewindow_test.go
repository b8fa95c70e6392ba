package chargewindow

import (
	"testing"
	"time"
)

func TestHysteresisScenario(t *testing.T) {
	c := &Controller{}
	r := Range{Begin: 30, End: 80}
	hold := 300 * time.Second
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	allow := true
	var fullSince time.Time
	disabledAt := time.Time{}

	for level := 80; level <= 100; level++ {
		now := t0.Add(time.Duration(level-80) * time.Second)
		d := c.Step(now, float64(level), allow, r, hold)
		switch d {
		case Enable:
			allow = true
		case Disable:
			allow = false
			disabledAt = now
		}
		if level == 80 && fullSince.IsZero() {
			fullSince = c.FullSince()
		}
	}
	// Hold at 100% until the hold-off elapses and charging is disabled.
	for s := 21; s <= 302 && disabledAt.IsZero(); s++ {
		now := t0.Add(time.Duration(s) * time.Second)
		d := c.Step(now, 100, allow, r, hold)
		if d == Disable {
			allow = false
			disabledAt = now
		}
	}
	if fullSince != t0 {
		t.Fatalf("expected full_since = t0, got %v (t0=%v)", fullSince, t0)
	}
	wantDisable := t0.Add(301 * time.Second)
	if disabledAt != wantDisable {
		t.Fatalf("expected disable at t0+301s (%v), got %v", wantDisable, disabledAt)
	}
}

func TestEnablesBelowBegin(t *testing.T) {
	c := &Controller{}
	r := Range{Begin: 30, End: 80}
	d := c.Step(time.Now(), 20, false, r, 300*time.Second)
	if d != Enable {
		t.Fatalf("expected Enable, got %v", d)
	}
}

func TestNoActionInMiddleOfRange(t *testing.T) {
	c := &Controller{}
	r := Range{Begin: 30, End: 80}
	d := c.Step(time.Now(), 50, true, r, 300*time.Second)
	if d != Unchanged {
		t.Fatalf("expected Unchanged, got %v", d)
	}
}
