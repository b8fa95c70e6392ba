package battery

import (
	"testing"

	"github.com/sugarbeard/sugarbeardd/internal/curve"
	"github.com/sugarbeard/sugarbeardd/internal/model"
)

func TestFamilyAIsChargingMonotoneTrend(t *testing.T) {
	f := &familyA{base: newBase(), mdl: model.V2_4LED, crv: curve.DefaultFamilyA}
	for _, v := range []float64{3800, 3820, 3850, 3880, 3900} {
		f.voltages.Push(v)
	}
	charging, err := f.IsCharging()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !charging {
		t.Fatal("expected is_charging true for an increasing voltage trend")
	}
}

func TestFamilyAIsChargingFlatTrendFalse(t *testing.T) {
	f := &familyA{base: newBase(), mdl: model.V2_4LED, crv: curve.DefaultFamilyA}
	for _, v := range []float64{3900, 3900, 3900} {
		f.voltages.Push(v)
	}
	charging, err := f.IsCharging()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charging {
		t.Fatal("expected is_charging false for a flat trend")
	}
}

func TestFamilyAUninitializedQueries(t *testing.T) {
	f := &familyA{base: newBase(), mdl: model.V2_4LED, crv: curve.DefaultFamilyA}
	if _, err := f.Voltage(); err == nil {
		t.Fatal("expected Uninitialized error before Init")
	}
}

func TestFamilyATwoLEDUnsupportedOnFourLED(t *testing.T) {
	f := &familyA{base: newBase(), mdl: model.V2_4LED, crv: curve.DefaultFamilyA, twoLED: false}
	if _, err := f.IsAllowCharging(); err == nil {
		t.Fatal("expected Unsupported for is_allow_charging on 4-LED variant")
	}
}
