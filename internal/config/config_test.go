package config

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sugarbeard/sugarbeardd/internal/curve"
)

func TestLoadMissingWritesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AutoChargeRange.Begin != 20 || cfg.AutoChargeRange.End != 80 {
		t.Fatalf("unexpected default range: %+v", cfg.AutoChargeRange)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if !reflect.DeepEqual(again, cfg) {
		t.Fatalf("expected idempotent reload, got %+v vs %+v", again, cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.AutoChargeRange = ChargeRange{Begin: 30, End: 70}
	cfg.TapSingle = TapPolicy{Enabled: true, Shell: "echo tap"}
	cfg.AuthUsername = "admin"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, cfg)
	}
}

func TestValidateRejectsInvertedRange(t *testing.T) {
	cfg := Default()
	cfg.AutoChargeRange = ChargeRange{Begin: 80, End: 20}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestValidateRejectsOutOfBoundsRange(t *testing.T) {
	cfg := Default()
	cfg.AutoChargeRange = ChargeRange{Begin: -5, End: 80}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-bounds range")
	}
}

func TestValidateRejectsNonMonotonicCurve(t *testing.T) {
	cfg := Default()
	cfg.BatteryCurve = curve.Curve{
		{Voltage: 4.0, Percent: 50},
		{Voltage: 3.9, Percent: 40},
		{Voltage: 3.8, Percent: 60}, // percent must strictly increase with voltage
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-monotonic curve")
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	cfg := Default()
	cfg.AutoChargeRange = ChargeRange{Begin: 90, End: 10}
	if err := Save(path, cfg); err == nil {
		t.Fatal("expected Save to reject invalid config")
	}
}
