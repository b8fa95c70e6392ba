package curve

import "testing"

func TestLevelAboveTop(t *testing.T) {
	if got := Level(5.0, DefaultFamilyA); got != 100 {
		t.Errorf("Level above top = %v, want 100", got)
	}
}

func TestLevelBelowBottom(t *testing.T) {
	if got := Level(2.0, DefaultFamilyA); got != 0 {
		t.Errorf("Level below bottom = %v, want 0", got)
	}
}

func TestLevelAtInteriorPoint(t *testing.T) {
	for _, p := range DefaultFamilyA {
		got := Level(p.Voltage, DefaultFamilyA)
		if got != p.Percent {
			t.Errorf("Level(%v) = %v, want %v", p.Voltage, got, p.Percent)
		}
	}
}

func TestLevelMonotoneNonDecreasing(t *testing.T) {
	prev := Level(3.0, DefaultFamilyA)
	for v := 3.0; v <= 4.3; v += 0.01 {
		got := Level(v, DefaultFamilyA)
		if got < prev {
			t.Fatalf("level decreased at v=%v: %v < %v", v, got, prev)
		}
		prev = got
	}
}

func TestValidateRejectsDuplicateVoltage(t *testing.T) {
	c := Sorted([]Point{{4.0, 100}, {4.0, 50}, {3.0, 0}})
	if err := Validate(c); err == nil {
		t.Fatal("expected error for duplicate voltage")
	}
}

func TestValidateRejectsNonIncreasingPercent(t *testing.T) {
	c := Sorted([]Point{{4.0, 50}, {3.5, 60}, {3.0, 0}})
	if err := Validate(c); err == nil {
		t.Fatal("expected error for non-increasing percent")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(DefaultFamilyA); err != nil {
		t.Errorf("DefaultFamilyA should validate: %v", err)
	}
	if err := Validate(DefaultFamilyBC); err != nil {
		t.Errorf("DefaultFamilyBC should validate: %v", err)
	}
}
