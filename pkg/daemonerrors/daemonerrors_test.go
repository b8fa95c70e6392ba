package daemonerrors

import (
	"errors"
	"testing"
)

func TestCategoryOf(t *testing.T) {
	err := Busf("bus index %d", 1)
	if CategoryOf(err) != Bus {
		t.Fatalf("expected Bus category, got %v", CategoryOf(err))
	}
}

func TestIsMatchesCategory(t *testing.T) {
	err := Uninitializedf("voltage")
	if !errors.Is(err, New(Uninitialized, "")) {
		t.Fatal("expected errors.Is to match on category")
	}
	if errors.Is(err, New(Bus, "")) {
		t.Fatal("did not expect match across categories")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("i2c nak")
	err := Wrap(Bus, "read failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected unwrap to reach cause")
	}
}
