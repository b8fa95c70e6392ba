package wire

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseSimpleCommand(t *testing.T) {
	c, ok := Parse("get battery\n")
	if !ok {
		t.Fatal("expected command")
	}
	if c.Name != "get" || !reflect.DeepEqual(c.Args, []string{"battery"}) {
		t.Fatalf("unexpected parse: %+v", c)
	}
}

func TestParseEmptyLine(t *testing.T) {
	if _, ok := Parse("   "); ok {
		t.Fatal("expected no command for blank line")
	}
}

func TestParseShellFragmentPreservesWhitespace(t *testing.T) {
	c, ok := Parse("set_button_shell single echo hello world")
	if !ok {
		t.Fatal("expected command")
	}
	if c.Raw() != "single echo hello world" {
		t.Fatalf("unexpected raw: %q", c.Raw())
	}
}

func TestFloatsParsesCommaList(t *testing.T) {
	c, _ := Parse("set_battery_charging_range 20,80")
	got, err := c.Floats()
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	if !reflect.DeepEqual(got, []float64{20, 80}) {
		t.Fatalf("unexpected floats: %v", got)
	}
}

func TestFloatsRejectsGarbage(t *testing.T) {
	c, _ := Parse("set_battery_charging_range abc,80")
	if _, err := c.Floats(); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}

func TestBoolAcceptsAllForms(t *testing.T) {
	cases := map[string]bool{"true": true, "1": true, "false": false, "0": false}
	for in, want := range cases {
		got, err := Bool(in)
		if err != nil || got != want {
			t.Fatalf("Bool(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestBoolRejectsInvalid(t *testing.T) {
	if _, err := Bool("maybe"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFormatValueAndError(t *testing.T) {
	if got := FormatValue("get battery", 42); got != "get battery: 42\n" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := FormatError("get battery", errors.New("bus error")); got != "get battery: error bus error\n" {
		t.Fatalf("unexpected: %q", got)
	}
}
