// Package model holds the closed enumeration of supported boards and the
// wall-clock RawTime representation shared by every RTC implementation.
package model

import "fmt"

// Model is the board variant, fixed at construction and never mutated: it
// determines chip family, default I2C addresses, LED count, and which
// battery curve and polling cadence apply.
type Model int

const (
	V2_4LED Model = iota
	V2_2LED
	V2Pro
	V3
)

func (m Model) String() string {
	switch m {
	case V2_4LED:
		return "PiSugar 2 (4-LEDs)"
	case V2_2LED:
		return "PiSugar 2 (2-LEDs)"
	case V2Pro:
		return "PiSugar 2 Pro"
	case V3:
		return "PiSugar 3"
	default:
		return "unknown"
	}
}

// LEDAmount is the number of charge-level LEDs the board exposes. The
// charge-window controller requires exactly 2 (see chargewindow).
func (m Model) LEDAmount() int {
	switch m {
	case V2_4LED:
		return 4
	case V2_2LED, V2Pro, V3:
		return 2
	default:
		return 0
	}
}

// DefaultBatteryAddr is the factory 7-bit I2C address of the PMIC.
func (m Model) DefaultBatteryAddr() uint16 {
	if m == V3 {
		return 0x57
	}
	return 0x75
}

// DefaultRTCAddr is the factory 7-bit I2C address of the RTC. Family C
// shares its address with the battery chip (same physical die).
func (m Model) DefaultRTCAddr() uint16 {
	if m == V3 {
		return 0x57
	}
	return 0x32
}

// ParseModel parses the canonical display string back into a Model, used by
// configuration loading and tests.
func ParseModel(s string) (Model, error) {
	for _, m := range []Model{V2_4LED, V2_2LED, V2Pro, V3} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown model %q", s)
}

// RawTime is the seven-field BCD-domain time tuple every RTC implementation
// reads and writes, always UTC and always 24-hour internally. wd is 0-6
// from Sunday; yy is the year minus 2000.
type RawTime struct {
	Sec, Min, Hour uint8
	Weekday        uint8
	Day, Month     uint8
	Year           uint8 // years since 2000
}
