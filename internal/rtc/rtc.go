// Package rtc is the polymorphic real-time-clock driver layer: the legacy
// write-protected BCD-register chip and the newer chip sharing its address
// with the battery, behind one shared Driver interface.
package rtc

import "github.com/sugarbeard/sugarbeardd/internal/model"

// WeekdayMask is a bitmap with one bit per weekday, Sunday = bit 0.
type WeekdayMask uint8

// AllDays repeats an alarm on every day of the week.
const AllDays WeekdayMask = 0b0111_1111

// Driver is the operation set every RTC implementation honors.
type Driver interface {
	Init() error

	ReadTime() (model.RawTime, error)
	WriteTime(model.RawTime) error

	ReadAlarmTime() (model.RawTime, error)
	SetAlarm(t model.RawTime, mask WeekdayMask) error
	IsAlarmEnabled() (bool, error)
	ToggleAlarmEnabled(bool) error
	ReadAlarmFlag() (bool, error)
	ClearAlarmFlag() error

	// ToggleFrequencyAlarm drives a periodic 1Hz pulse used on legacy
	// hardware as a "prevent sleep" signal; newer hardware no-ops it.
	ToggleFrequencyAlarm(bool) error

	// SetTestWake writes the current time and arms a 90s alarm across all
	// weekdays, for diagnostics.
	SetTestWake(now model.RawTime) error

	ForceShutdown() error

	ReadBatteryLowFlag() (bool, error)
	ReadBatteryHighFlag() (bool, error)
	// ToggleCharging drives the RTC's own backup-cell trickle charger.
	ToggleCharging(bool) error
}
