package model

import (
	"fmt"
	"time"
)

// ToTime converts a RawTime to a UTC time.Time. RawTime only represents
// years 2000-2099.
func (rt RawTime) ToTime() (time.Time, error) {
	if rt.Month < 1 || rt.Month > 12 {
		return time.Time{}, fmt.Errorf("invalid month %d", rt.Month)
	}
	if rt.Day < 1 || rt.Day > 31 {
		return time.Time{}, fmt.Errorf("invalid day %d", rt.Day)
	}
	year := 2000 + int(rt.Year)
	return time.Date(year, time.Month(rt.Month), int(rt.Day),
		int(rt.Hour), int(rt.Min), int(rt.Sec), 0, time.UTC), nil
}

// FromTime builds a RawTime from a UTC time.Time in [2000-01-01, 2100-01-01).
func FromTime(t time.Time) (RawTime, error) {
	t = t.UTC()
	if t.Year() < 2000 || t.Year() > 2099 {
		return RawTime{}, fmt.Errorf("year %d out of RawTime range [2000,2099]", t.Year())
	}
	return RawTime{
		Sec:     uint8(t.Second()),
		Min:     uint8(t.Minute()),
		Hour:    uint8(t.Hour()),
		Weekday: uint8(t.Weekday()),
		Day:     uint8(t.Day()),
		Month:   uint8(t.Month()),
		Year:    uint8(t.Year() - 2000),
	}, nil
}
