// Package alarmschedule computes the next theoretical fire times of a
// configured RTC alarm (wall-clock + weekday-repeat mask) for diagnostics
// and for rejecting masks that can never fire. The RTC hardware still owns
// actually firing the alarm; this is a host-side sanity computation layered
// on top of it with robfig/cron's schedule parser, not a competing
// scheduler.
package alarmschedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sugarbeard/sugarbeardd/internal/model"
	"github.com/sugarbeard/sugarbeardd/internal/rtc"
	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// expr builds the five-field cron expression for an alarm firing at hh:mm
// on every weekday set in mask, relative to UTC (RawTime is always UTC).
func expr(t model.RawTime, mask rtc.WeekdayMask) (string, error) {
	if mask == 0 {
		return "", daemonerrors.InvalidArgumentf("alarm weekday mask is empty, alarm can never fire")
	}
	days := make([]string, 0, 7)
	for d := 0; d < 7; d++ {
		if mask&(1<<uint(d)) != 0 {
			days = append(days, fmt.Sprintf("%d", d))
		}
	}
	dow := days[0]
	for _, d := range days[1:] {
		dow += "," + d
	}
	return fmt.Sprintf("%d %d * * %s", t.Min, t.Hour, dow), nil
}

// NextOccurrences returns the next n UTC fire times of the alarm described
// by t (hour/minute only are significant) and mask, starting strictly after
// now. An all-zero mask is rejected with InvalidArgument since it can never
// fire.
func NextOccurrences(t model.RawTime, mask rtc.WeekdayMask, now time.Time, n int) ([]time.Time, error) {
	e, err := expr(t, mask)
	if err != nil {
		return nil, err
	}
	sched, err := parser.Parse(e)
	if err != nil {
		return nil, daemonerrors.InvalidArgumentf("invalid alarm schedule: %v", err)
	}
	out := make([]time.Time, 0, n)
	cursor := now.UTC()
	for i := 0; i < n; i++ {
		cursor = sched.Next(cursor)
		out = append(out, cursor)
	}
	return out, nil
}
