// Package chargewindow implements the charge hysteresis controller: it
// auto-enables charging below a low-water mark and disables it after the
// battery has sat at or above the high-water mark for a hold-off period.
package chargewindow

import "time"

// Controller tracks the full_since state across ticks. It is driven once
// per second by the orchestrator and requires the board to support
// toggling charge (model LED count == 2).
type Controller struct {
	fullSince time.Time
}

// Range is the [Begin,End] hysteresis band in battery percent.
type Range struct {
	Begin float64
	End   float64
}

// Decision is what the controller wants to happen to allow-charging this
// tick; Unchanged means leave the current state alone.
type Decision int

const (
	Unchanged Decision = iota
	Enable
	Disable
)

const fullThreshold = 99.9

// Step evaluates one controller tick given the current level, allow-charging
// state, the configured range, and the full-charge hold-off duration.
func (c *Controller) Step(now time.Time, level float64, allowCharging bool, r Range, hold time.Duration) Decision {
	if level < r.Begin && !allowCharging {
		c.fullSince = time.Time{}
		return Enable
	}
	if (level >= r.End && allowCharging) || level >= fullThreshold {
		if c.fullSince.IsZero() {
			c.fullSince = now
			return Unchanged
		}
		if now.Sub(c.fullSince) > hold {
			return Disable
		}
		return Unchanged
	}
	return Unchanged
}

// FullSince returns the instant the controller first observed the window
// upper bound reached, or the zero value if not currently tracking one.
func (c *Controller) FullSince() time.Time { return c.fullSince }

// Reset clears the full-since tracking, e.g. after an explicit manual
// charging toggle outside the controller's own decisions.
func (c *Controller) Reset() { c.fullSince = time.Time{} }
