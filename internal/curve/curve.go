// Package curve evaluates a piecewise-linear battery voltage-to-percent
// mapping against a per-model curve table.
package curve

import (
	"fmt"
	"sort"
)

// Point is one (voltage, percent) sample of a discharge curve.
type Point struct {
	Voltage float64
	Percent float64
}

// Curve is a battery discharge curve, sorted descending by voltage.
type Curve []Point

// Sorted returns a copy of points sorted descending by voltage, the
// canonical storage order curves are evaluated and validated in.
func Sorted(points []Point) Curve {
	c := make(Curve, len(points))
	copy(c, points)
	sort.Slice(c, func(i, j int) bool { return c[i].Voltage > c[j].Voltage })
	return c
}

// Validate enforces the invariant that a curve is strictly increasing on
// both voltage and percent when read in ascending-voltage order: no
// duplicate or non-monotone points are permitted.
func Validate(c Curve) error {
	if len(c) < 2 {
		return fmt.Errorf("curve must have at least 2 points")
	}
	asc := make(Curve, len(c))
	copy(asc, c)
	sort.Slice(asc, func(i, j int) bool { return asc[i].Voltage < asc[j].Voltage })
	for i := 1; i < len(asc); i++ {
		if asc[i].Voltage <= asc[i-1].Voltage {
			return fmt.Errorf("curve voltage not strictly increasing at index %d: %v <= %v", i, asc[i].Voltage, asc[i-1].Voltage)
		}
		if asc[i].Percent <= asc[i-1].Percent {
			return fmt.Errorf("curve percent not strictly increasing at index %d: %v <= %v", i, asc[i].Percent, asc[i-1].Percent)
		}
	}
	return nil
}

// Level maps a voltage to a battery percentage through the curve. The curve
// must already be sorted descending by voltage (use Sorted). Above the top
// entry, Level returns the top entry's percent; below the last entry it
// returns 0; otherwise it linearly interpolates between the bracketing
// points.
func Level(v float64, c Curve) float64 {
	if len(c) == 0 {
		return 0
	}
	for i, p := range c {
		if v >= p.Voltage {
			if i == 0 {
				return p.Percent
			}
			prev := c[i-1]
			if prev.Voltage == p.Voltage {
				return p.Percent
			}
			frac := (v - p.Voltage) / (prev.Voltage - p.Voltage)
			return p.Percent + frac*(prev.Percent-p.Percent)
		}
	}
	return 0
}

// DefaultFamilyA is the factory-default discharge curve for the legacy
// family-A PMIC (shared by the 4-LED and 2-LED variants).
var DefaultFamilyA = Sorted([]Point{
	{4.16, 100},
	{4.05, 95},
	{4.00, 80},
	{3.92, 65},
	{3.86, 40},
	{3.79, 25.5},
	{3.66, 10},
	{3.52, 6.5},
	{3.49, 3.2},
	{3.10, 0},
})

// DefaultFamilyBC is the factory-default discharge curve shared by the
// legacy family-B ("Pro") and newer family-C PMICs.
var DefaultFamilyBC = Sorted([]Point{
	{4.16, 100},
	{4.05, 95},
	{3.90, 88},
	{3.80, 77},
	{3.70, 65},
	{3.62, 55},
	{3.58, 49},
	{3.49, 25.6},
	{3.32, 4.5},
	{3.10, 0},
})
