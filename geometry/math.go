// Package geometry holds the floating point helpers shared by the routing code.
package geometry

import "math"

// Epsilon is the tolerance used by every fuzzy comparison in the module.
// Any "did anything change" termination test must go through FuzzyEqual so
// that all loops agree on what equal means.
const Epsilon = 1e-9

// FuzzyEqual compares two values with a tolerance that is absolute near zero
// and relative for larger magnitudes.
func FuzzyEqual(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= Epsilon*scale
}

// FuzzyIsNull reports whether v is zero within the tolerance.
func FuzzyIsNull(v float64) bool {
	return math.Abs(v) <= Epsilon
}

// Snap rounds v to the nearest multiple of grid. A non-positive grid leaves v unchanged.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// IntersectAxisAligned returns the crossing point of a vertical segment
// (vx, vy1..vy2) and a horizontal segment (hx1..hx2, hy). Both ranges are
// closed; ok is false when they do not meet.
func IntersectAxisAligned(vx, vy1, vy2, hx1, hx2, hy float64) (x, y float64, ok bool) {
	minY, maxY := math.Min(vy1, vy2), math.Max(vy1, vy2)
	minX, maxX := math.Min(hx1, hx2), math.Max(hx1, hx2)
	if vx < minX || vx > maxX || hy < minY || hy > maxY {
		return 0, 0, false
	}
	return vx, hy, true
}
