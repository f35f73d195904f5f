package routing

import (
	"math"

	"orthoroute/core"
	"orthoroute/geometry"
)

// SegmentAt returns the index of the segment of route that runs through pos,
// or -1. The first and last segments are skipped when lockFirst/lockLast are
// set, since stubs bound to endpoints cannot be dragged.
func SegmentAt(route core.Route, pos core.Point, lockFirst, lockLast bool) int {
	selected := -1
	for i := 0; i < len(route)-1; i++ {
		if (i == 0 && lockFirst) || (i == len(route)-2 && lockLast) {
			continue
		}

		a, b := route[i], route[i+1]
		onVertical := geometry.FuzzyEqual(a.X, pos.X) && geometry.FuzzyEqual(b.X, pos.X) &&
			pos.Y >= math.Min(a.Y, b.Y) && pos.Y <= math.Max(a.Y, b.Y)
		onHorizontal := geometry.FuzzyEqual(a.Y, pos.Y) && geometry.FuzzyEqual(b.Y, pos.Y) &&
			pos.X >= math.Min(a.X, b.X) && pos.X <= math.Max(a.X, b.X)
		if onVertical || onHorizontal {
			selected = i
		}
	}
	return selected
}

// MoveSegment drags the interior segment i towards pos and returns the new
// route. Vertical segments follow pos.X with the move clamped so that both
// neighboring segments keep the stub length; horizontal segments jump to
// pos.Y only when both neighbors stay at least the minimum length long.
// The input route is not modified.
func (e *Engine) MoveSegment(route core.Route, i int, pos core.Point) core.Route {
	out := route.Clone()
	if i < 1 || i+2 >= len(out) {
		return out
	}
	pos = pos.Snap(e.opts.GridSize)
	minStart := e.opts.MinStartLength

	switch {
	case geometry.FuzzyEqual(out[i].X, out[i+1].X):
		delta := pos.X - out[i].X
		prev := out[i-1].X
		cur := out[i].X
		next := out[i+2].X

		if cur > next {
			delta = math.Max(delta, minStart+next-cur)
		} else {
			delta = math.Min(delta, -minStart+next-cur)
		}
		if cur > prev {
			delta = math.Max(delta, minStart+prev-cur)
		} else {
			delta = math.Min(delta, -minStart+prev-cur)
		}

		out[i].X += delta
		out[i+1].X += delta

	case geometry.FuzzyEqual(out[i].Y, out[i+1].Y):
		prev := out[i-1].Y
		next := out[i+2].Y
		if math.Abs(pos.Y-prev) >= e.opts.MinLength && math.Abs(pos.Y-next) >= e.opts.MinLength {
			out[i].Y = pos.Y
			out[i+1].Y = pos.Y
		}
	}
	return out
}

// MoveEnd drags the terminal point i (first or last) of an unbound route to
// pos and keeps the adjacent segment orthogonal by moving its far point along
// the shared axis.
func (e *Engine) MoveEnd(route core.Route, i int, pos core.Point) core.Route {
	out := route.Clone()
	if len(out) == 0 || (i != 0 && i != len(out)-1) {
		return out
	}
	pos = pos.Snap(e.opts.GridSize)
	out[i] = pos

	if len(out) > 2 {
		adjacent, next := i+1, i+2
		if i == len(out)-1 {
			adjacent, next = i-1, i-2
		}

		if geometry.FuzzyEqual(out[adjacent].X, out[next].X) {
			out[adjacent].Y = pos.Y
		} else {
			out[adjacent].X = pos.X
		}
	}
	return out
}
