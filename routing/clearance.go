package routing

import (
	"fmt"
	"log/slog"
	"math"

	"orthoroute/core"
	"orthoroute/geometry"
)

// FixOverlap moves interior segments of route in grid steps until none of
// them runs along a same-orientation segment of the other routes, or until no
// segment can be improved any further. The route's own first and last
// segments are fixed obstacles too. The end points never move.
//
// Routes of connectors sharing an endpoint with this one are allowed to touch
// and must be left out of others by the caller. The input route is not
// modified. Segments that cannot be freed within their search window are left
// where they are.
func (e *Engine) FixOverlap(route core.Route, others []core.Route) (core.Route, error) {
	out := route.Clone()
	n := len(out)
	if n < 4 {
		return out, nil
	}

	idx := NewSegmentIndex(e.opts.Clearance)
	for _, other := range others {
		idx.AddRoute(other)
	}
	idx.AddSegment(out[0], out[1])
	idx.AddSegment(out[n-2], out[n-1])

	for pass := 0; ; pass++ {
		if pass >= e.opts.MaxPasses {
			e.logger.Warn("clearance fix hit pass cap",
				slog.Int("passes", pass),
				slog.String("route", out.String()))
			return out, fmt.Errorf("fix overlap: %w", ErrNoConvergence)
		}

		changed := false
		for i := 1; i < n-2; i++ {
			switch {
			case geometry.FuzzyEqual(out[i].X, out[i+1].X):
				if e.fixVerticalSegmentClearance(out, idx, i) {
					changed = true
				}
			case geometry.FuzzyEqual(out[i].Y, out[i+1].Y):
				if e.fixHorizontalSegmentClearance(out, idx, i) {
					changed = true
				}
			}
		}

		if !changed {
			return out, nil
		}
	}
}

// SegmentLimitsX returns the X window a vertical interior segment i may move
// in: its neighbors must keep at least the stub length and must not flip, and
// the segment stays right of the left margin.
func (e *Engine) SegmentLimitsX(route core.Route, i int) (minX, maxX float64) {
	minX = e.opts.LeftMargin
	maxX = e.opts.MaxCoordinate

	prev := route[i-1].X
	cur := route[i].X
	next := route[i+2].X

	if cur > next {
		minX = math.Max(minX, next+e.opts.MinStartLength)
	} else {
		maxX = math.Min(maxX, next-e.opts.MinStartLength)
	}

	if cur > prev {
		minX = math.Max(minX, prev+e.opts.MinStartLength)
	} else {
		maxX = math.Min(maxX, prev-e.opts.MinStartLength)
	}

	return minX, maxX
}

// SegmentLimitsY returns the Y window a horizontal interior segment i may
// move in. Unlike the vertical case it is a plain distance window below the
// top margin.
func (e *Engine) SegmentLimitsY(route core.Route, i int) (minY, maxY float64) {
	y := route[i].Y
	minY = math.Max(e.opts.TopMargin, y-e.opts.VerticalWindow)
	maxY = y + e.opts.VerticalWindow
	return minY, maxY
}

func (e *Engine) fixVerticalSegmentClearance(route core.Route, idx *SegmentIndex, i int) bool {
	bounds := core.NewBounds(route[i], route[i+1])
	if idx.FindVerticalOverlap(bounds) == -1 {
		return false
	}

	minX, maxX := e.SegmentLimitsX(route, i)
	currentX := bounds.MinX
	newX, found := searchFree(currentX, minX, maxX, e.opts.GridSize, func(x float64) bool {
		candidate := core.Bounds{MinX: x, MinY: bounds.MinY, MaxX: x, MaxY: bounds.MaxY}
		return idx.FindVerticalOverlap(candidate) == -1
	})
	if !found || newX < minX || newX > maxX || geometry.FuzzyEqual(newX, currentX) {
		return false
	}

	e.logger.Debug("moved vertical segment",
		slog.Int("segment", i),
		slog.Float64("from", currentX),
		slog.Float64("to", newX))

	route[i].X = newX
	route[i+1].X = newX
	return true
}

func (e *Engine) fixHorizontalSegmentClearance(route core.Route, idx *SegmentIndex, i int) bool {
	bounds := core.NewBounds(route[i], route[i+1])
	if idx.FindHorizontalOverlap(bounds) == -1 {
		return false
	}

	minY, maxY := e.SegmentLimitsY(route, i)
	currentY := bounds.MinY
	newY, found := searchFree(currentY, minY, maxY, e.opts.GridSize, func(y float64) bool {
		if !e.keepsNeighborsY(route, i, y) {
			return false
		}
		candidate := core.Bounds{MinX: bounds.MinX, MinY: y, MaxX: bounds.MaxX, MaxY: y}
		return idx.FindHorizontalOverlap(candidate) == -1
	})
	if !found || newY < minY || newY > maxY || geometry.FuzzyEqual(newY, currentY) {
		return false
	}

	e.logger.Debug("moved horizontal segment",
		slog.Int("segment", i),
		slog.Float64("from", currentY),
		slog.Float64("to", newY))

	route[i].Y = newY
	route[i+1].Y = newY
	return true
}

// keepsNeighborsY reports whether horizontal segment i can sit at y without
// shortening either vertical neighbor below its minimum length or flipping
// its direction. Neighbors that are the route's stubs need MinStartLength.
func (e *Engine) keepsNeighborsY(route core.Route, i int, y float64) bool {
	n := len(route)
	cur := route[i].Y

	prevMin := e.opts.MinLength
	if i-1 == 0 {
		prevMin = e.opts.MinStartLength
	}
	if !keepsLength(route[i-1].Y, cur, y, prevMin) {
		return false
	}

	nextMin := e.opts.MinLength
	if i+1 == n-2 {
		nextMin = e.opts.MinStartLength
	}
	return keepsLength(route[i+2].Y, cur, y, nextMin)
}

// keepsLength reports whether moving the shared end of a segment from cur to
// moved, with its other end fixed at anchor, keeps the segment's direction
// and at least minLen of length.
func keepsLength(anchor, cur, moved, minLen float64) bool {
	before := cur - anchor
	if geometry.FuzzyIsNull(before) {
		return false
	}
	after := moved - anchor
	if math.Signbit(before) != math.Signbit(after) {
		return false
	}
	return math.Abs(after) >= minLen
}

// searchFree walks outwards from cur in step increments, trying the lower
// side before the upper side at each distance, and returns the first
// coordinate inside [lo, hi] that free accepts.
func searchFree(cur, lo, hi, step float64, free func(float64) bool) (float64, bool) {
	for move := step; lo <= cur-move || cur+move <= hi; move += step {
		if down := cur - move; lo <= down && free(down) {
			return down, true
		}
		if up := cur + move; up <= hi && free(up) {
			return up, true
		}
	}
	return cur, false
}
