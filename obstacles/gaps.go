package obstacles

import (
	"math"

	"orthoroute/core"
	"orthoroute/geometry"
)

// FindComponentGaps returns the parts of wires hidden where they cross the
// edges of a component. A segment running right across a component is hidden
// over its whole span inside the rectangle. Crossings at the wire's own end
// points, where it attaches to a port, are not gaps.
func FindComponentGaps(wires []Wire, boxes []Box, grid float64) []LineGap {
	idx := newSpatialIndex()
	for b, box := range boxes {
		idx.insertBox(b, box.Rect)
	}

	var gaps []LineGap
	for _, wire := range wires {
		first, last := wire.Route.First(), wire.Route.Last()
		isEnd := func(p core.Point) bool {
			return p.FuzzyEqual(first) || p.FuzzyEqual(last)
		}

		for _, seg := range wire.Route.Segments() {
			for _, hit := range idx.query(seg.Bounds()) {
				if hit.box < 0 {
					continue
				}
				box := boxes[hit.box]
				for _, gap := range segmentGaps(seg, box.Rect, grid, isEnd) {
					gaps = append(gaps, LineGap{Wire: wire.ID, Component: box.ID, Gap: gap})
				}
			}
		}
	}
	return gaps
}

// segmentGaps crosses one route segment with the edges of rect.
func segmentGaps(seg core.Segment, rect core.Bounds, grid float64, isEnd func(core.Point) bool) []core.Segment {
	var gaps []core.Segment

	switch {
	case isHorizontal(seg):
		y := seg.From.Y
		left, okLeft := crossing(rect.MinX, rect.MinY, rect.MaxY, seg.From.X, seg.To.X, y, isEnd)
		right, okRight := crossing(rect.MaxX, rect.MinY, rect.MaxY, seg.From.X, seg.To.X, y, isEnd)
		if okLeft {
			gaps = append(gaps, lineGap(seg, left, grid))
		}
		if okRight {
			gaps = append(gaps, lineGap(seg, right, grid))
		}
		if okLeft && okRight {
			gaps = append(gaps, core.Segment{From: left, To: right})
		}

	case isVertical(seg):
		x := seg.From.X
		top, okTop := crossing(x, seg.From.Y, seg.To.Y, rect.MinX, rect.MaxX, rect.MinY, isEnd)
		bottom, okBottom := crossing(x, seg.From.Y, seg.To.Y, rect.MinX, rect.MaxX, rect.MaxY, isEnd)
		if okTop {
			gaps = append(gaps, lineGap(seg, top, grid))
		}
		if okBottom {
			gaps = append(gaps, lineGap(seg, bottom, grid))
		}
		if okTop && okBottom {
			gaps = append(gaps, core.Segment{From: top, To: bottom})
		}
	}
	return gaps
}

func crossing(vx, vy1, vy2, hx1, hx2, hy float64, isEnd func(core.Point) bool) (core.Point, bool) {
	x, y, ok := geometry.IntersectAxisAligned(vx, vy1, vy2, hx1, hx2, hy)
	if !ok {
		return core.Point{}, false
	}
	p := core.Pt(x, y)
	return p, !isEnd(p)
}

// lineGap is the short piece of seg hidden around an edge crossing at pt.
func lineGap(seg core.Segment, pt core.Point, grid float64) core.Segment {
	dir := seg.Vector().Normalized()
	before := pt.Sub(seg.From).Length()
	after := pt.Sub(seg.To).Length()
	return core.Segment{
		From: pt.Add(dir.Scale(math.Min(after, grid/2))),
		To:   pt.Sub(dir.Scale(math.Min(before, grid) / 2)),
	}
}
