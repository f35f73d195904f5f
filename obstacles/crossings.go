package obstacles

import (
	"math"

	"orthoroute/core"
	"orthoroute/geometry"
)

// FindCrossings returns every point where a vertical segment of one wire
// crosses a horizontal segment of another. Wires that share a port meet in a
// junction; other crossings are undercrossings of the vertical wire, with a
// gap of up to half a grid step on each side of the crossing.
func FindCrossings(wires []Wire, grid float64) []Crossing {
	idx := newSpatialIndex()
	for w, wire := range wires {
		for i, seg := range wire.Route.Segments() {
			if isHorizontal(seg) {
				idx.insertSegment(w, i, seg)
			}
		}
	}

	var crossings []Crossing
	for w, wire := range wires {
		for _, seg := range wire.Route.Segments() {
			if !isVertical(seg) {
				continue
			}

			for _, hit := range idx.query(seg.Bounds()) {
				if hit.wire == w {
					continue
				}
				h := hit.segment
				x, y, ok := geometry.IntersectAxisAligned(seg.From.X, seg.From.Y, seg.To.Y, h.From.X, h.To.X, h.From.Y)
				if !ok {
					continue
				}

				other := wires[hit.wire]
				c := Crossing{
					Kind:  Undercrossing,
					Point: core.Pt(x, y),
					Under: wire.ID,
					Over:  other.ID,
				}
				if wire.SharesEnd(other) {
					c.Kind = Junction
				} else {
					c.Gap = gapAround(seg, c.Point, grid/2)
				}
				crossings = append(crossings, c)
			}
		}
	}
	return crossings
}

// gapAround returns the part of seg within reach of pt, clipped to seg.
func gapAround(seg core.Segment, pt core.Point, reach float64) core.Segment {
	dir := seg.Vector().Normalized()
	before := pt.Sub(seg.From).Length()
	after := pt.Sub(seg.To).Length()
	return core.Segment{
		From: pt.Sub(dir.Scale(math.Min(before, reach))),
		To:   pt.Add(dir.Scale(math.Min(after, reach))),
	}
}

func isVertical(seg core.Segment) bool {
	return geometry.FuzzyEqual(seg.From.X, seg.To.X) && !geometry.FuzzyEqual(seg.From.Y, seg.To.Y)
}

func isHorizontal(seg core.Segment) bool {
	return geometry.FuzzyEqual(seg.From.Y, seg.To.Y) && !geometry.FuzzyEqual(seg.From.X, seg.To.X)
}
