package routing

import (
	"log/slog"

	"orthoroute/core"
)

// UpdatePosition adapts an existing route to the current positions of its
// endpoints. Small moves are absorbed into the route near the moved end so the
// path keeps its shape during a drag; anything that cannot be patched cleanly
// is rebuilt from scratch with CreateRoute.
//
// The input route is not modified.
func (e *Engine) UpdatePosition(route core.Route, ep1, ep2 core.Endpoint) (core.Route, error) {
	if len(route) < 2 {
		return e.resynthesize(ep1, ep2, "too few points")
	}

	startPos := ep1.Position()
	endPos := ep2.Position()
	startDir := ep1.Direction()
	endDir := ep2.Direction()
	startDelta := startPos.Sub(route.First())
	endDelta := endPos.Sub(route.Last())

	if startDelta.IsNull() && endDelta.IsNull() {
		return route.Clone(), nil
	}

	// Both ends moved together: shift the whole route.
	if startDelta.FuzzyEqual(endDelta) {
		return route.Clone().Translate(startDelta), nil
	}

	if len(route) > 4 && antiParallel(startDir, endDir) && startDir.Dot(endPos.Sub(startPos)) > 0 {
		return e.resynthesize(ep1, ep2, "doubled back")
	}
	if startDelta.Dot(startDir) < 0 || endDelta.Dot(endDir) < 0 {
		return e.resynthesize(ep1, ep2, "moved behind stub")
	}

	patched := route.Clone()
	if !startDelta.IsNull() {
		var ok bool
		if patched, ok = e.patchEnd(patched, startPos, startDir, false); !ok {
			return e.resynthesize(ep1, ep2, "start patch rejected")
		}
	}
	if !endDelta.IsNull() {
		var ok bool
		if patched, ok = e.patchEnd(patched, endPos, endDir, true); !ok {
			return e.resynthesize(ep1, ep2, "end patch rejected")
		}
	}

	for i := 1; i < len(patched)-1; i++ {
		patched[i] = patched[i].Snap(e.opts.GridSize)
	}

	return Simplify(patched), nil
}

// patchEnd re-anchors one end of the route at pos. The perpendicular part of
// the move is absorbed into the second point of the stub, the parallel part
// lengthens or shortens the stub. ok is false when the patched route would be
// invalid and must be rebuilt.
func (e *Engine) patchEnd(route core.Route, pos, dir core.Point, atEnd bool) (core.Route, bool) {
	n := len(route)
	index0, index1, index2, index3 := 0, 1, 2, 3
	if atEnd {
		index0, index1, index2, index3 = n-1, n-2, n-3, n-4
	}

	delta := pos.Sub(route[index0])
	seg1 := route[index1].Sub(route[index0]).Normalized()

	pathOk := false
	if n >= 4 && n < 7 && dir.Normalized().FuzzyEqual(seg1) {
		perp := delta.Sub(seg1.Scale(delta.Dot(seg1)))
		route[index1] = route[index1].Add(perp)

		// The moved point must stay in view.
		pathOk = route[index1].X >= e.opts.LeftMargin
	}

	route[index0] = pos
	newSeg1 := route[index1].Sub(route[index0])
	if newSeg1.Length() < e.opts.MinStartLength || !seg1.FuzzyEqual(newSeg1.Normalized()) {
		pathOk = false
	}

	// Parallel segments running back over the stub would overlap.
	if pathOk && n >= 4 {
		seg2 := route[index2].Sub(route[index1]).Normalized()
		seg3 := route[index3].Sub(route[index2]).Normalized()
		if seg1.Dot(seg2) < 0 || (seg2.IsNull() && seg1.Dot(seg3) < 0) {
			pathOk = false
		}
	}

	return route, pathOk
}

func (e *Engine) resynthesize(ep1, ep2 core.Endpoint, reason string) (core.Route, error) {
	e.logger.Debug("recreating route",
		slog.String("reason", reason),
		slog.String("from", ep1.Position().String()),
		slog.String("to", ep2.Position().String()))
	return e.CreateRoute(ep1, ep2)
}

// StraightRoute is the two point route used by off-page connectors.
func StraightRoute(ep1, ep2 core.Endpoint) core.Route {
	return core.Route{ep1.Position(), ep2.Position()}
}

func antiParallel(a, b core.Point) bool {
	dot := a.Normalized().Dot(b.Normalized())
	return dot < -1+1e-6
}
