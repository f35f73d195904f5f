package routing

import "orthoroute/core"

// Simplify removes redundant points from the route in place and returns the
// shortened slice. A point is redundant when the segment after it is the
// projection of itself onto the segment before it, which covers collinear
// runs, backtracking spikes and zero-length segments. The first and last
// points are never removed. Routes with fewer than 3 points are returned as is.
func Simplify(route core.Route) core.Route {
	if len(route) < 3 {
		return route
	}

	for i := 0; i < len(route)-2; {
		delta1 := route[i+1].Sub(route[i])
		delta2 := route[i+2].Sub(route[i+1])

		if redundant(delta1, delta2) {
			route = append(route[:i+1], route[i+2:]...)
			// The removal may have made the previous triple collinear.
			if i > 0 {
				i--
			}
			continue
		}
		i++
	}
	return route
}

// redundant reports whether the middle point of a triple with the given
// consecutive deltas can be dropped.
func redundant(delta1, delta2 core.Point) bool {
	if delta1.IsNull() || delta2.IsNull() {
		return true
	}
	dir := delta1.Normalized()
	proj := dir.Scale(delta2.Dot(dir))
	return proj.FuzzyEqual(delta2)
}

// SimplifyCopy is Simplify on a copy of the route.
func SimplifyCopy(route core.Route) core.Route {
	return Simplify(route.Clone())
}
