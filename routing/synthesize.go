package routing

import (
	"fmt"
	"log/slog"
	"math"

	"orthoroute/core"
)

// Synthesize builds an orthogonal route from p1, leaving in dir1, to p2, whose
// endpoint faces outwards in dir2 (so the route arrives from -dir2).
//
// The route is built by greedy forward stepping towards the point in front of
// p2 at the mandatory stub distance. Each step either draws the starting stub,
// turns away when the target lies behind the stub, or advances by the whole
// perpendicular component of the remaining distance. The result is simplified.
// When the step cap is reached the partial route is returned together with
// ErrNoConvergence.
func (e *Engine) Synthesize(p1, dir1, p2, dir2 core.Point) (core.Route, error) {
	route := core.Route{p1}
	if p1.FuzzyEqual(p2) {
		return route, nil
	}

	minStart := e.opts.MinStartLength
	minLength := e.opts.MinLength

	start := p1
	cur := p1
	curDir := dir1.Normalized()
	endDir := dir2.Normalized()
	target := p2.Add(endDir.Scale(minStart))

	for steps := 0; !cur.FuzzyEqual(target); steps++ {
		if steps >= e.opts.MaxSteps {
			e.logger.Warn("route synthesis hit step cap",
				slog.String("from", p1.String()),
				slog.String("to", p2.String()),
				slog.Int("steps", steps))
			return Simplify(route), fmt.Errorf("synthesize %v -> %v: %w", p1, p2, ErrNoConvergence)
		}

		delta := target.Sub(cur)
		dot := delta.Dot(curDir)
		endDot := delta.Dot(endDir)
		proj := curDir.Scale(dot)
		perp := delta.Sub(proj)

		if dot > 0 && delta.FuzzyEqual(proj) && endDot <= 0 {
			// Straight shot to the target.
			cur = target
		} else {
			switch {
			case cur.FuzzyEqual(start):
				if dot > 0 && !(endDot > 0 && delta.FuzzyEqual(endDir.Scale(endDot))) {
					cur = cur.Add(curDir.Scale(math.Max(minStart, proj.Length())))
				} else {
					cur = cur.Add(curDir.Scale(minStart))
				}

			case dot < 0 && cur.FuzzyEqual(start.Add(curDir.Scale(minStart))):
				// Target is behind the starting stub: turn away from it.
				length := math.Max(perp.Length(), minLength)
				dir := perp.Normalized()
				if dir.IsNull() {
					dir = curDir.Rotate90()
				}
				cur = cur.Add(dir.Scale(length))
				curDir = dir

			default:
				if !perp.IsNull() {
					cur = cur.Add(perp)
					curDir = perp.Normalized()
				} else {
					curDir = curDir.Rotate90()
					cur = cur.Add(curDir.Scale(minLength))
				}
			}

			// Never stop right behind the target on its stub line; the final
			// segment would fold back over the stub.
			newDelta := target.Sub(cur)
			newEndDot := newDelta.Dot(endDir)
			if newEndDot > 0 && newDelta.FuzzyEqual(endDir.Scale(newEndDot)) {
				cur = cur.Add(curDir.Scale(minLength))
			}
		}

		route = append(route, cur)
	}

	if !target.FuzzyEqual(p2) {
		route = append(route, p2)
	}

	return Simplify(route), nil
}

// CreateRoute synthesizes a route between two endpoints. Free endpoints are
// first turned horizontally away from each other based on their relative X.
func (e *Engine) CreateRoute(ep1, ep2 core.Endpoint) (core.Route, error) {
	OrientFreeEndpoints(ep1, ep2)
	return e.Synthesize(ep1.Position(), ep1.Direction(), ep2.Position(), ep2.Direction())
}

// OrientFreeEndpoints points free endpoints towards each other horizontally.
func OrientFreeEndpoints(ep1, ep2 core.Endpoint) {
	start := ep1.Position()
	end := ep2.Position()
	leftToRight := start.X <= end.X

	if !ep1.IsDirectionFixed() {
		if leftToRight {
			ep1.SetDirection(core.East.Vector())
		} else {
			ep1.SetDirection(core.West.Vector())
		}
	}

	if !ep2.IsDirectionFixed() {
		if leftToRight {
			ep2.SetDirection(core.West.Vector())
		} else {
			ep2.SetDirection(core.East.Vector())
		}
	}
}
