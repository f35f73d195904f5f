// Package validation checks committed connector routes against the routing
// invariants: orthogonal, simplified, pinned to their endpoints, leaving and
// arriving along the endpoint directions and clear of unrelated routes.
package validation

import (
	"fmt"

	"orthoroute/connections"
	"orthoroute/core"
	"orthoroute/geometry"
	"orthoroute/routing"
)

// RouteValidator validates connector routes.
type RouteValidator struct {
	// Track validation errors
	errors []ValidationError
	// Options
	opts           routing.Options
	checkClearance bool // Report segments running along unrelated routes
	checkStubs     bool // Enforce minimum stub length and direction
}

// ValidationError represents a validation error with location information.
type ValidationError struct {
	Connector string
	Segment   int // Segment index, or -1 for whole-route errors
	Point     core.Point
	Message   string
}

// NewRouteValidator creates a new validator with default settings.
func NewRouteValidator(opts routing.Options) *RouteValidator {
	return &RouteValidator{
		opts:           opts,
		checkClearance: true,
		checkStubs:     true,
	}
}

// SetClearanceCheck enables or disables the clearance check.
func (v *RouteValidator) SetClearanceCheck(enabled bool) {
	v.checkClearance = enabled
}

// SetStubCheck enables or disables the stub length and direction checks.
func (v *RouteValidator) SetStubCheck(enabled bool) {
	v.checkStubs = enabled
}

// ValidateRoute checks one route against its endpoints. Endpoints may be nil
// when only the shape is of interest.
func (v *RouteValidator) ValidateRoute(id string, route core.Route, ep1, ep2 core.Endpoint) []ValidationError {
	v.errors = nil
	v.validateRoute(id, route, ep1, ep2, false)
	return v.errors
}

// ValidateCanvas checks every connector of the canvas.
func (v *RouteValidator) ValidateCanvas(canvas *connections.Canvas) []ValidationError {
	v.errors = nil

	for _, conn := range canvas.Connectors() {
		route := conn.Route()
		offPage := conn.Mode() == connections.RoutingOffPage
		v.validateRoute(conn.ID, route, conn.Endpoint1(), conn.Endpoint2(), offPage)

		if v.checkClearance && !offPage {
			v.validateClearance(conn.ID, route, canvas.OtherRoutes(conn))
		}
	}
	return v.errors
}

func (v *RouteValidator) validateRoute(id string, route core.Route, ep1, ep2 core.Endpoint, offPage bool) {
	if len(route) < 2 {
		v.addError(id, -1, route.First(), "route has %d points, want at least 2", len(route))
		return
	}

	if ep1 != nil && !route.First().FuzzyEqual(ep1.Position()) {
		v.addError(id, 0, route.First(), "route starts at %v, endpoint is at %v", route.First(), ep1.Position())
	}
	if ep2 != nil && !route.Last().FuzzyEqual(ep2.Position()) {
		v.addError(id, len(route)-2, route.Last(), "route ends at %v, endpoint is at %v", route.Last(), ep2.Position())
	}

	if offPage {
		if len(route) != 2 {
			v.addError(id, -1, route.First(), "off-page route has %d points, want 2", len(route))
		}
		return
	}

	for i, seg := range route.Segments() {
		sameX := geometry.FuzzyEqual(seg.From.X, seg.To.X)
		sameY := geometry.FuzzyEqual(seg.From.Y, seg.To.Y)
		switch {
		case sameX && sameY:
			v.addError(id, i, seg.From, "duplicate point")
		case !sameX && !sameY:
			v.addError(id, i, seg.From, "segment %v-%v is not axis aligned", seg.From, seg.To)
		}
	}

	for i := 1; i < len(route)-1; i++ {
		d1 := route[i].Sub(route[i-1])
		d2 := route[i+1].Sub(route[i])
		if d1.IsNull() || d2.IsNull() {
			continue
		}
		if geometry.FuzzyEqual(d1.Normalized().Dot(d2.Normalized()), 1) {
			v.addError(id, i, route[i], "redundant collinear point")
		}
	}

	if v.checkStubs && len(route) > 2 {
		v.validateStub(id, 0, route[1].Sub(route[0]), ep1, route[0])
		n := len(route)
		v.validateStub(id, n-2, route[n-2].Sub(route[n-1]), ep2, route[n-1])
	}
}

// validateStub checks that the terminal segment leaves its endpoint along the
// endpoint direction and is long enough.
func (v *RouteValidator) validateStub(id string, seg int, stub core.Point, ep core.Endpoint, at core.Point) {
	if stub.Length() < v.opts.MinStartLength-geometry.Epsilon {
		v.addError(id, seg, at, "stub length %g is below %g", stub.Length(), v.opts.MinStartLength)
	}
	if ep == nil || stub.IsNull() {
		return
	}
	if dir := ep.Direction(); !stub.Normalized().FuzzyEqual(dir.Normalized()) {
		v.addError(id, seg, at, "stub runs %v, endpoint faces %v",
			core.DirectionOf(stub), core.DirectionOf(dir))
	}
}

func (v *RouteValidator) validateClearance(id string, route core.Route, others []core.Route) {
	idx := routing.NewSegmentIndex(v.opts.Clearance)
	for _, other := range others {
		idx.AddRoute(other)
	}

	for i := 1; i < len(route)-2; i++ {
		b := core.NewBounds(route[i], route[i+1])
		switch {
		case b.IsVertical() && !b.IsHorizontal():
			if idx.FindVerticalOverlap(b) != -1 {
				v.addError(id, i, route[i], "vertical segment at x=%g overlaps another route", b.MinX)
			}
		case b.IsHorizontal() && !b.IsVertical():
			if idx.FindHorizontalOverlap(b) != -1 {
				v.addError(id, i, route[i], "horizontal segment at y=%g overlaps another route", b.MinY)
			}
		}
	}
}

// addError records a validation error.
func (v *RouteValidator) addError(id string, seg int, at core.Point, format string, args ...interface{}) {
	v.errors = append(v.errors, ValidationError{
		Connector: id,
		Segment:   seg,
		Point:     at,
		Message:   fmt.Sprintf(format, args...),
	})
}

// String returns a formatted error message.
func (e ValidationError) String() string {
	if e.Segment < 0 {
		return fmt.Sprintf("%s at %v: %s", e.Connector, e.Point, e.Message)
	}
	return fmt.Sprintf("%s segment %d at %v: %s", e.Connector, e.Segment, e.Point, e.Message)
}

func (e ValidationError) Error() string {
	return e.String()
}
