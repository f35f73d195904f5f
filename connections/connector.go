package connections

import (
	"math"

	"orthoroute/core"
	"orthoroute/routing"
)

// RoutingMode selects how a connector's route is built.
type RoutingMode int

const (
	// RoutingNormal routes the connector orthogonally around its neighbors.
	RoutingNormal RoutingMode = iota
	// RoutingOffPage draws a straight line between the endpoints.
	RoutingOffPage
)

func (m RoutingMode) String() string {
	if m == RoutingOffPage {
		return "off-page"
	}
	return "normal"
}

// MoveRecord describes one connector's route change so that it can be undone.
type MoveRecord struct {
	Connector string
	Old       core.Route
	New       core.Route
	OldEnds   [2]string // Port IDs before the change
	NewEnds   [2]string // Port IDs after the change
}

// Rewired reports whether the change moved the connector to other ports.
func (r MoveRecord) Rewired() bool {
	return r.OldEnds != r.NewEnds
}

// Connector owns the route between two ports.
type Connector struct {
	ID   string
	Name string

	ep1, ep2 *Port
	route    core.Route
	mode     RoutingMode
	engine   *routing.Engine

	oldRoute core.Route
	oldEnds  [2]string
	updating bool
}

func newConnector(id string, ep1, ep2 *Port, engine *routing.Engine) *Connector {
	return &Connector{
		ID:     id,
		Name:   ep1.ID + "_to_" + ep2.ID,
		ep1:    ep1,
		ep2:    ep2,
		engine: engine,
	}
}

// Endpoint1 returns the port the route starts at.
func (c *Connector) Endpoint1() *Port { return c.ep1 }

// Endpoint2 returns the port the route ends at.
func (c *Connector) Endpoint2() *Port { return c.ep2 }

// Ends returns the IDs of both ports.
func (c *Connector) Ends() [2]string {
	return [2]string{c.ep1.ID, c.ep2.ID}
}

// Route returns a copy of the current route.
func (c *Connector) Route() core.Route {
	return c.route.Clone()
}

// Mode returns the routing mode.
func (c *Connector) Mode() RoutingMode {
	return c.mode
}

// Updating reports whether a BeginUpdatePosition is pending.
func (c *Connector) Updating() bool {
	return c.updating
}

// SetRoute replaces the route. Routes with fewer than two points are ignored.
// Free endpoints whose direction disagrees with the first or last segment are
// turned to match it.
func (c *Connector) SetRoute(route core.Route) {
	if len(route) < 2 {
		return
	}

	dir1 := route[1].Sub(route[0]).Normalized()
	updateEndpointDirection(c.ep1, dir1)

	dir2 := route[len(route)-2].Sub(route[len(route)-1]).Normalized()
	updateEndpointDirection(c.ep2, dir2)

	c.route = route.Clone()
}

func updateEndpointDirection(ep core.Endpoint, dir core.Point) {
	if ep == nil || ep.IsDirectionFixed() {
		return
	}
	if dir.Dot(ep.Direction()) < 0 {
		ep.SetDirection(dir)
	}
}

// Reroute builds a fresh route between the endpoints.
func (c *Connector) Reroute() error {
	if c.mode == RoutingOffPage {
		c.SetRoute(routing.StraightRoute(c.ep1, c.ep2))
		return nil
	}

	route, err := c.engine.CreateRoute(c.ep1, c.ep2)
	if len(route) >= 2 {
		c.SetRoute(route)
	}
	return err
}

// SetMode switches the routing mode and rebuilds the route when it changes.
func (c *Connector) SetMode(mode RoutingMode) error {
	if c.mode == mode {
		return nil
	}
	c.mode = mode
	return c.Reroute()
}

// UpdatePosition adapts the route to the current endpoint positions. On error
// the previous route is kept.
func (c *Connector) UpdatePosition() error {
	if c.mode == RoutingOffPage {
		c.SetRoute(routing.StraightRoute(c.ep1, c.ep2))
		return nil
	}

	route, err := c.engine.UpdatePosition(c.route, c.ep1, c.ep2)
	if err != nil {
		return err
	}
	c.SetRoute(route)
	return nil
}

// BeginUpdatePosition snapshots the route before an interactive change.
func (c *Connector) BeginUpdatePosition() {
	c.oldRoute = c.route.Clone()
	c.oldEnds = c.Ends()
	c.updating = true
}

// EndUpdatePosition finishes an interactive change: the route is simplified
// and moved clear of others. ok is true when the route differs from the
// snapshot taken by BeginUpdatePosition, in which case rec describes the
// change. A clearance error leaves the simplified route in place.
func (c *Connector) EndUpdatePosition(others []core.Route) (rec MoveRecord, ok bool, err error) {
	c.updating = false

	if c.mode == RoutingNormal {
		route := routing.SimplifyCopy(c.route)
		fixed, fixErr := c.engine.FixOverlap(route, others)
		if fixErr == nil {
			route = fixed
		}
		err = fixErr
		c.SetRoute(route)
	}

	if c.route.Equal(c.oldRoute) && c.Ends() == c.oldEnds {
		c.oldRoute = nil
		return MoveRecord{}, false, err
	}

	rec = MoveRecord{
		Connector: c.ID,
		Old:       c.oldRoute,
		New:       c.route.Clone(),
		OldEnds:   c.oldEnds,
		NewEnds:   c.Ends(),
	}
	c.oldRoute = nil
	return rec, true, err
}

// ConnectionPoint returns the point of the route closest to otherEnd where
// another line could attach: the midpoint of a segment, or one of the ends
// for off-page connectors and a zero otherEnd.
func (c *Connector) ConnectionPoint(otherEnd core.Point) core.Point {
	var candidates []core.Point
	if otherEnd.IsNull() || c.mode == RoutingOffPage {
		candidates = append(candidates, c.route.First(), c.route.Last())
	} else {
		for _, seg := range c.route.Segments() {
			candidates = append(candidates, seg.Midpoint())
		}
	}
	return closestPoint(candidates, otherEnd)
}

func closestPoint(points []core.Point, dest core.Point) core.Point {
	if len(points) == 0 {
		return core.Point{}
	}

	closest := points[0]
	shortest := math.Inf(1)
	for _, p := range points {
		if d := p.Sub(dest).Length(); d < shortest {
			shortest = d
			closest = p
		}
	}
	return closest
}

// SharesEndpoint reports whether the connectors meet at a common port.
func (c *Connector) SharesEndpoint(o *Connector) bool {
	return c.ep1 == o.ep1 || c.ep1 == o.ep2 || c.ep2 == o.ep1 || c.ep2 == o.ep2
}

// reconnect binds one end of the connector to p.
func (c *Connector) reconnect(end int, p *Port) {
	if end == 0 {
		c.ep1 = p
	} else {
		c.ep2 = p
	}
}
