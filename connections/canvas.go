package connections

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"orthoroute/core"
	"orthoroute/geometry"
	"orthoroute/routing"
)

var (
	ErrUnknownEndpoint  = errors.New("unknown endpoint")
	ErrUnknownConnector = errors.New("unknown connector")
	ErrUnknownComponent = errors.New("unknown component")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrNoDrag           = errors.New("no matching drag in progress")
	ErrDragInProgress   = errors.New("drag already in progress")
	ErrNothingToDrag    = errors.New("nothing to drag at position")
)

// Canvas owns the components, ports and connectors of one diagram and routes
// connectors as their endpoints move. All connectors share the canvas engine.
type Canvas struct {
	mu     sync.RWMutex
	engine *routing.Engine
	logger *slog.Logger

	components map[string]*Component
	ports      map[string]*Port
	connectors map[string]*Connector

	componentOrder []string
	portOrder      []string
	connectorOrder []string

	drag *dragState
}

type dragState struct {
	kind     DragKind
	id       string
	affected []*Connector
	segment  int
	end      int // 0 for the first point, 1 for the last
}

// CanvasOption configures a Canvas.
type CanvasOption func(*Canvas)

// WithLogger sets the logger for routing failures and drag decisions.
func WithLogger(logger *slog.Logger) CanvasOption {
	return func(c *Canvas) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCanvas creates an empty canvas routing with engine.
func NewCanvas(engine *routing.Engine, opts ...CanvasOption) *Canvas {
	c := &Canvas{
		engine:     engine,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		components: make(map[string]*Component),
		ports:      make(map[string]*Port),
		connectors: make(map[string]*Connector),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the routing engine of the canvas.
func (c *Canvas) Engine() *routing.Engine {
	return c.engine
}

// AddComponent registers a component together with its ports.
func (c *Canvas) AddComponent(comp *Component) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.components[comp.ID]; exists {
		return fmt.Errorf("component %q: %w", comp.ID, ErrDuplicateID)
	}
	for _, p := range comp.Ports {
		if _, exists := c.ports[p.ID]; exists {
			return fmt.Errorf("port %q: %w", p.ID, ErrDuplicateID)
		}
	}

	c.components[comp.ID] = comp
	c.componentOrder = append(c.componentOrder, comp.ID)
	for _, p := range comp.Ports {
		c.ports[p.ID] = p
		c.portOrder = append(c.portOrder, p.ID)
	}
	return nil
}

// AddPort registers a free-standing port.
func (c *Canvas) AddPort(p *Port) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.ports[p.ID]; exists {
		return fmt.Errorf("port %q: %w", p.ID, ErrDuplicateID)
	}
	c.ports[p.ID] = p
	c.portOrder = append(c.portOrder, p.ID)
	return nil
}

// Component looks up a component by ID.
func (c *Canvas) Component(id string) (*Component, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.components[id]
	return comp, ok
}

// Port looks up a port by ID.
func (c *Canvas) Port(id string) (*Port, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.ports[id]
	return p, ok
}

// Connector looks up a connector by ID.
func (c *Canvas) Connector(id string) (*Connector, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.connectors[id]
	return conn, ok
}

// Components returns the components in insertion order.
func (c *Canvas) Components() []*Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*Component, 0, len(c.componentOrder))
	for _, id := range c.componentOrder {
		result = append(result, c.components[id])
	}
	return result
}

// Ports returns all ports in insertion order.
func (c *Canvas) Ports() []*Port {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*Port, 0, len(c.portOrder))
	for _, id := range c.portOrder {
		result = append(result, c.ports[id])
	}
	return result
}

// Connectors returns the connectors in insertion order.
func (c *Canvas) Connectors() []*Connector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.orderedConnectors()
}

func (c *Canvas) orderedConnectors() []*Connector {
	result := make([]*Connector, 0, len(c.connectorOrder))
	for _, id := range c.connectorOrder {
		result = append(result, c.connectors[id])
	}
	return result
}

// Connect creates a connector between two ports, routes it and moves it clear
// of the existing connectors.
func (c *Canvas) Connect(id, from, to string) (*Connector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connect(id, from, to, RoutingNormal, nil)
}

// ConnectOffPage creates a connector drawn as a straight line.
func (c *Canvas) ConnectOffPage(id, from, to string) (*Connector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connect(id, from, to, RoutingOffPage, nil)
}

func (c *Canvas) connect(id, from, to string, mode RoutingMode, stored core.Route) (*Connector, error) {
	if _, exists := c.connectors[id]; exists {
		return nil, fmt.Errorf("connector %q: %w", id, ErrDuplicateID)
	}
	p1, ok := c.ports[from]
	if !ok {
		return nil, fmt.Errorf("connector %q from %q: %w", id, from, ErrUnknownEndpoint)
	}
	p2, ok := c.ports[to]
	if !ok {
		return nil, fmt.Errorf("connector %q to %q: %w", id, to, ErrUnknownEndpoint)
	}
	if p1 == p2 {
		return nil, fmt.Errorf("connector %q: cannot connect port %q to itself", id, from)
	}

	conn := newConnector(id, p1, p2, c.engine)
	conn.mode = mode

	switch {
	case mode == RoutingOffPage:
		conn.SetRoute(routing.StraightRoute(p1, p2))

	case len(stored) >= 2:
		conn.SetRoute(stored)
		if err := conn.UpdatePosition(); err != nil {
			c.logger.Warn("stored route could not follow its ports",
				slog.String("connector", id), slog.Any("error", err))
		}

	default:
		if err := conn.Reroute(); err != nil {
			c.logger.Warn("route synthesis failed",
				slog.String("connector", id), slog.Any("error", err))
		}
		if len(conn.route) < 2 {
			conn.route = core.Route{p1.Position(), p2.Position()}
		}
		fixed, err := c.engine.FixOverlap(conn.route, c.otherRoutes(conn))
		if err != nil {
			c.logger.Warn("clearance fix failed",
				slog.String("connector", id), slog.Any("error", err))
		} else {
			conn.SetRoute(fixed)
		}
	}

	c.connectors[id] = conn
	c.connectorOrder = append(c.connectorOrder, id)

	c.logger.Debug("connected",
		slog.String("connector", id),
		slog.String("from", from),
		slog.String("to", to),
		slog.String("route", conn.route.String()))
	return conn, nil
}

// Disconnect removes a connector.
func (c *Canvas) Disconnect(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.connectors[id]; !ok {
		return fmt.Errorf("connector %q: %w", id, ErrUnknownConnector)
	}
	delete(c.connectors, id)
	for i, cid := range c.connectorOrder {
		if cid == id {
			c.connectorOrder = append(c.connectorOrder[:i], c.connectorOrder[i+1:]...)
			break
		}
	}
	return nil
}

// SetMode switches a connector between normal and off-page routing.
func (c *Canvas) SetMode(id string, mode RoutingMode) (MoveRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.connectors[id]
	if !ok {
		return MoveRecord{}, false, fmt.Errorf("connector %q: %w", id, ErrUnknownConnector)
	}

	conn.BeginUpdatePosition()
	if err := conn.SetMode(mode); err != nil {
		c.logger.Warn("reroute after mode change failed",
			slog.String("connector", id), slog.Any("error", err))
	}
	return c.finishOne(conn)
}

// Reroute discards a connector's route and synthesizes a fresh one.
func (c *Canvas) Reroute(id string) (MoveRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.connectors[id]
	if !ok {
		return MoveRecord{}, false, fmt.Errorf("connector %q: %w", id, ErrUnknownConnector)
	}

	conn.BeginUpdatePosition()
	if err := conn.Reroute(); err != nil {
		c.logger.Warn("route synthesis failed",
			slog.String("connector", id), slog.Any("error", err))
	}
	return c.finishOne(conn)
}

func (c *Canvas) finishOne(conn *Connector) (MoveRecord, bool, error) {
	records, err := c.finish(conn)
	if err != nil || len(records) == 0 {
		return MoveRecord{}, false, err
	}
	return records[0], true, nil
}

// OtherRoutes returns the routes conn must keep clear of: every other
// normally routed connector that does not share a port with it.
func (c *Canvas) OtherRoutes(conn *Connector) []core.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()

	routes := c.otherRoutes(conn)
	for i := range routes {
		routes[i] = routes[i].Clone()
	}
	return routes
}

func (c *Canvas) otherRoutes(conn *Connector) []core.Route {
	var routes []core.Route
	for _, other := range c.orderedConnectors() {
		if other == conn || other.mode == RoutingOffPage || other.SharesEndpoint(conn) {
			continue
		}
		routes = append(routes, other.route)
	}
	return routes
}

// ConnectorsAt returns the connectors bound to a port.
func (c *Canvas) ConnectorsAt(portID string) []*Connector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connectorsAt(portID)
}

func (c *Canvas) connectorsAt(portIDs ...string) []*Connector {
	want := make(map[string]bool, len(portIDs))
	for _, id := range portIDs {
		want[id] = true
	}

	var result []*Connector
	for _, conn := range c.orderedConnectors() {
		if want[conn.ep1.ID] || want[conn.ep2.ID] {
			result = append(result, conn)
		}
	}
	return result
}

func (c *Canvas) componentConnectors(comp *Component) []*Connector {
	ids := make([]string, 0, len(comp.Ports))
	for _, p := range comp.Ports {
		ids = append(ids, p.ID)
	}
	return c.connectorsAt(ids...)
}

// Handle applies one event and returns the route changes it committed.
// Moves outside of a drag are committed immediately; moves during a drag are
// committed by DragReleased.
func (c *Canvas) Handle(ev Event) ([]MoveRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case DragStarted:
		return nil, c.beginDrag(e)
	case EndpointMoved:
		return c.moveEndpoint(e)
	case ComponentMoved:
		return c.moveComponent(e)
	case SegmentDragged:
		return nil, c.dragSegment(e)
	case EndDragged:
		return nil, c.dragEnd(e)
	case DragReleased:
		return c.release()
	default:
		return nil, fmt.Errorf("unsupported event %T", ev)
	}
}

// Dragging reports whether a drag is in progress.
func (c *Canvas) Dragging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.drag != nil
}

func (c *Canvas) beginDrag(e DragStarted) error {
	if c.drag != nil {
		return fmt.Errorf("%s %q: %w", e.Kind, e.ID, ErrDragInProgress)
	}

	drag := &dragState{kind: e.Kind, id: e.ID}
	switch e.Kind {
	case DragPort:
		if _, ok := c.ports[e.ID]; !ok {
			return fmt.Errorf("port %q: %w", e.ID, ErrUnknownEndpoint)
		}
		drag.affected = c.connectorsAt(e.ID)

	case DragComponent:
		comp, ok := c.components[e.ID]
		if !ok {
			return fmt.Errorf("component %q: %w", e.ID, ErrUnknownComponent)
		}
		drag.affected = c.componentConnectors(comp)

	case DragSegment:
		conn, ok := c.connectors[e.ID]
		if !ok {
			return fmt.Errorf("connector %q: %w", e.ID, ErrUnknownConnector)
		}
		pos := e.Position.Snap(c.engine.Options().GridSize)
		drag.segment = routing.SegmentAt(conn.route, pos, true, true)
		if drag.segment < 0 || conn.mode == RoutingOffPage {
			return fmt.Errorf("connector %q at %v: %w", e.ID, pos, ErrNothingToDrag)
		}
		drag.affected = []*Connector{conn}

	case DragEnd:
		conn, ok := c.connectors[e.ID]
		if !ok {
			return fmt.Errorf("connector %q: %w", e.ID, ErrUnknownConnector)
		}
		if len(conn.route) < 2 {
			return fmt.Errorf("connector %q: %w", e.ID, ErrNothingToDrag)
		}
		if e.Position.Sub(conn.route.Last()).Length() < e.Position.Sub(conn.route.First()).Length() {
			drag.end = 1
		}
		drag.affected = []*Connector{conn}

	default:
		return fmt.Errorf("unknown drag kind %d", e.Kind)
	}

	for _, conn := range drag.affected {
		conn.BeginUpdatePosition()
	}
	c.drag = drag

	c.logger.Debug("drag started",
		slog.String("kind", e.Kind.String()),
		slog.String("id", e.ID),
		slog.Int("connectors", len(drag.affected)))
	return nil
}

// within reports whether the current drag is of kind on id.
func (c *Canvas) within(kind DragKind, id string) bool {
	return c.drag != nil && c.drag.kind == kind && c.drag.id == id
}

func (c *Canvas) moveEndpoint(e EndpointMoved) ([]MoveRecord, error) {
	p, ok := c.ports[e.Port]
	if !ok {
		return nil, fmt.Errorf("port %q: %w", e.Port, ErrUnknownEndpoint)
	}

	if c.within(DragPort, e.Port) {
		p.SetPosition(e.Position)
		c.updateAll(c.drag.affected)
		return nil, nil
	}

	affected := c.connectorsAt(e.Port)
	return c.commit(affected, func() { p.SetPosition(e.Position) })
}

func (c *Canvas) moveComponent(e ComponentMoved) ([]MoveRecord, error) {
	comp, ok := c.components[e.Component]
	if !ok {
		return nil, fmt.Errorf("component %q: %w", e.Component, ErrUnknownComponent)
	}

	if c.within(DragComponent, e.Component) {
		comp.MoveBy(e.Delta)
		c.updateAll(c.drag.affected)
		return nil, nil
	}

	affected := c.componentConnectors(comp)
	return c.commit(affected, func() { comp.MoveBy(e.Delta) })
}

func (c *Canvas) dragSegment(e SegmentDragged) error {
	if !c.within(DragSegment, e.Connector) {
		return fmt.Errorf("segment of %q: %w", e.Connector, ErrNoDrag)
	}
	conn := c.drag.affected[0]
	conn.SetRoute(c.engine.MoveSegment(conn.route, c.drag.segment, e.Position))
	return nil
}

func (c *Canvas) dragEnd(e EndDragged) error {
	if !c.within(DragEnd, e.Connector) {
		return fmt.Errorf("end of %q: %w", e.Connector, ErrNoDrag)
	}
	conn := c.drag.affected[0]
	index := 0
	if c.drag.end == 1 {
		index = len(conn.route) - 1
	}
	// The end is detached while dragging, so port directions are left alone.
	conn.route = c.engine.MoveEnd(conn.route, index, e.Position)
	return nil
}

func (c *Canvas) release() ([]MoveRecord, error) {
	drag := c.drag
	if drag == nil {
		return nil, ErrNoDrag
	}
	c.drag = nil

	if drag.kind == DragEnd {
		c.rewire(drag.affected[0], drag.end)
	}
	return c.finish(drag.affected...)
}

// rewire binds a dragged connector end to the port it was dropped on, or
// restores the route when it was dropped elsewhere.
func (c *Canvas) rewire(conn *Connector, end int) {
	dropped := conn.route.First()
	other := conn.ep2
	if end == 1 {
		dropped = conn.route.Last()
		other = conn.ep1
	}

	target := c.portAt(dropped, c.engine.Options().GridSize)
	if target == nil || target == other {
		conn.route = conn.oldRoute.Clone()
		return
	}

	conn.reconnect(end, target)
	if err := conn.Reroute(); err != nil {
		c.logger.Warn("route synthesis failed after rewiring",
			slog.String("connector", conn.ID), slog.Any("error", err))
	}
	c.logger.Debug("connector rewired",
		slog.String("connector", conn.ID),
		slog.String("port", target.ID))
}

// commit runs move and routes the affected connectors as one change.
func (c *Canvas) commit(affected []*Connector, move func()) ([]MoveRecord, error) {
	for _, conn := range affected {
		conn.BeginUpdatePosition()
	}
	move()
	c.updateAll(affected)
	return c.finish(affected...)
}

func (c *Canvas) updateAll(affected []*Connector) {
	for _, conn := range affected {
		if err := conn.UpdatePosition(); err != nil {
			c.logger.Warn("route update failed, keeping previous route",
				slog.String("connector", conn.ID), slog.Any("error", err))
		}
	}
}

func (c *Canvas) finish(affected ...*Connector) ([]MoveRecord, error) {
	var records []MoveRecord
	for _, conn := range affected {
		rec, changed, err := conn.EndUpdatePosition(c.otherRoutes(conn))
		if err != nil {
			c.logger.Warn("clearance fix failed",
				slog.String("connector", conn.ID), slog.Any("error", err))
		}
		if changed {
			records = append(records, rec)
		}
	}
	return records, nil
}

// FixAll re-runs simplification and clearance on every normally routed
// connector in insertion order.
func (c *Canvas) FixAll() ([]MoveRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var affected []*Connector
	for _, conn := range c.orderedConnectors() {
		if conn.mode == RoutingNormal {
			conn.BeginUpdatePosition()
			affected = append(affected, conn)
		}
	}
	return c.finish(affected...)
}

// ApplyRoute sets a connector's route directly, without rerouting.
func (c *Canvas) ApplyRoute(id string, route core.Route) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.connectors[id]
	if !ok {
		return fmt.Errorf("connector %q: %w", id, ErrUnknownConnector)
	}
	conn.SetRoute(route)
	return nil
}

// Apply restores the state recorded by rec: the new state, or the old one
// when undo is set. Rewired connectors are bound back to the recorded ports.
func (c *Canvas) Apply(rec MoveRecord, undo bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.connectors[rec.Connector]
	if !ok {
		return fmt.Errorf("connector %q: %w", rec.Connector, ErrUnknownConnector)
	}

	route, ends := rec.New, rec.NewEnds
	if undo {
		route, ends = rec.Old, rec.OldEnds
	}

	if rec.Rewired() {
		for end, id := range ends {
			p, ok := c.ports[id]
			if !ok {
				return fmt.Errorf("connector %q port %q: %w", rec.Connector, id, ErrUnknownEndpoint)
			}
			conn.reconnect(end, p)
		}
	}
	conn.SetRoute(route)
	return nil
}

// PlaceComponent moves a component so its top left corner is at origin.
// Connectors are not rerouted.
func (c *Canvas) PlaceComponent(id string, origin core.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	comp, ok := c.components[id]
	if !ok {
		return fmt.Errorf("component %q: %w", id, ErrUnknownComponent)
	}
	comp.MoveBy(origin.Sub(comp.Origin()))
	return nil
}

// PlacePort moves a port to pos. Connectors are not rerouted.
func (c *Canvas) PlacePort(id string, pos core.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.ports[id]
	if !ok {
		return fmt.Errorf("port %q: %w", id, ErrUnknownEndpoint)
	}
	p.SetPosition(pos)
	return nil
}

// PortAt returns the port closest to pos within radius.
func (c *Canvas) PortAt(pos core.Point, radius float64) (*Port, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p := c.portAt(pos, radius)
	return p, p != nil
}

func (c *Canvas) portAt(pos core.Point, radius float64) *Port {
	var best *Port
	bestDist := math.Inf(1)
	for _, id := range c.portOrder {
		p := c.ports[id]
		if d := p.Position().Sub(pos).Length(); d <= radius && d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// ComponentAt returns the topmost component containing pos.
func (c *Canvas) ComponentAt(pos core.Point) (*Component, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.componentOrder) - 1; i >= 0; i-- {
		comp := c.components[c.componentOrder[i]]
		if comp.Rect.Contains(pos) {
			return comp, true
		}
	}
	return nil, false
}

// ConnectorAt returns the topmost connector passing within tolerance of pos.
func (c *Canvas) ConnectorAt(pos core.Point, tolerance float64) (*Connector, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.connectorOrder) - 1; i >= 0; i-- {
		conn := c.connectors[c.connectorOrder[i]]
		for _, seg := range conn.route.Segments() {
			if distanceToSegment(pos, seg) <= tolerance {
				return conn, true
			}
		}
	}
	return nil, false
}

func distanceToSegment(p core.Point, seg core.Segment) float64 {
	v := seg.Vector()
	lengthSq := v.Dot(v)
	if lengthSq == 0 {
		return p.Sub(seg.From).Length()
	}
	t := geometry.Clamp(p.Sub(seg.From).Dot(v)/lengthSq, 0, 1)
	return p.Sub(seg.From.Add(v.Scale(t))).Length()
}
