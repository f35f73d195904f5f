package connections

import (
	"fmt"
	"log/slog"

	"orthoroute/core"
	"orthoroute/diagram"
	"orthoroute/routing"
)

// FromDiagram builds a canvas from a stored layout. Connections with a stored
// route keep it, adapted to the current port positions; the others are
// routed in file order.
func FromDiagram(d *diagram.Diagram, engine *routing.Engine, opts ...CanvasOption) (*Canvas, error) {
	c := NewCanvas(engine, opts...)

	for _, dc := range d.Components {
		comp := NewComponent(dc.ID, dc.Name, dc.X, dc.Y, dc.Width, dc.Height)
		for _, dp := range dc.Ports {
			p, err := portFromDiagram(dp)
			if err != nil {
				return nil, fmt.Errorf("component %q: %w", dc.ID, err)
			}
			comp.AddPort(p)
		}
		if err := c.AddComponent(comp); err != nil {
			return nil, err
		}
	}

	for _, dp := range d.Ports {
		p, err := portFromDiagram(dp)
		if err != nil {
			return nil, err
		}
		if err := c.AddPort(p); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, dc := range d.Connections {
		mode := RoutingNormal
		if dc.OffPage {
			mode = RoutingOffPage
		}
		conn, err := c.connect(dc.ID, dc.From, dc.To, mode, core.Route(dc.Route))
		if err != nil {
			return nil, err
		}
		if dc.Name != "" {
			conn.Name = dc.Name
		}
	}

	c.logger.Debug("canvas loaded",
		slog.Int("components", len(c.components)),
		slog.Int("ports", len(c.ports)),
		slog.Int("connectors", len(c.connectors)))
	return c, nil
}

func portFromDiagram(dp diagram.Port) (*Port, error) {
	dir := core.East
	if dp.Direction != "" {
		var err error
		if dir, err = core.ParseDirection(dp.Direction); err != nil {
			return nil, fmt.Errorf("port %q: %w", dp.ID, err)
		}
	}
	return NewPort(dp.ID, core.Pt(dp.X, dp.Y), dir, dp.Fixed), nil
}

func portToDiagram(p *Port) diagram.Port {
	pos := p.Position()
	return diagram.Port{
		ID:        p.ID,
		X:         pos.X,
		Y:         pos.Y,
		Direction: p.Cardinal().String(),
		Fixed:     p.IsDirectionFixed(),
	}
}

// ToDiagram captures the current canvas layout, including routes.
func (c *Canvas) ToDiagram() *diagram.Diagram {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d := &diagram.Diagram{Connections: []diagram.Connection{}}

	for _, id := range c.componentOrder {
		comp := c.components[id]
		dc := diagram.Component{
			ID:     comp.ID,
			Name:   comp.Name,
			X:      comp.Rect.MinX,
			Y:      comp.Rect.MinY,
			Width:  comp.Rect.Width(),
			Height: comp.Rect.Height(),
		}
		for _, p := range comp.Ports {
			dc.Ports = append(dc.Ports, portToDiagram(p))
		}
		d.Components = append(d.Components, dc)
	}

	for _, id := range c.portOrder {
		if p := c.ports[id]; p.Component == "" {
			d.Ports = append(d.Ports, portToDiagram(p))
		}
	}

	for _, conn := range c.orderedConnectors() {
		d.Connections = append(d.Connections, diagram.Connection{
			ID:      conn.ID,
			Name:    conn.Name,
			From:    conn.ep1.ID,
			To:      conn.ep2.ID,
			OffPage: conn.mode == RoutingOffPage,
			Route:   conn.Route(),
		})
	}
	return d
}
