// Package diagram contains the persisted layout of a routing canvas:
// components, ports and the connections routed between them.
package diagram

import "orthoroute/core"

// Port is a connection point. Positions are absolute canvas coordinates.
type Port struct {
	ID        string  `json:"id" yaml:"id"`
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	Direction string  `json:"direction,omitempty" yaml:"direction,omitempty"` // north, east, south or west
	Fixed     bool    `json:"fixed,omitempty" yaml:"fixed,omitempty"`         // Direction may not be changed by routing
}

// Component is a rectangle that owns ports.
type Component struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Ports  []Port  `json:"ports,omitempty" yaml:"ports,omitempty"`
}

// Connection joins two ports. A stored route is reused as the starting
// point for routing; an empty one is synthesized on load.
type Connection struct {
	ID      string       `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	From    string       `json:"from" yaml:"from"` // Port ID
	To      string       `json:"to" yaml:"to"`     // Port ID
	OffPage bool         `json:"off_page,omitempty" yaml:"off_page,omitempty"`
	Route   []core.Point `json:"route,omitempty" yaml:"route,omitempty"`
}

// Metadata contains optional diagram metadata.
type Metadata struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Created string `json:"created,omitempty" yaml:"created,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Diagram is a complete canvas layout.
type Diagram struct {
	Components  []Component  `json:"components,omitempty" yaml:"components,omitempty"`
	Ports       []Port       `json:"ports,omitempty" yaml:"ports,omitempty"` // Free-standing ports
	Connections []Connection `json:"connections" yaml:"connections"`
	Metadata    Metadata     `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// PortCount returns the number of ports, including those on components.
func (d *Diagram) PortCount() int {
	n := len(d.Ports)
	for _, c := range d.Components {
		n += len(c.Ports)
	}
	return n
}

// Clone creates a deep copy of the diagram
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}

	clone := &Diagram{
		Components:  make([]Component, len(d.Components)),
		Ports:       make([]Port, len(d.Ports)),
		Connections: make([]Connection, len(d.Connections)),
		Metadata:    d.Metadata,
	}

	for i, comp := range d.Components {
		clone.Components[i] = comp
		clone.Components[i].Ports = append([]Port(nil), comp.Ports...)
	}
	copy(clone.Ports, d.Ports)

	for i, conn := range d.Connections {
		clone.Connections[i] = conn
		clone.Connections[i].Route = append([]core.Point(nil), conn.Route...)
	}

	return clone
}
