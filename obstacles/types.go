// Package obstacles analyses where connector routes cross each other and the
// components they run over, for drawing junctions and line gaps.
package obstacles

import (
	"orthoroute/connections"
	"orthoroute/core"
)

// Wire is a snapshot of one connector.
type Wire struct {
	ID    string
	Route core.Route
	Ends  [2]string // Port IDs
}

// Box is a snapshot of one component rectangle.
type Box struct {
	ID   string
	Rect core.Bounds
}

// SharesEnd reports whether two wires meet at a common port.
func (w Wire) SharesEnd(o Wire) bool {
	return w.Ends[0] == o.Ends[0] || w.Ends[0] == o.Ends[1] ||
		w.Ends[1] == o.Ends[0] || w.Ends[1] == o.Ends[1]
}

// CrossingKind tells how a crossing is drawn.
type CrossingKind int

const (
	// Junction marks connectors of the same net crossing: a filled dot.
	Junction CrossingKind = iota
	// Undercrossing marks unrelated connectors crossing: the vertical line
	// is drawn broken around the crossing.
	Undercrossing
)

func (k CrossingKind) String() string {
	if k == Junction {
		return "junction"
	}
	return "undercrossing"
}

// Crossing is a point where a vertical segment of Under meets a horizontal
// segment of Over.
type Crossing struct {
	Kind  CrossingKind
	Point core.Point
	Under string
	Over  string
	Gap   core.Segment // Part of Under hidden around Point, undercrossings only
}

// LineGap is a part of a wire hidden where it runs under a component.
type LineGap struct {
	Wire      string
	Component string
	Gap       core.Segment
}

// Analysis collects everything drawn on top of the plain routes.
type Analysis struct {
	Crossings []Crossing
	Gaps      []LineGap
}

// Junctions returns the junction points.
func (a Analysis) Junctions() []core.Point {
	var points []core.Point
	for _, c := range a.Crossings {
		if c.Kind == Junction {
			points = append(points, c.Point)
		}
	}
	return points
}

// Snapshot captures the wires and boxes of a canvas. Off-page connectors are
// left out; they are not drawn across the page.
func Snapshot(canvas *connections.Canvas) ([]Wire, []Box) {
	var wires []Wire
	for _, conn := range canvas.Connectors() {
		if conn.Mode() == connections.RoutingOffPage {
			continue
		}
		wires = append(wires, Wire{ID: conn.ID, Route: conn.Route(), Ends: conn.Ends()})
	}

	var boxes []Box
	for _, comp := range canvas.Components() {
		boxes = append(boxes, Box{ID: comp.ID, Rect: comp.Rect})
	}
	return wires, boxes
}

// Analyze finds crossings between wires and gaps where wires run under boxes.
func Analyze(wires []Wire, boxes []Box, grid float64) Analysis {
	return Analysis{
		Crossings: FindCrossings(wires, grid),
		Gaps:      FindComponentGaps(wires, boxes, grid),
	}
}
