package connections

import "orthoroute/core"

// Event is a message handled by Canvas.Handle. Hosts translate their input
// (mouse, scripted edits) into events and apply the returned move records to
// their undo history.
type Event interface {
	isEvent()
}

// DragKind names what a drag moves.
type DragKind int

const (
	DragPort      DragKind = iota // A port and the connectors bound to it
	DragComponent                 // A component, its ports and their connectors
	DragSegment                   // One interior segment of a connector
	DragEnd                       // One end of a connector, for rewiring
)

func (k DragKind) String() string {
	switch k {
	case DragPort:
		return "port"
	case DragComponent:
		return "component"
	case DragSegment:
		return "segment"
	case DragEnd:
		return "end"
	default:
		return "unknown"
	}
}

// DragStarted snapshots every connector affected by dragging ID. Position
// selects the segment or end for connector drags.
type DragStarted struct {
	Kind     DragKind
	ID       string
	Position core.Point
}

// EndpointMoved places a port at Position.
type EndpointMoved struct {
	Port     string
	Position core.Point
}

// ComponentMoved translates a component by Delta.
type ComponentMoved struct {
	Component string
	Delta     core.Point
}

// SegmentDragged moves the segment picked by DragStarted towards Position.
type SegmentDragged struct {
	Connector string
	Position  core.Point
}

// EndDragged moves the connector end picked by DragStarted to Position.
type EndDragged struct {
	Connector string
	Position  core.Point
}

// DragReleased finishes the current drag.
type DragReleased struct{}

func (DragStarted) isEvent()    {}
func (EndpointMoved) isEvent()  {}
func (ComponentMoved) isEvent() {}
func (SegmentDragged) isEvent() {}
func (EndDragged) isEvent()     {}
func (DragReleased) isEvent()   {}
