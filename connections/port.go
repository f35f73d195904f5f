package connections

import "orthoroute/core"

// Port is a connection endpoint on the canvas. Ports that belong to a
// component move with it.
type Port struct {
	ID        string
	Component string // Owning component ID, empty for free-standing ports

	pos   core.Point
	dir   core.Point
	fixed bool
}

// NewPort creates a port at pos facing dir. A fixed port keeps its direction;
// a free port may be re-oriented by routing.
func NewPort(id string, pos core.Point, dir core.Direction, fixed bool) *Port {
	return &Port{
		ID:    id,
		pos:   pos,
		dir:   dir.Vector(),
		fixed: fixed,
	}
}

// Position returns the port's absolute position.
func (p *Port) Position() core.Point {
	return p.pos
}

// Direction returns the unit vector the port faces.
func (p *Port) Direction() core.Point {
	return p.dir
}

// IsDirectionFixed reports whether routing may change the direction.
func (p *Port) IsDirectionFixed() bool {
	return p.fixed
}

// SetDirection re-orients the port.
func (p *Port) SetDirection(dir core.Point) {
	p.dir = dir.Normalized()
}

// SetPosition places the port at pos.
func (p *Port) SetPosition(pos core.Point) {
	p.pos = pos
}

// Cardinal returns the port direction as a cardinal direction.
func (p *Port) Cardinal() core.Direction {
	return core.DirectionOf(p.dir)
}
