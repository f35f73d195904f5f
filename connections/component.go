package connections

import (
	"fmt"

	"orthoroute/core"
)

// Component is an axis-aligned rectangle on the canvas that owns ports.
type Component struct {
	ID    string
	Name  string
	Rect  core.Bounds
	Ports []*Port
}

// NewComponent creates a component with its top left corner at (x, y).
func NewComponent(id, name string, x, y, width, height float64) *Component {
	return &Component{
		ID:   id,
		Name: name,
		Rect: core.Bounds{MinX: x, MinY: y, MaxX: x + width, MaxY: y + height},
	}
}

// AddPort attaches a port to the component.
func (c *Component) AddPort(p *Port) {
	p.Component = c.ID
	c.Ports = append(c.Ports, p)
}

// Origin returns the top left corner.
func (c *Component) Origin() core.Point {
	return core.Pt(c.Rect.MinX, c.Rect.MinY)
}

// MoveBy translates the component and its ports.
func (c *Component) MoveBy(d core.Point) {
	c.Rect.MinX += d.X
	c.Rect.MaxX += d.X
	c.Rect.MinY += d.Y
	c.Rect.MaxY += d.Y
	for _, p := range c.Ports {
		p.SetPosition(p.Position().Add(d))
	}
}

// Edges returns the left, right, top and bottom edges of the rectangle.
func (c *Component) Edges() (left, right, top, bottom core.Segment) {
	r := c.Rect
	topLeft := core.Pt(r.MinX, r.MinY)
	topRight := core.Pt(r.MaxX, r.MinY)
	bottomLeft := core.Pt(r.MinX, r.MaxY)
	bottomRight := core.Pt(r.MaxX, r.MaxY)

	left = core.Segment{From: topLeft, To: bottomLeft}
	right = core.Segment{From: topRight, To: bottomRight}
	top = core.Segment{From: topLeft, To: topRight}
	bottom = core.Segment{From: bottomLeft, To: bottomRight}
	return left, right, top, bottom
}

func (c *Component) String() string {
	return fmt.Sprintf("%s[%s %gx%g]", c.ID, c.Origin(), c.Rect.Width(), c.Rect.Height())
}
