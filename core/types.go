// Package core contains the fundamental types used throughout the orthoroute connector engine.
package core

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"orthoroute/geometry"
)

// ErrUnknownDirection is returned when a direction name cannot be parsed.
var ErrUnknownDirection = errors.New("unknown direction")

// Point represents a 2D coordinate on the canvas. It doubles as a 2D vector.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Length returns the euclidean length of p.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalized returns the unit vector of p. The zero vector stays zero.
func (p Point) Normalized() Point {
	l := p.Length()
	if geometry.FuzzyIsNull(l) {
		return Point{}
	}
	return Point{X: p.X / l, Y: p.Y / l}
}

// IsNull reports whether both components are (fuzzily) zero.
func (p Point) IsNull() bool {
	return geometry.FuzzyIsNull(p.X) && geometry.FuzzyIsNull(p.Y)
}

// Rotate90 rotates the vector by 90 degrees: (x, y) -> (y, -x).
func (p Point) Rotate90() Point {
	return Point{X: p.Y, Y: -p.X}
}

// FuzzyEqual compares both components with the shared tolerance.
func (p Point) FuzzyEqual(q Point) bool {
	return geometry.FuzzyEqual(p.X, q.X) && geometry.FuzzyEqual(p.Y, q.Y)
}

// Snap rounds both components to the nearest multiple of grid.
func (p Point) Snap(grid float64) Point {
	return Point{X: geometry.Snap(p.X, grid), Y: geometry.Snap(p.Y, grid)}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Direction represents a cardinal direction.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Vector returns the unit vector of the direction. Y grows downwards.
func (d Direction) Vector() Point {
	switch d {
	case North:
		return Point{X: 0, Y: -1}
	case East:
		return Point{X: 1, Y: 0}
	case South:
		return Point{X: 0, Y: 1}
	case West:
		return Point{X: -1, Y: 0}
	default:
		return Point{}
	}
}

// ParseDirection parses a direction name such as "east" or "W".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n", "up":
		return North, nil
	case "east", "e", "right":
		return East, nil
	case "south", "s", "down":
		return South, nil
	case "west", "w", "left":
		return West, nil
	}
	return East, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// DirectionOf returns the cardinal direction closest to the vector v.
// Ties between axes go to the horizontal one.
func DirectionOf(v Point) Direction {
	if math.Abs(v.X) >= math.Abs(v.Y) {
		if v.X < 0 {
			return West
		}
		return East
	}
	if v.Y < 0 {
		return North
	}
	return South
}

// Endpoint is a connection point a route is bound to. It is supplied by the
// host; the engine only reads positions and may re-orient free endpoints.
type Endpoint interface {
	Position() Point
	Direction() Point
	IsDirectionFixed() bool
	SetDirection(dir Point)
}

// Bounds is the axis-aligned bounding box of one route segment.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewBounds returns the bounds of the segment p1-p2.
func NewBounds(p1, p2 Point) Bounds {
	return Bounds{
		MinX: math.Min(p1.X, p2.X),
		MinY: math.Min(p1.Y, p2.Y),
		MaxX: math.Max(p1.X, p2.X),
		MaxY: math.Max(p1.Y, p2.Y),
	}
}

// IsVertical reports whether the bounds describe a vertical segment.
func (b Bounds) IsVertical() bool {
	return geometry.FuzzyEqual(b.MinX, b.MaxX)
}

// IsHorizontal reports whether the bounds describe a horizontal segment.
func (b Bounds) IsHorizontal() bool {
	return geometry.FuzzyEqual(b.MinY, b.MaxY)
}

// OverlapsX reports whether the closed X ranges of b and o intersect.
func (b Bounds) OverlapsX(o Bounds) bool {
	return !(b.MaxX < o.MinX || b.MinX > o.MaxX)
}

// OverlapsY reports whether the closed Y ranges of b and o intersect.
func (b Bounds) OverlapsY(o Bounds) bool {
	return !(b.MaxY < o.MinY || b.MinY > o.MaxY)
}

// Width returns the width of the bounds.
func (b Bounds) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the height of the bounds.
func (b Bounds) Height() float64 {
	return b.MaxY - b.MinY
}

// Contains checks if a point is within the bounds (edges included).
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX &&
		p.Y >= b.MinY && p.Y <= b.MaxY
}
