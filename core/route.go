package core

import "strings"

// Route is an ordered list of route points. Committed routes are orthogonal:
// consecutive points differ in exactly one axis.
type Route []Point

// Clone returns a copy of the route that shares no storage with r.
func (r Route) Clone() Route {
	if r == nil {
		return nil
	}
	clone := make(Route, len(r))
	copy(clone, r)
	return clone
}

// Equal compares two routes point by point with the shared tolerance.
func (r Route) Equal(o Route) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].FuzzyEqual(o[i]) {
			return false
		}
	}
	return true
}

// First returns the first point, or the zero point for an empty route.
func (r Route) First() Point {
	if len(r) == 0 {
		return Point{}
	}
	return r[0]
}

// Last returns the last point, or the zero point for an empty route.
func (r Route) Last() Point {
	if len(r) == 0 {
		return Point{}
	}
	return r[len(r)-1]
}

// Translate moves every point of the route by d in place.
func (r Route) Translate(d Point) Route {
	for i := range r {
		r[i] = r[i].Add(d)
	}
	return r
}

// Segment is one straight piece of a route.
type Segment struct {
	From, To Point
}

// Bounds returns the bounding box of the segment.
func (s Segment) Bounds() Bounds {
	return NewBounds(s.From, s.To)
}

// Vector returns To-From.
func (s Segment) Vector() Point {
	return s.To.Sub(s.From)
}

// Midpoint returns the center of the segment.
func (s Segment) Midpoint() Point {
	return s.From.Add(s.To.Sub(s.From).Scale(0.5))
}

// Segments splits the route into its segments.
func (r Route) Segments() []Segment {
	if len(r) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		segs = append(segs, Segment{From: r[i], To: r[i+1]})
	}
	return segs
}

// String formats the route as "(x,y) → (x,y) → ...".
func (r Route) String() string {
	if len(r) == 0 {
		return "empty route"
	}
	parts := make([]string, len(r))
	for i, p := range r {
		parts[i] = p.String()
	}
	return strings.Join(parts, " → ")
}
