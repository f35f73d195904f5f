package routing

import (
	"math"
	"sort"

	"orthoroute/core"
	"orthoroute/geometry"
)

// SegmentIndex holds the bounds of axis-aligned segments in two sorted lists,
// one per orientation, for binary searched overlap queries. It is a throwaway
// snapshot: build it, query it, drop it.
type SegmentIndex struct {
	clearance  float64
	vertical   []core.Bounds // sorted by (MinX, MinY)
	horizontal []core.Bounds // sorted by (MinY, MinX)
	dirty      bool
}

// NewSegmentIndex creates an empty index. Two same-orientation segments
// conflict when their fixed coordinates are closer than clearance (or equal)
// and their ranges overlap.
func NewSegmentIndex(clearance float64) *SegmentIndex {
	return &SegmentIndex{clearance: math.Max(0, clearance)}
}

// AddRoute adds every segment of the route.
func (idx *SegmentIndex) AddRoute(route core.Route) {
	for i := 0; i < len(route)-1; i++ {
		idx.AddSegment(route[i], route[i+1])
	}
}

// AddSegment adds one segment. Segments with equal X go to the vertical list,
// everything else to the horizontal list.
func (idx *SegmentIndex) AddSegment(p1, p2 core.Point) {
	b := core.NewBounds(p1, p2)
	if geometry.FuzzyEqual(p1.X, p2.X) {
		idx.vertical = append(idx.vertical, b)
	} else {
		idx.horizontal = append(idx.horizontal, b)
	}
	idx.dirty = true
}

// Len returns the number of indexed segments.
func (idx *SegmentIndex) Len() int {
	return len(idx.vertical) + len(idx.horizontal)
}

// Vertical returns the sorted vertical bounds.
func (idx *SegmentIndex) Vertical() []core.Bounds {
	idx.sort()
	return idx.vertical
}

// Horizontal returns the sorted horizontal bounds.
func (idx *SegmentIndex) Horizontal() []core.Bounds {
	idx.sort()
	return idx.horizontal
}

func (idx *SegmentIndex) sort() {
	if !idx.dirty {
		return
	}
	sort.Slice(idx.vertical, func(i, j int) bool {
		a, b := idx.vertical[i], idx.vertical[j]
		return a.MinX < b.MinX || (a.MinX == b.MinX && a.MinY < b.MinY)
	})
	sort.Slice(idx.horizontal, func(i, j int) bool {
		a, b := idx.horizontal[i], idx.horizontal[j]
		return a.MinY < b.MinY || (a.MinY == b.MinY && a.MinX < b.MinX)
	})
	idx.dirty = false
}

// FindVerticalOverlap returns the index into Vertical() of a segment that
// conflicts with the vertical segment b, or -1.
func (idx *SegmentIndex) FindVerticalOverlap(b core.Bounds) int {
	idx.sort()
	x := b.MinX
	lo, hi := idx.band(x)

	i := sort.Search(len(idx.vertical), func(i int) bool {
		return idx.vertical[i].MinX >= lo
	})
	for ; i < len(idx.vertical) && idx.vertical[i].MinX <= hi; i++ {
		if idx.conflicts(idx.vertical[i].MinX, x) && idx.vertical[i].OverlapsY(b) {
			return i
		}
	}
	return -1
}

// FindHorizontalOverlap returns the index into Horizontal() of a segment that
// conflicts with the horizontal segment b, or -1.
func (idx *SegmentIndex) FindHorizontalOverlap(b core.Bounds) int {
	idx.sort()
	y := b.MinY
	lo, hi := idx.band(y)

	i := sort.Search(len(idx.horizontal), func(i int) bool {
		return idx.horizontal[i].MinY >= lo
	})
	for ; i < len(idx.horizontal) && idx.horizontal[i].MinY <= hi; i++ {
		if idx.conflicts(idx.horizontal[i].MinY, y) && idx.horizontal[i].OverlapsX(b) {
			return i
		}
	}
	return -1
}

// band returns the coordinate range that may hold conflicting segments.
func (idx *SegmentIndex) band(v float64) (lo, hi float64) {
	tol := 2 * geometry.Epsilon * math.Max(1, math.Abs(v))
	w := math.Max(idx.clearance, tol)
	return v - w, v + w
}

func (idx *SegmentIndex) conflicts(a, b float64) bool {
	return geometry.FuzzyEqual(a, b) || math.Abs(a-b) < idx.clearance
}
