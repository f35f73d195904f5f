package obstacles

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"orthoroute/core"
)

// pad keeps degenerate boxes valid: rtreego rejects zero-length sides, and
// every route segment is zero-length along one axis.
const pad = 0.5

// entry is one indexed rectangle: a route segment or a component.
type entry struct {
	wire    int // Index into the wire list, or -1 for boxes
	index   int // Segment index within the wire
	box     int // Index into the box list, or -1 for segments
	segment core.Segment
	bbox    rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *entry) Bounds() rtreego.Rect {
	return e.bbox
}

// spatialIndex is an R-tree over segments and component rectangles.
type spatialIndex struct {
	tree *rtreego.Rtree
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{tree: rtreego.NewTree(2, 25, 50)} // 2D, min 25, max 50 entries per node
}

func (si *spatialIndex) insertSegment(wire, index int, seg core.Segment) {
	bbox, err := boundsRect(seg.Bounds())
	if err != nil {
		return
	}
	si.tree.Insert(&entry{wire: wire, index: index, box: -1, segment: seg, bbox: bbox})
}

func (si *spatialIndex) insertBox(box int, rect core.Bounds) {
	bbox, err := boundsRect(rect)
	if err != nil {
		return
	}
	si.tree.Insert(&entry{wire: -1, box: box, bbox: bbox})
}

// query returns the entries whose rectangle touches b, in insertion order
// of wires, segments and boxes.
func (si *spatialIndex) query(b core.Bounds) []*entry {
	bbox, err := boundsRect(b)
	if err != nil {
		return nil
	}

	results := si.tree.SearchIntersect(bbox)
	entries := make([]*entry, 0, len(results))
	for _, item := range results {
		entries = append(entries, item.(*entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.wire != b.wire {
			return a.wire < b.wire
		}
		if a.index != b.index {
			return a.index < b.index
		}
		return a.box < b.box
	})
	return entries
}

func boundsRect(b core.Bounds) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.MinX - pad, b.MinY - pad},
		[]float64{math.Max(b.Width(), 0) + 2*pad, math.Max(b.Height(), 0) + 2*pad},
	)
}
