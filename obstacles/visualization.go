package obstacles

import (
	"math"
	"strings"

	"orthoroute/core"
)

// DebugVisualizer renders wires, components and the analysis on top of them
// as ASCII art, one character per Scale units.
type DebugVisualizer struct {
	Scale         float64
	ShowJunctions bool
	ShowGaps      bool
}

// NewDebugVisualizer returns a visualizer showing everything at the given
// scale.
func NewDebugVisualizer(scale float64) *DebugVisualizer {
	if scale <= 0 {
		scale = 10
	}
	return &DebugVisualizer{Scale: scale, ShowJunctions: true, ShowGaps: true}
}

type canvasGrid struct {
	cells   [][]rune
	originX float64
	originY float64
	scale   float64
}

func (g *canvasGrid) cell(p core.Point) (int, int, bool) {
	col := int(math.Round((p.X - g.originX) / g.scale))
	row := int(math.Round((p.Y - g.originY) / g.scale))
	if row < 0 || row >= len(g.cells) || col < 0 || col >= len(g.cells[row]) {
		return 0, 0, false
	}
	return col, row, true
}

func (g *canvasGrid) set(p core.Point, ch rune) {
	if col, row, ok := g.cell(p); ok {
		g.cells[row][col] = ch
	}
}

// line walks a horizontal or vertical segment cell by cell.
func (g *canvasGrid) line(seg core.Segment, draw func(col, row int)) {
	c1, r1, ok1 := g.cell(seg.From)
	c2, r2, ok2 := g.cell(seg.To)
	if !ok1 || !ok2 {
		return
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			draw(c, r)
		}
	}
}

// Render draws the scene. Crossing routes that are unrelated show the
// undercrossing wire broken; related routes meet in a junction dot.
func (dv *DebugVisualizer) Render(wires []Wire, boxes []Box, analysis Analysis) string {
	g := dv.newGrid(wires, boxes)
	if g == nil {
		return ""
	}

	for _, box := range boxes {
		r := box.Rect
		corners := []core.Point{
			core.Pt(r.MinX, r.MinY), core.Pt(r.MaxX, r.MinY),
			core.Pt(r.MaxX, r.MaxY), core.Pt(r.MinX, r.MaxY),
		}
		for i := range corners {
			g.line(core.Segment{From: corners[i], To: corners[(i+1)%4]}, func(c, row int) {
				g.cells[row][c] = '█'
			})
		}
	}

	for _, wire := range wires {
		for _, seg := range wire.Route.Segments() {
			ch := '─'
			if isVertical(seg) {
				ch = '│'
			}
			g.line(seg, func(c, row int) {
				switch g.cells[row][c] {
				case ' ', ch:
					g.cells[row][c] = ch
				case '█':
				default:
					g.cells[row][c] = '┼'
				}
			})
		}
	}

	for _, crossing := range analysis.Crossings {
		switch crossing.Kind {
		case Junction:
			if dv.ShowJunctions {
				g.set(crossing.Point, '●')
			}
		case Undercrossing:
			g.set(crossing.Point, '─')
		}
	}

	if dv.ShowGaps {
		for _, gap := range analysis.Gaps {
			g.line(gap.Gap, func(c, row int) {
				if g.cells[row][c] != '█' {
					g.cells[row][c] = '·'
				}
			})
		}
	}

	var result strings.Builder
	for _, row := range g.cells {
		result.WriteString(strings.TrimRight(string(row), " "))
		result.WriteString("\n")
	}
	return result.String()
}

func (dv *DebugVisualizer) newGrid(wires []Wire, boxes []Box) *canvasGrid {
	var points []core.Point
	for _, w := range wires {
		points = append(points, w.Route...)
	}
	for _, b := range boxes {
		points = append(points, core.Pt(b.Rect.MinX, b.Rect.MinY), core.Pt(b.Rect.MaxX, b.Rect.MaxY))
	}
	if len(points) == 0 {
		return nil
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	width := int(math.Round((maxX-minX)/dv.Scale)) + 1
	height := int(math.Round((maxY-minY)/dv.Scale)) + 1
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", width))
	}
	return &canvasGrid{cells: cells, originX: minX, originY: minY, scale: dv.Scale}
}

// GetLegend returns a legend explaining the visualization symbols
func (dv *DebugVisualizer) GetLegend() string {
	legend := []string{
		"Route Visualization Legend:",
		"  █ - Component outline",
		"  ─ │ - Route segment",
		"  ┼ - Routes meeting without analysis",
		"  ● - Junction of connected routes",
		"  · - Line gap under a component",
	}
	return strings.Join(legend, "\n")
}
