// Package render draws a canvas snapshot as a PNG image.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"orthoroute/connections"
	"orthoroute/core"
	"orthoroute/obstacles"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Scale       float64 // Pixels per canvas unit
	Padding     int     // Margin around the drawing, in pixels
	LineWidth   float64 // Route line width, in pixels
	FontSize    float64 // Label size in points
	Labels      bool
	Supersample int // Render at this multiple and downsample; 1 draws directly
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Scale:       2,
		Padding:     20,
		LineWidth:   2,
		FontSize:    12,
		Labels:      true,
		Supersample: 4,
	}
}

// Colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorBlack     = color.RGBA{51, 51, 51, 255}    // #333
	colorGray      = color.RGBA{102, 102, 102, 255} // #666
	colorComponent = color.RGBA{227, 242, 253, 255} // #e3f2fd
	colorBorder    = color.RGBA{21, 101, 192, 255}  // #1565c0
	colorRoute     = color.RGBA{46, 125, 50, 255}   // #2e7d32
	colorOffPage   = color.RGBA{230, 81, 0, 255}    // #e65100
)

// Scene is everything drawn for one canvas.
type Scene struct {
	Wires    []obstacles.Wire
	OffPage  []obstacles.Wire
	Boxes    []obstacles.Box
	Names    map[string]string // Component and connector labels by ID
	Ports    []core.Point
	Analysis obstacles.Analysis
}

// NewScene snapshots a canvas and analyses its crossings.
func NewScene(canvas *connections.Canvas) Scene {
	wires, boxes := obstacles.Snapshot(canvas)
	scene := Scene{
		Wires:    wires,
		Boxes:    boxes,
		Names:    make(map[string]string),
		Analysis: obstacles.Analyze(wires, boxes, canvas.Engine().Options().GridSize),
	}

	for _, conn := range canvas.Connectors() {
		scene.Names[conn.ID] = conn.Name
		if conn.Mode() == connections.RoutingOffPage {
			scene.OffPage = append(scene.OffPage, obstacles.Wire{ID: conn.ID, Route: conn.Route(), Ends: conn.Ends()})
		}
	}
	for _, comp := range canvas.Components() {
		scene.Names[comp.ID] = comp.Name
	}
	for _, p := range canvas.Ports() {
		scene.Ports = append(scene.Ports, p.Position())
	}
	return scene
}

// renderContext holds rendering parameters including scale
type renderContext struct {
	img       *image.RGBA
	scale     float64 // pixels per canvas unit, supersampling included
	originX   float64
	originY   float64
	padding   float64
	lineWidth float64
	face      font.Face
}

func newRenderContext(img *image.RGBA, opts PNGOptions, origin core.Point) *renderContext {
	ss := float64(opts.Supersample)
	ctx := &renderContext{
		img:       img,
		scale:     opts.Scale * ss,
		originX:   origin.X,
		originY:   origin.Y,
		padding:   float64(opts.Padding) * ss,
		lineWidth: opts.LineWidth * ss,
	}

	if opts.Labels {
		fnt, err := opentype.Parse(goregular.TTF)
		if err != nil {
			panic(err) // should never happen with embedded font
		}
		face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    opts.FontSize * ss,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			panic(err)
		}
		ctx.face = face
	}
	return ctx
}

// px converts a canvas point to image coordinates.
func (ctx *renderContext) px(p core.Point) (float64, float64) {
	return (p.X-ctx.originX)*ctx.scale + ctx.padding, (p.Y-ctx.originY)*ctx.scale + ctx.padding
}

// RenderPNG renders a canvas to PNG format.
func RenderPNG(canvas *connections.Canvas, w io.Writer, opts PNGOptions) error {
	return png.Encode(w, RenderImage(NewScene(canvas), opts))
}

// RenderImage draws the scene at its final size.
func RenderImage(scene Scene, opts PNGOptions) *image.RGBA {
	def := DefaultPNGOptions()
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = def.LineWidth
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}

	lo, hi := scene.extent()
	width := int(math.Ceil((hi.X-lo.X)*opts.Scale)) + 2*opts.Padding + 1
	height := int(math.Ceil((hi.Y-lo.Y)*opts.Scale)) + 2*opts.Padding + 1

	if opts.Supersample == 1 {
		return renderInternal(scene, opts, lo, width, height)
	}

	large := renderInternal(scene, opts, lo, width*opts.Supersample, height*opts.Supersample)
	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return final
}

func (s Scene) extent() (core.Point, core.Point) {
	var points []core.Point
	for _, w := range s.Wires {
		points = append(points, w.Route...)
	}
	for _, w := range s.OffPage {
		points = append(points, w.Route...)
	}
	for _, b := range s.Boxes {
		points = append(points, core.Pt(b.Rect.MinX, b.Rect.MinY), core.Pt(b.Rect.MaxX, b.Rect.MaxY))
	}
	points = append(points, s.Ports...)
	if len(points) == 0 {
		return core.Point{}, core.Point{}
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = core.Pt(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y))
		hi = core.Pt(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y))
	}
	return lo, hi
}

func renderInternal(scene Scene, opts PNGOptions, origin core.Point, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	ctx := newRenderContext(img, opts, origin)

	// Fill background white
	draw.Draw(img, img.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)

	for _, w := range scene.Wires {
		drawRoute(ctx, w.Route, colorRoute)
	}
	for _, w := range scene.OffPage {
		drawRoute(ctx, w.Route, colorOffPage)
	}

	// Undercrossings: break the lower wire, then restore the upper one.
	for _, c := range scene.Analysis.Crossings {
		if c.Kind != obstacles.Undercrossing {
			continue
		}
		eraseSegment(ctx, c.Gap)
		x, y := ctx.px(c.Point)
		reach := ctx.lineWidth + 2
		fillRect(ctx, x-reach, y-ctx.lineWidth/2, x+reach, y+ctx.lineWidth/2, colorRoute)
	}
	for _, g := range scene.Analysis.Gaps {
		eraseSegment(ctx, g.Gap)
	}

	for _, b := range scene.Boxes {
		drawBox(ctx, b, colorComponent, colorBorder)
	}

	portSize := ctx.lineWidth * 1.5
	for _, p := range scene.Ports {
		x, y := ctx.px(p)
		fillRect(ctx, x-portSize, y-portSize, x+portSize, y+portSize, colorGray)
	}

	for _, p := range scene.Analysis.Junctions() {
		x, y := ctx.px(p)
		fillCircle(ctx, x, y, ctx.lineWidth*2, colorBlack)
	}

	if ctx.face != nil {
		for _, b := range scene.Boxes {
			x, y := ctx.px(core.Pt((b.Rect.MinX+b.Rect.MaxX)/2, (b.Rect.MinY+b.Rect.MaxY)/2))
			drawTextCentered(ctx, int(x), int(y), scene.Names[b.ID], colorBlack)
		}
		for _, w := range scene.Wires {
			segs := w.Route.Segments()
			if len(segs) == 0 || scene.Names[w.ID] == "" {
				continue
			}
			x, y := ctx.px(segs[len(segs)/2].Midpoint())
			drawTextCentered(ctx, int(x), int(y-ctx.lineWidth*3), scene.Names[w.ID], colorGray)
		}
	}
	return img
}

func drawRoute(ctx *renderContext, route core.Route, c color.Color) {
	for _, seg := range route.Segments() {
		x1, y1 := ctx.px(seg.From)
		x2, y2 := ctx.px(seg.To)
		drawLine(ctx, x1, y1, x2, y2, ctx.lineWidth, c)
	}
}

// eraseSegment paints the background over a gap, a little wider than a line.
func eraseSegment(ctx *renderContext, gap core.Segment) {
	x1, y1 := ctx.px(gap.From)
	x2, y2 := ctx.px(gap.To)
	drawLine(ctx, x1, y1, x2, y2, ctx.lineWidth+2, colorWhite)
}

func drawBox(ctx *renderContext, b obstacles.Box, fill, stroke color.Color) {
	x1, y1 := ctx.px(core.Pt(b.Rect.MinX, b.Rect.MinY))
	x2, y2 := ctx.px(core.Pt(b.Rect.MaxX, b.Rect.MaxY))
	fillRect(ctx, x1, y1, x2, y2, fill)
	drawLine(ctx, x1, y1, x2, y1, ctx.lineWidth, stroke)
	drawLine(ctx, x2, y1, x2, y2, ctx.lineWidth, stroke)
	drawLine(ctx, x2, y2, x1, y2, ctx.lineWidth, stroke)
	drawLine(ctx, x1, y2, x1, y1, ctx.lineWidth, stroke)
}

func fillRect(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	r := image.Rect(
		int(math.Round(math.Min(x1, x2))), int(math.Round(math.Min(y1, y2))),
		int(math.Round(math.Max(x1, x2)))+1, int(math.Round(math.Max(y1, y2)))+1,
	)
	draw.Draw(ctx.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawLine draws a thick line. Axis aligned lines are filled as rectangles.
func drawLine(ctx *renderContext, x1, y1, x2, y2, thickness float64, c color.Color) {
	half := thickness / 2
	switch {
	case y1 == y2:
		fillRect(ctx, x1, y1-half, x2, y2+half, c)
		return
	case x1 == x2:
		fillRect(ctx, x1-half, y1, x2+half, y2, c)
		return
	}

	dx := x2 - x1
	dy := y2 - y1
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		fillRect(ctx, x1+dx*t-half, y1+dy*t-half, x1+dx*t+half, y1+dy*t+half, c)
	}
}

func fillCircle(ctx *renderContext, cx, cy, r float64, c color.Color) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				ctx.img.Set(int(math.Round(cx+x)), int(math.Round(cy+y)), c)
			}
		}
	}
}

func drawTextCentered(ctx *renderContext, x, y int, text string, c color.Color) {
	if text == "" {
		return
	}
	width := font.MeasureString(ctx.face, text).Ceil()
	ascent := ctx.face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: ctx.face,
		Dot:  fixed.Point26_6{X: fixed.I(x - width/2), Y: fixed.I(y + ascent/3)},
	}
	d.DrawString(text)
}
