// Package terminal is the interactive host: it shows a canvas in the
// terminal and turns mouse drags into canvas events, with undo and redo.
package terminal

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/gdamore/tcell/v2"

	"orthoroute/connections"
	"orthoroute/core"
	"orthoroute/diagram"
	"orthoroute/editor"
)

var (
	styleRoute     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleOffPage   = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleComponent = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	stylePort      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus    = tcell.StyleDefault.Reverse(true)
)

// Editor drives one canvas on a tcell screen.
type Editor struct {
	screen   tcell.Screen
	canvas   *connections.Canvas
	history  *editor.History
	logger   *slog.Logger
	filename string

	cell    float64 // Canvas units per terminal cell
	originX float64 // Canvas coordinate of the left column
	originY float64 // Canvas coordinate of the top row

	drag    *dragState
	message string
}

// dragState tracks the mouse drag in progress.
type dragState struct {
	kind      connections.DragKind
	id        string
	last      core.Point
	placement *editor.Placement
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger for failed edits.
func WithLogger(logger *slog.Logger) Option {
	return func(ed *Editor) {
		ed.logger = logger
	}
}

// WithFilename sets the file written on save.
func WithFilename(filename string) Option {
	return func(ed *Editor) {
		ed.filename = filename
	}
}

// WithHistory sets the undo history.
func WithHistory(h *editor.History) Option {
	return func(ed *Editor) {
		ed.history = h
	}
}

// NewEditor creates an editor on an initialized screen. One cell spans one
// grid step of the canvas.
func NewEditor(screen tcell.Screen, canvas *connections.Canvas, opts ...Option) *Editor {
	ed := &Editor{
		screen:  screen,
		canvas:  canvas,
		history: editor.NewHistory(100),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		cell:    canvas.Engine().Options().GridSize,
	}
	for _, opt := range opts {
		opt(ed)
	}
	return ed
}

// Run initializes the screen and processes events until the user quits.
func Run(canvas *connections.Canvas, opts ...Option) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	screen.EnableMouse()
	screen.Clear()

	NewEditor(screen, canvas, opts...).run()
	return nil
}

func (ed *Editor) run() {
	for {
		ed.draw()
		ed.screen.Show()

		switch ev := ed.screen.PollEvent().(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case nil:
			return
		}
	}
}

// handleKey processes a key press and reports whether to quit.
func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlZ:
		ed.undo()
	case tcell.KeyCtrlY:
		ed.redo()
	case tcell.KeyCtrlS:
		ed.save()
	case tcell.KeyLeft:
		ed.originX -= ed.cell * 4
	case tcell.KeyRight:
		ed.originX += ed.cell * 4
	case tcell.KeyUp:
		ed.originY -= ed.cell * 2
	case tcell.KeyDown:
		ed.originY += ed.cell * 2
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'u':
			ed.undo()
		case 'r':
			ed.redo()
		case 's':
			ed.save()
		case 'f':
			ed.fixAll()
		}
	}
	return false
}

// handleMouse maps button one press, motion and release onto a drag.
func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pos := ed.toCanvas(x, y)
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && ed.drag == nil:
		ed.startDrag(pos, ev.Modifiers()&tcell.ModShift != 0)
	case pressed:
		ed.moveDrag(pos)
	case ed.drag != nil:
		ed.endDrag()
	}
}

// startDrag picks what is under pos: a port (or, with shift, the end of a
// connector bound to it), then a component, then a connector segment.
func (ed *Editor) startDrag(pos core.Point, shift bool) {
	drag := &dragState{last: pos.Snap(ed.cell)}

	if port, ok := ed.canvas.PortAt(pos, ed.cell); ok {
		drag.kind, drag.id = connections.DragPort, port.ID
		drag.placement = &editor.Placement{Port: port.ID, Old: port.Position()}
		if conns := ed.canvas.ConnectorsAt(port.ID); shift && len(conns) > 0 {
			drag.kind, drag.id = connections.DragEnd, conns[0].ID
			drag.placement = nil
			pos = port.Position()
		}
	} else if comp, ok := ed.canvas.ComponentAt(pos); ok {
		drag.kind, drag.id = connections.DragComponent, comp.ID
		drag.placement = &editor.Placement{Component: comp.ID, Old: comp.Origin()}
	} else if conn, ok := ed.canvas.ConnectorAt(pos, ed.cell/2); ok {
		drag.kind, drag.id = connections.DragSegment, conn.ID
	} else {
		return
	}

	if _, err := ed.canvas.Handle(connections.DragStarted{Kind: drag.kind, ID: drag.id, Position: pos}); err != nil {
		ed.message = err.Error()
		return
	}
	ed.drag = drag
	ed.message = fmt.Sprintf("dragging %s %s", drag.kind, drag.id)
}

func (ed *Editor) moveDrag(pos core.Point) {
	snapped := pos.Snap(ed.cell)
	if snapped.FuzzyEqual(ed.drag.last) {
		return
	}

	var ev connections.Event
	switch ed.drag.kind {
	case connections.DragPort:
		ev = connections.EndpointMoved{Port: ed.drag.id, Position: snapped}
	case connections.DragComponent:
		ev = connections.ComponentMoved{Component: ed.drag.id, Delta: snapped.Sub(ed.drag.last)}
	case connections.DragSegment:
		ev = connections.SegmentDragged{Connector: ed.drag.id, Position: snapped}
	case connections.DragEnd:
		ev = connections.EndDragged{Connector: ed.drag.id, Position: snapped}
	}
	ed.drag.last = snapped

	if _, err := ed.canvas.Handle(ev); err != nil {
		ed.logger.Warn("drag event failed", slog.Any("error", err))
	}
}

func (ed *Editor) endDrag() {
	drag := ed.drag
	ed.drag = nil

	records, err := ed.canvas.Handle(connections.DragReleased{})
	if err != nil {
		ed.message = err.Error()
		return
	}

	cmd := editor.Command{
		Label:   fmt.Sprintf("move %s %s", drag.kind, drag.id),
		Records: records,
	}
	if p := drag.placement; p != nil {
		p.New = ed.currentPlacement(p)
		if !p.New.FuzzyEqual(p.Old) {
			cmd.Placements = append(cmd.Placements, *p)
		}
	}
	ed.history.Push(cmd)
	ed.message = fmt.Sprintf("%s: %d route(s) changed", cmd.Label, len(records))
}

func (ed *Editor) currentPlacement(p *editor.Placement) core.Point {
	if p.Component != "" {
		if comp, ok := ed.canvas.Component(p.Component); ok {
			return comp.Origin()
		}
		return p.Old
	}
	if port, ok := ed.canvas.Port(p.Port); ok {
		return port.Position()
	}
	return p.Old
}

func (ed *Editor) undo() {
	cmd, ok, err := ed.history.Undo(ed.canvas)
	switch {
	case err != nil:
		ed.message = err.Error()
	case !ok:
		ed.message = "nothing to undo"
	default:
		ed.message = "undo " + cmd.Label
	}
}

func (ed *Editor) redo() {
	cmd, ok, err := ed.history.Redo(ed.canvas)
	switch {
	case err != nil:
		ed.message = err.Error()
	case !ok:
		ed.message = "nothing to redo"
	default:
		ed.message = "redo " + cmd.Label
	}
}

func (ed *Editor) fixAll() {
	records, err := ed.canvas.FixAll()
	if err != nil {
		ed.message = err.Error()
		return
	}
	ed.history.Push(editor.Command{Label: "fix overlaps", Records: records})
	ed.message = fmt.Sprintf("fixed %d route(s)", len(records))
}

func (ed *Editor) save() {
	if ed.filename == "" {
		ed.message = "no file to save to"
		return
	}
	if err := diagram.Save(ed.filename, ed.canvas.ToDiagram()); err != nil {
		ed.message = err.Error()
		return
	}
	ed.message = "saved " + ed.filename
}

func (ed *Editor) toCanvas(x, y int) core.Point {
	return core.Pt(ed.originX+float64(x)*ed.cell, ed.originY+float64(y)*ed.cell)
}

func (ed *Editor) toCell(p core.Point) (int, int) {
	return int(math.Round((p.X - ed.originX) / ed.cell)), int(math.Round((p.Y - ed.originY) / ed.cell))
}

func (ed *Editor) draw() {
	ed.screen.Clear()

	for _, comp := range ed.canvas.Components() {
		ed.drawComponent(comp)
	}
	for _, conn := range ed.canvas.Connectors() {
		style := styleRoute
		if conn.Mode() == connections.RoutingOffPage {
			style = styleOffPage
		}
		ed.drawRoute(conn.Route(), style)
	}
	for _, p := range ed.canvas.Ports() {
		x, y := ed.toCell(p.Position())
		ed.screen.SetContent(x, y, '●', nil, stylePort)
	}

	ed.drawStatus()
}

func (ed *Editor) drawComponent(comp *connections.Component) {
	x1, y1 := ed.toCell(core.Pt(comp.Rect.MinX, comp.Rect.MinY))
	x2, y2 := ed.toCell(core.Pt(comp.Rect.MaxX, comp.Rect.MaxY))
	for x := x1 + 1; x < x2; x++ {
		ed.screen.SetContent(x, y1, '─', nil, styleComponent)
		ed.screen.SetContent(x, y2, '─', nil, styleComponent)
	}
	for y := y1 + 1; y < y2; y++ {
		ed.screen.SetContent(x1, y, '│', nil, styleComponent)
		ed.screen.SetContent(x2, y, '│', nil, styleComponent)
	}
	ed.screen.SetContent(x1, y1, '╭', nil, styleComponent)
	ed.screen.SetContent(x2, y1, '╮', nil, styleComponent)
	ed.screen.SetContent(x1, y2, '╰', nil, styleComponent)
	ed.screen.SetContent(x2, y2, '╯', nil, styleComponent)
	ed.drawText(x1+1, (y1+y2)/2, comp.Name, styleComponent)
}

func (ed *Editor) drawRoute(route core.Route, style tcell.Style) {
	for _, seg := range route.Segments() {
		x1, y1 := ed.toCell(seg.From)
		x2, y2 := ed.toCell(seg.To)
		ch := '─'
		if x1 == x2 {
			ch = '│'
		}
		for x := min(x1, x2); x <= max(x1, x2); x++ {
			for y := min(y1, y2); y <= max(y1, y2); y++ {
				ed.screen.SetContent(x, y, ch, nil, style)
			}
		}
	}

	for i := 1; i < len(route)-1; i++ {
		x, y := ed.toCell(route[i])
		ed.screen.SetContent(x, y, corner(
			core.DirectionOf(route[i-1].Sub(route[i])),
			core.DirectionOf(route[i+1].Sub(route[i])),
		), nil, style)
	}
}

// corner returns the box drawing rune joining the two directions.
func corner(a, b core.Direction) rune {
	has := func(d core.Direction) bool { return a == d || b == d }
	switch {
	case has(core.West) && has(core.South):
		return '┐'
	case has(core.East) && has(core.South):
		return '┌'
	case has(core.West) && has(core.North):
		return '┘'
	case has(core.East) && has(core.North):
		return '└'
	case has(core.North) || has(core.South):
		return '│'
	default:
		return '─'
	}
}

func (ed *Editor) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		ed.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (ed *Editor) drawStatus() {
	w, h := ed.screen.Size()
	current, total := ed.history.Stats()
	status := fmt.Sprintf(" %s  [%d/%d]  drag: move  shift+drag: rewire  u/r: undo/redo  f: fix  s: save  q: quit ", ed.message, current, total)

	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, h-1, ' ', nil, styleStatus)
	}
	ed.drawText(0, h-1, status, styleStatus)
}
