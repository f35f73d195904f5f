package terminal

import (
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"

	"orthoroute/connections"
	"orthoroute/core"
	"orthoroute/diagram"
	"orthoroute/routing"
)

func route(coords ...float64) core.Route {
	r := make(core.Route, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		r = append(r, core.Pt(coords[i], coords[i+1]))
	}
	return r
}

// newTestEditor returns an editor on a simulated 80x30 screen showing one
// connector c1 = (20,20) → (200,20) → (200,120) → (220,120).
func newTestEditor(t *testing.T, opts ...Option) (*Editor, *connections.Canvas) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 30)

	c := connections.NewCanvas(routing.NewEngine(routing.DefaultOptions()))
	for _, p := range []*connections.Port{
		connections.NewPort("p1", core.Pt(20, 20), core.East, true),
		connections.NewPort("p2", core.Pt(220, 120), core.West, true),
		connections.NewPort("p3", core.Pt(220, 200), core.West, true),
	} {
		if err := c.AddPort(p); err != nil {
			t.Fatalf("AddPort failed: %v", err)
		}
	}
	if _, err := c.Connect("c1", "p1", "p2"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return NewEditor(screen, c, opts...), c
}

func routeOf(t *testing.T, c *connections.Canvas, id string) core.Route {
	t.Helper()
	conn, ok := c.Connector(id)
	if !ok {
		t.Fatalf("connector %s not found", id)
	}
	return conn.Route()
}

func mouse(ed *Editor, x, y int, buttons tcell.ButtonMask, mod tcell.ModMask) {
	ed.handleMouse(tcell.NewEventMouse(x, y, buttons, mod))
}

func key(ed *Editor, r rune) bool {
	return ed.handleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func TestEditor_DragPortAndUndo(t *testing.T) {
	ed, c := newTestEditor(t)
	original := routeOf(t, c, "c1")

	mouse(ed, 22, 12, tcell.Button1, tcell.ModNone)
	mouse(ed, 22, 16, tcell.Button1, tcell.ModNone)
	mouse(ed, 22, 16, tcell.ButtonNone, tcell.ModNone)

	p2, _ := c.Port("p2")
	if p2.Position() != core.Pt(220, 160) {
		t.Errorf("p2 at %v, want (220,160)", p2.Position())
	}
	if got, want := routeOf(t, c, "c1"), route(20, 20, 200, 20, 200, 160, 220, 160); !got.Equal(want) {
		t.Errorf("route after drag = %v, want %v", got, want)
	}
	if current, total := ed.history.Stats(); current != 1 || total != 1 {
		t.Fatalf("history = %d/%d, want 1/1", current, total)
	}

	key(ed, 'u')
	if p2.Position() != core.Pt(220, 120) {
		t.Errorf("p2 after undo at %v, want (220,120)", p2.Position())
	}
	if got := routeOf(t, c, "c1"); !got.Equal(original) {
		t.Errorf("route after undo = %v, want %v", got, original)
	}

	key(ed, 'r')
	if p2.Position() != core.Pt(220, 160) {
		t.Errorf("p2 after redo at %v, want (220,160)", p2.Position())
	}
}

func TestEditor_DragSegment(t *testing.T) {
	ed, c := newTestEditor(t)

	mouse(ed, 20, 7, tcell.Button1, tcell.ModNone)
	mouse(ed, 15, 7, tcell.Button1, tcell.ModNone)
	mouse(ed, 15, 7, tcell.ButtonNone, tcell.ModNone)

	if got, want := routeOf(t, c, "c1"), route(20, 20, 150, 20, 150, 120, 220, 120); !got.Equal(want) {
		t.Errorf("route after segment drag = %v, want %v", got, want)
	}

	ed.undo()
	if got, want := routeOf(t, c, "c1"), route(20, 20, 200, 20, 200, 120, 220, 120); !got.Equal(want) {
		t.Errorf("route after undo = %v, want %v", got, want)
	}
}

func TestEditor_ShiftDragRewires(t *testing.T) {
	ed, c := newTestEditor(t)

	mouse(ed, 22, 12, tcell.Button1, tcell.ModShift)
	mouse(ed, 22, 20, tcell.Button1, tcell.ModShift)
	mouse(ed, 22, 20, tcell.ButtonNone, tcell.ModNone)

	conn, _ := c.Connector("c1")
	if conn.Ends() != [2]string{"p1", "p3"} {
		t.Fatalf("ends = %v, want [p1 p3]", conn.Ends())
	}
	if got := conn.Route(); !got.Last().FuzzyEqual(core.Pt(220, 200)) {
		t.Errorf("route %v does not end at p3", got)
	}

	ed.undo()
	if conn.Ends() != [2]string{"p1", "p2"} {
		t.Errorf("ends after undo = %v, want [p1 p2]", conn.Ends())
	}
}

func TestEditor_ClickOnNothing(t *testing.T) {
	ed, c := newTestEditor(t)

	mouse(ed, 60, 25, tcell.Button1, tcell.ModNone)
	mouse(ed, 60, 25, tcell.ButtonNone, tcell.ModNone)

	if c.Dragging() {
		t.Error("click on empty space started a drag")
	}
	if _, total := ed.history.Stats(); total != 0 {
		t.Errorf("history has %d commands, want 0", total)
	}
}

func TestEditor_Draw(t *testing.T) {
	ed, _ := newTestEditor(t)
	ed.draw()

	tests := []struct {
		x, y int
		want rune
	}{
		{2, 2, '●'},
		{10, 2, '─'},
		{20, 2, '┐'},
		{20, 7, '│'},
		{20, 12, '└'},
		{22, 12, '●'},
	}
	for _, tt := range tests {
		if got, _, _, _ := ed.screen.GetContent(tt.x, tt.y); got != tt.want {
			t.Errorf("cell (%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestEditor_Keys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	ed, _ := newTestEditor(t, WithFilename(path))

	if key(ed, 'x') {
		t.Error("unknown key quit the editor")
	}
	key(ed, 'u')
	if ed.message != "nothing to undo" {
		t.Errorf("message = %q", ed.message)
	}

	key(ed, 's')
	d, err := diagram.Load(path)
	if err != nil {
		t.Fatalf("saved file cannot be loaded: %v", err)
	}
	if len(d.Connections) != 1 || len(d.Ports) != 3 {
		t.Errorf("saved %d connections and %d ports", len(d.Connections), len(d.Ports))
	}

	if !key(ed, 'q') {
		t.Error("q should quit")
	}
	if !ed.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape should quit")
	}
}
