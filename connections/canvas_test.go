package connections

import (
	"errors"
	"testing"

	"orthoroute/core"
	"orthoroute/diagram"
	"orthoroute/geometry"
	"orthoroute/routing"
)

func route(coords ...float64) core.Route {
	r := make(core.Route, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		r = append(r, core.Pt(coords[i], coords[i+1]))
	}
	return r
}

func newTestCanvas(t *testing.T, ports ...*Port) *Canvas {
	t.Helper()
	c := NewCanvas(routing.NewEngine(routing.DefaultOptions()))
	for _, p := range ports {
		if err := c.AddPort(p); err != nil {
			t.Fatalf("AddPort(%s) failed: %v", p.ID, err)
		}
	}
	return c
}

func fixedPort(id string, x, y float64, d core.Direction) *Port {
	return NewPort(id, core.Pt(x, y), d, true)
}

// parallelCanvas holds two connectors whose natural routes share a vertical
// line at x=180.
func parallelCanvas(t *testing.T) *Canvas {
	t.Helper()
	c := newTestCanvas(t,
		fixedPort("p1", 0, 0, core.East),
		fixedPort("p2", 200, 100, core.West),
		fixedPort("p3", 0, 20, core.East),
		fixedPort("p4", 200, 140, core.West),
	)
	if _, err := c.Connect("c1", "p1", "p2"); err != nil {
		t.Fatalf("Connect c1 failed: %v", err)
	}
	if _, err := c.Connect("c2", "p3", "p4"); err != nil {
		t.Fatalf("Connect c2 failed: %v", err)
	}
	return c
}

func routeOf(t *testing.T, c *Canvas, id string) core.Route {
	t.Helper()
	conn, ok := c.Connector(id)
	if !ok {
		t.Fatalf("connector %s not found", id)
	}
	return conn.Route()
}

func checkOrthogonal(t *testing.T, r core.Route) {
	t.Helper()
	for i := 0; i < len(r)-1; i++ {
		sameX := geometry.FuzzyEqual(r[i].X, r[i+1].X)
		sameY := geometry.FuzzyEqual(r[i].Y, r[i+1].Y)
		if sameX == sameY {
			t.Errorf("segment %d of %v is not axis aligned", i, r)
		}
	}
}

func TestCanvas_ConnectAvoidsOverlap(t *testing.T) {
	c := parallelCanvas(t)

	if got, want := routeOf(t, c, "c1"), route(0, 0, 180, 0, 180, 100, 200, 100); !got.Equal(want) {
		t.Errorf("c1 = %v, want %v", got, want)
	}
	if got, want := routeOf(t, c, "c2"), route(0, 20, 170, 20, 170, 140, 200, 140); !got.Equal(want) {
		t.Errorf("c2 = %v, want %v", got, want)
	}
}

func TestCanvas_ConnectErrors(t *testing.T) {
	c := parallelCanvas(t)

	tests := []struct {
		name     string
		id       string
		from, to string
		want     error
	}{
		{"Unknown source", "x", "nope", "p2", ErrUnknownEndpoint},
		{"Unknown target", "x", "p1", "nope", ErrUnknownEndpoint},
		{"Duplicate connector", "c1", "p1", "p4", ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Connect(tt.id, tt.from, tt.to)
			if !errors.Is(err, tt.want) {
				t.Errorf("Connect error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := c.Connect("self", "p1", "p1"); err == nil {
		t.Error("connecting a port to itself should fail")
	}
	if err := c.AddPort(fixedPort("p1", 0, 0, core.East)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("AddPort error = %v, want ErrDuplicateID", err)
	}
	if err := c.Disconnect("nope"); !errors.Is(err, ErrUnknownConnector) {
		t.Errorf("Disconnect error = %v, want ErrUnknownConnector", err)
	}
}

func TestCanvas_OtherRoutesSkipsSharedEndpoints(t *testing.T) {
	c := parallelCanvas(t)
	if _, err := c.Connect("c3", "p1", "p4"); err != nil {
		t.Fatalf("Connect c3 failed: %v", err)
	}

	c3, _ := c.Connector("c3")
	if got := c.OtherRoutes(c3); len(got) != 0 {
		t.Errorf("c3 shares ports with c1 and c2, got %d other routes", len(got))
	}

	c2, _ := c.Connector("c2")
	got := c.OtherRoutes(c2)
	if len(got) != 1 || !got[0].Equal(routeOf(t, c, "c1")) {
		t.Errorf("OtherRoutes(c2) = %v, want only c1", got)
	}

	if got, want := routeOf(t, c, "c3"), route(0, 0, 180, 0, 180, 140, 200, 140); !got.Equal(want) {
		t.Errorf("c3 = %v, want %v", got, want)
	}
}

func TestCanvas_EndpointMovedCommitsImmediately(t *testing.T) {
	c := parallelCanvas(t)
	before := routeOf(t, c, "c2")

	records, err := c.Handle(EndpointMoved{Port: "p4", Position: core.Pt(200, 160)})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Connector != "c2" {
		t.Errorf("record for %q, want c2", rec.Connector)
	}
	if !rec.Old.Equal(before) {
		t.Errorf("record old = %v, want %v", rec.Old, before)
	}
	want := route(0, 20, 170, 20, 170, 160, 200, 160)
	if !rec.New.Equal(want) || !routeOf(t, c, "c2").Equal(want) {
		t.Errorf("record new = %v, want %v", rec.New, want)
	}
	if rec.Rewired() {
		t.Error("plain move reported as rewiring")
	}
}

func TestCanvas_PortDragCommitsOnRelease(t *testing.T) {
	c := parallelCanvas(t)
	before := routeOf(t, c, "c2")

	events := []Event{
		DragStarted{Kind: DragPort, ID: "p4"},
		EndpointMoved{Port: "p4", Position: core.Pt(200, 150)},
		EndpointMoved{Port: "p4", Position: core.Pt(200, 160)},
	}
	for _, ev := range events {
		records, err := c.Handle(ev)
		if err != nil {
			t.Fatalf("Handle(%T) failed: %v", ev, err)
		}
		if len(records) != 0 {
			t.Errorf("Handle(%T) committed %d records during the drag", ev, len(records))
		}
	}
	if !c.Dragging() {
		t.Fatal("expected a drag in progress")
	}

	records, err := c.Handle(DragReleased{})
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if !records[0].Old.Equal(before) {
		t.Errorf("old = %v, want pre-drag %v", records[0].Old, before)
	}
	if last := records[0].New.Last(); last != core.Pt(200, 160) {
		t.Errorf("route ends at %v, want (200,160)", last)
	}
	if c.Dragging() {
		t.Error("drag still active after release")
	}

	if _, err := c.Handle(DragReleased{}); !errors.Is(err, ErrNoDrag) {
		t.Errorf("second release error = %v, want ErrNoDrag", err)
	}
}

func TestCanvas_ComponentMoved(t *testing.T) {
	c := NewCanvas(routing.NewEngine(routing.DefaultOptions()))

	src := NewComponent("src", "Source", 40, 40, 60, 60)
	src.AddPort(fixedPort("s.out", 100, 70, core.East))
	dst := NewComponent("dst", "Sink", 300, 200, 60, 60)
	dst.AddPort(fixedPort("d.in", 300, 230, core.West))

	for _, comp := range []*Component{src, dst} {
		if err := c.AddComponent(comp); err != nil {
			t.Fatalf("AddComponent failed: %v", err)
		}
	}
	if _, err := c.Connect("link", "s.out", "d.in"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if got, want := routeOf(t, c, "link"), route(100, 70, 280, 70, 280, 230, 300, 230); !got.Equal(want) {
		t.Fatalf("initial route = %v, want %v", got, want)
	}

	records, err := c.Handle(ComponentMoved{Component: "dst", Delta: core.Pt(0, 20)})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if got, want := routeOf(t, c, "link"), route(100, 70, 280, 70, 280, 250, 300, 250); !got.Equal(want) {
		t.Errorf("after move = %v, want %v", got, want)
	}
	if dst.Rect.MinY != 220 {
		t.Errorf("component top = %g, want 220", dst.Rect.MinY)
	}

	if _, err := c.Handle(ComponentMoved{Component: "src", Delta: core.Pt(20, 0)}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if got, want := routeOf(t, c, "link"), route(120, 70, 280, 70, 280, 250, 300, 250); !got.Equal(want) {
		t.Errorf("after second move = %v, want %v", got, want)
	}

	if _, err := c.Handle(ComponentMoved{Component: "nope"}); !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("error = %v, want ErrUnknownComponent", err)
	}
}

func TestCanvas_SegmentDrag(t *testing.T) {
	c := newTestCanvas(t,
		fixedPort("p1", 0, 0, core.East),
		fixedPort("p2", 200, 100, core.West),
	)
	if _, err := c.Connect("c1", "p1", "p2"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Handle(SegmentDragged{Connector: "c1", Position: core.Pt(120, 50)}); !errors.Is(err, ErrNoDrag) {
		t.Errorf("drag without start error = %v, want ErrNoDrag", err)
	}
	if _, err := c.Handle(DragStarted{Kind: DragSegment, ID: "c1", Position: core.Pt(100, 0)}); !errors.Is(err, ErrNothingToDrag) {
		t.Errorf("stub drag error = %v, want ErrNothingToDrag", err)
	}

	if _, err := c.Handle(DragStarted{Kind: DragSegment, ID: "c1", Position: core.Pt(180, 50)}); err != nil {
		t.Fatalf("DragStarted failed: %v", err)
	}
	if _, err := c.Handle(DragStarted{Kind: DragPort, ID: "p1"}); !errors.Is(err, ErrDragInProgress) {
		t.Errorf("nested drag error = %v, want ErrDragInProgress", err)
	}
	if _, err := c.Handle(SegmentDragged{Connector: "c1", Position: core.Pt(120, 50)}); err != nil {
		t.Fatalf("SegmentDragged failed: %v", err)
	}

	records, err := c.Handle(DragReleased{})
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	want := route(0, 0, 120, 0, 120, 100, 200, 100)
	if len(records) != 1 || !records[0].New.Equal(want) {
		t.Errorf("records = %+v, want new route %v", records, want)
	}
}

func TestCanvas_EndDragRewires(t *testing.T) {
	c := newTestCanvas(t,
		fixedPort("p1", 0, 0, core.East),
		fixedPort("p2", 200, 100, core.West),
		fixedPort("p5", 200, 200, core.West),
	)
	if _, err := c.Connect("c1", "p1", "p2"); err != nil {
		t.Fatal(err)
	}
	original := routeOf(t, c, "c1")

	events := []Event{
		DragStarted{Kind: DragEnd, ID: "c1", Position: core.Pt(200, 100)},
		EndDragged{Connector: "c1", Position: core.Pt(200, 200)},
	}
	for _, ev := range events {
		if _, err := c.Handle(ev); err != nil {
			t.Fatalf("Handle(%T) failed: %v", ev, err)
		}
	}
	records, err := c.Handle(DragReleased{})
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if !rec.Rewired() || rec.NewEnds != [2]string{"p1", "p5"} {
		t.Errorf("ends = %v -> %v, want rewiring to p5", rec.OldEnds, rec.NewEnds)
	}
	if want := route(0, 0, 180, 0, 180, 200, 200, 200); !rec.New.Equal(want) {
		t.Errorf("new route = %v, want %v", rec.New, want)
	}

	if err := c.Apply(rec, true); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	conn, _ := c.Connector("c1")
	if conn.Endpoint2().ID != "p2" || !conn.Route().Equal(original) {
		t.Errorf("undo left %s with %v", conn.Endpoint2().ID, conn.Route())
	}
}

func TestCanvas_EndDropOffPortRestores(t *testing.T) {
	c := newTestCanvas(t,
		fixedPort("p1", 0, 0, core.East),
		fixedPort("p2", 200, 100, core.West),
	)
	if _, err := c.Connect("c1", "p1", "p2"); err != nil {
		t.Fatal(err)
	}
	original := routeOf(t, c, "c1")

	for _, ev := range []Event{
		DragStarted{Kind: DragEnd, ID: "c1", Position: core.Pt(0, 0)},
		EndDragged{Connector: "c1", Position: core.Pt(50, 300)},
	} {
		if _, err := c.Handle(ev); err != nil {
			t.Fatalf("Handle(%T) failed: %v", ev, err)
		}
	}
	records, err := c.Handle(DragReleased{})
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("dropping off a port should not change anything, got %+v", records)
	}
	if got := routeOf(t, c, "c1"); !got.Equal(original) {
		t.Errorf("route = %v, want restored %v", got, original)
	}
}

func TestCanvas_OffPage(t *testing.T) {
	c := parallelCanvas(t)
	conn, err := c.ConnectOffPage("op", "p1", "p4")
	if err != nil {
		t.Fatalf("ConnectOffPage failed: %v", err)
	}
	if got := conn.Route(); !got.Equal(route(0, 0, 200, 140)) {
		t.Errorf("off-page route = %v, want straight line", got)
	}

	c1, _ := c.Connector("c1")
	for _, r := range c.OtherRoutes(c1) {
		if len(r) == 2 && r[1] == core.Pt(200, 140) {
			t.Error("off-page route must not be an obstacle")
		}
	}

	if _, err := c.Handle(EndpointMoved{Port: "p4", Position: core.Pt(220, 140)}); err != nil {
		t.Fatal(err)
	}
	if got := routeOf(t, c, "op"); !got.Equal(route(0, 0, 220, 140)) {
		t.Errorf("off-page route after move = %v", got)
	}

	rec, changed, err := c.SetMode("op", RoutingNormal)
	if err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	if !changed || len(rec.New) < 3 {
		t.Errorf("switching to normal routing should reroute, got %v", rec.New)
	}
	checkOrthogonal(t, routeOf(t, c, "op"))
}

func TestCanvas_FixAll(t *testing.T) {
	c := parallelCanvas(t)
	if err := c.ApplyRoute("c2", route(0, 20, 180, 20, 180, 140, 200, 140)); err != nil {
		t.Fatal(err)
	}

	records, err := c.FixAll()
	if err != nil {
		t.Fatalf("FixAll failed: %v", err)
	}
	// c1 is fixed first and steps aside from the moved c2.
	if len(records) != 1 || records[0].Connector != "c1" {
		t.Fatalf("records = %+v, want one for c1", records)
	}
	if got, want := routeOf(t, c, "c1"), route(0, 0, 170, 0, 170, 100, 200, 100); !got.Equal(want) {
		t.Errorf("c1 = %v, want %v", got, want)
	}
	if got, want := routeOf(t, c, "c2"), route(0, 20, 180, 20, 180, 140, 200, 140); !got.Equal(want) {
		t.Errorf("c2 = %v, want %v", got, want)
	}
}

func TestCanvas_HitTesting(t *testing.T) {
	c := parallelCanvas(t)
	comp := NewComponent("box", "Box", 300, 300, 50, 50)
	if err := c.AddComponent(comp); err != nil {
		t.Fatal(err)
	}

	if p, ok := c.PortAt(core.Pt(198, 102), 5); !ok || p.ID != "p2" {
		t.Errorf("PortAt = %v, %v, want p2", p, ok)
	}
	if _, ok := c.PortAt(core.Pt(100, 300), 5); ok {
		t.Error("PortAt found a port far away")
	}
	if got, ok := c.ComponentAt(core.Pt(320, 320)); !ok || got.ID != "box" {
		t.Errorf("ComponentAt = %v, %v, want box", got, ok)
	}
	if conn, ok := c.ConnectorAt(core.Pt(171, 80), 2); !ok || conn.ID != "c2" {
		t.Errorf("ConnectorAt = %v, %v, want c2", conn, ok)
	}
}

func TestCanvas_DiagramRoundTrip(t *testing.T) {
	d := &diagram.Diagram{
		Components: []diagram.Component{{
			ID: "cpu", X: 40, Y: 40, Width: 100, Height: 80,
			Ports: []diagram.Port{{ID: "cpu.out", X: 140, Y: 80, Direction: "east", Fixed: true}},
		}},
		Ports: []diagram.Port{{ID: "mem.in", X: 300, Y: 240, Direction: "west", Fixed: true}},
		Connections: []diagram.Connection{
			{ID: "bus", From: "cpu.out", To: "mem.in"},
		},
	}

	c, err := FromDiagram(d, routing.NewEngine(routing.DefaultOptions()))
	if err != nil {
		t.Fatalf("FromDiagram failed: %v", err)
	}
	want := route(140, 80, 280, 80, 280, 240, 300, 240)
	if got := routeOf(t, c, "bus"); !got.Equal(want) {
		t.Errorf("bus = %v, want %v", got, want)
	}

	out := c.ToDiagram()
	if len(out.Components) != 1 || len(out.Components[0].Ports) != 1 {
		t.Fatalf("components = %+v", out.Components)
	}
	if len(out.Ports) != 1 || out.Ports[0].Direction != "west" {
		t.Errorf("free ports = %+v", out.Ports)
	}
	if got := core.Route(out.Connections[0].Route); !got.Equal(want) {
		t.Errorf("stored route = %v, want %v", got, want)
	}

	reloaded, err := FromDiagram(out, routing.NewEngine(routing.DefaultOptions()))
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := routeOf(t, reloaded, "bus"); !got.Equal(want) {
		t.Errorf("reloaded bus = %v, want %v", got, want)
	}
}

func TestFromDiagram_Errors(t *testing.T) {
	engine := routing.NewEngine(routing.DefaultOptions())

	badDirection := &diagram.Diagram{Ports: []diagram.Port{{ID: "p", Direction: "sideways"}}}
	if _, err := FromDiagram(badDirection, engine); !errors.Is(err, core.ErrUnknownDirection) {
		t.Errorf("error = %v, want ErrUnknownDirection", err)
	}

	missingPort := &diagram.Diagram{
		Ports:       []diagram.Port{{ID: "a"}},
		Connections: []diagram.Connection{{ID: "x", From: "a", To: "b"}},
	}
	if _, err := FromDiagram(missingPort, engine); !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("error = %v, want ErrUnknownEndpoint", err)
	}
}

func TestCanvas_Reroute(t *testing.T) {
	c := parallelCanvas(t)
	if err := c.ApplyRoute("c1", route(0, 0, 100, 0, 100, 100, 200, 100)); err != nil {
		t.Fatal(err)
	}

	rec, changed, err := c.Reroute("c1")
	if err != nil {
		t.Fatalf("Reroute failed: %v", err)
	}
	if !changed {
		t.Fatal("Reroute should report a change")
	}
	if want := route(0, 0, 180, 0, 180, 100, 200, 100); !rec.New.Equal(want) {
		t.Errorf("rerouted = %v, want %v", rec.New, want)
	}
	if !rec.Old.Equal(route(0, 0, 100, 0, 100, 100, 200, 100)) {
		t.Errorf("old route = %v", rec.Old)
	}

	if _, _, err := c.Reroute("missing"); !errors.Is(err, ErrUnknownConnector) {
		t.Errorf("error = %v, want ErrUnknownConnector", err)
	}
}
