package validation

import (
	"strings"
	"testing"

	"orthoroute/connections"
	"orthoroute/core"
	"orthoroute/routing"
)

func route(coords ...float64) core.Route {
	r := make(core.Route, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		r = append(r, core.Pt(coords[i], coords[i+1]))
	}
	return r
}

func port(id string, x, y float64, d core.Direction) *connections.Port {
	return connections.NewPort(id, core.Pt(x, y), d, true)
}

func TestRouteValidator_ValidateRoute(t *testing.T) {
	tests := []struct {
		name    string
		route   core.Route
		ep1     core.Endpoint
		ep2     core.Endpoint
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid route",
			route: route(0, 0, 180, 0, 180, 100, 200, 100),
			ep1:   port("a", 0, 0, core.East),
			ep2:   port("b", 200, 100, core.West),
		},
		{
			name:  "valid straight route",
			route: route(0, 0, 200, 0),
			ep1:   port("a", 0, 0, core.East),
			ep2:   port("b", 200, 0, core.West),
		},
		{
			name:    "too few points",
			route:   route(0, 0),
			wantErr: true,
			errMsg:  "at least 2",
		},
		{
			name:    "diagonal segment",
			route:   route(0, 0, 50, 0, 100, 100, 120, 100),
			wantErr: true,
			errMsg:  "not axis aligned",
		},
		{
			name:    "duplicate point",
			route:   route(0, 0, 50, 0, 50, 0, 50, 100, 80, 100),
			wantErr: true,
			errMsg:  "duplicate point",
		},
		{
			name:    "collinear point",
			route:   route(0, 0, 30, 0, 60, 0, 60, 100, 90, 100),
			wantErr: true,
			errMsg:  "collinear",
		},
		{
			name:    "not pinned to the start",
			route:   route(0, 10, 200, 10),
			ep1:     port("a", 0, 0, core.East),
			wantErr: true,
			errMsg:  "route starts at",
		},
		{
			name:    "not pinned to the end",
			route:   route(0, 0, 190, 0),
			ep2:     port("b", 200, 0, core.West),
			wantErr: true,
			errMsg:  "route ends at",
		},
		{
			name:    "short stub",
			route:   route(0, 0, 10, 0, 10, 100, 40, 100),
			wantErr: true,
			errMsg:  "stub length",
		},
		{
			name:    "stub against the endpoint direction",
			route:   route(0, 0, 30, 0, 30, 100, 60, 100),
			ep1:     port("a", 0, 0, core.West),
			wantErr: true,
			errMsg:  "stub runs east, endpoint faces west",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRouteValidator(routing.DefaultOptions())
			errors := v.ValidateRoute("c1", tt.route, tt.ep1, tt.ep2)

			if tt.wantErr && len(errors) == 0 {
				t.Errorf("expected errors but got none")
			}
			if !tt.wantErr && len(errors) > 0 {
				t.Errorf("unexpected errors: %v", errors)
			}
			if tt.wantErr && tt.errMsg != "" {
				found := false
				for _, err := range errors {
					if strings.Contains(err.Message, tt.errMsg) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected error containing %q, got %v", tt.errMsg, errors)
				}
			}
		})
	}
}

func TestRouteValidator_StubCheckDisabled(t *testing.T) {
	v := NewRouteValidator(routing.DefaultOptions())
	v.SetStubCheck(false)
	if errors := v.ValidateRoute("c1", route(0, 0, 10, 0, 10, 100, 40, 100), nil, nil); len(errors) > 0 {
		t.Errorf("unexpected errors: %v", errors)
	}
}

func overlappingCanvas(t *testing.T) *connections.Canvas {
	t.Helper()
	c := connections.NewCanvas(routing.NewEngine(routing.DefaultOptions()))
	for _, p := range []*connections.Port{
		port("p1", 0, 0, core.East),
		port("p2", 200, 100, core.West),
		port("p3", 0, 20, core.East),
		port("p4", 200, 140, core.West),
		port("p5", 0, 300, core.East),
		port("p6", 300, 300, core.West),
	} {
		if err := c.AddPort(p); err != nil {
			t.Fatalf("AddPort failed: %v", err)
		}
	}
	if _, err := c.Connect("c1", "p1", "p2"); err != nil {
		t.Fatalf("Connect c1 failed: %v", err)
	}
	if _, err := c.Connect("c2", "p3", "p4"); err != nil {
		t.Fatalf("Connect c2 failed: %v", err)
	}
	if _, err := c.ConnectOffPage("c3", "p5", "p6"); err != nil {
		t.Fatalf("ConnectOffPage c3 failed: %v", err)
	}
	return c
}

func TestRouteValidator_ValidateCanvas(t *testing.T) {
	c := overlappingCanvas(t)
	v := NewRouteValidator(routing.DefaultOptions())

	if errors := v.ValidateCanvas(c); len(errors) > 0 {
		t.Fatalf("freshly connected canvas has errors: %v", errors)
	}

	if err := c.ApplyRoute("c2", route(0, 20, 180, 20, 180, 140, 200, 140)); err != nil {
		t.Fatalf("ApplyRoute failed: %v", err)
	}
	errors := v.ValidateCanvas(c)
	if len(errors) != 2 {
		t.Fatalf("got %d errors %v, want 2", len(errors), errors)
	}
	for i, id := range []string{"c1", "c2"} {
		if errors[i].Connector != id || errors[i].Segment != 1 {
			t.Errorf("error %d = %v, want %s segment 1", i, errors[i], id)
		}
		if !strings.Contains(errors[i].Message, "x=180") {
			t.Errorf("error %d message %q should name x=180", i, errors[i].Message)
		}
	}

	v.SetClearanceCheck(false)
	if errors := v.ValidateCanvas(c); len(errors) > 0 {
		t.Errorf("unexpected errors without clearance check: %v", errors)
	}
}

func TestValidationError_String(t *testing.T) {
	e := ValidationError{Connector: "c1", Segment: 2, Point: core.Pt(10, 20), Message: "duplicate point"}
	if got := e.String(); got != "c1 segment 2 at (10,20): duplicate point" {
		t.Errorf("String() = %q", got)
	}
	e.Segment = -1
	if got := e.Error(); got != "c1 at (10,20): duplicate point" {
		t.Errorf("Error() = %q", got)
	}
}
