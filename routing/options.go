// Package routing computes, simplifies, incrementally updates and declutters
// orthogonal connector routes between two endpoints.
package routing

import (
	"errors"
	"io"
	"log/slog"
)

// ErrNoConvergence is returned when an iterative step hits its iteration cap.
// The returned route is still usable; it is the best state reached.
var ErrNoConvergence = errors.New("routing: iteration cap reached without convergence")

// Options holds the tunable constants of the engine. Each canvas owns its own
// Options so canvases with different grid scales can coexist.
type Options struct {
	GridSize       float64 // Snap unit and clearance search step
	MinLength      float64 // Minimum free interior segment length
	MinStartLength float64 // Minimum stub length at a fixed-direction endpoint
	MaxSteps       int     // Synthesis step cap

	Clearance      float64 // Minimum distance between same-orientation segments (0 = coincident only)
	LeftMargin     float64 // Vertical segments never move left of this X
	TopMargin      float64 // Horizontal segments never move above this Y
	MaxCoordinate  float64 // Upper X limit for vertical segment moves
	VerticalWindow float64 // Half height of the search window for horizontal segments
	MaxPasses      int     // Clearance fixpoint pass cap
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		GridSize:       10,
		MinLength:      10,
		MinStartLength: 20,
		MaxSteps:       64,
		Clearance:      0,
		LeftMargin:     10,
		TopMargin:      30,
		MaxCoordinate:  100000,
		VerticalWindow: 500,
		MaxPasses:      64,
	}
}

// normalized fills in zero values with defaults.
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.GridSize <= 0 {
		o.GridSize = def.GridSize
	}
	if o.MinLength <= 0 {
		o.MinLength = def.MinLength
	}
	if o.MinStartLength <= 0 {
		o.MinStartLength = def.MinStartLength
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = def.MaxSteps
	}
	if o.Clearance < 0 {
		o.Clearance = 0
	}
	if o.MaxCoordinate <= 0 {
		o.MaxCoordinate = def.MaxCoordinate
	}
	if o.VerticalWindow <= 0 {
		o.VerticalWindow = def.VerticalWindow
	}
	if o.MaxPasses <= 0 {
		o.MaxPasses = def.MaxPasses
	}
	return o
}

// Engine runs the routing algorithms with a fixed set of options.
// It holds no per-route state and may be shared by all connectors of a canvas.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug and warning output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine. Zero option values fall back to the defaults.
func NewEngine(opts Options, options ...Option) *Engine {
	e := &Engine{
		opts:   opts.normalized(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Options returns the options the engine runs with.
func (e *Engine) Options() Options {
	return e.opts
}
