// Package cmd is the orthoroute command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"orthoroute/config"
	"orthoroute/connections"
	"orthoroute/diagram"
	"orthoroute/routing"
	"orthoroute/ui"
)

var version = "0.3.0"

// app holds the state shared by the commands of one invocation.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "orthoroute",
		Short: "orthoroute: orthogonal connector routing",
		Long: ui.Brand.Sprint("orthoroute") + " - route, declutter and edit orthogonal connectors\n" +
			ui.Subtle.Sprint("Layouts are JSON or YAML files of components, ports and connections"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.SetVersionTemplate("orthoroute {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+config.Path()+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		routeCmd(a),
		fixCmd(a),
		checkCmd(a),
		renderCmd(a),
		editCmd(a),
		configCmd(a),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		ui.Bad.Fprintf(os.Stderr, "orthoroute: %v\n", err)
		return err
	}
	return nil
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// loadCanvas reads a layout and routes it with the configured engine.
func (a *app) loadCanvas(path string) (*connections.Canvas, error) {
	d, err := diagram.Load(path)
	if err != nil {
		return nil, err
	}

	engine := routing.NewEngine(a.cfg.RoutingOptions(), routing.WithLogger(a.logger))
	canvas, err := connections.FromDiagram(d, engine, connections.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	a.logger.Debug("layout loaded", slog.String("path", path))
	return canvas, nil
}

// saveCanvas writes the canvas to output, or back to input when output is
// empty.
func (a *app) saveCanvas(canvas *connections.Canvas, input, output string) (string, error) {
	if output == "" {
		output = input
	}
	if err := diagram.Save(output, canvas.ToDiagram()); err != nil {
		return "", err
	}
	return output, nil
}
