package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"orthoroute/obstacles"
	"orthoroute/ui"
	"orthoroute/validation"
)

// errInvalidRoutes is returned when check finds violations.
var errInvalidRoutes = errors.New("layout has invalid routes")

func checkCmd(a *app) *cobra.Command {
	var (
		noClearance bool
		noStubs     bool
		ascii       bool
	)

	cmd := &cobra.Command{
		Use:   "check <layout>",
		Short: "Validate the routes of a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvas, err := a.loadCanvas(args[0])
			if err != nil {
				return err
			}

			v := validation.NewRouteValidator(canvas.Engine().Options())
			v.SetClearanceCheck(!noClearance)
			v.SetStubCheck(!noStubs)
			problems := v.ValidateCanvas(canvas)

			out := cmd.OutOrStdout()
			ui.Banner(out, "route check")

			wires, boxes := obstacles.Snapshot(canvas)
			analysis := obstacles.Analyze(wires, boxes, canvas.Engine().Options().GridSize)
			fmt.Fprintf(out, "  %d connector(s), %d junction(s), %d undercrossing(s), %d line gap(s)\n\n",
				len(canvas.Connectors()), len(analysis.Junctions()),
				len(analysis.Crossings)-len(analysis.Junctions()), len(analysis.Gaps))

			if ascii {
				viz := obstacles.NewDebugVisualizer(canvas.Engine().Options().GridSize)
				fmt.Fprintln(out, viz.Render(wires, boxes, analysis))
				fmt.Fprintln(out, ui.Subtle.Sprint(viz.GetLegend()))
				fmt.Fprintln(out)
			}

			if len(problems) == 0 {
				fmt.Fprintf(out, "  %s all routes valid\n", ui.StatusIcon(true))
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out, "  %s %s\n", ui.StatusIcon(false), p)
			}
			return fmt.Errorf("%w: %d problem(s)", errInvalidRoutes, len(problems))
		},
	}

	cmd.Flags().BoolVar(&noClearance, "no-clearance", false, "Skip the overlap check")
	cmd.Flags().BoolVar(&noStubs, "no-stubs", false, "Skip the stub length and direction checks")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "Print the routes, junctions and gaps as text")
	return cmd
}
