package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"orthoroute/render"
	"orthoroute/ui"
)

func renderCmd(a *app) *cobra.Command {
	var (
		output   string
		scale    float64
		noLabels bool
	)

	cmd := &cobra.Command{
		Use:   "render <layout>",
		Short: "Draw a layout as a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvas, err := a.loadCanvas(args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
			}

			opts := render.DefaultPNGOptions()
			opts.Scale = a.cfg.Render.Scale
			opts.Labels = a.cfg.Render.Labels && !noLabels
			if cmd.Flags().Changed("scale") {
				opts.Scale = scale
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := render.RenderPNG(canvas, f, opts); err != nil {
				return fmt.Errorf("render %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s wrote %s\n", ui.StatusIcon(true), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file (default: layout name with .png)")
	cmd.Flags().Float64Var(&scale, "scale", 2, "Pixels per canvas unit")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "Leave out component and connector names")
	return cmd
}
