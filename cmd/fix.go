package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orthoroute/ui"
)

func fixCmd(a *app) *cobra.Command {
	var (
		output string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "fix <layout>",
		Short: "Move route segments off each other and save the layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvas, err := a.loadCanvas(args[0])
			if err != nil {
				return err
			}

			records, err := canvas.FixAll()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.Banner(out, "fix overlaps")
			var rows [][]string
			for _, rec := range records {
				rows = append(rows, []string{rec.Connector, rec.Old.String(), rec.New.String()})
			}
			ui.Table(out, []string{"ID", "BEFORE", "AFTER"}, rows)
			fmt.Fprintf(out, "\n  %d route(s) changed\n", len(records))

			if dryRun {
				return nil
			}
			path, err := a.saveCanvas(canvas, args[0], output)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s wrote %s\n", ui.StatusIcon(true), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of the input")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report changes without writing")
	return cmd
}
