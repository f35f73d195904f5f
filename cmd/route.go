package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"orthoroute/connections"
	"orthoroute/ui"
)

func routeCmd(a *app) *cobra.Command {
	var (
		output string
		write  bool
		fresh  bool
	)

	cmd := &cobra.Command{
		Use:   "route <layout>",
		Short: "Route every connection of a layout and list the routes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvas, err := a.loadCanvas(args[0])
			if err != nil {
				return err
			}

			if fresh {
				for _, conn := range canvas.Connectors() {
					if _, _, err := canvas.Reroute(conn.ID); err != nil {
						return err
					}
				}
			}

			out := cmd.OutOrStdout()
			ui.Banner(out, "routes")
			printRoutes(cmd, canvas)

			if write || output != "" {
				path, err := a.saveCanvas(canvas, args[0], output)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n  %s wrote %s\n", ui.StatusIcon(true), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the routed layout to this file")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the routed layout back to the input file")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Discard stored routes and synthesize new ones")
	return cmd
}

func printRoutes(cmd *cobra.Command, canvas *connections.Canvas) {
	var rows [][]string
	for _, conn := range canvas.Connectors() {
		ends := conn.Ends()
		mode := "normal"
		if conn.Mode() == connections.RoutingOffPage {
			mode = "off-page"
		}
		route := conn.Route()
		rows = append(rows, []string{
			conn.ID, ends[0], ends[1], mode, strconv.Itoa(len(route)), route.String(),
		})
	}
	ui.Table(cmd.OutOrStdout(), []string{"ID", "FROM", "TO", "MODE", "POINTS", "ROUTE"}, rows)
}
