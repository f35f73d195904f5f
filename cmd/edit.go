package cmd

import (
	"github.com/spf13/cobra"

	"orthoroute/editor"
	"orthoroute/terminal"
)

func editCmd(a *app) *cobra.Command {
	var undoLimit int

	cmd := &cobra.Command{
		Use:   "edit <layout>",
		Short: "Drag ports, components and segments in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvas, err := a.loadCanvas(args[0])
			if err != nil {
				return err
			}
			return terminal.Run(canvas,
				terminal.WithFilename(args[0]),
				terminal.WithLogger(a.logger),
				terminal.WithHistory(editor.NewHistory(undoLimit)),
			)
		},
	}

	cmd.Flags().IntVar(&undoLimit, "undo-limit", 100, "Number of edits kept for undo")
	return cmd
}
