package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"orthoroute/config"
	"orthoroute/ui"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return toml.NewEncoder(cmd.OutOrStdout()).Encode(a.cfg)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration if none exists",
			RunE: func(cmd *cobra.Command, args []string) error {
				path := a.configPath
				if path == "" {
					path = config.Path()
				}
				if err := config.EnsureExists(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.StatusIcon(true), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Run: func(cmd *cobra.Command, args []string) {
				path := a.configPath
				if path == "" {
					path = config.Path()
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			},
		},
	)
	return cmd
}
