package main

import "github.com/spf13/cobra"

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, down, status, version, redo, up-to VERSION, ...)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrationsFunc(cli.db, args[0], args[1:]...)
		},
	}
}
