package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password. The password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			if err = cli.usrSvc.ResetPassword(cmd.Context(), email, pwd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "the user's email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
