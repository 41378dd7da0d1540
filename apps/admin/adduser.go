package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/user"
)

// addUserCmd updates or creates a user.User
func (cli *commandLine) addUserCmd() *cobra.Command {
	var name, email, role string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the one with this email. The password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !validRole(role) {
				return errors.Errorf("invalid role %q", role)
			}
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			usr, err := cli.usrSvc.AddUser(cmd.Context(), name, email, role, pwd)
			if err != nil {
				return errors.Wrap(err, "adding user")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User #%d (%s) saved as %s\n", usr.ID, usr.Email, usr.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "the user's name")
	cmd.Flags().StringVar(&email, "email", "", "the user's email")
	cmd.Flags().StringVar(&role, "role", user.RoleTeacher, "one of: student, teacher")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func validRole(role string) bool {
	for _, r := range user.AllRoles {
		if role == r {
			return true
		}
	}
	return false
}
