package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

var (
	readPasswordFunc  = term.ReadPassword      // mockable
	runMigrationsFunc = database.RunMigrations // mockable

	errEmptyPassword = errors.New("password cannot be empty")
)

type commandLine struct {
	db     *sqlx.DB
	usrSvc *user.Service
	out    io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Darasa administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.AddCommand(cli.migrateCmd(), cli.addUserCmd(), cli.resetPasswordCmd())
	return root
}

// run executes the command line; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	return root.Execute()
}

// promptPassword reads a password from the terminal without echoing it.
func (cli *commandLine) promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}
