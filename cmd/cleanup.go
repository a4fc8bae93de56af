package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/graft/cli"
	"github.com/grovetools/graft/git"
	"github.com/grovetools/graft/update"
)

// NewCleanupCmd creates the `cleanup` command.
func NewCleanupCmd() *cobra.Command {
	cmd := cli.NewStandardCommand(
		"cleanup",
		"Remove branches left behind by a failed update",
	)
	cmd.Long = `Remove the temporary branches an interrupted or abandoned update left
behind. Switch to another branch first; the update branches themselves
are deleted.`

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		return update.Cleanup(cmd.Context(), git.NewRepository(cwd), os.Stdout)
	}

	return cmd
}
