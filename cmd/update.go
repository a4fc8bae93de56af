package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/graft/cli"
	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/git"
	"github.com/grovetools/graft/render"
	"github.com/grovetools/graft/update"
)

// NewUpdateCmd creates the `update` command.
func NewUpdateCmd() *cobra.Command {
	var (
		checkOnly       bool
		enterParameters bool
		version         string
	)

	cmd := cli.NewStandardCommand(
		"update",
		"Update the project to a newer template version",
	)
	cmd.Long = `Update the project to a newer version of its template.

The update renders the old and new template versions on temporary
branches and merges the difference into a review branch, so your own
changes are preserved and conflicts are left for you to resolve. The
working tree must be committed before updating.`
	cmd.Example = `  # Update to the latest template revision
  graft update

  # Only report whether an update is available
  graft update --check

  # Re-enter the template parameters during the update
  graft update --enter-parameters`

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		userCfg, err := config.LoadUserConfig()
		if err != nil {
			return err
		}

		engine := render.NewEngine()
		engine.UserDefaults = userCfg.DefaultContext

		o := update.NewOrchestrator(git.NewRepository(cwd), engine)
		if checkOnly {
			return o.Check(cmd.Context(), version)
		}

		_, err = o.Run(cmd.Context(), update.Options{
			NewVersion:      version,
			EnterParameters: enterParameters,
		})
		return err
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Report update status without changing anything")
	cmd.Flags().BoolVar(&enterParameters, "enter-parameters", false, "Re-enter the template parameters during the update")
	cmd.Flags().StringVar(&version, "version", "", "Template revision to update to (defaults to the latest)")

	return cmd
}
