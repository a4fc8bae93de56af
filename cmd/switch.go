package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/graft/cli"
	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/git"
	"github.com/grovetools/graft/render"
	"github.com/grovetools/graft/template"
	"github.com/grovetools/graft/update"
)

// NewSwitchCmd creates the `switch` command.
func NewSwitchCmd() *cobra.Command {
	var version string

	cmd := cli.NewStandardCommand(
		"switch <template>",
		"Switch the project to a different template",
	)
	cmd.Long = `Switch the project to a different template.

This runs the same merge-based update as 'graft update' but against a
new template repository. You will always be prompted for the new
template's parameters; values stored in the project are offered as
defaults where the parameter names match.`
	cmd.Example = `  # Move the project onto another template
  graft switch git@github.com:myorg/new-template.git`
	cmd.Args = cobra.ExactArgs(1)

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
		_, err = o.Run(cmd.Context(), update.Options{
			NewTemplate: template.Expand(args[0], userCfg.Abbreviations),
			NewVersion:  version,
		})
		return err
	}

	cmd.Flags().StringVar(&version, "version", "", "Template revision to switch to (defaults to the latest)")

	return cmd
}
