package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/graft/cli"
	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/project"
	"github.com/grovetools/graft/render"
)

// NewCreateCmd creates the `create` command.
func NewCreateCmd() *cobra.Command {
	var version string

	cmd := cli.NewStandardCommand(
		"create <template>",
		"Create a new project from a template",
	)
	cmd.Long = `Create a new project from a cookiecutter template repository.

The template is addressed by its SSH locator or an abbreviation like
gh:owner/template. You will be prompted for the template's parameters;
the answers and the template revision are recorded in graft.yaml so the
project can be updated later.`
	cmd.Example = `  # Create a project from the latest template revision
  graft create git@github.com:myorg/app-template.git

  # Pin a specific revision
  graft create gh:myorg/app-template --version 2b4d6f8`
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

		creator := project.NewCreator(cwd, engine)
		creator.Abbreviations = userCfg.Abbreviations

		_, err = creator.Create(cmd.Context(), args[0], version)
		return err
	}

	cmd.Flags().StringVar(&version, "version", "", "Template revision to use (defaults to the latest)")

	return cmd
}
