package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/graft/cli"
	"github.com/grovetools/graft/project"
)

// NewListCmd creates the `list` command.
func NewListCmd() *cobra.Command {
	var long bool

	cmd := cli.NewStandardCommand(
		"list <owner> [template]",
		"List templates or the projects created from one",
	)
	cmd.Long = `List the template repositories under a forge user, organization, or
group, or — given a template name — the projects that were created from
that template.

Templates are found by searching for repositories carrying a
cookiecutter.json; projects by searching for a graft.yaml naming the
template. Requires the forge API token.`
	cmd.Example = `  # List the templates under an organization
  graft list myorg

  # List the projects created from a template
  graft list myorg app-template

  # Search a Gitlab group, with descriptions
  graft list gitlab.com/my/group --long`
	cmd.Args = cobra.RangeArgs(1, 2)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		templateName := ""
		if len(args) == 2 {
			templateName = args[1]
		}
		return project.NewLister().List(cmd.Context(), args[0], templateName, long)
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Include repository descriptions")

	return cmd
}
