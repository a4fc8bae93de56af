// Package cmd wires the graft CLI commands.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/grovetools/graft/cli"
)

// NewRootCmd builds the graft root command with all subcommands.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		"graft",
		"Manage projects generated from cookiecutter templates",
	)
	root.Long = `graft creates projects from cookiecutter templates hosted on a forge
and keeps them up to date as their templates evolve. Updates replay the
old and new template renders through temporary git branches so your own
changes merge cleanly with the template's.`

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Forge tokens can live in a project-local .env; absence is fine.
		_ = godotenv.Load()
		cli.ApplyVerbosity(cmd)
	}

	root.AddCommand(
		NewCreateCmd(),
		NewUpdateCmd(),
		NewSwitchCmd(),
		NewListCmd(),
		NewCleanupCmd(),
		cli.NewVersionCommand(),
	)

	return root
}

// Execute runs the CLI, routing any failure through the error handler.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		verbose, _ := root.PersistentFlags().GetBool("verbose")
		return cli.NewErrorHandler(verbose).Handle(err)
	}
	return nil
}
