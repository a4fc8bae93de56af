// Package cli carries the pieces every graft command shares: standard
// flags, styled help, and the error-to-exit-message mapping.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/graft/logging"
)

// NewStandardCommand creates a command with the standard graft flags
// and styled help applied.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	SetStyledHelp(cmd)

	return cmd
}

// ApplyVerbosity raises every logger to debug when --verbose is set.
// Call it from the root command's PersistentPreRun.
func ApplyVerbosity(cmd *cobra.Command) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logging.SetLevel(logrus.DebugLevel)
	}
}
