package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/graft/errors"
)

// ErrorHandler maps error codes to messages naming the corrective
// action, so a failed command tells the user what to do next rather
// than only what went wrong.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates an error handler writing to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a message for the error and returns it unchanged so the
// caller can still exit nonzero on it.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeRepoState:
		fmt.Fprintf(h.Out, "❌ %s\n", message(err))

	case errors.ErrCodeNotAProject:
		fmt.Fprintf(h.Out, "❌ This does not look like a graft project: no graft.yaml found.\n")
		fmt.Fprintf(h.Out, "Run this command from the root of a project created with 'graft create'.\n")

	case errors.ErrCodeStaleBranch:
		fmt.Fprintf(h.Out, "❌ %s\n", message(err))
		fmt.Fprintf(h.Out, "A previous update left branches behind. Run 'graft cleanup' to remove them.\n")

	case errors.ErrCodeMissingCredential:
		fmt.Fprintf(h.Out, "❌ %s\n", message(err))
		if envVar, ok := detail(err, "envVar"); ok {
			fmt.Fprintf(h.Out, "Export %v with a forge API token and try again.\n", envVar)
		}

	case errors.ErrCodeVersionLookup:
		fmt.Fprintf(h.Out, "❌ %s\n", message(err))
		fmt.Fprintf(h.Out, "Check that you can 'git clone' the template over SSH, or set the forge API token.\n")

	case errors.ErrCodeSchemaFetch:
		fmt.Fprintf(h.Out, "❌ %s\n", message(err))

	case errors.ErrCodeInvalidTemplate:
		fmt.Fprintf(h.Out, "❌ %s\n", message(err))
		fmt.Fprintf(h.Out, "Templates are addressed by SSH locator, e.g. git@github.com:owner/template.git\n")

	case errors.ErrCodeOutOfDate:
		// The status line was already printed; the error only carries
		// the nonzero exit.

	case errors.ErrCodeConfigInvalid:
		fmt.Fprintf(h.Out, "❌ %s\n", message(err))

	default:
		fmt.Fprintf(h.Out, "❌ Error: %v\n", err)
	}

	if h.Verbose {
		if graftErr, ok := err.(*errors.GraftError); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", graftErr.ToJSON())
		}
	}
	return err
}

// message prefers the plain message over the code-prefixed Error()
// rendering for user-facing output.
func message(err error) string {
	if graftErr, ok := err.(*errors.GraftError); ok {
		return graftErr.Message
	}
	return err.Error()
}

func detail(err error, key string) (interface{}, bool) {
	graftErr, ok := err.(*errors.GraftError)
	if !ok || graftErr.Details == nil {
		return nil, false
	}
	value, ok := graftErr.Details[key]
	return value, ok
}
