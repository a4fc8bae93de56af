package project

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/graft/check"
	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/forge"
)

var descriptionStyle = lipgloss.NewStyle().Faint(true)

// Lister prints the template repositories under a forge owner, or the
// projects generated from one of those templates.
type Lister struct {
	// Forges selects the API client for a search root. Defaults to
	// forge.ForPath.
	Forges func(path string) (forge.Forge, error)

	Out io.Writer
}

// NewLister creates a Lister writing to stdout.
func NewLister() *Lister {
	return &Lister{
		Forges: forge.ForPath,
		Out:    os.Stdout,
	}
}

// List searches the forge under root. With an empty templateName it
// lists template repositories; otherwise it lists the projects
// generated from that template. One SSH URL per line, sorted; long adds
// each repository's description.
func (l *Lister) List(ctx context.Context, root, templateName string, long bool) error {
	owner := forge.OwnerFromPath(root)
	if owner == "" {
		return errors.New(errors.ErrCodeInvalidInput,
			"a user, organization, or group to search under is required")
	}

	f, err := l.Forges(root)
	if err != nil {
		return err
	}
	if err := check.HasEnvVars(f.TokenEnvVar()); err != nil {
		return err
	}

	results, err := f.Search(ctx, forge.Query{Owner: owner, TemplateName: templateName})
	if err != nil {
		return err
	}

	for _, r := range results {
		if !long {
			fmt.Fprintln(l.Out, r.SSHURL)
			continue
		}
		description := r.Description
		if description == "" {
			description = "(no description)"
		}
		fmt.Fprintf(l.Out, "%s - %s\n", r.SSHURL, descriptionStyle.Render(description))
	}
	return nil
}
