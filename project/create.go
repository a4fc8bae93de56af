// Package project creates new projects from templates and lists the
// templates and projects a forge hosts.
package project

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/grovetools/graft/check"
	"github.com/grovetools/graft/git"
	"github.com/grovetools/graft/logging"
	"github.com/grovetools/graft/render"
	"github.com/grovetools/graft/template"
	"github.com/grovetools/graft/update"
	"github.com/sirupsen/logrus"
)

// Creator materializes a new project from a template into a directory.
type Creator struct {
	// Dir is the directory the project is created under, usually the
	// working directory.
	Dir string

	Engine render.Engine

	// Resolver finds the template revision to record when no version is
	// pinned.
	Resolver update.Resolver

	// Abbreviations expands shorthand template locators before parsing,
	// on top of the built-in gh: and gl: prefixes.
	Abbreviations map[string]string

	Out io.Writer
	log *logrus.Entry
}

// NewCreator creates a Creator with production defaults.
func NewCreator(dir string, engine render.Engine) *Creator {
	return &Creator{
		Dir:      dir,
		Engine:   engine,
		Resolver: update.NewVersionResolver(dir),
		Out:      os.Stdout,
		log:      logging.NewLogger("project"),
	}
}

// Create renders a new project from the template and returns the
// created project directory. The recorded version is the resolved
// latest revision when none is pinned, so the metadata always names a
// concrete revision. The metadata file is written before the template's
// post-generation hook runs.
func (c *Creator) Create(ctx context.Context, locator, version string) (string, error) {
	if err := check.NotInGitRepo(ctx, git.NewRepository(c.Dir)); err != nil {
		return "", err
	}

	ref, err := template.Parse(template.Expand(locator, c.Abbreviations))
	if err != nil {
		return "", err
	}

	if version == "" {
		if version, err = c.Resolver.Latest(ctx, ref); err != nil {
			return "", err
		}
	}
	c.log.WithFields(logrus.Fields{
		"template": ref.Origin,
		"version":  version,
	}).Debug("Creating project")

	fmt.Fprintf(c.Out, "You will be prompted for the parameters of your new project."+
		" Please read the docs at %s before entering parameters.\n", ref.WebURL())

	params, err := c.Engine.Prompt(ctx, render.PromptRequest{
		Template: ref,
		Ref:      version,
		Command:  "create",
	})
	if err != nil {
		return "", err
	}

	projectDir, err := c.Engine.Render(ctx, render.RenderRequest{
		Template:   ref,
		Ref:        version,
		Parameters: params,
		OutputDir:  c.Dir,
		Command:    "create",
		PostStages: []render.Stage{render.MetadataStage(ref, version)},
	})
	if err != nil {
		return "", err
	}

	fmt.Fprintf(c.Out, "Created project at %s\n", projectDir)
	return projectDir, nil
}
