// Package render expands a template repository plus a parameter set
// into a file tree. The Engine interface is the boundary the update
// orchestrator and project creation depend on; CookiecutterEngine is
// the built-in implementation for cookiecutter-compatible templates.
package render

import (
	"context"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/template"
)

// Stage is a rendering pipeline extension point. Stages run exactly
// once per render, after the project files are materialized and before
// any template-defined post-generation hook, so anything a stage writes
// is visible to the template's own hooks. graft registers a stage that
// writes the project metadata file.
type Stage func(projectDir string, params *config.Parameters) error

// RenderRequest describes one template expansion.
type RenderRequest struct {
	// Template is the template repository to expand.
	Template template.Reference
	// Ref pins the template revision; empty means the default branch.
	Ref string
	// Parameters are the answered template questions. Parameters not
	// covered here fall back to the template's defaults without
	// prompting.
	Parameters *config.Parameters
	// OutputDir receives the rendered project directory.
	OutputDir string
	// Command names the graft command driving the render. It is exposed
	// to template hooks through the GRAFT_COMMAND environment variable.
	Command string
	// PostStages run between file materialization and the template's
	// post-generation hook.
	PostStages []Stage
}

// PromptRequest describes an interactive parameter collection against a
// template's schema.
type PromptRequest struct {
	Template template.Reference
	Ref      string
	// Defaults seed the prompts, typically the parameters stored in the
	// project's metadata from the previous render.
	Defaults *config.Parameters
	Command  string
}

// Engine renders templates and collects their parameters.
type Engine interface {
	// Render expands the template into OutputDir and returns the path
	// of the rendered project directory.
	Render(ctx context.Context, req RenderRequest) (string, error)

	// Prompt collects a full parameter set for the template's schema,
	// seeded with the request's defaults.
	Prompt(ctx context.Context, req PromptRequest) (*config.Parameters, error)
}

// MetadataStage returns a Stage that writes the project metadata file,
// recording the template, revision, and parameters of the render.
func MetadataStage(ref template.Reference, version string) Stage {
	return func(projectDir string, params *config.Parameters) error {
		return config.WriteMetadata(projectDir, &config.Metadata{
			Template:   ref.Origin,
			Version:    version,
			Parameters: params,
		})
	}
}
