package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/git"
	"github.com/grovetools/graft/logging"
	"github.com/grovetools/graft/template"
	"github.com/nikolalohinski/gonja"
	"github.com/sirupsen/logrus"
)

// CookiecutterEngine renders cookiecutter-compatible templates: a git
// repository carrying a cookiecutter.json parameter schema and a single
// top-level skeleton directory whose name is itself a template
// expression. Directory names, file names, and text file contents are
// expanded with Jinja2 semantics under a "cookiecutter" context key.
type CookiecutterEngine struct {
	// In and Out carry interactive prompting. They default to the
	// process stdio.
	In  io.Reader
	Out io.Writer

	// UserDefaults supplies fallback parameter values from the user's
	// graft.yml default_context. They override a template's own
	// defaults but never values stored in a project's metadata.
	UserDefaults map[string]interface{}

	log *logrus.Entry
}

// NewEngine creates a CookiecutterEngine wired to the process stdio.
func NewEngine() *CookiecutterEngine {
	return &CookiecutterEngine{
		In:  os.Stdin,
		Out: os.Stdout,
		log: logging.NewLogger("render"),
	}
}

// Render expands the template into req.OutputDir and returns the
// rendered project directory. The template checkout lives in a
// temporary directory that is removed before Render returns, on every
// path.
func (e *CookiecutterEngine) Render(ctx context.Context, req RenderRequest) (string, error) {
	checkout, cleanup, err := e.checkout(ctx, req.Template, req.Ref)
	if err != nil {
		return "", err
	}
	defer cleanup()

	schema, err := ReadSchema(checkout)
	if err != nil {
		return "", err
	}

	params, err := resolveContext(schema, req.Parameters, e.UserDefaults)
	if err != nil {
		return "", errors.RenderFailed(req.Template.Origin, err)
	}
	renderCtx := map[string]interface{}{"cookiecutter": params.AsMap()}

	if hook := findHook(checkout, preGenHook); hook != "" {
		if err := e.runHook(ctx, hook, req.OutputDir, renderCtx, req.Command); err != nil {
			return "", err
		}
	}

	projectDir, err := e.renderTree(checkout, req.OutputDir, renderCtx)
	if err != nil {
		return "", errors.RenderFailed(req.Template.Origin, err)
	}

	for _, stage := range req.PostStages {
		if err := stage(projectDir, params); err != nil {
			return "", errors.RenderFailed(req.Template.Origin, err)
		}
	}

	if hook := findHook(checkout, postGenHook); hook != "" {
		if err := e.runHook(ctx, hook, projectDir, renderCtx, req.Command); err != nil {
			return "", err
		}
	}

	e.log.WithFields(logrus.Fields{
		"template": req.Template.Origin,
		"ref":      req.Ref,
		"project":  projectDir,
	}).Debug("Rendered template")
	return projectDir, nil
}

// checkout clones the template at the requested revision into a
// temporary directory. The returned cleanup removes it.
func (e *CookiecutterEngine) checkout(ctx context.Context, ref template.Reference, rev string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "graft-template-*")
	if err != nil {
		return "", nil, errors.RenderFailed(ref.Origin, err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	if err := git.Clone(ctx, ref.Origin, rev, dir); err != nil {
		cleanup()
		return "", nil, errors.RenderFailed(ref.Origin, err)
	}
	return dir, cleanup, nil
}

// renderTree expands the skeleton directory into outputDir and returns
// the rendered project directory.
func (e *CookiecutterEngine) renderTree(checkout, outputDir string, renderCtx map[string]interface{}) (string, error) {
	skeleton, err := findSkeleton(checkout)
	if err != nil {
		return "", err
	}

	projectName, err := renderString(filepath.Base(skeleton), renderCtx)
	if err != nil {
		return "", err
	}
	if projectName == "" {
		return "", fmt.Errorf("the skeleton directory name %q rendered to an empty string", filepath.Base(skeleton))
	}
	projectDir := filepath.Join(outputDir, projectName)

	err = filepath.WalkDir(skeleton, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(skeleton, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(projectDir, 0755)
		}

		renderedRel, err := renderPath(rel, renderCtx)
		if err != nil {
			return fmt.Errorf("rendering path %s: %w", rel, err)
		}
		target := filepath.Join(projectDir, renderedRel)

		info, err := entry.Info()
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return renderFile(path, target, info.Mode().Perm(), renderCtx)
	})
	if err != nil {
		return "", err
	}
	return projectDir, nil
}

// findSkeleton locates the single top-level directory whose name
// contains a template expression.
func findSkeleton(checkout string) (string, error) {
	entries, err := os.ReadDir(checkout)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.Contains(entry.Name(), "{{") && strings.Contains(entry.Name(), "cookiecutter") {
			return filepath.Join(checkout, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("the template has no skeleton directory (a directory named with a {{cookiecutter...}} expression)")
}

// renderFile writes the rendered contents of src to dst. Files with NUL
// bytes are treated as binary and copied verbatim.
func renderFile(src, dst string, perm fs.FileMode, renderCtx map[string]interface{}) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	if bytes.IndexByte(data, 0) >= 0 {
		return os.WriteFile(dst, data, perm)
	}

	rendered, err := renderString(string(data), renderCtx)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", filepath.Base(src), err)
	}
	return os.WriteFile(dst, []byte(rendered), perm)
}

// renderPath renders each segment of a relative path.
func renderPath(rel string, renderCtx map[string]interface{}) (string, error) {
	segments := strings.Split(rel, string(filepath.Separator))
	for i, segment := range segments {
		rendered, err := renderString(segment, renderCtx)
		if err != nil {
			return "", err
		}
		if rendered == "" {
			return "", fmt.Errorf("path segment %q rendered to an empty string", segment)
		}
		segments[i] = rendered
	}
	return filepath.Join(segments...), nil
}

// renderString expands one Jinja2 template string.
func renderString(s string, renderCtx map[string]interface{}) (string, error) {
	if !strings.Contains(s, "{{") && !strings.Contains(s, "{%") {
		return s, nil
	}
	tpl, err := gonja.FromString(s)
	if err != nil {
		return "", err
	}
	return tpl.Execute(gonja.Context(renderCtx))
}

// resolveContext produces the final parameter set for a render:
// schema declaration order, with each value taken from overrides,
// then userDefaults, then the schema's own default. String defaults
// are rendered against the parameters answered so far; list defaults
// resolve to their first entry. Keys present in overrides but absent
// from the schema are dropped, matching how stale parameters age out
// when a template removes a question.
func resolveContext(schema *Schema, overrides *config.Parameters, userDefaults map[string]interface{}) (*config.Parameters, error) {
	resolved := config.NewParameters()
	answered := map[string]interface{}{}

	for _, name := range schema.Names() {
		if value, ok := overrides.Get(name); ok {
			resolved.Set(name, value)
			answered[name] = value
			continue
		}

		value, err := defaultValue(schema, name, userDefaults, answered)
		if err != nil {
			return nil, err
		}
		resolved.Set(name, value)
		answered[name] = value
	}
	return resolved, nil
}

// defaultValue resolves the non-interactive value of a parameter.
func defaultValue(schema *Schema, name string, userDefaults, answered map[string]interface{}) (interface{}, error) {
	declared := schema.Default(name)

	if fromUser, ok := userDefaults[name]; ok && !IsPrivate(name) {
		return fromUser, nil
	}

	switch v := declared.(type) {
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("parameter %q declares an empty choice list", name)
		}
		return v[0], nil
	case string:
		return renderString(v, map[string]interface{}{"cookiecutter": answered})
	default:
		return declared, nil
	}
}
