package render

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grovetools/graft/command"
	"github.com/grovetools/graft/errors"
)

const (
	preGenHook  = "pre_gen_project"
	postGenHook = "post_gen_project"
	hooksDir    = "hooks"
)

// CommandEnvVar exposes the graft command driving a render to template
// hooks. It is set on the hook subprocess only, never on graft's own
// environment.
const CommandEnvVar = "GRAFT_COMMAND"

// findHook returns the path of a template hook script, or the empty
// string when the template defines none. The first match in name order
// wins when a template carries several extensions of the same hook.
func findHook(checkout, name string) string {
	entries, err := os.ReadDir(filepath.Join(checkout, hooksDir))
	if err != nil {
		return ""
	}

	var matches []string
	for _, entry := range entries {
		base := entry.Name()
		if !entry.IsDir() && strings.TrimSuffix(base, filepath.Ext(base)) == name {
			matches = append(matches, base)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return filepath.Join(checkout, hooksDir, matches[0])
}

// runHook renders a hook script against the template context and
// executes it with workDir as the working directory. Hook stdio is
// attached to graft's own, so interactive hooks keep working.
func (e *CookiecutterEngine) runHook(ctx context.Context, hookPath, workDir string, renderCtx map[string]interface{}, graftCommand string) error {
	data, err := os.ReadFile(hookPath)
	if err != nil {
		return errors.RenderFailed(hookPath, err)
	}
	rendered, err := renderString(string(data), renderCtx)
	if err != nil {
		return errors.RenderFailed(hookPath, err)
	}

	ext := filepath.Ext(hookPath)
	script, err := os.CreateTemp("", "graft-hook-*"+ext)
	if err != nil {
		return errors.RenderFailed(hookPath, err)
	}
	scriptPath := script.Name()
	defer os.Remove(scriptPath)

	if _, err := script.WriteString(rendered); err != nil {
		script.Close()
		return errors.RenderFailed(hookPath, err)
	}
	if err := script.Close(); err != nil {
		return errors.RenderFailed(hookPath, err)
	}
	if err := os.Chmod(scriptPath, 0755); err != nil {
		return errors.RenderFailed(hookPath, err)
	}

	runner := command.NewRunner(workDir).WithEnv(CommandEnvVar + "=" + graftCommand)
	e.log.WithField("hook", filepath.Base(hookPath)).Debug("Running template hook")

	if ext == ".py" {
		return runner.RunAttached(ctx, "python3", scriptPath)
	}
	return runner.RunAttached(ctx, scriptPath)
}
