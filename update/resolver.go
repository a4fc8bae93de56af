// Package update reconciles a project's working tree with a newer
// version of its template. The orchestrator replays the old and new
// template renders through a synthetic branch topology so git can
// compute a three-way mergeable diff against a baseline the project's
// real history never recorded.
package update

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/graft/check"
	"github.com/grovetools/graft/command"
	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/forge"
	"github.com/grovetools/graft/logging"
	"github.com/grovetools/graft/template"
	"github.com/sirupsen/logrus"
)

// Resolver finds the latest available revision of a template.
type Resolver interface {
	Latest(ctx context.Context, ref template.Reference) (string, error)
}

// VersionResolver resolves the latest template revision with a fallback
// across two transports: a read-only git ls-remote over SSH first (no
// credential needed, works for anything the user can clone), then the
// forge API (needs the forge token). It fails only when both do.
type VersionResolver struct {
	// Forges selects the API client for a host. Defaults to
	// forge.ForHost; tests point it at stub servers.
	Forges func(host string) (forge.Forge, error)

	runner *command.Runner
	log    *logrus.Entry
}

// NewVersionResolver creates a resolver running its git queries from
// the given directory.
func NewVersionResolver(dir string) *VersionResolver {
	return &VersionResolver{
		Forges: forge.ForHost,
		runner: command.NewRunner(dir),
		log:    logging.NewLogger("update.resolver"),
	}
}

// Latest returns the latest revision of the template. The error is a
// VERSION_LOOKUP naming the template only when both transports failed.
func (r *VersionResolver) Latest(ctx context.Context, ref template.Reference) (string, error) {
	revision, sshErr := r.viaLsRemote(ctx, ref)
	if sshErr == nil {
		return revision, nil
	}
	r.log.WithField("template", ref.Origin).WithError(sshErr).
		Debug("git ls-remote failed, falling back to the forge API")

	revision, apiErr := r.viaForgeAPI(ctx, ref)
	if apiErr == nil {
		return revision, nil
	}
	return "", errors.VersionLookup(ref.Origin, apiErr)
}

// viaLsRemote queries the remote's HEAD over the git transport. The
// pipeline's output is read with a deliberate tri-state: a failed
// pipeline is an error, stderr output with empty stdout is an error,
// and anything else is a success — including an entirely empty result.
func (r *VersionResolver) viaLsRemote(ctx context.Context, ref template.Reference) (string, error) {
	script := fmt.Sprintf("git ls-remote %s | grep HEAD | cut -f1", ref.Origin)
	res, err := r.runner.Shell(ctx, script)
	if err != nil {
		return "", err
	}

	stdout := strings.TrimSpace(res.Stdout)
	stderr := strings.TrimSpace(res.Stderr)
	if stderr != "" && stdout == "" {
		return "", fmt.Errorf("unexpected error running %q: %s", script, stderr)
	}
	return stdout, nil
}

// viaForgeAPI asks the forge for the newest commit on the default
// branch. A missing API token is a failure of this transport, reported
// to the caller, never a silent success.
func (r *VersionResolver) viaForgeAPI(ctx context.Context, ref template.Reference) (string, error) {
	f, err := r.Forges(ref.Host)
	if err != nil {
		return "", err
	}
	if err := check.HasEnvVars(f.TokenEnvVar()); err != nil {
		return "", err
	}
	return f.LatestCommit(ctx, ref.Path)
}
