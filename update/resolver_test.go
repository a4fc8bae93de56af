package update

import (
	"context"
	"testing"

	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/forge"
	"github.com/grovetools/graft/template"
	"github.com/grovetools/graft/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localRef points a template reference at a repository on disk, which
// the git transport accepts like any other origin.
func localRef(dir string) template.Reference {
	return template.Reference{Origin: dir, Host: "github.com", Path: "org/tmpl"}
}

func TestLatestViaGitTransport(t *testing.T) {
	tmpl := t.TempDir()
	testutil.WriteFile(t, tmpl, "cookiecutter.json", "{}\n")
	testutil.InitGitRepo(t, tmpl)
	head := testutil.GitOutput(t, tmpl, "rev-parse", "HEAD")

	stub := &stubForge{latest: "should-not-be-used"}
	r := NewVersionResolver(t.TempDir())
	r.Forges = forgesFor(stub)

	rev, err := r.Latest(context.Background(), localRef(tmpl))
	require.NoError(t, err)
	assert.Equal(t, head, rev)

	// The API fallback is never consulted when the git transport
	// answered.
	assert.Zero(t, stub.calls)
}

func TestLatestEmptyRepositoryIsASuccess(t *testing.T) {
	// An empty repository has no HEAD to list: the pipeline succeeds
	// with empty output, and that empty revision is returned as-is
	// rather than triggering the fallback.
	tmpl := t.TempDir()
	testutil.RunGitCommand(t, tmpl, "init")

	stub := &stubForge{latest: "should-not-be-used"}
	r := NewVersionResolver(t.TempDir())
	r.Forges = forgesFor(stub)

	rev, err := r.Latest(context.Background(), localRef(tmpl))
	require.NoError(t, err)
	assert.Empty(t, rev)
	assert.Zero(t, stub.calls)
}

func TestLatestFallsBackToForgeAPI(t *testing.T) {
	t.Setenv(forge.GithubTokenEnvVar, "test-token")

	stub := &stubForge{latest: "abc123"}
	r := NewVersionResolver(t.TempDir())
	r.Forges = forgesFor(stub)

	// ls-remote against a path that does not exist writes to stderr
	// and produces nothing, which the resolver treats as a transport
	// failure.
	rev, err := r.Latest(context.Background(), localRef("/nonexistent/template"))
	require.NoError(t, err)
	assert.Equal(t, "abc123", rev)
	assert.Equal(t, 1, stub.calls)
}

func TestLatestFallbackNeedsToken(t *testing.T) {
	t.Setenv(forge.GithubTokenEnvVar, "")

	stub := &stubForge{latest: "abc123"}
	r := NewVersionResolver(t.TempDir())
	r.Forges = forgesFor(stub)

	_, err := r.Latest(context.Background(), localRef("/nonexistent/template"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVersionLookup, errors.GetCode(err))

	// The missing credential failed the fallback before any request.
	assert.Zero(t, stub.calls)
}

func TestLatestBothTransportsFailing(t *testing.T) {
	t.Setenv(forge.GithubTokenEnvVar, "test-token")

	stub := &stubForge{latestErr: assert.AnError}
	r := NewVersionResolver(t.TempDir())
	r.Forges = forgesFor(stub)

	ref := localRef("/nonexistent/template")
	_, err := r.Latest(context.Background(), ref)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVersionLookup, errors.GetCode(err))
	assert.Contains(t, err.Error(), ref.Origin)
}
