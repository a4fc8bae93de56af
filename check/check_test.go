package check

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/git"
	"github.com/grovetools/graft/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInGitRepo(t *testing.T) {
	ctx := context.Background()

	repoDir := t.TempDir()
	testutil.InitGitRepo(t, repoDir)
	assert.NoError(t, InGitRepo(ctx, git.NewRepository(repoDir)))

	plainDir := t.TempDir()
	err := InGitRepo(ctx, git.NewRepository(plainDir))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRepoState, errors.GetCode(err))
	assert.Contains(t, err.Error(), "not inside a git repository")
}

func TestNotInGitRepo(t *testing.T) {
	ctx := context.Background()

	plainDir := t.TempDir()
	assert.NoError(t, NotInGitRepo(ctx, git.NewRepository(plainDir)))

	repoDir := t.TempDir()
	testutil.InitGitRepo(t, repoDir)
	err := NotInGitRepo(ctx, git.NewRepository(repoDir))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRepoState, errors.GetCode(err))
}

func TestInCleanRepo(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	testutil.InitGitRepo(t, dir)
	repo := git.NewRepository(dir)
	require.NoError(t, InCleanRepo(ctx, repo))

	// Untracked files are fine.
	testutil.WriteFile(t, dir, "notes.txt", "scratch")
	require.NoError(t, InCleanRepo(ctx, repo))

	// Modifying a tracked file is not.
	testutil.WriteFile(t, dir, "README.md", "changed")
	err := InCleanRepo(ctx, repo)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRepoState, errors.GetCode(err))
	assert.Contains(t, err.Error(), "uncommitted changes")
}

func TestIsProject(t *testing.T) {
	dir := t.TempDir()

	err := IsProject(dir)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotAProject, errors.GetCode(err))

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, config.MetadataFileName),
		[]byte("template: git@github.com:acme/a.git\nversion: abc\n"), 0644))
	assert.NoError(t, IsProject(dir))
}

func TestNoBranch(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	testutil.InitGitRepo(t, dir)
	repo := git.NewRepository(dir)

	require.NoError(t, NoBranch(ctx, repo, "_graft_update"))

	testutil.CreateBranch(t, dir, "_graft_update")
	err := NoBranch(ctx, repo, "_graft_update")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStaleBranch, errors.GetCode(err))
	assert.Contains(t, err.Error(), "_graft_update")
	assert.Contains(t, err.Error(), "graft cleanup")
}

func TestHasEnvVars(t *testing.T) {
	t.Setenv("GRAFT_TEST_TOKEN", "secret")
	assert.NoError(t, HasEnvVars("GRAFT_TEST_TOKEN"))

	t.Setenv("GRAFT_TEST_EMPTY", "")
	err := HasEnvVars("GRAFT_TEST_TOKEN", "GRAFT_TEST_EMPTY")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingCredential, errors.GetCode(err))
	assert.Contains(t, err.Error(), "GRAFT_TEST_EMPTY")
}
