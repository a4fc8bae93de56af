package update

import (
	"bytes"
	"context"
	"testing"

	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupRemovesLeftoverBranches(t *testing.T) {
	ctx := context.Background()
	dir, repo := newProject(t, nil)
	testutil.RunGitCommand(t, dir, "branch", IntegrationBranch)
	testutil.RunGitCommand(t, dir, "branch", StagingBranch)

	out := &bytes.Buffer{}
	require.NoError(t, Cleanup(ctx, repo, out))

	assert.False(t, repo.HasBranch(ctx, IntegrationBranch))
	assert.False(t, repo.HasBranch(ctx, StagingBranch))
	assert.Contains(t, out.String(), "Deleted branch "+IntegrationBranch)
	assert.Contains(t, out.String(), "Deleted branch "+StagingBranch)
}

func TestCleanupWithNothingToDo(t *testing.T) {
	_, repo := newProject(t, nil)

	out := &bytes.Buffer{}
	require.NoError(t, Cleanup(context.Background(), repo, out))
	assert.Empty(t, out.String())
}

func TestCleanupRefusesOnUpdateBranch(t *testing.T) {
	for _, branch := range []string{IntegrationBranch, StagingBranch} {
		t.Run(branch, func(t *testing.T) {
			ctx := context.Background()
			dir, repo := newProject(t, nil)
			testutil.CreateBranch(t, dir, branch)

			err := Cleanup(ctx, repo, &bytes.Buffer{})
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeRepoState, errors.GetCode(err))

			// The checked out branch survived.
			assert.True(t, repo.HasBranch(ctx, branch))
		})
	}
}
