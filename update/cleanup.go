package update

import (
	"context"
	"fmt"
	"io"

	"github.com/grovetools/graft/check"
	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/git"
)

// Cleanup removes the branches a crashed or abandoned update left
// behind. It refuses to run while either branch is checked out, since
// deleting the current branch would strand the working tree.
func Cleanup(ctx context.Context, repo *git.Repository, out io.Writer) error {
	if err := check.InGitRepo(ctx, repo); err != nil {
		return err
	}

	current, err := repo.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current == IntegrationBranch || current == StagingBranch {
		return errors.RepoState(fmt.Sprintf(
			"you must switch away from branch %s since it will be deleted during cleanup", current))
	}

	for _, branch := range []string{IntegrationBranch, StagingBranch} {
		if !repo.HasBranch(ctx, branch) {
			continue
		}
		if err := repo.DeleteBranch(ctx, branch); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted branch %s\n", branch)
	}
	return nil
}
