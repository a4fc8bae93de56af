// Package check provides the preflight assertions graft runs before it
// mutates anything. Each assertion inspects state and returns a coded
// error; none has side effects.
package check

import (
	"context"
	"os"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/git"
)

// InGitRepo asserts the repository's directory is inside a git working tree.
func InGitRepo(ctx context.Context, repo *git.Repository) error {
	if !repo.IsRepo(ctx) {
		return errors.RepoState("not inside a git repository")
	}
	return nil
}

// NotInGitRepo asserts the repository's directory is not inside a git
// working tree. Creating a project inside an existing repository would
// tangle the new project's history with the host repository's.
func NotInGitRepo(ctx context.Context, repo *git.Repository) error {
	if repo.IsRepo(ctx) {
		return errors.RepoState("already inside a git repository")
	}
	return nil
}

// InCleanRepo asserts the working tree has no uncommitted changes.
// Untracked files are allowed.
func InCleanRepo(ctx context.Context, repo *git.Repository) error {
	clean, err := repo.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return errors.RepoState("the working tree has uncommitted changes; commit or stash them first")
	}
	return nil
}

// IsProject asserts dir contains graft project metadata.
func IsProject(dir string) error {
	if !config.HasMetadata(dir) {
		return errors.NotAProject(dir)
	}
	return nil
}

// NoBranch asserts the named branch does not exist. Update branches
// left behind by an earlier run must be cleaned up before a new one
// starts.
func NoBranch(ctx context.Context, repo *git.Repository, branch string) error {
	if repo.HasBranch(ctx, branch) {
		return errors.StaleBranch(branch)
	}
	return nil
}

// HasEnvVars asserts every named environment variable is set and
// non-empty.
func HasEnvVars(names ...string) error {
	for _, name := range names {
		if os.Getenv(name) == "" {
			return errors.New(errors.ErrCodeMissingCredential,
				"required environment variable "+name+" is not set").
				WithDetail("envVar", name)
		}
	}
	return nil
}
