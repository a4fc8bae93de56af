package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/graft/command"
)

// Repository wraps the git porcelain for a single working tree. Every method
// is one git invocation; orchestration lives with the callers.
type Repository struct {
	dir    string
	runner *command.Runner
}

// NewRepository creates a Repository for the given working tree.
func NewRepository(dir string) *Repository {
	return NewRepositoryWithExecutor(dir, &command.RealExecutor{})
}

// NewRepositoryWithExecutor creates a Repository with a custom command
// executor, for tests that intercept process creation.
func NewRepositoryWithExecutor(dir string, executor command.Executor) *Repository {
	return &Repository{
		dir:    dir,
		runner: command.NewRunnerWithExecutor(dir, executor),
	}
}

// Dir returns the working tree the repository operates on.
func (r *Repository) Dir() string {
	return r.dir
}

// IsRepo reports whether the directory is inside a git repository.
func (r *Repository) IsRepo(ctx context.Context) bool {
	res, err := r.runner.RunTolerated(ctx, "git", "rev-parse", "--git-dir")
	return err == nil && res.ExitCode == 0
}

// IsClean reports whether the working tree has no staged or unstaged changes
// relative to HEAD. Untracked files do not count as dirt.
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	res, err := r.runner.RunTolerated(ctx, "git", "diff-index", "--quiet", "HEAD", "--")
	if err != nil {
		return false, fmt.Errorf("diff-index: %w", err)
	}
	return res.ExitCode == 0, nil
}

// CurrentBranch returns the checked out branch name, or HEAD when detached.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	res, err := r.runner.Run(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// HasBranch reports whether a local branch with the given name exists.
func (r *Repository) HasBranch(ctx context.Context, branch string) bool {
	res, err := r.runner.RunTolerated(ctx, "git", "rev-parse", "--verify", "--quiet", branch)
	return err == nil && res.ExitCode == 0
}

// Checkout switches to an existing branch.
func (r *Repository) Checkout(ctx context.Context, branch string) error {
	if _, err := r.runner.Run(ctx, "git", "checkout", branch); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	return nil
}

// CheckoutNew creates a branch at HEAD and switches to it.
func (r *Repository) CheckoutNew(ctx context.Context, branch string) error {
	if _, err := r.runner.Run(ctx, "git", "checkout", "-b", branch); err != nil {
		return fmt.Errorf("checkout -b %s: %w", branch, err)
	}
	return nil
}

// CheckoutOrphan switches to a new branch with no parent commit. The working
// tree files survive the switch staged; callers pair this with RemoveAll to
// start from an empty tree.
func (r *Repository) CheckoutOrphan(ctx context.Context, branch string) error {
	if _, err := r.runner.Run(ctx, "git", "checkout", "--orphan", branch); err != nil {
		return fmt.Errorf("checkout --orphan %s: %w", branch, err)
	}
	return nil
}

// RemoveAll deletes every tracked file from the index and the working tree.
func (r *Repository) RemoveAll(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "git", "rm", "-rf", "."); err != nil {
		return fmt.Errorf("rm -rf: %w", err)
	}
	return nil
}

// AddAll stages everything under the working tree.
func (r *Repository) AddAll(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "git", "add", "."); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Commit records the staged tree. Hooks are skipped: the commits graft makes
// are synthetic scaffolding and must not be blocked by a project's own
// pre-commit checks.
func (r *Repository) Commit(ctx context.Context, message string) error {
	if _, err := r.runner.Run(ctx, "git", "commit", "--no-verify", "-m", message); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// MergeOurs merges a branch keeping our tree untouched, admitting unrelated
// histories. This grafts the branch into the ancestry without taking any of
// its content.
func (r *Repository) MergeOurs(ctx context.Context, branch string) error {
	if _, err := r.runner.Run(ctx, "git", "merge", "-s", "ours", "--no-edit", "--allow-unrelated-histories", branch); err != nil {
		return fmt.Errorf("merge -s ours %s: %w", branch, err)
	}
	return nil
}

// MergeNoCommit merges a branch without committing, leaving the result staged.
// A conflicted merge is a valid outcome and is reported, not raised.
func (r *Repository) MergeNoCommit(ctx context.Context, branch string) (conflicted bool, err error) {
	res, err := r.runner.RunTolerated(ctx, "git", "merge", "--no-commit", branch)
	if err != nil {
		return false, fmt.Errorf("merge --no-commit %s: %w", branch, err)
	}
	return res.ExitCode != 0, nil
}

// CheckoutTheirs takes the incoming side of a conflicted path. When the path
// merged cleanly there is nothing to take and git's complaint is ignored.
func (r *Repository) CheckoutTheirs(ctx context.Context, path string) error {
	if _, err := r.runner.RunTolerated(ctx, "git", "checkout", "--theirs", path); err != nil {
		return fmt.Errorf("checkout --theirs %s: %w", path, err)
	}
	return nil
}

// DeleteBranch force-deletes a local branch.
func (r *Repository) DeleteBranch(ctx context.Context, branch string) error {
	if _, err := r.runner.Run(ctx, "git", "branch", "-D", branch); err != nil {
		return fmt.Errorf("branch -D %s: %w", branch, err)
	}
	return nil
}

// HeadCommit returns the commit hash HEAD points at.
func (r *Repository) HeadCommit(ctx context.Context) (string, error) {
	return r.ResolveRef(ctx, "HEAD")
}

// ResolveRef resolves a branch, tag, or commit to its full hash.
func (r *Repository) ResolveRef(ctx context.Context, ref string) (string, error) {
	res, err := r.runner.Run(ctx, "git", "rev-parse", ref)
	if err != nil {
		return "", fmt.Errorf("resolve ref %s: %w", ref, err)
	}
	return strings.TrimSpace(res.Stdout), nil
}
