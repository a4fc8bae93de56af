package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/graft/command"
)

// IsGitRepo checks if the given directory is inside a git repository
func IsGitRepo(dir string) bool {
	return NewRepository(dir).IsRepo(context.Background())
}

// GetGitRoot returns the root directory of the git repository
func GetGitRoot(dir string) (string, error) {
	runner := command.NewRunner(dir)
	res, err := runner.Run(context.Background(), "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("get git root: %w", err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Clone clones origin into dir. When ref is non-empty the clone is switched
// to it afterwards; any revision the repository knows is accepted.
func Clone(ctx context.Context, origin string, ref string, dir string) error {
	runner := command.NewRunner("")
	if _, err := runner.Run(ctx, "git", "clone", origin, dir); err != nil {
		return fmt.Errorf("clone %s: %w", origin, err)
	}

	if ref != "" {
		cloned := command.NewRunner(dir)
		if _, err := cloned.Run(ctx, "git", "checkout", ref); err != nil {
			return fmt.Errorf("checkout %s in clone of %s: %w", ref, origin, err)
		}
	}
	return nil
}
