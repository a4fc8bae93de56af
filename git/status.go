package git

import (
	"context"
	"fmt"
	"strings"
)

// StatusInfo summarizes the working tree state of a repository.
type StatusInfo struct {
	// Branch is the current branch name
	Branch string `json:"branch"`

	// ModifiedCount is the number of modified files
	ModifiedCount int `json:"modified_count"`

	// UntrackedCount is the number of untracked files
	UntrackedCount int `json:"untracked_count"`

	// StagedCount is the number of staged files
	StagedCount int `json:"staged_count"`

	// UnmergedCount is the number of files left in conflict
	UnmergedCount int `json:"unmerged_count"`

	// IsDirty indicates if there are any uncommitted changes
	IsDirty bool `json:"is_dirty"`
}

// Status returns a summary of the working tree, parsed from a single
// `git status --porcelain=v2 --branch` call.
func (r *Repository) Status(ctx context.Context) (*StatusInfo, error) {
	status := &StatusInfo{}

	res, err := r.runner.Run(ctx, "git", "status", "--porcelain=v2", "--branch")
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	lines := strings.Split(res.Stdout, "\n")

	for _, line := range lines {
		if line == "" {
			continue
		}

		// Parse header lines (start with '#')
		if strings.HasPrefix(line, "# ") {
			parts := strings.Fields(line)
			if len(parts) < 3 {
				continue
			}
			if parts[1] == "branch.head" {
				status.Branch = parts[2]
			}
			continue
		}

		// Parse file status lines
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "?": // Untracked
			status.UntrackedCount++
		case "1", "2": // Changed entries (1 for normal, 2 for rename/copy)
			if len(parts) < 2 {
				continue
			}
			xy := parts[1]
			if len(xy) < 2 {
				continue
			}
			staged := xy[0]
			working := xy[1]

			// Staged changes are indicated by any letter other than '.'
			if staged != '.' {
				status.StagedCount++
			}
			// Modified changes in the working tree (. means unchanged)
			if working != '.' {
				status.ModifiedCount++
			}
		case "u": // Unmerged
			status.UnmergedCount++
		}
	}

	status.IsDirty = status.ModifiedCount > 0 || status.UntrackedCount > 0 ||
		status.StagedCount > 0 || status.UnmergedCount > 0

	return status, nil
}
