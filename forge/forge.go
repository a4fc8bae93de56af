// Package forge talks to the code hosting services templates live on.
// Each supported forge implements the same small capability surface:
// code search, latest-commit lookup, and raw file fetch. The right
// implementation is picked from the template's domain.
package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/graft/errors"
)

// SearchResult describes one repository found by a forge search.
type SearchResult struct {
	// SSHURL is the clone locator, e.g. git@github.com:org/repo.git
	SSHURL string
	// Name is the repository name without the owner
	Name string
	// Description is the forge-side repository description, may be empty
	Description string
}

// Query describes a forge code search. With only Owner set it finds
// template repositories (repositories carrying a cookiecutter.json).
// With TemplateName set it finds projects generated from that template
// (repositories carrying a graft.yaml that names the template).
type Query struct {
	Owner        string
	TemplateName string
}

// Forge is the capability interface of a code hosting service.
type Forge interface {
	// Search runs a code search and returns the matching repositories
	// sorted by SSH URL.
	Search(ctx context.Context, query Query) ([]SearchResult, error)

	// LatestCommit returns the SHA of the most recent commit on the
	// default branch of a repository.
	LatestCommit(ctx context.Context, repoPath string) (string, error)

	// FileAtRef fetches the raw contents of a file at a revision.
	FileAtRef(ctx context.Context, repoPath, filePath, ref string) ([]byte, error)

	// TokenEnvVar names the environment variable holding the API token.
	TokenEnvVar() string

	// Host returns the forge domain, e.g. github.com.
	Host() string
}

// ForHost returns the forge client for a domain.
func ForHost(host string) (Forge, error) {
	switch host {
	case "github.com":
		return NewGithub(), nil
	case "gitlab.com":
		return NewGitlab(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidTemplate,
		fmt.Sprintf("unsupported forge %q: graft can talk to github.com and gitlab.com", host)).
		WithDetail("host", host)
}

// ForPath returns the forge client for a search root like
// "github.com/MyOrg" or "gitlab.com/my/group". A root without a domain
// defaults to Github.
func ForPath(path string) (Forge, error) {
	if strings.Contains(path, "gitlab.com") {
		return NewGitlab(), nil
	}
	return NewGithub(), nil
}

// OwnerFromPath strips the forge domain from a search root, leaving the
// user, organization, or group path.
func OwnerFromPath(path string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	for _, host := range []string{"github.com", "gitlab.com"} {
		if after, found := strings.CutPrefix(path, host+"/"); found {
			return after
		}
		if path == host {
			return ""
		}
	}
	return path
}
