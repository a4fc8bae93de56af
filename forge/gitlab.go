package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/logging"
	"github.com/sirupsen/logrus"
)

// GitlabTokenEnvVar holds the Gitlab API token.
const GitlabTokenEnvVar = "GITLAB_API_TOKEN"

const gitlabBaseURL = "https://gitlab.com/api/v4"

// Gitlab is the gitlab.com client.
type Gitlab struct {
	// BaseURL is the API root, overridable for tests.
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	log *logrus.Entry
}

// NewGitlab creates a client for the public Gitlab API.
func NewGitlab() *Gitlab {
	return &Gitlab{
		BaseURL:    gitlabBaseURL,
		HTTPClient: http.DefaultClient,
		log:        logging.NewLogger("forge.gitlab"),
	}
}

// Host returns the forge domain.
func (g *Gitlab) Host() string { return "gitlab.com" }

// TokenEnvVar names the environment variable holding the API token.
func (g *Gitlab) TokenEnvVar() string { return GitlabTokenEnvVar }

// Search performs a blob search within a group and resolves every
// matching blob to its project. Pagination follows the Link header's
// rel="next" chain, like Github's.
func (g *Gitlab) Search(ctx context.Context, query Query) ([]SearchResult, error) {
	search := "filename:cookiecutter.json"
	if query.TemplateName != "" {
		search = fmt.Sprintf("filename:%s %s", config.MetadataFileName, query.TemplateName)
	}

	nextURL := fmt.Sprintf("%s/groups/%s/search?scope=blobs&search=%s&per_page=100",
		g.BaseURL, url.PathEscape(query.Owner), url.QueryEscape(search))

	projectIDs := make(map[int64]struct{})
	for nextURL != "" {
		body, header, err := g.get(ctx, nextURL)
		if err != nil {
			return nil, err
		}

		var blobs []struct {
			ProjectID int64 `json:"project_id"`
		}
		if err := json.Unmarshal(body, &blobs); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeForgeRequest, "unexpected Gitlab search response")
		}
		for _, blob := range blobs {
			projectIDs[blob.ProjectID] = struct{}{}
		}

		nextURL = parseLinkNext(header.Get("Link"))
	}

	found := make(map[string]SearchResult)
	for id := range projectIDs {
		body, _, err := g.get(ctx, fmt.Sprintf("%s/projects/%d", g.BaseURL, id))
		if err != nil {
			return nil, err
		}

		var project struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			SSHURL      string `json:"ssh_url_to_repo"`
		}
		if err := json.Unmarshal(body, &project); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeForgeRequest, "unexpected Gitlab project response")
		}
		found[project.SSHURL] = SearchResult{
			SSHURL:      project.SSHURL,
			Name:        project.Name,
			Description: project.Description,
		}
	}

	return sortResults(found), nil
}

// LatestCommit returns the SHA of the newest commit on the default branch.
func (g *Gitlab) LatestCommit(ctx context.Context, repoPath string) (string, error) {
	u := fmt.Sprintf("%s/projects/%s/repository/commits?per_page=1",
		g.BaseURL, url.PathEscape(repoPath))
	body, _, err := g.get(ctx, u)
	if err != nil {
		return "", err
	}

	var commits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &commits); err != nil || len(commits) != 1 {
		return "", errors.New(errors.ErrCodeForgeRequest,
			fmt.Sprintf("unexpected Gitlab API response listing commits of %s", repoPath)).
			WithDetail("repo", repoPath)
	}
	return commits[0].ID, nil
}

// FileAtRef fetches the raw contents of a file at a revision.
func (g *Gitlab) FileAtRef(ctx context.Context, repoPath, filePath, ref string) ([]byte, error) {
	u := fmt.Sprintf("%s/projects/%s/repository/files/%s/raw?ref=%s",
		g.BaseURL, url.PathEscape(repoPath), url.PathEscape(filePath), url.QueryEscape(ref))
	body, _, err := g.get(ctx, u)
	return body, err
}

// get performs an authenticated GET against a full URL.
func (g *Gitlab) get(ctx context.Context, fullURL string) ([]byte, http.Header, error) {
	token := os.Getenv(GitlabTokenEnvVar)
	if token == "" {
		return nil, nil, errors.MissingCredential(GitlabTokenEnvVar, g.Host())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeForgeRequest, "failed to build Gitlab request")
	}
	req.Header.Set("PRIVATE-TOKEN", token)

	g.log.WithField("url", fullURL).Debug("Gitlab API request")
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeForgeRequest, "Gitlab request failed").
			WithDetail("url", fullURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeForgeRequest, "failed to read Gitlab response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, apiError("Gitlab", resp.StatusCode, body).
			WithDetail("url", fullURL)
	}
	return body, resp.Header, nil
}
