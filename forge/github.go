package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/logging"
	"github.com/sirupsen/logrus"
)

// GithubTokenEnvVar holds the Github API token used for search, commit
// lookup, and raw file fetches.
const GithubTokenEnvVar = "GITHUB_API_TOKEN"

const githubBaseURL = "https://api.github.com"

// Github is the github.com client.
type Github struct {
	// BaseURL is the API root, overridable for tests.
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	log *logrus.Entry
}

// NewGithub creates a client for the public Github API.
func NewGithub() *Github {
	return &Github{
		BaseURL:    githubBaseURL,
		HTTPClient: http.DefaultClient,
		log:        logging.NewLogger("forge.github"),
	}
}

// Host returns the forge domain.
func (g *Github) Host() string { return "github.com" }

// TokenEnvVar names the environment variable holding the API token.
func (g *Github) TokenEnvVar() string { return GithubTokenEnvVar }

// Search performs a Github code search, following the Link header's
// rel="next" chain until the last page.
func (g *Github) Search(ctx context.Context, query Query) ([]SearchResult, error) {
	q := fmt.Sprintf("user:%s filename:cookiecutter.json", query.Owner)
	if query.TemplateName != "" {
		q = fmt.Sprintf("user:%s filename:%s %s", query.Owner, config.MetadataFileName, query.TemplateName)
	}

	nextURL := fmt.Sprintf("%s/search/code?q=%s&per_page=100", g.BaseURL, url.QueryEscape(q))
	accept := "application/vnd.github.v3.text-match+json"

	found := make(map[string]SearchResult)
	for nextURL != "" {
		body, header, err := g.get(ctx, nextURL, accept)
		if err != nil {
			if errors.GetCode(err) == errors.ErrCodeForgeRequest {
				if graftErr, ok := err.(*errors.GraftError); ok {
					if status, _ := graftErr.Details["status"].(int); status == http.StatusUnprocessableEntity {
						return nil, errors.New(errors.ErrCodeForgeRequest,
							fmt.Sprintf("Github rejected the search: %q is not a known user or organization", query.Owner)).
							WithDetail("owner", query.Owner)
					}
				}
			}
			return nil, err
		}

		var page struct {
			Items []struct {
				Repository struct {
					FullName    string `json:"full_name"`
					Name        string `json:"name"`
					Description string `json:"description"`
				} `json:"repository"`
			} `json:"items"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeForgeRequest, "unexpected Github search response")
		}

		for _, item := range page.Items {
			sshURL := fmt.Sprintf("git@github.com:%s.git", item.Repository.FullName)
			found[sshURL] = SearchResult{
				SSHURL:      sshURL,
				Name:        item.Repository.Name,
				Description: item.Repository.Description,
			}
		}

		nextURL = parseLinkNext(header.Get("Link"))
	}

	return sortResults(found), nil
}

// LatestCommit returns the SHA of the newest commit on the default branch.
func (g *Github) LatestCommit(ctx context.Context, repoPath string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/commits?per_page=1", g.BaseURL, repoPath)
	body, _, err := g.get(ctx, u, "application/vnd.github+json")
	if err != nil {
		return "", err
	}

	var commits []struct {
		SHA string `json:"sha"`
	}
	if err := json.Unmarshal(body, &commits); err != nil || len(commits) != 1 {
		return "", errors.New(errors.ErrCodeForgeRequest,
			fmt.Sprintf("unexpected Github API response listing commits of %s", repoPath)).
			WithDetail("repo", repoPath)
	}
	return commits[0].SHA, nil
}

// FileAtRef fetches the raw contents of a file at a revision.
func (g *Github) FileAtRef(ctx context.Context, repoPath, filePath, ref string) ([]byte, error) {
	u := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s",
		g.BaseURL, repoPath, filePath, url.QueryEscape(ref))
	body, _, err := g.get(ctx, u, "application/vnd.github.raw+json")
	return body, err
}

// get performs an authenticated GET against a full URL. Non-2xx
// responses come back as FORGE_REQUEST errors carrying the status code.
func (g *Github) get(ctx context.Context, fullURL, accept string) ([]byte, http.Header, error) {
	token := os.Getenv(GithubTokenEnvVar)
	if token == "" {
		return nil, nil, errors.MissingCredential(GithubTokenEnvVar, g.Host())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeForgeRequest, "failed to build Github request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", accept)

	g.log.WithField("url", fullURL).Debug("Github API request")
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeForgeRequest, "Github request failed").
			WithDetail("url", fullURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeForgeRequest, "failed to read Github response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, apiError("Github", resp.StatusCode, body).
			WithDetail("url", fullURL)
	}
	return body, resp.Header, nil
}

// apiError turns a non-2xx forge response into a coded error, pulling
// the service's message field out of the body when present.
func apiError(forgeName string, status int, body []byte) *errors.GraftError {
	message := strings.TrimSpace(string(body))
	var wire struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &wire) == nil {
		if wire.Message != "" {
			message = wire.Message
		} else if wire.Error != "" {
			message = wire.Error
		}
	}

	return errors.New(errors.ErrCodeForgeRequest,
		fmt.Sprintf("%s API returned %d: %s", forgeName, status, message)).
		WithDetail("status", status)
}

// sortResults orders search results by SSH URL so listings are stable.
func sortResults(found map[string]SearchResult) []SearchResult {
	results := make([]SearchResult, 0, len(found))
	for _, r := range found {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].SSHURL < results[j].SSHURL
	})
	return results
}
