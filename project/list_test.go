package project

import (
	"bytes"
	"context"
	"testing"

	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/forge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubForge struct {
	results   []forge.SearchResult
	lastQuery forge.Query
}

func (s *stubForge) Search(ctx context.Context, query forge.Query) ([]forge.SearchResult, error) {
	s.lastQuery = query
	return s.results, nil
}

func (s *stubForge) LatestCommit(ctx context.Context, repoPath string) (string, error) {
	return "", nil
}

func (s *stubForge) FileAtRef(ctx context.Context, repoPath, filePath, ref string) ([]byte, error) {
	return nil, nil
}

func (s *stubForge) TokenEnvVar() string { return forge.GithubTokenEnvVar }

func (s *stubForge) Host() string { return "github.com" }

func newLister(stub *stubForge) (*Lister, *bytes.Buffer) {
	out := &bytes.Buffer{}
	l := NewLister()
	l.Forges = func(string) (forge.Forge, error) { return stub, nil }
	l.Out = out
	return l, out
}

func TestListTemplates(t *testing.T) {
	t.Setenv(forge.GithubTokenEnvVar, "test-token")

	stub := &stubForge{results: []forge.SearchResult{
		{SSHURL: "git@github.com:org/app-template.git", Name: "app-template", Description: "An app"},
		{SSHURL: "git@github.com:org/lib-template.git", Name: "lib-template"},
	}}
	l, out := newLister(stub)

	require.NoError(t, l.List(context.Background(), "org", "", false))
	assert.Equal(t, "git@github.com:org/app-template.git\ngit@github.com:org/lib-template.git\n", out.String())
	assert.Equal(t, forge.Query{Owner: "org"}, stub.lastQuery)
}

func TestListLongDescriptions(t *testing.T) {
	t.Setenv(forge.GithubTokenEnvVar, "test-token")

	stub := &stubForge{results: []forge.SearchResult{
		{SSHURL: "git@github.com:org/app-template.git", Description: "An app"},
		{SSHURL: "git@github.com:org/lib-template.git"},
	}}
	l, out := newLister(stub)

	require.NoError(t, l.List(context.Background(), "org", "", true))
	assert.Contains(t, out.String(), "git@github.com:org/app-template.git - ")
	assert.Contains(t, out.String(), "An app")
	assert.Contains(t, out.String(), "(no description)")
}

func TestListProjectsOfTemplate(t *testing.T) {
	t.Setenv(forge.GithubTokenEnvVar, "test-token")

	stub := &stubForge{}
	l, _ := newLister(stub)

	require.NoError(t, l.List(context.Background(), "github.com/org", "app-template", false))
	assert.Equal(t, forge.Query{Owner: "org", TemplateName: "app-template"}, stub.lastQuery)
}

func TestListRequiresOwner(t *testing.T) {
	t.Setenv(forge.GithubTokenEnvVar, "test-token")

	l, _ := newLister(&stubForge{})
	err := l.List(context.Background(), "github.com", "", false)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestListRequiresToken(t *testing.T) {
	t.Setenv(forge.GithubTokenEnvVar, "")

	l, _ := newLister(&stubForge{})
	err := l.List(context.Background(), "org", "", false)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingCredential, errors.GetCode(err))
}
