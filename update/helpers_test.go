package update

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/forge"
	"github.com/grovetools/graft/git"
	"github.com/grovetools/graft/render"
	"github.com/grovetools/graft/template"
	"github.com/grovetools/graft/testutil"
	"github.com/stretchr/testify/require"
)

const testTemplate = "git@github.com:org/tmpl.git"

// stubForge is an in-memory forge for tests.
type stubForge struct {
	host        string
	tokenEnvVar string
	latest      string
	latestErr   error
	// files maps ref -> schema file contents.
	files    map[string]string
	filesErr error
	calls    int
}

func (s *stubForge) Search(ctx context.Context, query forge.Query) ([]forge.SearchResult, error) {
	return nil, nil
}

func (s *stubForge) LatestCommit(ctx context.Context, repoPath string) (string, error) {
	s.calls++
	return s.latest, s.latestErr
}

func (s *stubForge) FileAtRef(ctx context.Context, repoPath, filePath, ref string) ([]byte, error) {
	s.calls++
	if s.filesErr != nil {
		return nil, s.filesErr
	}
	return []byte(s.files[ref]), nil
}

func (s *stubForge) TokenEnvVar() string {
	if s.tokenEnvVar != "" {
		return s.tokenEnvVar
	}
	return forge.GithubTokenEnvVar
}

func (s *stubForge) Host() string {
	if s.host != "" {
		return s.host
	}
	return "github.com"
}

func forgesFor(f forge.Forge) func(string) (forge.Forge, error) {
	return func(string) (forge.Forge, error) { return f, nil }
}

// fakeResolver returns a fixed revision.
type fakeResolver struct {
	rev string
	err error
}

func (f *fakeResolver) Latest(ctx context.Context, ref template.Reference) (string, error) {
	return f.rev, f.err
}

// fakeDetector returns a fixed schema-diff answer.
type fakeDetector struct {
	changed bool
	err     error
	calls   int
}

func (f *fakeDetector) SchemaChanged(ctx context.Context, ref template.Reference, oldRev, newRev string) (bool, error) {
	f.calls++
	return f.changed, f.err
}

// fakeRenderEngine materializes fixed file trees per revision instead
// of cloning a template repository.
type fakeRenderEngine struct {
	// trees maps revision -> relative path -> content.
	trees map[string]map[string]string
	// prompted is returned by Prompt when set; otherwise the request's
	// defaults come back unchanged.
	prompted    *config.Parameters
	promptCalls int
	renderRefs  []string
}

func (f *fakeRenderEngine) Render(ctx context.Context, req render.RenderRequest) (string, error) {
	f.renderRefs = append(f.renderRefs, req.Ref)
	projectDir := filepath.Join(req.OutputDir, "proj")

	for name, content := range f.trees[req.Ref] {
		path := filepath.Join(projectDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return "", err
		}
	}
	for _, stage := range req.PostStages {
		if err := stage(projectDir, req.Parameters); err != nil {
			return "", err
		}
	}
	return projectDir, nil
}

func (f *fakeRenderEngine) Prompt(ctx context.Context, req render.PromptRequest) (*config.Parameters, error) {
	f.promptCalls++
	if f.prompted != nil {
		return f.prompted, nil
	}
	if req.Defaults != nil {
		return req.Defaults, nil
	}
	return config.NewParameters(), nil
}

// newProject builds a git repository holding a graft project at
// version v1 of the test template, with the given extra working tree
// files committed.
func newProject(t *testing.T, files map[string]string) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()

	params := config.NewParameters()
	params.Set("project_name", "proj")
	require.NoError(t, config.WriteMetadata(dir, &config.Metadata{
		Template:   testTemplate,
		Version:    "v1",
		Parameters: params,
	}))
	for name, content := range files {
		testutil.WriteFile(t, dir, name, content)
	}
	testutil.InitGitRepo(t, dir)

	return dir, git.NewRepository(dir)
}

// newPlainRepo builds a git repository that is not a graft project.
func newPlainRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	testutil.InitGitRepo(t, dir)
	return dir, git.NewRepository(dir)
}

// newOrchestrator wires an Orchestrator with fakes and buffered stdio.
func newOrchestrator(repo *git.Repository, engine *fakeRenderEngine, resolver Resolver, detector Detector) (*Orchestrator, *bytes.Buffer) {
	out := &bytes.Buffer{}
	o := NewOrchestrator(repo, engine)
	o.Resolver = resolver
	o.Detector = detector
	o.In = strings.NewReader("\n\n")
	o.Out = out
	return o, out
}
