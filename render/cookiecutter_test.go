package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/template"
	"github.com/grovetools/graft/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newParams builds an ordered parameter set from a map. Order is not
// significant for the assertions that use it.
func newParams(t *testing.T, values map[string]interface{}) *config.Parameters {
	t.Helper()
	params := config.NewParameters()
	for key, value := range values {
		params.Set(key, value)
	}
	return params
}

// makeTemplateRepo builds a local cookiecutter-compatible template
// repository and returns a Reference whose Origin is its path.
func makeTemplateRepo(t *testing.T, files map[string]string) template.Reference {
	t.Helper()
	dir := t.TempDir()

	for name, content := range files {
		testutil.WriteFile(t, dir, name, content)
	}
	// InitGitRepo commits everything present in the directory.
	testutil.InitGitRepo(t, dir)

	return template.Reference{
		Origin: dir,
		Host:   "github.com",
		Path:   "org/" + filepath.Base(dir),
		Name:   filepath.Base(dir),
	}
}

func newTestEngine(t *testing.T) *CookiecutterEngine {
	t.Helper()
	engine := NewEngine()
	engine.Out = os.Stderr
	return engine
}

func TestRenderExpandsNamesAndContents(t *testing.T) {
	ref := makeTemplateRepo(t, map[string]string{
		"cookiecutter.json": `{"project_name": "demo", "module": "core"}`,
		"{{cookiecutter.project_name}}/README.md":                    "# {{ cookiecutter.project_name }}\n",
		"{{cookiecutter.project_name}}/{{cookiecutter.module}}/a.go": "package {{ cookiecutter.module }}\n",
		"{{cookiecutter.project_name}}/static.txt":                   "no templating here\n",
	})

	engine := newTestEngine(t)
	out := t.TempDir()

	projectDir, err := engine.Render(context.Background(), RenderRequest{
		Template:   ref,
		Parameters: newParams(t, map[string]interface{}{"project_name": "myproj"}),
		OutputDir:  out,
		Command:    "create",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "myproj"), projectDir)

	assert.Equal(t, "# myproj\n", testutil.ReadFile(t, projectDir, "README.md"))
	assert.Equal(t, "package core\n", testutil.ReadFile(t, projectDir, "core/a.go"))
	assert.Equal(t, "no templating here\n", testutil.ReadFile(t, projectDir, "static.txt"))
}

func TestRenderCopiesBinaryFilesVerbatim(t *testing.T) {
	ref := makeTemplateRepo(t, map[string]string{
		"cookiecutter.json":                  `{"project_name": "demo"}`,
		"{{cookiecutter.project_name}}/keep": "text",
	})
	// A file with NUL bytes and template-looking markers must come
	// through untouched.
	binary := append([]byte("{{ cookiecutter.project_name }}"), 0x00, 0x01, 0x02)
	repoDir := ref.Origin
	require.NoError(t, os.WriteFile(
		filepath.Join(repoDir, "{{cookiecutter.project_name}}", "blob.bin"), binary, 0644))
	testutil.RunGitCommand(t, repoDir, "add", ".")
	testutil.RunGitCommand(t, repoDir, "commit", "-m", "add binary", "--no-verify")

	engine := newTestEngine(t)
	out := t.TempDir()

	projectDir, err := engine.Render(context.Background(), RenderRequest{
		Template:  ref,
		OutputDir: out,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(projectDir, "blob.bin"))
	require.NoError(t, err)
	assert.Equal(t, binary, got)
}

func TestRenderAtPinnedRevision(t *testing.T) {
	ref := makeTemplateRepo(t, map[string]string{
		"cookiecutter.json":                      `{"project_name": "demo"}`,
		"{{cookiecutter.project_name}}/file.txt": "version one\n",
	})
	v1 := testutil.GitOutput(t, ref.Origin, "rev-parse", "HEAD")

	testutil.WriteFile(t, ref.Origin, "{{cookiecutter.project_name}}/file.txt", "version two\n")
	testutil.RunGitCommand(t, ref.Origin, "add", ".")
	testutil.RunGitCommand(t, ref.Origin, "commit", "-m", "v2", "--no-verify")

	engine := newTestEngine(t)

	projectDir, err := engine.Render(context.Background(), RenderRequest{
		Template:  ref,
		Ref:       v1,
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, "version one\n", testutil.ReadFile(t, projectDir, "file.txt"))
}

func TestRenderStageRunsBeforePostHook(t *testing.T) {
	ref := makeTemplateRepo(t, map[string]string{
		"cookiecutter.json":                      `{"project_name": "demo"}`,
		"{{cookiecutter.project_name}}/file.txt": "content\n",
		"hooks/post_gen_project.sh": "#!/bin/sh\n" +
			"cp graft.yaml hook-saw-metadata.yaml\n" +
			"printf '%s' \"$GRAFT_COMMAND\" > hook-command.txt\n",
	})

	engine := newTestEngine(t)

	projectDir, err := engine.Render(context.Background(), RenderRequest{
		Template:   ref,
		Ref:        "",
		Parameters: newParams(t, map[string]interface{}{"project_name": "demo"}),
		OutputDir:  t.TempDir(),
		Command:    "create",
		PostStages: []Stage{MetadataStage(ref, "abc123")},
	})
	require.NoError(t, err)

	// The hook could only copy graft.yaml if the metadata stage ran
	// before it.
	copied := testutil.ReadFile(t, projectDir, "hook-saw-metadata.yaml")
	assert.Contains(t, copied, "version: abc123")
	assert.Equal(t, "create", testutil.ReadFile(t, projectDir, "hook-command.txt"))

	meta, err := config.ReadMetadata(projectDir)
	require.NoError(t, err)
	assert.Equal(t, ref.Origin, meta.Template)
	assert.Equal(t, "abc123", meta.Version)
}

func TestRenderPreHookRunsInOutputDir(t *testing.T) {
	ref := makeTemplateRepo(t, map[string]string{
		"cookiecutter.json":                      `{"project_name": "demo"}`,
		"{{cookiecutter.project_name}}/file.txt": "content\n",
		"hooks/pre_gen_project.sh":               "#!/bin/sh\ntouch pre-ran\n",
	})

	engine := newTestEngine(t)
	out := t.TempDir()

	_, err := engine.Render(context.Background(), RenderRequest{
		Template:  ref,
		OutputDir: out,
	})
	require.NoError(t, err)

	// The pre hook runs before the project directory exists, in the
	// output parent.
	_, err = os.Stat(filepath.Join(out, "pre-ran"))
	assert.NoError(t, err)
}

func TestRenderRejectsTemplateWithoutSchema(t *testing.T) {
	ref := makeTemplateRepo(t, map[string]string{
		"{{cookiecutter.project_name}}/file.txt": "content\n",
	})

	engine := newTestEngine(t)
	_, err := engine.Render(context.Background(), RenderRequest{
		Template:  ref,
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cookiecutter.json")
}

func TestRenderRejectsTemplateWithoutSkeleton(t *testing.T) {
	ref := makeTemplateRepo(t, map[string]string{
		"cookiecutter.json": `{"project_name": "demo"}`,
		"plain/file.txt":    "content\n",
	})

	engine := newTestEngine(t)
	_, err := engine.Render(context.Background(), RenderRequest{
		Template:  ref,
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skeleton")
}
