package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine materializes a fixed file map instead of cloning and
// rendering a real template.
type fakeEngine struct {
	projectName string
	files       map[string]string
	prompted    *config.Parameters
}

func (f *fakeEngine) Render(ctx context.Context, req RenderRequest) (string, error) {
	projectDir := filepath.Join(req.OutputDir, f.projectName)
	for name, content := range f.files {
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

func (f *fakeEngine) Prompt(ctx context.Context, req PromptRequest) (*config.Parameters, error) {
	return f.prompted, nil
}

func TestRenderIntoOverwritesFilesAndDirectories(t *testing.T) {
	target := t.TempDir()
	testutil.WriteFile(t, target, "README.md", "user edited\n")
	testutil.WriteFile(t, target, "src/kept_by_user.go", "stays\n")
	testutil.WriteFile(t, target, "docs/old_page.md", "from the old render\n")
	testutil.WriteFile(t, target, "untouched.txt", "not part of the template\n")

	engine := &fakeEngine{
		projectName: "proj",
		files: map[string]string{
			"README.md":        "from template\n",
			"docs/new_page.md": "fresh\n",
		},
	}

	err := RenderInto(context.Background(), engine, RenderRequest{}, target)
	require.NoError(t, err)

	// Same-named file replaced.
	assert.Equal(t, "from template\n", testutil.ReadFile(t, target, "README.md"))

	// Same-named directory replaced wholesale: the old page is gone.
	assert.Equal(t, "fresh\n", testutil.ReadFile(t, target, "docs/new_page.md"))
	_, err = os.Stat(filepath.Join(target, "docs/old_page.md"))
	assert.True(t, os.IsNotExist(err))

	// Entries the render does not produce stay.
	assert.Equal(t, "stays\n", testutil.ReadFile(t, target, "src/kept_by_user.go"))
	assert.Equal(t, "not part of the template\n", testutil.ReadFile(t, target, "untouched.txt"))
}

func TestRenderIntoRunsStages(t *testing.T) {
	target := t.TempDir()
	engine := &fakeEngine{projectName: "proj", files: map[string]string{"a.txt": "a\n"}}

	var stagedDir string
	stage := func(projectDir string, params *config.Parameters) error {
		stagedDir = projectDir
		return os.WriteFile(filepath.Join(projectDir, "staged.txt"), []byte("staged\n"), 0644)
	}

	err := RenderInto(context.Background(), engine, RenderRequest{PostStages: []Stage{stage}}, target)
	require.NoError(t, err)

	// The stage ran inside the temporary render, and its output was
	// merged into the target with everything else.
	assert.NotEqual(t, target, stagedDir)
	assert.Equal(t, "staged\n", testutil.ReadFile(t, target, "staged.txt"))
}
