package forge

import (
	"testing"

	"github.com/grovetools/graft/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForHost(t *testing.T) {
	f, err := ForHost("github.com")
	require.NoError(t, err)
	assert.Equal(t, "github.com", f.Host())
	assert.Equal(t, GithubTokenEnvVar, f.TokenEnvVar())

	f, err = ForHost("gitlab.com")
	require.NoError(t, err)
	assert.Equal(t, "gitlab.com", f.Host())
	assert.Equal(t, GitlabTokenEnvVar, f.TokenEnvVar())

	_, err = ForHost("git.example.com")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidTemplate, errors.GetCode(err))
}

func TestForPath(t *testing.T) {
	f, err := ForPath("github.com/MyOrg")
	require.NoError(t, err)
	assert.Equal(t, "github.com", f.Host())

	f, err = ForPath("gitlab.com/my/group")
	require.NoError(t, err)
	assert.Equal(t, "gitlab.com", f.Host())

	// A bare owner defaults to Github.
	f, err = ForPath("MyOrg")
	require.NoError(t, err)
	assert.Equal(t, "github.com", f.Host())
}

func TestOwnerFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"github.com/MyOrg", "MyOrg"},
		{"github.com/MyOrg/", "MyOrg"},
		{"gitlab.com/my/group", "my/group"},
		{"MyOrg", "MyOrg"},
		{"github.com", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OwnerFromPath(tt.path), "path %q", tt.path)
	}
}

func TestParseLinkNext(t *testing.T) {
	header := `<https://api.github.com/search/code?q=x&page=2>; rel="next", <https://api.github.com/search/code?q=x&page=5>; rel="last"`
	assert.Equal(t, "https://api.github.com/search/code?q=x&page=2", parseLinkNext(header))

	assert.Equal(t, "", parseLinkNext(`<https://api.github.com/x?page=5>; rel="last"`))
	assert.Equal(t, "", parseLinkNext(""))
	assert.Equal(t, "", parseLinkNext("garbage"))
}
