package template

import (
	"testing"

	"github.com/grovetools/graft/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		locator string
		want    Reference
		wantErr bool
	}{
		{
			name:    "github locator",
			locator: "git@github.com:org/my-template.git",
			want: Reference{
				Origin: "git@github.com:org/my-template.git",
				Host:   "github.com",
				Path:   "org/my-template",
				Name:   "my-template",
			},
		},
		{
			name:    "gitlab locator",
			locator: "git@gitlab.com:group/tmpl.git",
			want: Reference{
				Origin: "git@gitlab.com:group/tmpl.git",
				Host:   "gitlab.com",
				Path:   "group/tmpl",
				Name:   "tmpl",
			},
		},
		{
			name:    "gitlab nested groups",
			locator: "git@gitlab.com:group/subgroup/tmpl.git",
			want: Reference{
				Origin: "git@gitlab.com:group/subgroup/tmpl.git",
				Host:   "gitlab.com",
				Path:   "group/subgroup/tmpl",
				Name:   "tmpl",
			},
		},
		{
			name:    "https URL rejected",
			locator: "https://github.com/org/my-template",
			wantErr: true,
		},
		{
			name:    "missing .git suffix rejected",
			locator: "git@github.com:org/my-template",
			wantErr: true,
		},
		{
			name:    "unknown host rejected",
			locator: "git@git.example.com:org/tmpl.git",
			wantErr: true,
		},
		{
			name:    "missing repo segment rejected",
			locator: "git@github.com:org.git",
			wantErr: true,
		},
		{
			name:    "empty locator rejected",
			locator: "",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := Parse(tc.locator)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidTemplate))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ref)
		})
	}
}

func TestWebURL(t *testing.T) {
	ref, err := Parse("git@github.com:org/my-template.git")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/org/my-template", ref.WebURL())
}

func TestExpand(t *testing.T) {
	testCases := []struct {
		name          string
		locator       string
		abbreviations map[string]string
		expected      string
	}{
		{
			name:     "builtin github abbreviation",
			locator:  "gh:org/tmpl",
			expected: "git@github.com:org/tmpl.git",
		},
		{
			name:     "builtin gitlab abbreviation",
			locator:  "gl:group/tmpl",
			expected: "git@gitlab.com:group/tmpl.git",
		},
		{
			name:     "full locator passes through",
			locator:  "git@github.com:org/tmpl.git",
			expected: "git@github.com:org/tmpl.git",
		},
		{
			name:     "unknown prefix passes through",
			locator:  "bb:org/tmpl",
			expected: "bb:org/tmpl",
		},
		{
			name:          "user abbreviation",
			locator:       "work:tmpl",
			abbreviations: map[string]string{"work": "git@gitlab.com:my-company/templates/%s.git"},
			expected:      "git@gitlab.com:my-company/templates/tmpl.git",
		},
		{
			name:          "user abbreviation overrides builtin",
			locator:       "gh:tmpl",
			abbreviations: map[string]string{"gh": "git@github.com:my-org/%s.git"},
			expected:      "git@github.com:my-org/tmpl.git",
		},
		{
			name:     "no colon passes through",
			locator:  "plain-name",
			expected: "plain-name",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Expand(tc.locator, tc.abbreviations))
		})
	}
}
