package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/grovetools/graft/errors"
)

// Reference identifies a remote template repository. Only SSH locators are
// accepted so that clones work against private template repos without extra
// flags; the forge API side derives everything it needs from Host and Path.
type Reference struct {
	// Origin is the normalized SSH locator, e.g. git@github.com:org/tmpl.git
	Origin string
	// Host is the forge domain, e.g. github.com
	Host string
	// Path is the repository path, e.g. org/tmpl
	Path string
	// Name is the final path segment, e.g. tmpl
	Name string
}

var sshLocatorPattern = regexp.MustCompile(`^git@([a-zA-Z0-9.-]+):([\w./-]+)\.git$`)

// KnownHosts lists the forge domains graft can talk to.
var KnownHosts = []string{"github.com", "gitlab.com"}

// Parse validates a template locator and splits it into its parts.
func Parse(locator string) (Reference, error) {
	m := sshLocatorPattern.FindStringSubmatch(locator)
	if m == nil {
		return Reference{}, errors.InvalidTemplate(locator)
	}

	host, path := m[1], m[2]

	known := false
	for _, h := range KnownHosts {
		if host == h {
			known = true
			break
		}
	}
	if !known {
		return Reference{}, errors.InvalidTemplate(locator).
			WithDetail("host", host)
	}

	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return Reference{}, errors.InvalidTemplate(locator)
	}
	for _, s := range segments {
		if s == "" {
			return Reference{}, errors.InvalidTemplate(locator)
		}
	}

	return Reference{
		Origin: locator,
		Host:   host,
		Path:   path,
		Name:   segments[len(segments)-1],
	}, nil
}

// WebURL returns the https browse address of the repository.
func (r Reference) WebURL() string {
	return fmt.Sprintf("https://%s/%s", r.Host, r.Path)
}

func (r Reference) String() string {
	return r.Origin
}

// builtinAbbreviations are always available; user-configured ones override them.
var builtinAbbreviations = map[string]string{
	"gh": "git@github.com:%s.git",
	"gl": "git@gitlab.com:%s.git",
}

// Expand rewrites an abbreviated locator like gh:org/tmpl into its full SSH
// form. Locators that use no known abbreviation pass through unchanged.
func Expand(locator string, abbreviations map[string]string) string {
	prefix, rest, found := strings.Cut(locator, ":")
	if !found {
		return locator
	}

	expansion, ok := abbreviations[prefix]
	if !ok {
		expansion, ok = builtinAbbreviations[prefix]
	}
	if !ok {
		return locator
	}

	if strings.Contains(expansion, "%s") {
		return fmt.Sprintf(expansion, rest)
	}
	return expansion + rest
}
