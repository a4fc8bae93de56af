package errors

import (
	"fmt"
	"os/exec"
)

// RepoState creates an error for a repository in the wrong state for an operation
func RepoState(reason string) *GraftError {
	return New(ErrCodeRepoState, reason)
}

// NotAProject creates an error for a directory that is not a graft project
func NotAProject(dir string) *GraftError {
	return New(ErrCodeNotAProject,
		fmt.Sprintf("no graft.yaml found in %s; this directory was not created from a template", dir)).
		WithDetail("dir", dir)
}

// StaleBranch creates an error for a leftover update branch
func StaleBranch(branch string) *GraftError {
	return New(ErrCodeStaleBranch,
		fmt.Sprintf("branch '%s' already exists; run 'graft cleanup' to remove leftovers from a previous update", branch)).
		WithDetail("branch", branch)
}

// MissingCredential creates an error for an unset forge token variable
func MissingCredential(envVar string, host string) *GraftError {
	return New(ErrCodeMissingCredential,
		fmt.Sprintf("%s must be set to talk to %s", envVar, host)).
		WithDetail("envVar", envVar).
		WithDetail("host", host)
}

// InvalidTemplate creates an error for an unparseable template locator
func InvalidTemplate(locator string) *GraftError {
	return New(ErrCodeInvalidTemplate,
		fmt.Sprintf("invalid template locator '%s': expected git@github.com:owner/repo.git or git@gitlab.com:group/repo.git", locator)).
		WithDetail("locator", locator)
}

// VersionLookup creates an error for a failed version resolution across all transports
func VersionLookup(template string, cause error) *GraftError {
	return Wrap(cause, ErrCodeVersionLookup,
		fmt.Sprintf("could not determine the latest version of %s: git ls-remote over SSH failed and the forge API fallback failed; check SSH access or set the forge API token", template)).
		WithDetail("template", template)
}

// SchemaFetch creates an error for a failed parameter schema download
func SchemaFetch(template string, revision string, cause error) *GraftError {
	return Wrap(cause, ErrCodeSchemaFetch,
		fmt.Sprintf("could not fetch the parameter schema of %s at %s", template, revision)).
		WithDetail("template", template).
		WithDetail("revision", revision)
}

// OutOfDate creates an error reporting a project behind its template
func OutOfDate(current string, latest string) *GraftError {
	return New(ErrCodeOutOfDate,
		fmt.Sprintf("project is out of date: on %s, latest is %s", current, latest)).
		WithDetail("current", current).
		WithDetail("latest", latest)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *GraftError {
	graftErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		graftErr = graftErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return graftErr
}

// RenderFailed creates a template rendering failure error
func RenderFailed(template string, err error) *GraftError {
	return Wrap(err, ErrCodeRenderFailed, fmt.Sprintf("rendering %s failed", template)).
		WithDetail("template", template)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *GraftError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}
