package command

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/grovetools/graft/errors"
)

// Result holds the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes commands in a fixed working directory. Calls either fail on
// nonzero exit (Run, Shell) or report the exit code in the Result and leave the
// judgement to the caller (RunTolerated). The update flow needs both: most git
// steps must succeed, while merge and checkout --theirs are allowed to conflict.
type Runner struct {
	executor Executor
	dir      string
	env      []string
}

// NewRunner creates a Runner for the given working directory using the
// production executor.
func NewRunner(dir string) *Runner {
	return NewRunnerWithExecutor(dir, &RealExecutor{})
}

// NewRunnerWithExecutor creates a Runner with a custom Executor.
func NewRunnerWithExecutor(dir string, executor Executor) *Runner {
	return &Runner{
		executor: executor,
		dir:      dir,
	}
}

// WithEnv returns a copy of the Runner whose child processes see the given
// KEY=VALUE pairs appended to the parent environment. The parent process
// environment is never mutated.
func (r *Runner) WithEnv(kv ...string) *Runner {
	clone := *r
	clone.env = append(append([]string{}, r.env...), kv...)
	return &clone
}

// Dir returns the working directory commands run in.
func (r *Runner) Dir() string {
	return r.dir
}

// Run executes a command and fails on nonzero exit. Stdout and stderr are
// captured in the Result either way.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return r.execute(ctx, false, name, args...)
}

// RunTolerated executes a command and treats nonzero exit as a valid outcome.
// An error is returned only when the process could not be started.
func (r *Runner) RunTolerated(ctx context.Context, name string, args ...string) (Result, error) {
	return r.execute(ctx, true, name, args...)
}

// Shell runs a script through `sh -c`, for call sites that need a pipeline.
// The exit code is the last pipeline stage's, per POSIX sh.
func (r *Runner) Shell(ctx context.Context, script string) (Result, error) {
	return r.execute(ctx, false, "sh", "-c", script)
}

// RunAttached executes a command with the parent's stdio attached, for
// commands whose output belongs to the user (e.g. template hooks).
func (r *Runner) RunAttached(ctx context.Context, name string, args ...string) error {
	cmd := r.executor.CommandContext(ctx, name, args...)
	cmd.Dir = r.dir
	cmd.Env = r.childEnv()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.CommandFailed(commandLine(name, args), err)
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, tolerate bool, name string, args ...string) (Result, error) {
	cmd := r.executor.CommandContext(ctx, name, args...)
	cmd.Dir = r.dir
	cmd.Env = r.childEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		if tolerate {
			return res, nil
		}
		return res, errors.CommandFailed(commandLine(name, args), err).
			WithDetail("stderr", strings.TrimSpace(res.Stderr))
	}

	// The process never started (binary missing, bad dir, cancelled context).
	return res, errors.CommandFailed(commandLine(name, args), err)
}

func (r *Runner) childEnv() []string {
	if len(r.env) == 0 {
		return nil // inherit as-is
	}
	return append(os.Environ(), r.env...)
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
