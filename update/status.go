package update

import (
	"context"
	"fmt"

	"github.com/grovetools/graft/check"
	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/template"
)

// UpToDate reports whether the project is on the requested template
// revision (the latest when version is empty). It mutates nothing.
func (o *Orchestrator) UpToDate(ctx context.Context, version string) (bool, error) {
	_, current, target, err := o.resolveStatus(ctx, version)
	if err != nil {
		return false, err
	}
	return current == target, nil
}

// Check prints the project's update status and fails with OUT_OF_DATE
// when the project is behind, so `update --check` exits nonzero without
// mutating anything.
func (o *Orchestrator) Check(ctx context.Context, version string) error {
	ref, current, target, err := o.resolveStatus(ctx, version)
	if err != nil {
		return err
	}

	if current == target {
		fmt.Fprintf(o.Out, "Up to date with template %s (version %s)\n", ref.Origin, current)
		return nil
	}

	fmt.Fprintf(o.Out, "This project is out of date with template %s: on version %s, latest is %s\n",
		ref.Origin, current, target)
	return errors.OutOfDate(current, target)
}

// resolveStatus reads the project metadata and resolves the revision to
// compare against.
func (o *Orchestrator) resolveStatus(ctx context.Context, version string) (ref template.Reference, current, target string, err error) {
	if err = check.InGitRepo(ctx, o.Repo); err != nil {
		return ref, "", "", err
	}
	if err = check.IsProject(o.Repo.Dir()); err != nil {
		return ref, "", "", err
	}

	meta, err := config.ReadMetadata(o.Repo.Dir())
	if err != nil {
		return ref, "", "", err
	}
	if ref, err = template.Parse(meta.Template); err != nil {
		return ref, "", "", err
	}

	target = version
	if target == "" {
		if target, err = o.Resolver.Latest(ctx, ref); err != nil {
			return ref, "", "", err
		}
	}
	return ref, meta.Version, target, nil
}
