package update

import (
	"bytes"
	"context"

	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/forge"
	"github.com/grovetools/graft/render"
	"github.com/grovetools/graft/template"
)

// Detector decides whether a template's parameter schema changed
// between two revisions.
type Detector interface {
	SchemaChanged(ctx context.Context, ref template.Reference, oldRev, newRev string) (bool, error)
}

// ChangeDetector compares the raw parameter schema bytes at two
// revisions via the forge API. Any byte difference counts, whitespace
// included: a false positive merely re-prompts the user with their
// stored values as defaults, while a false negative would silently skip
// a question the new template needs answered.
type ChangeDetector struct {
	// Forges selects the API client for a host. Defaults to
	// forge.ForHost.
	Forges func(host string) (forge.Forge, error)
}

// NewChangeDetector creates a detector backed by the real forge APIs.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{Forges: forge.ForHost}
}

// SchemaChanged reports whether the schema file differs between the two
// revisions. A fetch failure at either revision propagates as a
// SCHEMA_FETCH error naming the revision; it is never swallowed.
func (d *ChangeDetector) SchemaChanged(ctx context.Context, ref template.Reference, oldRev, newRev string) (bool, error) {
	f, err := d.Forges(ref.Host)
	if err != nil {
		return false, err
	}

	oldSchema, err := f.FileAtRef(ctx, ref.Path, render.SchemaFileName, oldRev)
	if err != nil {
		return false, errors.SchemaFetch(ref.Origin, oldRev, err)
	}
	newSchema, err := f.FileAtRef(ctx, ref.Path, render.SchemaFileName, newRev)
	if err != nil {
		return false, errors.SchemaFetch(ref.Origin, newRev, err)
	}

	return !bytes.Equal(oldSchema, newSchema), nil
}
