package render

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/grovetools/graft/errors"
)

// RenderInto renders the template into a private temporary directory
// and merges the result into target, one top-level entry at a time: a
// rendered directory replaces any same-named entry under target, a
// rendered file replaces any same-named file. Entries of target the
// render does not produce are left alone — during an update the second
// render runs against an emptied tree, which is how deletions between
// template versions take effect.
//
// The temporary directory is removed on every exit path.
func RenderInto(ctx context.Context, engine Engine, req RenderRequest, target string) error {
	tmp, err := os.MkdirTemp("", "graft-render-*")
	if err != nil {
		return errors.RenderFailed(req.Template.Origin, err)
	}
	defer os.RemoveAll(tmp)

	req.OutputDir = tmp
	projectDir, err := engine.Render(ctx, req)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return errors.RenderFailed(req.Template.Origin, err)
	}
	for _, entry := range entries {
		src := filepath.Join(projectDir, entry.Name())
		dst := filepath.Join(target, entry.Name())

		if err := os.RemoveAll(dst); err != nil {
			return errors.RenderFailed(req.Template.Origin, err)
		}
		if entry.IsDir() {
			err = copyTree(src, dst)
		} else {
			err = copyFile(src, dst)
		}
		if err != nil {
			return errors.RenderFailed(req.Template.Origin, err)
		}
	}
	return nil
}

// copyTree recursively copies a directory.
func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			err = copyTree(srcPath, dstPath)
		} else {
			err = copyFile(srcPath, dstPath)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies a regular file, preserving its permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
