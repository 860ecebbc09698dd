package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// VisitFunc receives one candidate item. Returning an error stops the traversal.
type VisitFunc func(path string, info fs.FileInfo) error

// ListDirect calls fn for each immediate child of base.
//
// A missing or unreadable base yields no items and no error. Children that
// cannot be stat'ed are skipped. The only errors returned are ctx.Err(),
// checked before every child, and whatever fn returns.
func ListDirect(ctx context.Context, base string, fn VisitFunc) error {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if err := fn(filepath.Join(base, entry.Name()), info); err != nil {
			return err
		}
	}

	return nil
}

// FindPattern calls fn for every directory under base whose name equals name.
// base itself is a candidate. Matched directories are not descended into, so
// nested matches are never reported separately.
//
// Symlinks are not followed and unreadable subtrees are skipped silently.
// ctx.Err() is checked at every directory, so before every match.
func FindPattern(ctx context.Context, base, name string, fn VisitFunc) error {
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != base {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.Name() != name {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return filepath.SkipDir
		}

		if err := fn(path, info); err != nil {
			return err
		}
		return filepath.SkipDir
	})
}
