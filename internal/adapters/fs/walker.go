// Package fs provides the filesystem adapters: glob resolution, atomic
// artifact writes, tree walking and content hashing.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnores are directory names never descended into.
var DefaultIgnores = []string{".git", ".jj", "node_modules"}

// Walker provides file walking functionality.
type Walker struct {
	ignores []string
}

// NewWalker creates a new Walker that skips DefaultIgnores and any extra patterns.
func NewWalker(extra ...string) *Walker {
	ignores := make([]string, 0, len(DefaultIgnores)+len(extra))
	ignores = append(ignores, DefaultIgnores...)
	ignores = append(ignores, extra...)
	return &Walker{ignores: ignores}
}

// WalkFiles yields the path of every regular file below root.
// Yielded paths are prefixed with root.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return w.walk(root, func(d fs.DirEntry) bool { return d.Type().IsRegular() })
}

// WalkDirs yields root and every directory below it.
func (w *Walker) WalkDirs(root string) iter.Seq[string] {
	return w.walk(root, fs.DirEntry.IsDir)
}

func (w *Walker) walk(root string, keep func(fs.DirEntry) bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Entries can vanish while a build is rewriting them.
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if path != root && w.ignored(d) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if keep(d) && !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) ignored(d fs.DirEntry) bool {
	name := d.Name()
	for _, ignore := range w.ignores {
		if matched, _ := doublestar.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
