// Package ingest implements the document ingestion pipeline: directory
// traversal, content sniffing, extraction dispatch, document assembly and
// batch submission.
package ingest

import (
	"io/fs"
	"iter"
	"log/slog"
	"path/filepath"
)

// ExcludedDirNames are directory names that are never descended into.
// Matching is on the exact base name.
var ExcludedDirNames = []string{"target", ".git"}

// IsExcludedDir returns true if a directory with the given base name must be skipped.
func IsExcludedDir(name string) bool {
	for _, excluded := range ExcludedDirNames {
		if name == excluded {
			return true
		}
	}
	return false
}

// Walker yields the regular files reachable from a root directory.
type Walker struct {
	root string
}

// NewWalker creates a walker rooted at root.
func NewWalker(root string) *Walker {
	return &Walker{root: root}
}

// Root returns the directory the walker starts from.
func (w *Walker) Root() string {
	return w.root
}

// Paths returns a lazy sequence of file paths. Every call starts a new walk.
// Paths are joined onto the root as given, so a relative root yields relative paths.
// A root that is itself named after an excluded directory yields nothing.
// Symbolic links are not followed and are not yielded.
// Entries that cannot be listed are omitted and the walk continues with their siblings.
func (w *Walker) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				slog.Debug("Skipping unreadable entry", "path", path, "error", err)
				// Unreadable directories are skipped entirely, other entries individually
				if d != nil && d.IsDir() && path != w.root {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if IsExcludedDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
