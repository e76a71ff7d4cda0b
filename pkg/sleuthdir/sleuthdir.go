// Package sleuthdir encapsulates all path knowledge for the .sleuth/ project
// directory. It provides a Dir value object with accessors for the config
// file, saved research reports, and local runtime state paths.
package sleuthdir

import (
	"os"
	"path/filepath"
	"sort"
)

// Dir is a value object that resolves paths within a .sleuth/ directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path. The path is converted to an
// absolute path. No I/O is performed; use EnsureStructure to create the
// directory layout.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Root returns the absolute path to the .sleuth/ directory.
func (d Dir) Root() string { return d.root }

// ConfigPath returns the path to the main config file.
func (d Dir) ConfigPath() string { return filepath.Join(d.root, "config.yaml") }

// ReportsDir returns the path to the saved research reports directory.
func (d Dir) ReportsDir() string { return filepath.Join(d.root, "reports") }

// LocalDir returns the path to the local (gitignored) runtime state directory.
func (d Dir) LocalDir() string { return filepath.Join(d.root, "local") }

// GitignorePath returns the path to the .gitignore file inside .sleuth/.
func (d Dir) GitignorePath() string { return filepath.Join(d.root, ".gitignore") }

// Reports returns sorted paths of all *.md files in the reports directory
// (non-recursive). Returns nil if the directory does not exist.
func (d Dir) Reports() []string {
	pattern := filepath.Join(d.ReportsDir(), "*.md")

	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return nil
	}

	sort.Strings(matches)

	return matches
}

// Exists reports whether the .sleuth/ root directory exists on disk.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}
