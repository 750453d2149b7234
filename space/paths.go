package space

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ContainmentError reports a write aimed outside the scratch directory.
// Path is the path as the caller requested it, for diagnostics.
type ContainmentError struct {
	Path string
}

func (e *ContainmentError) Error() string {
	return fmt.Sprintf("attempt to write outside scratch space: %s", e.Path)
}

// Resolve maps a requested path to the absolute path a write will target,
// or rejects it with a *ContainmentError.
//
// Relative paths always resolve against the scratch root, not the process
// working directory: callers are free to chdir around inside the space
// without changing what "notes.txt" means. Absolute paths are accepted
// only when they lie inside the scratch directory, decided by walking up
// from the path to its nearest existing ancestor, canonicalizing that
// ancestor, and requiring the canonical scratch root as a prefix. Symlinks
// pointing out of the scratch directory therefore do not pass.
func (s *Space) Resolve(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.Join(s.dir, path), nil
	}

	root, err := filepath.EvalSymlinks(s.dir)
	if err != nil {
		return "", &ContainmentError{Path: path}
	}

	for ancestor := path; ; ancestor = filepath.Dir(ancestor) {
		if _, err := os.Stat(ancestor); err == nil {
			canonical, err := filepath.EvalSymlinks(ancestor)
			if err != nil {
				return "", &ContainmentError{Path: path}
			}
			if !containsPath(root, canonical) {
				return "", &ContainmentError{Path: path}
			}
			return path, nil
		}
		if ancestor == filepath.Dir(ancestor) {
			// Filesystem root without a single existing ancestor.
			return "", &ContainmentError{Path: path}
		}
	}
}

// containsPath reports whether p equals root or sits below it. Both
// arguments must already be canonical.
func containsPath(root, p string) bool {
	if p == root {
		return true
	}
	return strings.HasPrefix(p, root+string(filepath.Separator))
}
