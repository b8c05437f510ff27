// Package pathsafe validates that file paths resolve inside a project
// root, rejecting directory traversal and symlink escapes.
package pathsafe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrTraversal indicates the path escapes the project root lexically
	// (a residual ".." after normalization).
	ErrTraversal = errors.New("path escapes project root")

	// ErrEscape indicates the path resolves outside the project root
	// through one or more symlinks.
	ErrEscape = errors.New("path resolves outside project root via symlink")
)

// Validate resolves rawPath against root and returns the canonical
// absolute path, or an error if the path escapes root. Symlinks are
// resolved at every component, not just the leaf, so an intermediate
// directory symlinked to outside the root is rejected. For paths that
// do not exist yet, the deepest existing ancestor is canonicalized and
// the unresolved suffix re-appended before the containment check.
//
// root should itself be canonical (see session.New); it is
// re-canonicalized here so a non-canonical root fails safe rather than
// producing false rejections.
func Validate(rawPath, root string) (string, error) {
	if rawPath == "" {
		return "", fmt.Errorf("%w: empty path", ErrTraversal)
	}
	if strings.ContainsRune(rawPath, 0) {
		return "", fmt.Errorf("%w: path contains NUL byte", ErrTraversal)
	}

	canonRoot, _, err := resolveExisting(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	abs := filepath.Clean(rawPath)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(canonRoot, abs)
	}

	// Lexical containment first: a Clean'd path that still walks above
	// the root is plain traversal, no symlinks involved.
	if !contained(canonRoot, abs) {
		return "", fmt.Errorf("%w: %s", ErrTraversal, rawPath)
	}

	// Canonicalize with symlink resolution. Every existing component is
	// resolved; the non-existing suffix (if any) is carried verbatim.
	resolved, suffix, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	canon := resolved
	if suffix != "" {
		canon = filepath.Join(resolved, suffix)
	}

	if !contained(canonRoot, canon) {
		return "", fmt.Errorf("%w: %s", ErrEscape, rawPath)
	}
	return canon, nil
}

// contained reports whether path is root or lies under root.
// Both arguments must be absolute and Clean'd.
func contained(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveExisting canonicalizes the deepest existing ancestor of path
// via EvalSymlinks and returns it together with the non-existing
// suffix (possibly empty). The suffix is rejected if it still contains
// a ".." component, since those cannot be resolved against a directory
// that does not exist.
func resolveExisting(path string) (resolved, suffix string, err error) {
	p := path
	for {
		resolved, err = filepath.EvalSymlinks(p)
		if err == nil {
			return resolved, suffix, nil
		}
		if !os.IsNotExist(err) {
			return "", "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			// Hit the filesystem root without finding anything.
			return "", "", err
		}
		base := filepath.Base(p)
		if base == ".." {
			return "", "", fmt.Errorf("%w: unresolvable parent reference", ErrTraversal)
		}
		if suffix == "" {
			suffix = base
		} else {
			suffix = filepath.Join(base, suffix)
		}
		p = parent
	}
}
