package store

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps client-supplied relative paths onto absolute paths confined
// to a single root directory. The escape check runs on the canonicalized
// path, not the raw string, so neither ".." segments nor symlinks crossing
// the boundary can slip through.
type Resolver struct {
	root string // canonical absolute root, no trailing separator
}

// NewResolver creates a resolver for root, which must already exist.
// The root itself is canonicalized once so later prefix checks compare
// like with like.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ioFailure("resolve root", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, ioFailure("resolve root", err)
	}
	return &Resolver{root: filepath.Clean(canonical)}, nil
}

// Root returns the canonical absolute root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve validates raw and returns the absolute path it denotes. Empty
// input and "/" resolve to the root itself. ErrPathEscape is returned for
// any input whose canonical form is not the root or a strict descendant.
func (r *Resolver) Resolve(raw string) (string, error) {
	rel := strings.Trim(strings.TrimSpace(raw), "/")
	if rel == "" {
		return r.root, nil
	}

	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == "." {
		return r.root, nil
	}
	// Lexical gate: rejects absolute paths and anything ".." can pull above
	// the root before we touch the filesystem.
	if !filepath.IsLocal(cleaned) {
		return "", ErrPathEscape
	}

	full := filepath.Join(r.root, cleaned)

	// Canonicalize through the deepest existing ancestor so a symlink inside
	// the root cannot point the operation outside it.
	canonical, err := canonicalize(full)
	if err != nil {
		return "", ioFailure("canonicalize path", err)
	}
	if !r.contains(canonical) {
		return "", ErrPathEscape
	}
	return canonical, nil
}

// Rel converts an absolute path under the root back into the client-facing
// relative form with forward slashes.
func (r *Resolver) Rel(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// contains reports whether path is the root or a strict descendant of it.
// The comparison is separator-aware: "/data/storez" is not inside "/data/store".
func (r *Resolver) contains(path string) bool {
	if path == r.root {
		return true
	}
	return strings.HasPrefix(path, r.root+string(os.PathSeparator))
}

// canonicalize resolves symlinks in path. Components that do not exist yet
// (upload targets, folders about to be created) are re-joined verbatim onto
// the deepest ancestor that does exist.
func canonicalize(path string) (string, error) {
	suffix := ""
	current := path
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(resolved, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		suffix = filepath.Join(filepath.Base(current), suffix)
		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		current = parent
	}
}
