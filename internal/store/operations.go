package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
)

// Move relocates source into destDir, creating destDir recursively. The
// destination name is always the source's basename; renaming during a move
// is not supported. Within one volume this is an atomic rename; across
// volumes it degrades to a non-atomic copy-then-delete in which the copy is
// completed before the source unlink is attempted, so a partial failure
// leaves a duplicate rather than losing data.
func (s *Store) Move(ctx context.Context, source, destDir string) (string, error) {
	src, err := s.resolver.Resolve(source)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(src); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", ioFailure("stat source", err)
	}

	target, err := s.destination(src, destDir)
	if err != nil {
		return "", err
	}

	if err := os.Rename(src, target); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return "", ioFailure("move file", err)
		}
		if err := copyFile(src, target); err != nil {
			return "", err
		}
		if err := os.Remove(src); err != nil {
			// The destination copy is complete; both copies now exist.
			return "", ioFailure("remove source after cross-device copy", err)
		}
	}

	rel := s.resolver.Rel(target)
	s.log.Debug("File moved",
		zap.String("source", s.resolver.Rel(src)),
		zap.String("destination", rel),
	)
	return rel, nil
}

// Copy duplicates the file at source into destDir under the source's
// basename, preserving the modification time. An existing destination file
// of that name is overwritten.
func (s *Store) Copy(ctx context.Context, source, destDir string) (string, error) {
	src, err := s.resolver.Resolve(source)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", ioFailure("stat source", err)
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotFound
	}

	target, err := s.destination(src, destDir)
	if err != nil {
		return "", err
	}
	if err := copyFile(src, target); err != nil {
		return "", err
	}

	rel := s.resolver.Rel(target)
	s.log.Debug("File copied",
		zap.String("source", s.resolver.Rel(src)),
		zap.String("destination", rel),
	)
	return rel, nil
}

// destination resolves destDir, creates it recursively and returns the
// target path destDir/basename(src).
func (s *Store) destination(src, destDir string) (string, error) {
	dir, err := s.resolver.Resolve(destDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", ioFailure("create destination directory", err)
	}
	return filepath.Join(dir, filepath.Base(src)), nil
}

// copyFile copies content and modification time from src to dst. The
// destination is synced before the copy is considered complete.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return ioFailure("stat source", err)
	}
	if !info.Mode().IsRegular() {
		return ioFailure("copy", errors.New("source is not a regular file"))
	}

	in, err := os.Open(src)
	if err != nil {
		return ioFailure("open source", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return ioFailure("create destination", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return ioFailure("copy content", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return ioFailure("sync destination", err)
	}
	if err := out.Close(); err != nil {
		return ioFailure("close destination", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return ioFailure("preserve modification time", err)
	}
	return nil
}
