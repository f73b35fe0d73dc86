package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Download is an open byte stream for a stored file. Callers own Close.
type Download struct {
	io.ReadCloser
	Name string
	Size int64
}

// Upload writes content to dir/filename inside the root, creating dir
// recursively. An existing file of the same name is overwritten;
// last-writer-wins is the documented policy. The extension gate runs before
// any filesystem mutation. Returns the stored relative path.
func (s *Store) Upload(ctx context.Context, dir, filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !s.exts.Allowed(ext) {
		return "", ErrUnsupportedType
	}
	if filename == "" || filepath.Base(filename) != filename || !filepath.IsLocal(filename) {
		return "", ErrPathEscape
	}

	dirPath, err := s.resolver.Resolve(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", ioFailure("create directory", err)
	}

	target := filepath.Join(dirPath, filename)
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return "", ioFailure("write file", err)
	}

	rel := s.resolver.Rel(target)
	s.log.Debug("File stored",
		zap.String("path", rel),
		zap.Int("size", len(content)),
	)
	return rel, nil
}

// Open returns a byte stream for the file at raw, plus the bare filename
// for the caller's content-disposition header. Missing paths and
// directories are ErrNotFound; content is always treated as opaque binary.
func (s *Store) Open(ctx context.Context, raw string) (*Download, error) {
	path, err := s.resolver.Resolve(raw)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, ioFailure("stat file", err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotFound
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ioFailure("open file", err)
	}
	return &Download{
		ReadCloser: f,
		Name:       info.Name(),
		Size:       info.Size(),
	}, nil
}

// Delete removes the single file at raw. Directories are not deletable
// through this operation.
func (s *Store) Delete(ctx context.Context, raw string) error {
	path, err := s.resolver.Resolve(raw)
	if err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return ioFailure("stat file", err)
	}
	if info.IsDir() {
		return ErrNotFound
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return ioFailure("delete file", err)
	}

	s.log.Debug("File deleted", zap.String("path", s.resolver.Rel(path)))
	return nil
}
