package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// List returns the direct child files of dir as FileEntry values, sorted
// ascending by name in byte-wise order. Subdirectories are omitted. A
// missing dir is created empty instead of failing.
func (s *Store) List(ctx context.Context, dir string) ([]FileEntry, error) {
	path, err := s.resolver.Resolve(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, ioFailure("create directory", err)
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, ioFailure("read directory", err)
	}

	files := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Entry vanished between readdir and stat; skip it.
			continue
		}
		files = append(files, FileEntry{
			Name:     entry.Name(),
			Path:     s.resolver.Rel(filepath.Join(path, entry.Name())),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// CreateFolder creates parentDir/name. It fails with ErrAlreadyExists if
// the target exists as either a file or a directory.
func (s *Store) CreateFolder(ctx context.Context, parentDir, name string) (string, error) {
	if name == "" || filepath.Base(name) != name || !filepath.IsLocal(name) {
		return "", ErrPathEscape
	}
	parent, err := s.resolver.Resolve(parentDir)
	if err != nil {
		return "", err
	}

	target := filepath.Join(parent, name)
	if _, err := os.Lstat(target); err == nil {
		return "", ErrAlreadyExists
	} else if !os.IsNotExist(err) {
		return "", ioFailure("stat folder", err)
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", ioFailure("create folder", err)
	}

	rel := s.resolver.Rel(target)
	s.log.Debug("Folder created", zap.String("path", rel))
	return rel, nil
}

// ListFolders walks the whole root and returns every directory below it as
// a FolderEntry with a trailing-slash path, prepended by the synthetic Root
// entry. Results are sorted ascending by path; "/" orders first.
func (s *Store) ListFolders(ctx context.Context) ([]FolderEntry, error) {
	root := s.resolver.Root()

	var (
		mu      sync.Mutex
		folders []FolderEntry
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || path == root || !d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		entry := FolderEntry{
			Name:    d.Name(),
			Path:    s.resolver.Rel(path) + "/",
			Created: info.ModTime(),
		}
		mu.Lock()
		folders = append(folders, entry)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, ioFailure("walk folders", err)
	}

	folders = append(folders, FolderEntry{Name: "Root", Path: "/", Created: time.Now()})
	sort.Slice(folders, func(i, j int) bool { return folders[i].Path < folders[j].Path })
	return folders, nil
}
