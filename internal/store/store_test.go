package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{Root: t.TempDir()})
	require.NoError(t, err)
	return s
}

func TestNewCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := New(Config{Root: root})
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent on an existing root
	_, err = New(Config{Root: root})
	assert.NoError(t, err)
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	content := []byte("quarterly numbers")

	rel, err := s.Upload(ctx, "reports", "report.pdf", content)
	require.NoError(t, err)
	assert.Equal(t, "reports/report.pdf", rel)

	dl, err := s.Open(ctx, "reports/report.pdf")
	require.NoError(t, err)
	defer dl.Close()

	got, err := io.ReadAll(dl)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "report.pdf", dl.Name)
	assert.Equal(t, int64(len(content)), dl.Size)
}

func TestUploadOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, "", "a.txt", []byte("first"))
	require.NoError(t, err)
	_, err = s.Upload(ctx, "", "a.txt", []byte("second"))
	require.NoError(t, err)

	dl, err := s.Open(ctx, "a.txt")
	require.NoError(t, err)
	defer dl.Close()
	got, _ := io.ReadAll(dl)
	assert.Equal(t, []byte("second"), got)
}

func TestUploadUnsupportedExtension(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, "", "virus.exe2", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	// Nothing written
	files, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestUploadExtensionCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Upload(context.Background(), "", "PHOTO.JPG", []byte("x"))
	assert.NoError(t, err)
}

func TestUploadExtraExtension(t *testing.T) {
	s, err := New(Config{Root: t.TempDir(), ExtraExtensions: []string{"md"}})
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "", "notes.md", []byte("x"))
	assert.NoError(t, err)
}

func TestUploadEscapingPath(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Upload(context.Background(), "../evil", "a.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrPathEscape)

	_, err = s.Upload(context.Background(), "", "../a.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrPathEscape)
}

func TestListEmptyRoot(t *testing.T) {
	s := newTestStore(t)

	files, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)

	entries, err := os.ReadDir(s.Resolver().Root())
	require.NoError(t, err)
	assert.Empty(t, entries, "List must not create extraneous entries")
}

func TestListSortedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Upload out of order; listing must still be ascending
	_, err := s.Upload(ctx, "", "b.txt", []byte("bb"))
	require.NoError(t, err)
	_, err = s.Upload(ctx, "", "a.txt", []byte("aa"))
	require.NoError(t, err)

	files, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.Equal(t, "b.txt", files[1].Name)
	assert.Equal(t, int64(2), files[0].Size)
}

func TestListOmitsDirectories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateFolder(ctx, "", "sub")
	require.NoError(t, err)
	_, err = s.Upload(ctx, "", "a.txt", []byte("x"))
	require.NoError(t, err)

	files, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Name)
}

func TestListCreatesMissingDirectory(t *testing.T) {
	s := newTestStore(t)

	files, err := s.List(context.Background(), "does/not/exist")
	require.NoError(t, err)
	assert.Empty(t, files)

	info, err := os.Stat(filepath.Join(s.Resolver().Root(), "does", "not", "exist"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	content := []byte("payload")

	_, err := s.Upload(ctx, "x", "f.txt", content)
	require.NoError(t, err)

	rel, err := s.Move(ctx, "x/f.txt", "y")
	require.NoError(t, err)
	assert.Equal(t, "y/f.txt", rel)

	dl, err := s.Open(ctx, "y/f.txt")
	require.NoError(t, err)
	defer dl.Close()
	got, _ := io.ReadAll(dl)
	assert.Equal(t, content, got)

	_, err = s.Open(ctx, "x/f.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveMissingSource(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Move(context.Background(), "nope.txt", "y")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCopy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	content := []byte("payload")

	_, err := s.Upload(ctx, "x", "f.txt", content)
	require.NoError(t, err)

	modTime := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	src := filepath.Join(s.Resolver().Root(), "x", "f.txt")
	require.NoError(t, os.Chtimes(src, modTime, modTime))

	rel, err := s.Copy(ctx, "x/f.txt", "y")
	require.NoError(t, err)
	assert.Equal(t, "y/f.txt", rel)

	// Source still present
	_, err = s.Open(ctx, "x/f.txt")
	assert.NoError(t, err)

	// Content and modification time preserved
	dst := filepath.Join(s.Resolver().Root(), "y", "f.txt")
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(modTime))
}

func TestCopyOverwritesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, "x", "f.txt", []byte("new"))
	require.NoError(t, err)
	_, err = s.Upload(ctx, "y", "f.txt", []byte("old old old"))
	require.NoError(t, err)

	_, err = s.Copy(ctx, "x/f.txt", "y")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(s.Resolver().Root(), "y", "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestCopyDirectoryRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateFolder(ctx, "", "src")
	require.NoError(t, err)

	_, err = s.Copy(ctx, "src", "dst")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, "", "a.txt", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "a.txt"))
	assert.ErrorIs(t, s.Delete(ctx, "a.txt"), ErrNotFound)
}

func TestDeleteRefusesDirectories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateFolder(ctx, "", "docs")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, "docs"), ErrNotFound)

	info, err := os.Stat(filepath.Join(s.Resolver().Root(), "docs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateFolderIdempotence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rel, err := s.CreateFolder(ctx, "docs", "2024")
	require.NoError(t, err)
	assert.Equal(t, "docs/2024", rel)

	_, err = s.CreateFolder(ctx, "docs", "2024")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// The directory exists exactly once
	entries, err := os.ReadDir(filepath.Join(s.Resolver().Root(), "docs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024", entries[0].Name())
}

func TestCreateFolderCollidesWithFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, "", "report.pdf", []byte("x"))
	require.NoError(t, err)

	_, err = s.CreateFolder(ctx, "", "report.pdf")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestListFolders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateFolder(ctx, "", "b")
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, "b", "inner")
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, "", "a")
	require.NoError(t, err)
	_, err = s.Upload(ctx, "a", "f.txt", []byte("x"))
	require.NoError(t, err)

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 4)

	assert.Equal(t, "Root", folders[0].Name)
	assert.Equal(t, "/", folders[0].Path)
	assert.Equal(t, "a/", folders[1].Path)
	assert.Equal(t, "b/", folders[2].Path)
	assert.Equal(t, "b/inner/", folders[3].Path)
	assert.Equal(t, "inner", folders[3].Name)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalBytes)
	assert.Equal(t, int64(0), stats.FileCount)
	assert.Equal(t, HealthOnline, stats.Status)

	_, err = s.Upload(ctx, "", "a.txt", []byte("0123456789"))
	require.NoError(t, err)
	_, err = s.Upload(ctx, "sub", "b.txt", []byte("01234567890123456789"))
	require.NoError(t, err)

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(30), stats.TotalBytes)
	assert.Equal(t, int64(2), stats.FileCount)
}

func TestStatsWarning(t *testing.T) {
	s, err := New(Config{Root: t.TempDir(), WarnBytes: 5, CapacityBytes: 100})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Upload(ctx, "", "a.txt", []byte("0123456789"))
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, HealthWarning, stats.Status)
	assert.InDelta(t, 10.0, stats.UsedPercent, 0.001)
}

func TestStatsPercentCapped(t *testing.T) {
	s, err := New(Config{Root: t.TempDir(), CapacityBytes: 4})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Upload(ctx, "", "a.txt", []byte("0123456789"))
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stats.UsedPercent)
}

func TestDownloadMissingAndDirectory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Open(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateFolder(ctx, "", "docs")
	require.NoError(t, err)
	_, err = s.Open(ctx, "docs")
	assert.ErrorIs(t, err, ErrNotFound)
}
