package store

import "time"

// FileEntry describes a regular file produced by a listing. Entries are
// transient: they are recomputed from live filesystem state on every call.
type FileEntry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// FolderEntry describes a directory. Path always carries a trailing slash;
// the synthetic Root entry uses "/".
type FolderEntry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Created time.Time `json:"created"`
}

// Health signals derived from storage usage.
const (
	HealthOnline  = "online"
	HealthWarning = "warning"
)

// StorageStats aggregates usage over the whole store root.
type StorageStats struct {
	TotalBytes  int64   `json:"total_bytes"`
	FileCount   int64   `json:"file_count"`
	Status      string  `json:"status"`
	UsedPercent float64 `json:"used_percent"`
}
