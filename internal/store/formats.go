package store

import "strings"

// Upload extension allow-list grouped by category. The table is static;
// deployments extend it through Config.ExtraExtensions.
var extensionCategories = map[string][]string{
	"documents":   {".txt", ".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx"},
	"images":      {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg"},
	"audio":       {".mp3", ".wav", ".aac", ".flac"},
	"video":       {".mp4", ".avi", ".mkv", ".mov"},
	"compressed":  {".zip", ".rar", ".7z"},
	"executables": {".exe", ".msi", ".apk", ".dmg"},
}

// ExtensionSet answers whether a declared extension is allowed for upload.
// Lookups are case-insensitive.
type ExtensionSet struct {
	byExt map[string]string // ".pdf" -> "documents"
}

// NewExtensionSet builds the allow-list from the static table plus any
// configured extras (reported under the "custom" category).
func NewExtensionSet(extra []string) *ExtensionSet {
	s := &ExtensionSet{byExt: make(map[string]string)}
	for category, exts := range extensionCategories {
		for _, ext := range exts {
			s.byExt[ext] = category
		}
	}
	for _, ext := range extra {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.byExt[ext] = "custom"
	}
	return s
}

// Allowed reports whether ext is in the allow-list.
func (s *ExtensionSet) Allowed(ext string) bool {
	_, ok := s.byExt[strings.ToLower(ext)]
	return ok
}

// Category returns the category an extension belongs to.
func (s *ExtensionSet) Category(ext string) (string, bool) {
	category, ok := s.byExt[strings.ToLower(ext)]
	return category, ok
}
