package store

import (
	"os"
	"path/filepath"

	"github.com/filevault/backend/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// Defaults for the storage health signal and the nominal capacity used as
// the usage-percentage denominator. The capacity is a fixed figure, not a
// disk-free query.
const (
	DefaultWarnBytes     = 100 << 30 // 100 GiB
	DefaultCapacityBytes = 1 << 40   // 1 TiB
)

// Config configures a Store.
type Config struct {
	// Root is the directory all client paths are sandboxed beneath.
	// Created if absent.
	Root string

	// ExtraExtensions extends the upload allow-list.
	ExtraExtensions []string

	// WarnBytes is the total-size threshold above which Stats reports
	// HealthWarning. Zero means DefaultWarnBytes.
	WarnBytes int64

	// CapacityBytes is the nominal total capacity used for the usage
	// percentage. Zero means DefaultCapacityBytes.
	CapacityBytes int64

	Logger *logging.Logger
}

// Store exposes the sandboxed file operations. It is bound to one root for
// the process lifetime and holds no other state; the filesystem is the
// single source of truth.
type Store struct {
	resolver  *Resolver
	exts      *ExtensionSet
	warnBytes int64
	capacity  int64
	log       *logging.Logger
}

// New creates a Store rooted at cfg.Root, creating the root idempotently.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, ioFailure("create root", err)
	}
	resolver, err := NewResolver(cfg.Root)
	if err != nil {
		return nil, err
	}

	warn := cfg.WarnBytes
	if warn <= 0 {
		warn = DefaultWarnBytes
	}
	capacity := cfg.CapacityBytes
	if capacity <= 0 {
		capacity = DefaultCapacityBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("File store initialized",
		zap.String("root", filepath.Base(resolver.Root())),
		zap.Int64("warn_bytes", warn),
		zap.Int64("capacity_bytes", capacity),
	)

	return &Store{
		resolver:  resolver,
		exts:      NewExtensionSet(cfg.ExtraExtensions),
		warnBytes: warn,
		capacity:  capacity,
		log:       logger,
	}, nil
}

// Resolver exposes the store's path resolver.
func (s *Store) Resolver() *Resolver {
	return s.resolver
}

// Extensions exposes the upload allow-list.
func (s *Store) Extensions() *ExtensionSet {
	return s.exts
}
