package store

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// Stats walks the whole root summing regular-file sizes and counts, and
// derives the health signal and the usage percentage against the configured
// nominal capacity.
func (s *Store) Stats(ctx context.Context) (*StorageStats, error) {
	var totalBytes, fileCount int64

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.resolver.Root(), func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		atomic.AddInt64(&totalBytes, info.Size())
		atomic.AddInt64(&fileCount, 1)
		return nil
	})
	if err != nil {
		return nil, ioFailure("walk store", err)
	}

	status := HealthOnline
	if totalBytes > s.warnBytes {
		status = HealthWarning
	}

	percent := float64(totalBytes) / float64(s.capacity) * 100
	if percent > 100 {
		percent = 100
	}

	return &StorageStats{
		TotalBytes:  totalBytes,
		FileCount:   fileCount,
		Status:      status,
		UsedPercent: percent,
	}, nil
}

// CapacityBytes returns the nominal capacity used as the usage-percentage
// denominator.
func (s *Store) CapacityBytes() int64 {
	return s.capacity
}
