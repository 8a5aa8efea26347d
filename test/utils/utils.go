// Package utils provides shared test scaffolding for package-level
// tests across the storage substrate: a disk-backed buffer pool wired
// to a temporary file, cleaned up automatically when the test ends.
package utils

import (
	"path/filepath"
	"testing"

	"corestore/pkg/buffer"
	"corestore/pkg/disk"
)

// NewBufferPool opens a FileDiskManager against a fresh temp file and
// wraps it in a BufferPoolManager with poolSize frames and no WAL hook.
// The disk manager is closed automatically via t.Cleanup.
func NewBufferPool(t *testing.T, poolSize int) *buffer.BufferPoolManager {
	t.Helper()
	dm, err := disk.Open(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("disk.Open() error = %v", err)
	}
	bp := buffer.New(poolSize, dm, nil)
	t.Cleanup(func() { _ = bp.Close() })
	return bp
}
