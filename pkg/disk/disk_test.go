package disk_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"corestore/pkg/config"
	"corestore/pkg/disk"
	"corestore/pkg/page"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "data.db")
}

// TestAllocatePageIsSequential confirms ids are handed out sequentially
// starting just past config.HeaderPageID, which a fresh file reserves
// before any caller ever sees it.
func TestAllocatePageIsSequential(t *testing.T) {
	m, err := disk.Open(tempDBPath(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer m.Close()

	for want := page.ID(config.HeaderPageID + 1); want < config.HeaderPageID+4; want++ {
		got, err := m.AllocatePage()
		if err != nil {
			t.Fatalf("AllocatePage() error = %v", err)
		}
		if got != want {
			t.Errorf("AllocatePage() = %d, want %d", got, want)
		}
	}
}

// TestFreshFileReservesHeaderPageID confirms the header service's
// reserved id is never handed out by AllocatePage on a brand-new file.
func TestFreshFileReservesHeaderPageID(t *testing.T) {
	m, err := disk.Open(tempDBPath(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer m.Close()

	got, err := m.AllocatePage()
	if err != nil {
		t.Fatalf("AllocatePage() error = %v", err)
	}
	if got == config.HeaderPageID {
		t.Fatalf("AllocatePage() = %d, collides with config.HeaderPageID", got)
	}
}

func TestDeallocateThenAllocateReusesID(t *testing.T) {
	m, err := disk.Open(tempDBPath(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer m.Close()

	id, _ := m.AllocatePage()
	m.AllocatePage()
	if err := m.DeallocatePage(id); err != nil {
		t.Fatalf("DeallocatePage() error = %v", err)
	}
	reused, err := m.AllocatePage()
	if err != nil {
		t.Fatalf("AllocatePage() error = %v", err)
	}
	if reused != id {
		t.Errorf("AllocatePage() after deallocate = %d, want reused id %d", reused, id)
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	m, err := disk.Open(tempDBPath(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer m.Close()

	id, _ := m.AllocatePage()
	want := make([]byte, config.PageSize)
	for i := range want {
		want[i] = byte(i % 251)
	}
	if err := m.WritePage(id, want); err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}

	got := make([]byte, config.PageSize)
	if err := m.ReadPage(id, got); err != nil {
		t.Fatalf("ReadPage() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("ReadPage() after WritePage() did not round-trip")
	}
}

func TestReadPageBeyondEOFIsZeroFilled(t *testing.T) {
	m, err := disk.Open(tempDBPath(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer m.Close()

	id, _ := m.AllocatePage()
	buf := make([]byte, config.PageSize)
	for i := range buf {
		buf[i] = 0xAB
	}
	if err := m.ReadPage(id, buf); err != nil {
		t.Fatalf("ReadPage() error = %v", err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("buf[%d] = %#x, want 0 for a never-written page", i, b)
		}
	}
}

func TestOpenRejectsFileWithPartialTrailingPage(t *testing.T) {
	path := tempDBPath(t)
	if err := os.WriteFile(path, make([]byte, config.PageSize+1), 0666); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := disk.Open(path); err != disk.ErrCorruptFile {
		t.Fatalf("Open() error = %v, want ErrCorruptFile", err)
	}
}
