package wal_test

import (
	"path/filepath"
	"testing"

	"corestore/pkg/page"
	"corestore/pkg/wal"
)

func openLog(t *testing.T) *wal.FileLogManager {
	t.Helper()
	lm, err := wal.Open(filepath.Join(t.TempDir(), "wal.log"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { lm.Close() })
	return lm
}

func TestAppendRedoAssignsIncreasingLSNs(t *testing.T) {
	lm := openLog(t)
	lsn1, err := lm.AppendRedo(page.ID(1), []byte("a"))
	if err != nil {
		t.Fatalf("AppendRedo() error = %v", err)
	}
	lsn2, err := lm.AppendRedo(page.ID(2), []byte("b"))
	if err != nil {
		t.Fatalf("AppendRedo() error = %v", err)
	}
	if lsn2 <= lsn1 {
		t.Errorf("second AppendRedo LSN %d did not exceed first %d", lsn2, lsn1)
	}
}

func TestFlushBeforeAdvancesFlushedLSN(t *testing.T) {
	lm := openLog(t)
	if lm.FlushedLSN() != 0 {
		t.Fatalf("FlushedLSN() = %d before any append, want 0", lm.FlushedLSN())
	}
	lsn, _ := lm.AppendRedo(page.ID(1), []byte("a"))
	if err := lm.FlushBefore(page.ID(1)); err != nil {
		t.Fatalf("FlushBefore() error = %v", err)
	}
	if lm.FlushedLSN() < lsn {
		t.Errorf("FlushedLSN() = %d, want >= %d after FlushBefore", lm.FlushedLSN(), lsn)
	}
}

func TestFlushBeforeUnknownPageIsANoop(t *testing.T) {
	lm := openLog(t)
	if err := lm.FlushBefore(page.ID(99)); err != nil {
		t.Fatalf("FlushBefore() on a page with no records error = %v", err)
	}
}

func TestReplayReturnsRecordsInChronologicalOrder(t *testing.T) {
	lm := openLog(t)
	lm.AppendRedo(page.ID(1), []byte("a"))
	lm.AppendRedo(page.ID(2), []byte("b"))
	lm.AppendRedo(page.ID(3), []byte("c"))

	records, err := lm.Replay()
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, want := range []page.ID{1, 2, 3} {
		if records[i].PageID != want {
			t.Errorf("records[%d].PageID = %d, want %d", i, records[i].PageID, want)
		}
	}
	for i := 1; i < len(records); i++ {
		if records[i].LSN <= records[i-1].LSN {
			t.Errorf("records[%d].LSN = %d did not exceed records[%d].LSN = %d", i, records[i].LSN, i-1, records[i-1].LSN)
		}
	}
}

func TestReplayStopsAtCheckpoint(t *testing.T) {
	lm := openLog(t)
	lm.AppendRedo(page.ID(1), []byte("before"))
	if err := lm.Checkpoint(filepath.Join(t.TempDir(), "snapshot.log")); err != nil {
		t.Fatalf("Checkpoint() error = %v", err)
	}
	lm.AppendRedo(page.ID(2), []byte("after"))

	records, err := lm.Replay()
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(records) != 1 || records[0].PageID != page.ID(2) {
		t.Fatalf("Replay() = %+v, want exactly the single post-checkpoint record for page 2", records)
	}
}
