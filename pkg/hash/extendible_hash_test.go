package hash_test

import (
	"testing"

	"corestore/pkg/hash"
)

// identityHasher lets tests drive the directory deterministically: key
// i hashes to i, so its low bits are exactly its own low bits.
func identityHasher(key int32) uint64 {
	return uint64(uint32(key))
}

func TestFindMissingKey(t *testing.T) {
	tbl := hash.New[int32, string](4, identityHasher)
	if _, ok := tbl.Find(1); ok {
		t.Fatal("Find on an empty table found a key")
	}
}

func TestInsertAndFindRoundTrip(t *testing.T) {
	tbl := hash.New[int32, string](4, identityHasher)
	tbl.Insert(1, "one")
	tbl.Insert(2, "two")
	if v, ok := tbl.Find(1); !ok || v != "one" {
		t.Fatalf("Find(1) = (%q, %v), want (\"one\", true)", v, ok)
	}
	tbl.Insert(1, "ONE")
	if v, _ := tbl.Find(1); v != "ONE" {
		t.Fatalf("Find(1) after overwrite = %q, want \"ONE\"", v)
	}
}

// TestSplitGrowsDirectoryOnOverflow drives bucketSize=2 past capacity
// with a set of keys whose low bits collide at depth 0, forcing a
// split (and directory growth, since local depth starts at 0 == global
// depth).
func TestSplitGrowsDirectoryOnOverflow(t *testing.T) {
	tbl := hash.New[int32, int](2, identityHasher)
	tbl.Insert(0, 0)
	tbl.Insert(1, 1)
	if tbl.GlobalDepth() != 0 {
		t.Fatalf("GlobalDepth() = %d before overflow, want 0", tbl.GlobalDepth())
	}

	tbl.Insert(2, 2) // third entry forces the initial bucket to split

	if tbl.GlobalDepth() < 1 {
		t.Fatalf("GlobalDepth() = %d after overflow, want >= 1", tbl.GlobalDepth())
	}
	for _, k := range []int32{0, 1, 2} {
		if v, ok := tbl.Find(k); !ok || v != int(k) {
			t.Errorf("Find(%d) = (%d, %v), want (%d, true)", k, v, ok, k)
		}
	}
}

func TestRemove(t *testing.T) {
	tbl := hash.New[int32, string](4, identityHasher)
	tbl.Insert(1, "one")
	if !tbl.Remove(1) {
		t.Fatal("Remove(1) = false, want true")
	}
	if tbl.Remove(1) {
		t.Fatal("Remove(1) = true on a second call, want false")
	}
	if _, ok := tbl.Find(1); ok {
		t.Fatal("Find(1) succeeded after Remove")
	}
}

// TestLocalDepthConsistency checks the structural invariant that makes
// extendible hashing correct: every directory slot whose low
// local-depth bits equal a bucket's id maps to that bucket.
func TestLocalDepthConsistency(t *testing.T) {
	tbl := hash.New[int32, int](1, identityHasher)
	for i := int32(0); i < 8; i++ {
		tbl.Insert(i, int(i))
	}
	for i := int32(0); i < 8; i++ {
		if v, ok := tbl.Find(i); !ok || v != int(i) {
			t.Errorf("Find(%d) = (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
	if tbl.NumBuckets() < 2 {
		t.Errorf("NumBuckets() = %d, want >= 2 after inserting 8 keys with bucketSize=1", tbl.NumBuckets())
	}
	if err := tbl.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

// TestCheckPassesAfterSplitsAndRemovals exercises Check across a split
// sequence and a subsequent round of removals, confirming the
// directory-aliasing and key-placement invariants it asserts hold
// throughout.
func TestCheckPassesAfterSplitsAndRemovals(t *testing.T) {
	tbl := hash.New[int32, int](2, identityHasher)
	for i := int32(0); i < 20; i++ {
		tbl.Insert(i, int(i))
	}
	if err := tbl.Check(); err != nil {
		t.Fatalf("Check() after inserts, error = %v", err)
	}
	for i := int32(0); i < 20; i += 2 {
		tbl.Remove(i)
	}
	if err := tbl.Check(); err != nil {
		t.Fatalf("Check() after removals, error = %v", err)
	}
}

func TestXxAndMurmurHashersDiffer(t *testing.T) {
	// Not a correctness requirement, just confirms both are wired up
	// and produce stable, distinct avalanche behavior for typical keys.
	a := hash.Int32Hasher(hash.XxHasher)(42)
	b := hash.Int32Hasher(hash.MurmurHasher)(42)
	if a == 0 || b == 0 {
		t.Fatal("expected both hashers to produce a non-zero hash")
	}
	if a == b {
		t.Fatalf("XxHasher and MurmurHasher both hashed 42 to %#x, want distinct hashes", a)
	}
}
