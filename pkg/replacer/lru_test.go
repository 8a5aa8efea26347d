package replacer_test

import (
	"testing"

	"corestore/pkg/replacer"
)

// TestVictimOrder checks the defining LRU property: re-inserting an
// element promotes it past anything inserted before that re-insertion.
func TestVictimOrder(t *testing.T) {
	r := replacer.New[int]()
	r.Insert(1)
	r.Insert(2)
	r.Insert(1)

	x, ok := r.Victim()
	if !ok || x != 2 {
		t.Fatalf("Victim() = (%d, %v), want (2, true)", x, ok)
	}
	x, ok = r.Victim()
	if !ok || x != 1 {
		t.Fatalf("Victim() = (%d, %v), want (1, true)", x, ok)
	}
	if _, ok := r.Victim(); ok {
		t.Fatal("expected Victim() to fail on an empty replacer")
	}
}

func TestEraseRemovesCandidate(t *testing.T) {
	r := replacer.New[int]()
	r.Insert(1)
	r.Insert(2)
	if !r.Erase(1) {
		t.Fatal("Erase(1) = false, want true")
	}
	if r.Erase(1) {
		t.Fatal("Erase(1) = true on a second call, want false")
	}
	x, ok := r.Victim()
	if !ok || x != 2 {
		t.Fatalf("Victim() = (%d, %v), want (2, true); erased element resurfaced", x, ok)
	}
}

func TestContainsAndSize(t *testing.T) {
	r := replacer.New[string]()
	if r.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", r.Size())
	}
	r.Insert("a")
	r.Insert("b")
	if !r.Contains("a") {
		t.Error("Contains(\"a\") = false, want true")
	}
	if r.Size() != 2 {
		t.Errorf("Size() = %d, want 2", r.Size())
	}
	r.Victim()
	if r.Size() != 1 {
		t.Errorf("Size() = %d, want 1 after Victim()", r.Size())
	}
}
