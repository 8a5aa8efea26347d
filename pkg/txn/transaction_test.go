package txn_test

import (
	"testing"

	"corestore/pkg/page"
	"corestore/pkg/txn"
)

func TestNewTransactionHasUniqueID(t *testing.T) {
	a := txn.New()
	b := txn.New()
	if a.ID() == b.ID() {
		t.Fatal("expected two fresh transactions to have distinct ids")
	}
}

func TestAddPageAccumulatesInOrder(t *testing.T) {
	tx := txn.New()
	tx.AddPage(page.ID(1))
	tx.AddPage(page.ID(2))
	got := tx.Pages()
	want := []page.ID{1, 2}
	if len(got) != len(want) {
		t.Fatalf("Pages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Pages() = %v, want %v", got, want)
		}
	}
}

func TestClearRemovesAllPages(t *testing.T) {
	tx := txn.New()
	tx.AddPage(page.ID(1))
	tx.Clear()
	if len(tx.Pages()) != 0 {
		t.Fatalf("Pages() after Clear() = %v, want empty", tx.Pages())
	}
}

func TestPagesReturnsACopy(t *testing.T) {
	tx := txn.New()
	tx.AddPage(page.ID(1))
	got := tx.Pages()
	got[0] = page.ID(99)
	if tx.Pages()[0] != 1 {
		t.Fatal("mutating the slice returned by Pages() affected the transaction's own state")
	}
}
