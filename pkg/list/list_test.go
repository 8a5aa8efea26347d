package list_test

import (
	"testing"

	"corestore/pkg/list"
)

func TestPushAndPeek(t *testing.T) {
	l := list.New[int]()
	if l.PeekHead() != nil || l.PeekTail() != nil {
		t.Fatal("expected empty list to have no head or tail")
	}
	l.PushTail(1)
	l.PushTail(2)
	l.PushHead(0)
	if got := l.PeekHead().Value(); got != 0 {
		t.Errorf("PeekHead() = %d, want 0", got)
	}
	if got := l.PeekTail().Value(); got != 2 {
		t.Errorf("PeekTail() = %d, want 2", got)
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
}

func TestPopSelfCases(t *testing.T) {
	l := list.New[string]()
	only := l.PushTail("only")
	only.PopSelf()
	if l.PeekHead() != nil || l.Len() != 0 {
		t.Fatal("expected list to be empty after popping its only link")
	}

	a := l.PushTail("a")
	b := l.PushTail("b")
	c := l.PushTail("c")

	b.PopSelf() // middle
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if l.PeekHead() != a || l.PeekTail() != c {
		t.Fatal("expected a<->c after removing middle link b")
	}

	a.PopSelf() // head
	if l.PeekHead() != c {
		t.Fatal("expected c to become head after removing head link a")
	}

	c.PopSelf() // tail (and now only)
	if l.PeekHead() != nil || l.PeekTail() != nil {
		t.Fatal("expected list to be empty after popping remaining link")
	}
}

func TestPopSelfIsIdempotent(t *testing.T) {
	l := list.New[int]()
	link := l.PushTail(5)
	link.PopSelf()
	link.PopSelf() // second call must not panic or corrupt the list
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
}
