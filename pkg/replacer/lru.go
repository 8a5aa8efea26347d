// Package replacer implements the abstract victim selector the buffer
// pool consults when every frame on the free list is in use. LRUReplacer
// is the only strategy this module ships, matching the original
// lru_replacer.cpp this spec was distilled from.
package replacer

import "corestore/pkg/list"

// LRUReplacer selects a victim from a set of candidate elements using
// strict least-recently-inserted ordering. Insert promotes an element to
// most-recent, evicting any prior occurrence first, so ties never occur.
// All operations are O(1): a hash map of element to its list.Link lets
// Erase and re-Insert splice the link out directly instead of scanning.
type LRUReplacer[T comparable] struct {
	entries map[T]*list.Link[T]
	order   *list.List[T]
}

// New returns an empty LRUReplacer.
func New[T comparable]() *LRUReplacer[T] {
	return &LRUReplacer[T]{
		entries: make(map[T]*list.Link[T]),
		order:   list.New[T](),
	}
}

// Insert promotes x to the most-recent position, removing any prior
// occurrence of x first.
func (r *LRUReplacer[T]) Insert(x T) {
	if link, ok := r.entries[x]; ok {
		link.PopSelf()
	}
	r.entries[x] = r.order.PushHead(x)
}

// Victim removes and returns the least-recently-inserted element. The
// second return value is false only when the replacer is empty.
func (r *LRUReplacer[T]) Victim() (T, bool) {
	tail := r.order.PeekTail()
	if tail == nil {
		var zero T
		return zero, false
	}
	x := tail.Value()
	tail.PopSelf()
	delete(r.entries, x)
	return x, true
}

// Erase removes x from the replacer if present, e.g. because the page
// was re-pinned before it was chosen as a victim. Reports whether x was
// present.
func (r *LRUReplacer[T]) Erase(x T) bool {
	link, ok := r.entries[x]
	if !ok {
		return false
	}
	link.PopSelf()
	delete(r.entries, x)
	return true
}

// Size returns the number of candidate elements currently held.
func (r *LRUReplacer[T]) Size() int {
	return len(r.entries)
}

// Contains reports whether x is currently a candidate.
func (r *LRUReplacer[T]) Contains(x T) bool {
	_, ok := r.entries[x]
	return ok
}
