// Package list implements a small doubly-linked list used by the buffer
// pool for its free list and by the LRU replacer for recency ordering.
// Unlike container/list it is generic over the element type and exposes
// direct link manipulation (PopSelf) so a caller holding a link can
// splice it out in O(1) without a linear search back through the list.
package list

// List is a doubly-linked list of values of type T.
type List[T any] struct {
	head *Link[T]
	tail *Link[T]
}

// New returns an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// PeekHead returns the list's first link, or nil if the list is empty.
func (l *List[T]) PeekHead() *Link[T] {
	return l.head
}

// PeekTail returns the list's last link, or nil if the list is empty.
func (l *List[T]) PeekTail() *Link[T] {
	return l.tail
}

// PushHead inserts value at the front of the list and returns its link.
func (l *List[T]) PushHead(value T) *Link[T] {
	link := &Link[T]{list: l, next: l.head, value: value}
	if l.head != nil {
		l.head.prev = link
	}
	l.head = link
	if l.tail == nil {
		l.tail = link
	}
	return link
}

// PushTail inserts value at the back of the list and returns its link.
func (l *List[T]) PushTail(value T) *Link[T] {
	link := &Link[T]{list: l, prev: l.tail, value: value}
	if l.tail != nil {
		l.tail.next = link
	}
	l.tail = link
	if l.head == nil {
		l.head = link
	}
	return link
}

// Len returns the number of elements currently in the list.
func (l *List[T]) Len() int {
	n := 0
	for cur := l.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}

// Link is one node of a List.
type Link[T any] struct {
	list  *List[T]
	prev  *Link[T]
	next  *Link[T]
	value T
}

// Value returns the link's value.
func (link *Link[T]) Value() T {
	return link.value
}

// List returns the list this link currently belongs to, or nil if the
// link has already been popped.
func (link *Link[T]) List() *List[T] {
	return link.list
}

// PopSelf removes link from its list in O(1).
//
// Cases: the only link in the list, the tail, the head, or a link in
// the middle.
func (link *Link[T]) PopSelf() {
	if link.list == nil {
		return
	}
	switch {
	case link.prev == nil && link.next == nil:
		link.list.head = nil
		link.list.tail = nil
	case link.prev == nil:
		link.next.prev = nil
		link.list.head = link.next
	case link.next == nil:
		link.prev.next = nil
		link.list.tail = link.prev
	default:
		link.prev.next = link.next
		link.next.prev = link.prev
	}
	link.list = nil
	link.prev = nil
	link.next = nil
}
