package btree

import "corestore/pkg/page"

// Leaf-node entry accessors and the leaf-local half of Insert/Remove.
// Grounded on the teacher's LeafNode (search via sort.Search, split at
// the midpoint, next_page_id relinking) with the entry layout replaced
// by the offset-based codec accessors node.go establishes.

func (t *BPlusTree[K, V]) leafKeyAt(buf []byte, i int) K {
	off := entryOffset(i, t.leafEntrySize)
	return t.keyCodec.Decode(buf[off : off+t.keyCodec.Size()])
}

func (t *BPlusTree[K, V]) leafSetKeyAt(buf []byte, i int, k K) {
	off := entryOffset(i, t.leafEntrySize)
	t.keyCodec.Encode(buf[off:off+t.keyCodec.Size()], k)
}

func (t *BPlusTree[K, V]) leafValueAt(buf []byte, i int) V {
	off := entryOffset(i, t.leafEntrySize) + t.keyCodec.Size()
	return t.valCodec.Decode(buf[off : off+t.valCodec.Size()])
}

func (t *BPlusTree[K, V]) leafSetValueAt(buf []byte, i int, v V) {
	off := entryOffset(i, t.leafEntrySize) + t.keyCodec.Size()
	t.valCodec.Encode(buf[off:off+t.valCodec.Size()], v)
}

// leafFindSlot returns the first index whose key is >= key (sort.Search
// over the sorted entry array), and whether that slot is an exact match.
func (t *BPlusTree[K, V]) leafFindSlot(buf []byte, key K) (idx int, found bool) {
	size := getSize(buf)
	lo, hi := 0, size
	for lo < hi {
		mid := (lo + hi) / 2
		if t.cmp(t.leafKeyAt(buf, mid), key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < size && t.cmp(t.leafKeyAt(buf, lo), key) == 0 {
		return lo, true
	}
	return lo, false
}

// leafInsertAt shifts entries right to open a slot at idx and writes
// (key, value) into it. Caller must have already verified there is
// room (size < max_size).
func (t *BPlusTree[K, V]) leafInsertAt(buf []byte, idx int, key K, value V) {
	size := getSize(buf)
	shiftEntries(buf, t.leafEntrySize, idx, idx+1, size-idx)
	t.leafSetKeyAt(buf, idx, key)
	t.leafSetValueAt(buf, idx, value)
	setSize(buf, size+1)
}

// leafRemoveAt shifts entries left to close the gap at idx.
func (t *BPlusTree[K, V]) leafRemoveAt(buf []byte, idx int) {
	size := getSize(buf)
	shiftEntries(buf, t.leafEntrySize, idx+1, idx, size-idx-1)
	setSize(buf, size-1)
}

// leafGet returns the value stored for key in this leaf, if present.
func (t *BPlusTree[K, V]) leafGet(buf []byte, key K) (V, bool) {
	idx, found := t.leafFindSlot(buf, key)
	if !found {
		var zero V
		return zero, false
	}
	return t.leafValueAt(buf, idx), true
}

// leafSplitInsert splits a full leaf (size == leafMaxSize) while
// inserting (key, value), following spec.md §4.4.2: the new node
// receives the last ⌈(n+1)/2⌉ entries of the combined n+1 entries. The
// new leaf's first key is the separator pushed up to the parent. Rather
// than physically overflow the page, the combined array is built in a
// temporary slice and both pages are rewritten from it — equivalent to,
// but simpler than, splitting first and then choosing an insertion side
// by comparing against the new leaf's first key.
func (t *BPlusTree[K, V]) leafSplitInsert(pg *page.Page, key K, value V) (newPg *page.Page, sepKey K, err error) {
	buf := pg.Data()
	n := getSize(buf)

	type kv struct {
		k K
		v V
	}
	idx, _ := t.leafFindSlot(buf, key)
	merged := make([]kv, 0, n+1)
	for i := 0; i < idx; i++ {
		merged = append(merged, kv{t.leafKeyAt(buf, i), t.leafValueAt(buf, i)})
	}
	merged = append(merged, kv{key, value})
	for i := idx; i < n; i++ {
		merged = append(merged, kv{t.leafKeyAt(buf, i), t.leafValueAt(buf, i)})
	}

	total := len(merged)
	rightCount := (total + 1) / 2
	leftCount := total - rightCount

	newPg, err = t.newLeaf(getParentPageID(buf))
	if err != nil {
		var zero K
		return nil, zero, err
	}

	oldNext := getNextPageID(buf)
	nbuf := newPg.Data()
	setNextPageID(nbuf, oldNext)
	setNextPageID(buf, newPg.ID())

	for i := 0; i < leftCount; i++ {
		t.leafSetKeyAt(buf, i, merged[i].k)
		t.leafSetValueAt(buf, i, merged[i].v)
	}
	setSize(buf, leftCount)

	for i := 0; i < rightCount; i++ {
		t.leafSetKeyAt(nbuf, i, merged[leftCount+i].k)
		t.leafSetValueAt(nbuf, i, merged[leftCount+i].v)
	}
	setSize(nbuf, rightCount)

	return newPg, merged[leftCount].k, nil
}
