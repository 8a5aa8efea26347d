package btree

import (
	"corestore/pkg/codec"
	"corestore/pkg/page"
)

// Internal-node entry accessors and the internal-local half of
// InsertIntoParent/Remove. Grounded on the teacher's InternalNode
// (search via sort.Search, split at a midpoint, re-parenting moved
// children), adapted to spec.md §3's convention that slot 0's key is
// unused (−∞) and to parent_page_id back-references rather than the
// teacher's in-memory parent pointer.

var childIDCodec = codec.PageIDCodec{}

func (t *BPlusTree[K, V]) internalKeyAt(buf []byte, i int) K {
	off := entryOffset(i, t.internalEntrySize)
	return t.keyCodec.Decode(buf[off : off+t.keyCodec.Size()])
}

func (t *BPlusTree[K, V]) internalSetKeyAt(buf []byte, i int, k K) {
	off := entryOffset(i, t.internalEntrySize)
	t.keyCodec.Encode(buf[off:off+t.keyCodec.Size()], k)
}

func (t *BPlusTree[K, V]) internalChildAt(buf []byte, i int) page.ID {
	off := entryOffset(i, t.internalEntrySize) + t.keyCodec.Size()
	return childIDCodec.Decode(buf[off : off+childIDCodec.Size()])
}

func (t *BPlusTree[K, V]) internalSetChildAt(buf []byte, i int, id page.ID) {
	off := entryOffset(i, t.internalEntrySize) + t.keyCodec.Size()
	childIDCodec.Encode(buf[off:off+childIDCodec.Size()], id)
}

// internalFindChildSlot returns the index i with internalChildAt(buf,i)
// == childID, used to locate where a newly split child's sibling entry
// belongs.
func (t *BPlusTree[K, V]) internalFindChildSlot(buf []byte, childID page.ID) (int, bool) {
	size := getSize(buf)
	for i := 0; i < size; i++ {
		if t.internalChildAt(buf, i) == childID {
			return i, true
		}
	}
	return 0, false
}

// internalLookupChild implements spec.md §4.4.6: binary search over
// slots [1, size) for the largest separator <= key, returning the
// child at that slot (or slot 0, the −∞ slot, if none qualifies).
func (t *BPlusTree[K, V]) internalLookupChild(buf []byte, key K) page.ID {
	size := getSize(buf)
	lo, hi := 1, size
	for lo < hi {
		mid := (lo + hi) / 2
		if t.cmp(t.internalKeyAt(buf, mid), key) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	idx := lo - 1
	if idx < 0 {
		idx = 0
	}
	return t.internalChildAt(buf, idx)
}

// internalInsertAt shifts entries right to open a slot at idx and
// writes (key, childID) into it.
func (t *BPlusTree[K, V]) internalInsertAt(buf []byte, idx int, key K, childID page.ID) {
	size := getSize(buf)
	shiftEntries(buf, t.internalEntrySize, idx, idx+1, size-idx)
	t.internalSetKeyAt(buf, idx, key)
	t.internalSetChildAt(buf, idx, childID)
	setSize(buf, size+1)
}

// internalRemoveAt shifts entries left to close the gap at idx.
func (t *BPlusTree[K, V]) internalRemoveAt(buf []byte, idx int) {
	size := getSize(buf)
	shiftEntries(buf, t.internalEntrySize, idx+1, idx, size-idx-1)
	setSize(buf, size-1)
}

// internalSplitInsert splits a full internal node (size ==
// internalMaxSize) while inserting (key, childID) at idx, mirroring
// leafSplitInsert's merge-then-redistribute approach. The key at the
// split boundary is not kept in either node — slot 0 of the right node
// is always the unused −∞ slot — it is returned as the separator to
// push up to the parent. Every child moved to the new node has its
// parent_page_id updated to the new node's id.
func (t *BPlusTree[K, V]) internalSplitInsert(pg *page.Page, idx int, key K, childID page.ID) (newPg *page.Page, sepKey K, err error) {
	buf := pg.Data()
	n := getSize(buf)

	type kc struct {
		k K
		c page.ID
	}
	merged := make([]kc, 0, n+1)
	for i := 0; i < idx; i++ {
		merged = append(merged, kc{t.internalKeyAt(buf, i), t.internalChildAt(buf, i)})
	}
	merged = append(merged, kc{key, childID})
	for i := idx; i < n; i++ {
		merged = append(merged, kc{t.internalKeyAt(buf, i), t.internalChildAt(buf, i)})
	}

	total := len(merged)
	rightCount := (total + 1) / 2
	leftCount := total - rightCount
	sepKey = merged[leftCount].k

	newPg, err = t.newInternal(getParentPageID(buf))
	if err != nil {
		var zero K
		return nil, zero, err
	}
	nbuf := newPg.Data()

	for i := 0; i < leftCount; i++ {
		t.internalSetKeyAt(buf, i, merged[i].k)
		t.internalSetChildAt(buf, i, merged[i].c)
	}
	setSize(buf, leftCount)

	for i := 0; i < rightCount; i++ {
		t.internalSetChildAt(nbuf, i, merged[leftCount+i].c)
		if i > 0 {
			t.internalSetKeyAt(nbuf, i, merged[leftCount+i].k)
		}
	}
	setSize(nbuf, rightCount)

	if err := t.reparentChildren(newPg.ID(), nbuf, rightCount); err != nil {
		return nil, sepKey, err
	}
	return newPg, sepKey, nil
}

// reparentChildren sets parent_page_id = parentID on every child
// referenced by the first n entries of buf, fetching each through the
// buffer pool.
func (t *BPlusTree[K, V]) reparentChildren(parentID page.ID, buf []byte, n int) error {
	for i := 0; i < n; i++ {
		childID := t.internalChildAt(buf, i)
		child, err := t.bp.FetchPage(childID)
		if err != nil {
			return err
		}
		setParentPageID(child.Data(), parentID)
		if err := t.bp.UnpinPage(childID, true); err != nil {
			return err
		}
	}
	return nil
}
