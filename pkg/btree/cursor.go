package btree

import (
	"corestore/pkg/page"
	"corestore/pkg/txn"
)

// Iterator walks a tree's leaves in key order, holding at most one
// pinned leaf at a time per spec.md §4.4.7. Grounded on the teacher's
// btree cursor (leftmost descent, next_page_id chaining).
type Iterator[K comparable, V any] struct {
	tree *BPlusTree[K, V]
	leaf *page.Page
	idx  int
	done bool
}

// Begin positions an iterator at the first entry with key >= key. Use
// BeginFirst to start at the very first entry instead. tx is an opaque
// transaction token, carried through but never inspected.
func (t *BPlusTree[K, V]) Begin(tx *txn.Transaction, key K) (*Iterator[K, V], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rootID == page.InvalidID {
		return &Iterator[K, V]{tree: t, done: true}, nil
	}

	leaf, err := t.findLeafPage(key, false)
	if err != nil {
		return nil, err
	}
	leaf.RLock()
	idx, _ := t.leafFindSlot(leaf.Data(), key)
	done := idx >= getSize(leaf.Data())
	leaf.RUnlock()
	if done {
		if err := t.advancePastLeaf(&leaf, &idx, &done); err != nil {
			return nil, err
		}
	}
	return &Iterator[K, V]{tree: t, leaf: leaf, idx: idx, done: done}, nil
}

// BeginFirst positions an iterator at the tree's smallest key. tx is
// an opaque transaction token, carried through but never inspected.
func (t *BPlusTree[K, V]) BeginFirst(tx *txn.Transaction) (*Iterator[K, V], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rootID == page.InvalidID {
		return &Iterator[K, V]{tree: t, done: true}, nil
	}

	var zero K
	leaf, err := t.findLeafPage(zero, true)
	if err != nil {
		return nil, err
	}
	leaf.RLock()
	done := getSize(leaf.Data()) == 0
	leaf.RUnlock()
	idx := 0
	if done {
		if err := t.advancePastLeaf(&leaf, &idx, &done); err != nil {
			return nil, err
		}
	}
	return &Iterator[K, V]{tree: t, leaf: leaf, idx: idx, done: done}, nil
}

// advancePastLeaf follows next_page_id forward until it finds a
// non-empty leaf or runs off the end of the chain, unpinning every
// leaf it passes through along the way. *leafp is always unpinned by
// the time this returns, whether or not it is replaced.
func (t *BPlusTree[K, V]) advancePastLeaf(leafp **page.Page, idxp *int, donep *bool) error {
	leaf := *leafp
	for {
		leaf.RLock()
		next := getNextPageID(leaf.Data())
		leaf.RUnlock()
		if err := t.bp.UnpinPage(leaf.ID(), false); err != nil {
			return err
		}
		if next == page.InvalidID {
			*leafp = nil
			*idxp = 0
			*donep = true
			return nil
		}
		nextLeaf, err := t.bp.FetchPage(next)
		if err != nil {
			return err
		}
		nextLeaf.RLock()
		size := getSize(nextLeaf.Data())
		nextLeaf.RUnlock()
		if size > 0 {
			*leafp = nextLeaf
			*idxp = 0
			*donep = false
			return nil
		}
		leaf = nextLeaf
	}
}

// Valid reports whether GetEntry would succeed.
func (it *Iterator[K, V]) Valid() bool {
	return !it.done
}

// GetEntry returns the key/value pair the iterator currently points
// to.
func (it *Iterator[K, V]) GetEntry() (K, V, error) {
	if it.done {
		var zk K
		var zv V
		return zk, zv, ErrKeyNotFound
	}
	it.leaf.RLock()
	defer it.leaf.RUnlock()
	buf := it.leaf.Data()
	return it.tree.leafKeyAt(buf, it.idx), it.tree.leafValueAt(buf, it.idx), nil
}

// Next advances the iterator to the following entry, crossing into the
// next leaf via next_page_id if the current leaf is exhausted.
func (it *Iterator[K, V]) Next() error {
	if it.done {
		return nil
	}
	it.leaf.RLock()
	size := getSize(it.leaf.Data())
	it.leaf.RUnlock()

	it.idx++
	if it.idx < size {
		return nil
	}
	return it.tree.advancePastLeaf(&it.leaf, &it.idx, &it.done)
}

// Close releases the iterator's currently pinned leaf, if any.
func (it *Iterator[K, V]) Close() error {
	if it.leaf == nil {
		return nil
	}
	leaf := it.leaf
	it.leaf = nil
	it.done = true
	return it.tree.bp.UnpinPage(leaf.ID(), false)
}
