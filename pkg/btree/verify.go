package btree

import (
	"fmt"

	"corestore/pkg/page"
)

// Check walks the whole tree and validates the invariants spec.md §3
// states for node layout: every leaf's keys are sorted, every
// internal node's real separators (slots [1,size)) are sorted, and
// every child under a separator holds only keys that separator rule
// permits. Grounded on the teacher's pkg/btree/verify.go, generalized
// off int64 keys.
func (t *BPlusTree[K, V]) Check() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rootID == page.InvalidID {
		return nil
	}
	return t.checkNode(t.rootID, nil, nil)
}

// checkNode verifies the subtree rooted at nodeID, where every key in
// the subtree must satisfy (lower == nil || key >= *lower) && (upper
// == nil || key < *upper).
func (t *BPlusTree[K, V]) checkNode(nodeID page.ID, lower, upper *K) error {
	pg, err := t.bp.FetchPage(nodeID)
	if err != nil {
		return err
	}
	defer t.bp.UnpinPage(nodeID, false)

	pg.RLock()
	defer pg.RUnlock()
	buf := pg.Data()
	size := getSize(buf)

	if getPageID(buf) != nodeID {
		return fmt.Errorf("btree: page %d has self-id %d", nodeID, getPageID(buf))
	}

	if isLeaf(buf) {
		for i := 0; i < size; i++ {
			k := t.leafKeyAt(buf, i)
			if err := t.checkBounds(k, lower, upper); err != nil {
				return fmt.Errorf("btree: leaf %d slot %d: %w", nodeID, i, err)
			}
			if i > 0 && t.cmp(t.leafKeyAt(buf, i-1), k) >= 0 {
				return fmt.Errorf("btree: leaf %d keys out of order at slot %d", nodeID, i)
			}
		}
		return nil
	}

	for i := 1; i < size; i++ {
		k := t.internalKeyAt(buf, i)
		if i > 1 && t.cmp(t.internalKeyAt(buf, i-1), k) >= 0 {
			return fmt.Errorf("btree: internal %d separators out of order at slot %d", nodeID, i)
		}
		if err := t.checkBounds(k, lower, upper); err != nil {
			return fmt.Errorf("btree: internal %d separator %d: %w", nodeID, i, err)
		}
	}

	for i := 0; i < size; i++ {
		childLower := lower
		childUpper := upper
		if i > 0 {
			k := t.internalKeyAt(buf, i)
			childLower = &k
		}
		if i+1 < size {
			k := t.internalKeyAt(buf, i+1)
			childUpper = &k
		}
		child := t.internalChildAt(buf, i)
		if err := t.checkNode(child, childLower, childUpper); err != nil {
			return err
		}
	}
	return nil
}

func (t *BPlusTree[K, V]) checkBounds(k K, lower, upper *K) error {
	if lower != nil && t.cmp(k, *lower) < 0 {
		return fmt.Errorf("key below lower bound")
	}
	if upper != nil && t.cmp(k, *upper) >= 0 {
		return fmt.Errorf("key at or above upper bound")
	}
	return nil
}
