package btree

import (
	"errors"

	"corestore/pkg/page"
	"corestore/pkg/txn"
)

// ErrDuplicateKey names the duplicate-key condition. Insert does not
// return it: a duplicate key is reported as (false, nil).
var ErrDuplicateKey = errors.New("btree: duplicate key")

// findLeafPage implements spec.md §4.4.1: descend from the root,
// following the leftmost child if leftmost is set, otherwise the child
// spec.md §4.4.6's lookup rule selects, unpinning each parent after
// fetching its child. Returns the pinned leaf; the caller must unpin.
func (t *BPlusTree[K, V]) findLeafPage(key K, leftmost bool) (*page.Page, error) {
	cur, err := t.bp.FetchPage(t.rootID)
	if err != nil {
		return nil, err
	}
	for {
		cur.RLock()
		buf := cur.Data()
		if isLeaf(buf) {
			cur.RUnlock()
			return cur, nil
		}
		var childID page.ID
		if leftmost {
			childID = t.internalChildAt(buf, 0)
		} else {
			childID = t.internalLookupChild(buf, key)
		}
		cur.RUnlock()

		child, err := t.bp.FetchPage(childID)
		unpinErr := t.bp.UnpinPage(cur.ID(), false)
		if err != nil {
			return nil, err
		}
		if unpinErr != nil {
			return nil, unpinErr
		}
		cur = child
	}
}

// IsEmpty reports whether the tree currently has no entries.
func (t *BPlusTree[K, V]) IsEmpty() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rootID == page.InvalidID {
		return true, nil
	}
	root, err := t.bp.FetchPage(t.rootID)
	if err != nil {
		return false, err
	}
	empty := isLeaf(root.Data()) && getSize(root.Data()) == 0
	return empty, t.bp.UnpinPage(t.rootID, false)
}

// GetValue returns the value stored for key, if present. tx is an
// opaque transaction token, carried through but never inspected;
// nil is a valid transaction-less call.
func (t *BPlusTree[K, V]) GetValue(tx *txn.Transaction, key K) (V, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero V
	if t.rootID == page.InvalidID {
		return zero, false, nil
	}
	leaf, err := t.findLeafPage(key, false)
	if err != nil {
		return zero, false, err
	}
	leaf.RLock()
	value, found := t.leafGet(leaf.Data(), key)
	leaf.RUnlock()
	if err := t.bp.UnpinPage(leaf.ID(), false); err != nil {
		return zero, false, err
	}
	return value, found, nil
}

// Insert adds (key, value) to the tree, splitting nodes as needed.
// Returns false without modification if key already exists. tx is an
// opaque transaction token, carried through but never inspected.
func (t *BPlusTree[K, V]) Insert(tx *txn.Transaction, key K, value V) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rootID == page.InvalidID {
		root, err := t.newLeaf(page.InvalidID)
		if err != nil {
			return false, err
		}
		t.rootID = root.ID()
		if err := t.bp.UnpinPage(t.rootID, true); err != nil {
			return false, err
		}
		if err := t.hdr.UpdateRecord(t.name, t.rootID); err != nil {
			return false, err
		}
	}

	leaf, err := t.findLeafPage(key, false)
	if err != nil {
		return false, err
	}
	leaf.WLock()
	buf := leaf.Data()
	if _, found := t.leafFindSlot(buf, key); found {
		leaf.WUnlock()
		return false, t.bp.UnpinPage(leaf.ID(), false)
	}

	if getSize(buf) < t.leafMaxSize {
		idx, _ := t.leafFindSlot(buf, key)
		t.leafInsertAt(buf, idx, key, value)
		leaf.WUnlock()
		return true, t.bp.UnpinPage(leaf.ID(), true)
	}

	parentID := getParentPageID(buf)
	leafID := leaf.ID()
	newLeaf, sepKey, err := t.leafSplitInsert(leaf, key, value)
	leaf.WUnlock()
	if err != nil {
		t.bp.UnpinPage(leafID, true)
		return false, err
	}
	newLeafID := newLeaf.ID()
	if err := t.bp.UnpinPage(newLeafID, true); err != nil {
		return false, err
	}
	if err := t.bp.UnpinPage(leafID, true); err != nil {
		return false, err
	}
	if err := t.insertIntoParent(leafID, parentID, sepKey, newLeafID); err != nil {
		return false, err
	}
	return true, nil
}

// insertIntoParent implements spec.md §4.4.3. oldID's parent is
// parentID (page.InvalidID if oldID was the root); newID is the page
// that split off to oldID's right, holding sepKey as its lowest key.
func (t *BPlusTree[K, V]) insertIntoParent(oldID, parentID page.ID, sepKey K, newID page.ID) error {
	if parentID == page.InvalidID {
		newRoot, err := t.newInternal(page.InvalidID)
		if err != nil {
			return err
		}
		buf := newRoot.Data()
		var unusedKey K
		t.internalSetKeyAt(buf, 0, unusedKey)
		t.internalSetChildAt(buf, 0, oldID)
		t.internalSetKeyAt(buf, 1, sepKey)
		t.internalSetChildAt(buf, 1, newID)
		setSize(buf, 2)
		t.rootID = newRoot.ID()

		if err := t.setParentPage(oldID, t.rootID); err != nil {
			return err
		}
		if err := t.setParentPage(newID, t.rootID); err != nil {
			return err
		}
		if err := t.bp.UnpinPage(t.rootID, true); err != nil {
			return err
		}
		return t.hdr.UpdateRecord(t.name, t.rootID)
	}

	parent, err := t.bp.FetchPage(parentID)
	if err != nil {
		return err
	}
	parent.WLock()
	buf := parent.Data()
	idx, ok := t.internalFindChildSlot(buf, oldID)
	if !ok {
		parent.WUnlock()
		t.bp.UnpinPage(parentID, false)
		return errors.New("btree: split child not found in parent")
	}

	if getSize(buf) < t.internalMaxSize {
		t.internalInsertAt(buf, idx+1, sepKey, newID)
		parent.WUnlock()
		return t.bp.UnpinPage(parentID, true)
	}

	newSibling, pushedKey, err := t.internalSplitInsert(parent, idx+1, sepKey, newID)
	grandParentID := getParentPageID(buf)
	parent.WUnlock()
	if err != nil {
		t.bp.UnpinPage(parentID, true)
		return err
	}
	newSiblingID := newSibling.ID()
	if err := t.bp.UnpinPage(newSiblingID, true); err != nil {
		return err
	}
	if err := t.bp.UnpinPage(parentID, true); err != nil {
		return err
	}
	return t.insertIntoParent(parentID, grandParentID, pushedKey, newSiblingID)
}

// setParentPage fetches childID and rewrites its parent_page_id.
func (t *BPlusTree[K, V]) setParentPage(childID, parentID page.ID) error {
	child, err := t.bp.FetchPage(childID)
	if err != nil {
		return err
	}
	setParentPageID(child.Data(), parentID)
	return t.bp.UnpinPage(childID, true)
}

// minSize is ⌈max_size/2⌉, the smallest a non-root node is allowed to
// shrink to before it must coalesce or redistribute.
func minSize(maxSize int) int {
	return (maxSize + 1) / 2
}
