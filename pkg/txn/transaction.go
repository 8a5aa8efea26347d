// Package txn implements the opaque transaction token every index
// operation carries through the core: the core never inspects it, but
// a concrete Transaction may accumulate the set of pages it has
// latched, the scaffolding a future latch-crabbing implementation needs.
// Grounded on the teacher's concurrency.Transaction (client identity via
// github.com/google/uuid, an RWMutex per transaction) narrowed to the
// page-set spec.md §6 asks for instead of the teacher's 2PL resource map.
package txn

import (
	"sync"

	"corestore/pkg/page"

	"github.com/google/uuid"
)

// Transaction is an opaque per-operation token. The B+Tree and buffer
// pool never read its fields; a caller doing latch-crabbing may attach
// pages to it as it descends and release them as it backs out.
type Transaction struct {
	id    uuid.UUID
	mu    sync.Mutex
	pages []page.ID
}

// New returns a fresh Transaction with a random identity.
func New() *Transaction {
	return &Transaction{id: uuid.New()}
}

// ID returns the transaction's identity.
func (t *Transaction) ID() uuid.UUID {
	return t.id
}

// AddPage records that id is currently latched on behalf of this
// transaction.
func (t *Transaction) AddPage(id page.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pages = append(t.pages, id)
}

// Pages returns the set of pages currently attached to this
// transaction, in the order they were added.
func (t *Transaction) Pages() []page.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]page.ID, len(t.pages))
	copy(out, t.pages)
	return out
}

// Clear drops every attached page, e.g. once an operation has finished
// unwinding its latches.
func (t *Transaction) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pages = nil
}
