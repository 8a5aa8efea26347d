// Package page defines the fixed-size frame abstraction cached by the
// buffer pool: a page id, pin/dirty metadata, a reader/writer latch, and
// the raw byte payload higher layers reinterpret as typed nodes.
package page

import (
	"sync"
	"sync/atomic"

	"corestore/pkg/config"

	"github.com/ncw/directio"
)

// ID identifies a page, unique across the lifetime of a disk manager.
type ID int32

// InvalidID marks an empty frame or a "no such page" reference.
const InvalidID ID = -1

// Page caches one page's worth of bytes in a buffer pool frame, along
// with the metadata the buffer pool and index need to manage it.
type Page struct {
	id       ID
	pinCount atomic.Int32
	dirty    atomic.Bool
	latch    sync.RWMutex
	data     []byte
}

// New returns a Page backed by a config.PageSize-byte buffer. The
// buffer is allocated with directio.AlignedBlock, not make, since it
// is handed directly to the disk manager's unbuffered reads and
// writes, which require block-aligned memory.
func New() *Page {
	return &Page{id: InvalidID, data: directio.AlignedBlock(config.PageSize)}
}

// ID returns the page's identifier. InvalidID means the frame is empty.
func (p *Page) ID() ID {
	return p.id
}

// SetID resets the page's identifier. Used only by the buffer pool
// manager when installing a page into a frame.
func (p *Page) SetID(id ID) {
	p.id = id
}

// PinCount returns the number of outstanding fetches on this page.
func (p *Page) PinCount() int32 {
	return p.pinCount.Load()
}

// Pin increments the pin count and returns the new value.
func (p *Page) Pin() int32 {
	return p.pinCount.Add(1)
}

// Unpin decrements the pin count and returns the new value. The caller
// must never drive the count below zero; the buffer pool manager guards
// this with its own bookkeeping.
func (p *Page) Unpin() int32 {
	return p.pinCount.Add(-1)
}

// IsDirty reports whether the page has been modified since it was last
// read from or written to disk.
func (p *Page) IsDirty() bool {
	return p.dirty.Load()
}

// SetDirty sets the page's dirty bit. Once dirty, a page only becomes
// clean again via a flush.
func (p *Page) SetDirty(dirty bool) {
	p.dirty.Store(dirty)
}

// Data returns the page's raw payload. Callers must hold the page's
// latch for the duration of any read or write.
func (p *Page) Data() []byte {
	return p.data
}

// Reset zeroes the payload and clears dirty/pin metadata, preparing the
// frame to be reused for a different page id.
func (p *Page) Reset(id ID) {
	p.id = id
	p.pinCount.Store(0)
	p.dirty.Store(false)
	for i := range p.data {
		p.data[i] = 0
	}
}

// WLock acquires the page's exclusive latch. The index must hold this
// latch around any modification of the payload.
func (p *Page) WLock() {
	p.latch.Lock()
}

// WUnlock releases the page's exclusive latch.
func (p *Page) WUnlock() {
	p.latch.Unlock()
}

// RLock acquires the page's shared latch. The index must hold this
// latch around any read of the payload.
func (p *Page) RLock() {
	p.latch.RLock()
}

// RUnlock releases the page's shared latch.
func (p *Page) RUnlock() {
	p.latch.RUnlock()
}
