// Package disk implements the external disk-manager collaborator the
// buffer pool consumes: synchronous allocate/deallocate/read/write of
// fixed-size pages by id. FileDiskManager is grounded on the teacher's
// pager.Open/fillPageFromDisk/FlushPage, using the same aligned I/O via
// github.com/ncw/directio.
package disk

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"corestore/pkg/config"
	"corestore/pkg/page"

	"github.com/ncw/directio"
)

// ErrCorruptFile is returned when a backing file's length is not a
// multiple of config.PageSize.
var ErrCorruptFile = errors.New("disk: backing file size is not a multiple of the page size")

// Manager is the interface the buffer pool uses to move pages to and
// from durable storage. All methods are synchronous; a Manager attempts
// no retries on I/O failure.
type Manager interface {
	// AllocatePage reserves and returns a fresh page id.
	AllocatePage() (page.ID, error)
	// DeallocatePage returns id to the pool of reusable ids.
	DeallocatePage(id page.ID) error
	// ReadPage fills buf (len(buf) == config.PageSize) with id's bytes.
	ReadPage(id page.ID, buf []byte) error
	// WritePage persists buf (len(buf) == config.PageSize) as id's bytes.
	WritePage(id page.ID, buf []byte) error
	// Close flushes and closes the backing file.
	Close() error
}

// FileDiskManager is a Manager backed by one file, read and written a
// whole page at a time at the page's own offset using aligned I/O.
type FileDiskManager struct {
	mu       sync.Mutex
	file     *os.File
	numPages int64
	freeIDs  []page.ID
}

// Open (re-)opens or creates the database file at path as a
// FileDiskManager. The file's length must be a multiple of
// config.PageSize, or ErrCorruptFile is returned.
func Open(path string) (*FileDiskManager, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0775); err != nil {
			return nil, err
		}
	}
	f, err := directio.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size()%config.PageSize != 0 {
		f.Close()
		return nil, ErrCorruptFile
	}
	numPages := info.Size() / config.PageSize
	if numPages == 0 {
		// A fresh file reserves id config.HeaderPageID for the header
		// service's directory page before anything else can claim it.
		numPages = 1
	}
	return &FileDiskManager{
		file:     f,
		numPages: numPages,
	}, nil
}

// AllocatePage reuses a deallocated id if one is available, otherwise
// returns the next id beyond the current end of the file.
func (m *FileDiskManager) AllocatePage() (page.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.freeIDs); n > 0 {
		id := m.freeIDs[n-1]
		m.freeIDs = m.freeIDs[:n-1]
		return id, nil
	}
	id := page.ID(m.numPages)
	m.numPages++
	return id, nil
}

// DeallocatePage marks id as reusable by a future AllocatePage call.
func (m *FileDiskManager) DeallocatePage(id page.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.freeIDs = append(m.freeIDs, id)
	return nil
}

// ReadPage reads id's page into buf, zero-filling any bytes past the
// current end of the file (a page allocated but never flushed).
func (m *FileDiskManager) ReadPage(id page.ID, buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.file.Seek(int64(id)*config.PageSize, io.SeekStart); err != nil {
		return err
	}
	n, err := m.file.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// WritePage writes buf as id's page, extending the file if necessary.
func (m *FileDiskManager) WritePage(id page.ID, buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.file.WriteAt(buf, int64(id)*config.PageSize)
	return err
}

// Close flushes and closes the backing file.
func (m *FileDiskManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file.Close()
}
