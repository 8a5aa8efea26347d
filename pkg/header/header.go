// Package header implements the header-page service: persistence of
// each index's root page id on the reserved header page, so a restart
// can find every tree again. It is grounded on the teacher's
// ReadHashTable/WriteHashTable, which persists a table's directory
// metadata at fixed offsets of a dedicated file; here the same fixed-
// slot layout lives inside one buffer-pool page shared by every named
// index instead of one file per table.
package header

import (
	"encoding/binary"
	"errors"

	"corestore/pkg/buffer"
	"corestore/pkg/config"
	"corestore/pkg/page"
)

// ErrNameTooLong is returned when an index name exceeds nameSize bytes.
var ErrNameTooLong = errors.New("header: index name too long")

// ErrDirectoryFull is returned when the header page has no room left
// for another named index.
var ErrDirectoryFull = errors.New("header: no space left for another index record")

const (
	nameSize   = 28
	entrySize  = nameSize + 4 // name + root page id
	countSize  = 4
)

// Service persists (name -> root page id) records on config.HeaderPageID.
type Service struct {
	bp *buffer.BufferPoolManager
}

// New returns a Service backed by bp. The header page is always read
// with FetchPage at HeaderPageID; a page never written reads back as
// zeros, which is an empty directory.
func New(bp *buffer.BufferPoolManager) *Service {
	return &Service{bp: bp}
}

func capacity() int {
	return (config.PageSize - countSize) / entrySize
}

// InsertRecord creates name's root-page-id record, failing with
// ErrDirectoryFull if no slot remains.
func (s *Service) InsertRecord(name string, rootPageID page.ID) error {
	if len(name) > nameSize {
		return ErrNameTooLong
	}
	hp, err := s.bp.FetchPage(config.HeaderPageID)
	if err != nil {
		return err
	}
	defer s.bp.UnpinPage(config.HeaderPageID, true)
	hp.WLock()
	defer hp.WUnlock()

	buf := hp.Data()
	count := int(binary.LittleEndian.Uint32(buf[0:countSize]))
	for i := 0; i < count; i++ {
		off := countSize + i*entrySize
		if entryName(buf[off:off+nameSize]) == name {
			binary.LittleEndian.PutUint32(buf[off+nameSize:off+entrySize], uint32(int32(rootPageID)))
			return nil
		}
	}
	if count >= capacity() {
		return ErrDirectoryFull
	}
	off := countSize + count*entrySize
	writeName(buf[off:off+nameSize], name)
	binary.LittleEndian.PutUint32(buf[off+nameSize:off+entrySize], uint32(int32(rootPageID)))
	binary.LittleEndian.PutUint32(buf[0:countSize], uint32(count+1))
	return nil
}

// UpdateRecord overwrites name's root page id, inserting a new record
// if name is not yet present.
func (s *Service) UpdateRecord(name string, rootPageID page.ID) error {
	return s.InsertRecord(name, rootPageID)
}

// GetRootID returns name's current root page id, if a record exists.
func (s *Service) GetRootID(name string) (page.ID, bool, error) {
	hp, err := s.bp.FetchPage(config.HeaderPageID)
	if err != nil {
		return page.InvalidID, false, err
	}
	defer s.bp.UnpinPage(config.HeaderPageID, false)
	hp.RLock()
	defer hp.RUnlock()

	buf := hp.Data()
	count := int(binary.LittleEndian.Uint32(buf[0:countSize]))
	for i := 0; i < count; i++ {
		off := countSize + i*entrySize
		if entryName(buf[off:off+nameSize]) == name {
			id := page.ID(int32(binary.LittleEndian.Uint32(buf[off+nameSize : off+entrySize])))
			return id, true, nil
		}
	}
	return page.InvalidID, false, nil
}

func entryName(buf []byte) string {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

func writeName(buf []byte, name string) {
	for i := range buf {
		buf[i] = 0
	}
	copy(buf, name)
}
