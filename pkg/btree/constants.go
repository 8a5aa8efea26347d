package btree

import (
	"encoding/binary"

	"corestore/pkg/page"
)

// pageType distinguishes an internal node from a leaf, stored at
// offset 0 of every B+Tree page, per the on-disk layout spec.md §6
// documents.
type pageType uint32

const (
	internalPageType pageType = 1
	leafPageType     pageType = 2
)

// headerSize is the byte width of the common header every B+Tree page
// carries ahead of its entry array: page_type, size, max_size,
// parent_page_id, page_id, next_page_id. Internal pages carry the same
// header width and simply ignore next_page_id.
const headerSize = 24

func getPageType(buf []byte) pageType    { return pageType(binary.LittleEndian.Uint32(buf[0:4])) }
func setPageType(buf []byte, t pageType) { binary.LittleEndian.PutUint32(buf[0:4], uint32(t)) }

func getSize(buf []byte) int    { return int(int32(binary.LittleEndian.Uint32(buf[4:8]))) }
func setSize(buf []byte, n int) { binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(n))) }

func getMaxSize(buf []byte) int    { return int(int32(binary.LittleEndian.Uint32(buf[8:12]))) }
func setMaxSize(buf []byte, n int) { binary.LittleEndian.PutUint32(buf[8:12], uint32(int32(n))) }

func getParentPageID(buf []byte) page.ID {
	return page.ID(int32(binary.LittleEndian.Uint32(buf[12:16])))
}
func setParentPageID(buf []byte, id page.ID) {
	binary.LittleEndian.PutUint32(buf[12:16], uint32(int32(id)))
}

func getPageID(buf []byte) page.ID {
	return page.ID(int32(binary.LittleEndian.Uint32(buf[16:20])))
}
func setPageID(buf []byte, id page.ID) {
	binary.LittleEndian.PutUint32(buf[16:20], uint32(int32(id)))
}

func getNextPageID(buf []byte) page.ID {
	return page.ID(int32(binary.LittleEndian.Uint32(buf[20:24])))
}
func setNextPageID(buf []byte, id page.ID) {
	binary.LittleEndian.PutUint32(buf[20:24], uint32(int32(id)))
}

// entryOffset returns the byte offset of entry i in a page whose
// entries are each entrySize bytes wide.
func entryOffset(i, entrySize int) int {
	return headerSize + i*entrySize
}

// shiftEntries moves count entries starting at slot from to slot to.
// Safe for overlapping ranges in either direction, per Go's copy
// semantics — the spec's design notes flag the teacher's source as
// having an off-by-one-looking memmove; this helper is the single
// place array shifting happens, so both directions are exercised once
// by both insert and delete.
func shiftEntries(buf []byte, entrySize, from, to, count int) {
	if count <= 0 || from == to {
		return
	}
	src := entryOffset(from, entrySize)
	dst := entryOffset(to, entrySize)
	copy(buf[dst:dst+count*entrySize], buf[src:src+count*entrySize])
}

// computeMaxSize derives max_size from the page size, the header size,
// and the width of one (key, value) entry, per spec.md §3's "max_size
// is derived once from (PAGE_SIZE − header) / sizeof(MappingType)".
func computeMaxSize(pageSize, keySize, valueSize int) int {
	return (pageSize - headerSize) / (keySize + valueSize)
}
