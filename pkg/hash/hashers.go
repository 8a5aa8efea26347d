package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash"
	"github.com/spaolacci/murmur3"
)

// ByteHasher hashes an already-serialized key to a 64-bit value.
type ByteHasher func(b []byte) uint64

// XxHasher hashes b with xxHash, the default used by the buffer pool's
// page-id directory.
func XxHasher(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// MurmurHasher hashes b with MurmurHash3, an alternate pluggable hash
// function for directories that want a different avalanche profile.
func MurmurHasher(b []byte) uint64 {
	return murmur3.Sum64(b)
}

// Int32Hasher adapts a ByteHasher into a Hasher over int32-valued keys,
// the type the buffer pool uses for page ids.
func Int32Hasher(h ByteHasher) Hasher[int32] {
	return func(key int32) uint64 {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(key))
		return h(buf[:])
	}
}

// Int64Hasher adapts a ByteHasher into a Hasher over int64-valued keys.
func Int64Hasher(h ByteHasher) Hasher[int64] {
	return func(key int64) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return h(buf[:])
	}
}
