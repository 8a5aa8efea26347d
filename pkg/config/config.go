// Package config holds the tunables shared across the storage substrate.
package config

import "github.com/ncw/directio"

// PageSize is the size in bytes of every page the disk manager reads,
// writes, and allocates. It is pinned to directio.BlockSize because the
// disk manager performs aligned I/O against the backing file.
const PageSize = directio.BlockSize

// DefaultPoolSize is the number of frames a buffer pool manager holds
// when no explicit size is requested.
const DefaultPoolSize = 32

// DefaultBucketSize is the number of entries an extendible hash bucket
// can hold before it must split.
const DefaultBucketSize = 4

// HeaderPageID is the reserved page id that stores per-index root
// pointers, as referenced by the header page service.
const HeaderPageID = 0
