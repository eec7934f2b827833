package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given entry path.
func ID(path string) uint64 {
	return xxhash.Sum64String(path)
}

// Sum64 computes the xxHash64 of raw bytes. Used for chunk checksums.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
