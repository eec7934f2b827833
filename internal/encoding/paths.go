package encoding

import (
	"fmt"
	"strings"

	"github.com/arloliu/mpfile/endian"
	"github.com/arloliu/mpfile/errs"
)

// MaxPathCount is the maximum number of entry paths a container may carry.
const MaxPathCount = 1 << 20

// MaxPathLength is the maximum byte length of one entry path.
const MaxPathLength = 65535

// EncodePaths encodes the ordered list of entry paths into a length-prefixed
// binary payload.
// Format: [Count: uint32] [Len1: uint16][Path1: UTF-8] [Len2: uint16][Path2: UTF-8] ...
//
// Paths must already be validated (non-empty, no empty segments); this function
// only enforces size limits.
//
// Parameters:
//   - paths: The ordered list of entry paths to encode
//   - engine: The endian engine to use for the count and length fields
//
// Returns:
//   - []byte: The encoded path payload
//   - error: An error if a path exceeds MaxPathLength or the count exceeds MaxPathCount
func EncodePaths(paths []string, engine endian.EndianEngine) ([]byte, error) {
	if len(paths) > MaxPathCount {
		return nil, fmt.Errorf("%w: path count %d exceeds maximum %d", errs.ErrInvalidPathCount, len(paths), MaxPathCount)
	}

	// 4 bytes for the count, then a 2-byte length prefix plus the bytes of each path.
	totalSize := 4
	for _, path := range paths {
		if len(path) > MaxPathLength {
			return nil, fmt.Errorf("%w: path %q exceeds maximum length %d bytes", errs.ErrInvalidPath, path, MaxPathLength)
		}
		totalSize += 2 + len(path)
	}

	buf := make([]byte, totalSize)
	offset := 0

	engine.PutUint32(buf[offset:], uint32(len(paths))) //nolint: gosec
	offset += 4

	for _, path := range paths {
		engine.PutUint16(buf[offset:], uint16(len(path))) //nolint: gosec
		offset += 2

		copy(buf[offset:], path)
		offset += len(path)
	}

	return buf, nil
}

// DecodePaths decodes a length-prefixed path payload.
// Format: [Count: uint32] [Len1: uint16][Path1: UTF-8] [Len2: uint16][Path2: UTF-8] ...
//
// Parameters:
//   - data: The raw byte slice containing the path payload (starting from the count field)
//   - engine: The endian engine to use for the count and length fields
//
// Returns:
//   - []string: The decoded list of entry paths (in storage order)
//   - int: The total number of bytes consumed
//   - error: An error if the payload is truncated or the count is out of range
func DecodePaths(data []byte, engine endian.EndianEngine) ([]string, int, error) {
	offset := 0

	if len(data) < offset+4 {
		return nil, 0, fmt.Errorf("%w: cannot read path count (need 4 bytes, have %d)", errs.ErrInvalidPathPayload, len(data))
	}

	count := engine.Uint32(data[offset:])
	offset += 4

	if count > MaxPathCount {
		return nil, 0, fmt.Errorf("%w: path count %d exceeds maximum %d", errs.ErrInvalidPathCount, count, MaxPathCount)
	}

	paths := make([]string, count)

	for i := range int(count) {
		if len(data) < offset+2 {
			return nil, 0, fmt.Errorf("%w: cannot read length for path %d (need 2 bytes at offset %d, have %d total)",
				errs.ErrInvalidPathPayload, i, offset, len(data))
		}

		pathLen := engine.Uint16(data[offset:])
		offset += 2

		if len(data) < offset+int(pathLen) {
			return nil, 0, fmt.Errorf("%w: cannot read path %d (need %d bytes at offset %d, have %d total)",
				errs.ErrInvalidPathPayload, i, pathLen, offset, len(data))
		}

		// Convert bytes to string (creates a copy)
		paths[i] = string(data[offset : offset+int(pathLen)])
		offset += int(pathLen)
	}

	return paths, offset, nil
}

// ValidatePath checks that a path is non-empty, carries no leading, trailing
// or doubled separators, and stays within MaxPathLength.
//
// Returns an error wrapping errs.ErrInvalidPath on any violation.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", errs.ErrInvalidPath)
	}
	if len(path) > MaxPathLength {
		return fmt.Errorf("%w: path %q exceeds maximum length %d bytes", errs.ErrInvalidPath, path, MaxPathLength)
	}
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") || strings.Contains(path, "//") {
		return fmt.Errorf("%w: path %q has empty segments", errs.ErrInvalidPath, path)
	}

	return nil
}

// VerifyPathHashes verifies that the decoded paths hash to the IDs recorded in
// the catalog entries. The slices must have the same length and be in
// corresponding order: hash(paths[i]) must equal pathIDs[i].
//
// Parameters:
//   - paths: The decoded entry paths (in storage order)
//   - pathIDs: The path hashes from the catalog entries (same order)
//   - hashFunc: The function computing a path's hash (hash.ID)
//
// Returns:
//   - error: An error on the first hash mismatch, nil if all hashes match
func VerifyPathHashes(paths []string, pathIDs []uint64, hashFunc func(string) uint64) error {
	if len(paths) != len(pathIDs) {
		return fmt.Errorf("%w: path count %d does not match catalog entry count %d",
			errs.ErrInvalidPathCount, len(paths), len(pathIDs))
	}

	for i, path := range paths {
		expectedHash := hashFunc(path)
		actualHash := pathIDs[i]

		if expectedHash != actualHash {
			return fmt.Errorf("%w: path %q at index %d: expected hash 0x%016x, got 0x%016x",
				errs.ErrHashMismatch, path, i, expectedHash, actualHash)
		}
	}

	return nil
}
