// Package errs defines the error values shared across the mpfile packages.
//
// Two layers live here:
//
//   - Structural sentinels: low-level parse and encode failures raised by the
//     section and container packages. They carry no context on their own and
//     are always reachable through errors.Is on a wrapped error.
//   - Error kinds: the five typed errors every caller-facing operation maps
//     onto (NotFoundError, FormatError, CorruptDataError, MissingKeyError,
//     SchemaError). Each kind matches its sentinel via errors.Is and exposes
//     file/key/field context via errors.As.
package errs

import "errors"

// Structural sentinels raised while parsing or encoding container sections.
var (
	// ErrInvalidHeaderSize indicates the header data is shorter than the fixed header size.
	ErrInvalidHeaderSize = errors.New("invalid header size")
	// ErrInvalidSignature indicates the file does not start with the container signature.
	ErrInvalidSignature = errors.New("invalid container signature")
	// ErrInvalidMagicNumber indicates the header flag word carries the wrong magic bits.
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	// ErrInvalidHeaderFlags indicates reserved flag bits are set.
	ErrInvalidHeaderFlags = errors.New("invalid header flags")
	// ErrUnsupportedVersion indicates a container format version this reader does not handle.
	ErrUnsupportedVersion = errors.New("unsupported format version")
	// ErrInvalidSectionOffsets indicates header section offsets that are not monotonic
	// or point outside the file.
	ErrInvalidSectionOffsets = errors.New("invalid section offsets")
	// ErrInvalidEntryCount indicates a catalog entry count of zero or beyond MaxEntryCount.
	ErrInvalidEntryCount = errors.New("invalid catalog entry count")
	// ErrInvalidEntrySize indicates catalog data whose length is not a whole number of entries.
	ErrInvalidEntrySize = errors.New("invalid catalog entry size")
	// ErrInvalidEntryKind indicates a catalog entry with an unknown kind byte.
	ErrInvalidEntryKind = errors.New("invalid catalog entry kind")
	// ErrInvalidDataType indicates an unknown data type byte.
	ErrInvalidDataType = errors.New("invalid data type")
	// ErrInvalidPathCount indicates the path payload count does not match the catalog.
	ErrInvalidPathCount = errors.New("invalid path count")
	// ErrInvalidPathPayload indicates a truncated or malformed path payload.
	ErrInvalidPathPayload = errors.New("invalid path payload")
	// ErrInvalidPath indicates an empty path or one with empty segments.
	ErrInvalidPath = errors.New("invalid entry path")
	// ErrDuplicatePath indicates a path written more than once.
	ErrDuplicatePath = errors.New("duplicate entry path")
	// ErrHashMismatch indicates a path whose hash does not match its catalog entry.
	ErrHashMismatch = errors.New("path hash mismatch")
	// ErrInvalidDescriptor indicates a truncated or inconsistent dataset descriptor.
	ErrInvalidDescriptor = errors.New("invalid dataset descriptor")
	// ErrInvalidChunkRef indicates a chunk reference pointing outside the data section.
	ErrInvalidChunkRef = errors.New("invalid chunk reference")
	// ErrChecksumMismatch indicates decompressed chunk bytes whose checksum does not
	// match the stored chunk reference.
	ErrChecksumMismatch = errors.New("chunk checksum mismatch")
	// ErrInvalidElemCount indicates an attribute element count inconsistent with its
	// type and byte length.
	ErrInvalidElemCount = errors.New("invalid element count")
	// ErrInvalidAttrPayload indicates attribute bytes that cannot be decoded as the
	// declared type.
	ErrInvalidAttrPayload = errors.New("invalid attribute payload")
	// ErrInvalidDimensions indicates a dataset dimension count or extent out of range.
	ErrInvalidDimensions = errors.New("invalid dataset dimensions")
	// ErrEmptyDataset indicates a dataset written with no elements.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrDataSizeMismatch indicates dataset bytes whose length does not match the
	// declared type and dimensions.
	ErrDataSizeMismatch = errors.New("data size mismatch")
	// ErrInvalidChunkSize indicates a non-positive chunk size option.
	ErrInvalidChunkSize = errors.New("invalid chunk size")
	// ErrReaderClosed indicates an operation on a closed reader.
	ErrReaderClosed = errors.New("reader is closed")
	// ErrWriterFinished indicates a write to a writer after Finish.
	ErrWriterFinished = errors.New("writer is finished")
)

// Error kind sentinels. Every error returned by the public API matches exactly
// one of these via errors.Is.
var (
	// ErrNotFound indicates an unreadable or nonexistent file path.
	ErrNotFound = errors.New("file not found")
	// ErrFormat indicates a file that is not a valid container.
	ErrFormat = errors.New("invalid container format")
	// ErrCorruptData indicates stored data that fails decompression or checksum
	// verification.
	ErrCorruptData = errors.New("corrupt data")
	// ErrMissingKey indicates a requested attribute or dataset path that is not
	// present in the container.
	ErrMissingKey = errors.New("key not found")
	// ErrSchema indicates a canonical metadata field whose stored value has an
	// incompatible type.
	ErrSchema = errors.New("schema violation")
)
