package section

import (
	"bytes"
	"time"
	"unsafe"

	"github.com/arloliu/mpfile/errs"
)

// Header represents the fixed-size header section at the start of a container.
type Header struct {
	// CreatedAt is the container creation time, the unix timestamp in microseconds.
	CreatedAt int64 // byte offset 16-23
	// EntryCount is the number of catalog entries stored in the container.
	EntryCount uint32 // byte offset 12-15
	// NamesOffset is the byte offset to the start of the path names payload.
	NamesOffset uint64 // byte offset 24-31
	// CatalogOffset is the byte offset to the start of the catalog section.
	// It records the offset after the path names payload.
	CatalogOffset uint64 // byte offset 32-39
	// AttrHeapOffset is the byte offset to the start of the attribute heap.
	// It records the offset after the fixed-size catalog section.
	AttrHeapOffset uint64 // byte offset 40-47
	// DescOffset is the byte offset to the start of the dataset descriptor section.
	// It records the offset after the (possibly compressed) attribute heap.
	DescOffset uint64 // byte offset 48-55
	// DataOffset is the byte offset to the start of the chunk data section.
	DataOffset uint64 // byte offset 56-63

	// Flag is a packed field for format version, endianness and magic number.
	Flag Flag // byte offset 8-11, preceded by the 8-byte signature
}

// NewHeader creates a new Header with the given creation time.
// The entry count and section offsets will be set when the writer finishes.
func NewHeader(createdAt time.Time) *Header {
	return &Header{
		CreatedAt:   createdAt.UnixMicro(),
		Flag:        NewFlag(),
		NamesOffset: HeaderSize,
		EntryCount:  0, // Will be set in Finish()
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 64 bytes)
//   - fileSize: Total container size in bytes, used to bound the section offsets
//
// Returns:
//   - error: ErrInvalidHeaderSize, ErrInvalidSignature, flag validation errors,
//     ErrInvalidEntryCount or ErrInvalidSectionOffsets
func (h *Header) Parse(data []byte, fileSize int64) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	if !bytes.Equal(data[0:8], Signature[:]) {
		return errs.ErrInvalidSignature
	}

	// Parse options first to determine endianness (always little-endian for the Options field itself)
	h.Flag.Options = uint16(data[8]) | (uint16(data[9]) << 8)
	h.Flag.Version = data[10]
	h.Flag.AttrCompression = data[11]

	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()

	h.EntryCount = engine.Uint32(data[12:16])
	if h.EntryCount == 0 || h.EntryCount > MaxEntryCount {
		return errs.ErrInvalidEntryCount
	}

	// Use unsafe pointer conversion to interpret bytes as signed int64
	createdAtUint := engine.Uint64(data[16:24])
	h.CreatedAt = *(*int64)(unsafe.Pointer(&createdAtUint))

	h.NamesOffset = engine.Uint64(data[24:32])
	h.CatalogOffset = engine.Uint64(data[32:40])
	h.AttrHeapOffset = engine.Uint64(data[40:48])
	h.DescOffset = engine.Uint64(data[48:56])
	h.DataOffset = engine.Uint64(data[56:64])

	return h.validateOffsets(fileSize)
}

// validateOffsets checks that the section offsets are monotonic, consistent
// with the entry count and contained within the file.
func (h *Header) validateOffsets(fileSize int64) error {
	if h.NamesOffset < HeaderSize {
		return errs.ErrInvalidSectionOffsets
	}

	if h.CatalogOffset < h.NamesOffset ||
		h.AttrHeapOffset < h.CatalogOffset ||
		h.DescOffset < h.AttrHeapOffset ||
		h.DataOffset < h.DescOffset {
		return errs.ErrInvalidSectionOffsets
	}

	if fileSize >= 0 && h.DataOffset > uint64(fileSize) {
		return errs.ErrInvalidSectionOffsets
	}

	// The catalog is a fixed-size array, so its extent must match the count.
	if h.AttrHeapOffset-h.CatalogOffset != uint64(h.EntryCount)*EntrySize {
		return errs.ErrInvalidSectionOffsets
	}

	return nil
}

// Bytes serializes the Header into a byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	copy(b[0:8], Signature[:])

	// The Options field is always little-endian regardless of payload order.
	b[8] = byte(h.Flag.Options)
	b[9] = byte(h.Flag.Options >> 8)
	b[10] = h.Flag.Version
	b[11] = h.Flag.AttrCompression

	engine := h.Flag.GetEndianEngine()

	engine.PutUint32(b[12:16], h.EntryCount)
	// Use bitwise conversion to avoid overflow warning - timestamps are stored as-is in binary
	engine.PutUint64(b[16:24], *(*uint64)(unsafe.Pointer(&h.CreatedAt)))
	engine.PutUint64(b[24:32], h.NamesOffset)
	engine.PutUint64(b[32:40], h.CatalogOffset)
	engine.PutUint64(b[40:48], h.AttrHeapOffset)
	engine.PutUint64(b[48:56], h.DescOffset)
	engine.PutUint64(b[56:64], h.DataOffset)

	return b
}

// CreatedAtTime returns the creation time as a time.Time object.
//
// Returns:
//   - time.Time: Creation time converted from microseconds since Unix epoch
func (h *Header) CreatedAtTime() time.Time {
	return time.UnixMicro(h.CreatedAt)
}

// ParseHeader parses a Header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be at least 64 bytes)
//   - fileSize: Total container size in bytes
//
// Returns:
//   - Header: Parsed header struct
//   - error: ErrInvalidHeaderSize or header validation errors
func ParseHeader(data []byte, fileSize int64) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize], fileSize); err != nil {
		return Header{}, err
	}

	return h, nil
}

// IsContainer reports whether data starts with a container signature and a
// valid magic number. It inspects the first 12 bytes only and does not
// validate the rest of the header.
func IsContainer(data []byte) bool {
	if len(data) < 12 {
		return false
	}

	if !bytes.Equal(data[0:8], Signature[:]) {
		return false
	}

	options := uint16(data[8]) | (uint16(data[9]) << 8)

	return options&MagicNumberMask == MagicMPBV1Opt
}
