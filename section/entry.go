package section

import (
	"github.com/arloliu/mpfile/endian"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
)

// Entry records information about a single group, attribute or dataset in the
// container catalog. It is a fixed size of 32 bytes.
//
// Catalog entries appear in first-touch insertion order: the order in which
// paths were first written. Readers preserve this order and never re-sort it,
// so a container lists its groups the way the producing instrument laid them
// out.
//
// The Offset field is section-relative rather than absolute:
//   - Attribute entries: offset into the decompressed attribute heap
//   - Dataset entries: offset into the dataset descriptor section
//   - Group entries: no payload, offset and length are zero
type Entry struct {
	// PathHash is the xxHash64 hash of the full entry path string.
	//
	// Offset: 0, Size: 8 bytes
	PathHash uint64

	// Offset is the byte offset of the entry payload within its section.
	//
	// Offset: 16, Size: 8 bytes
	Offset uint64

	// Length is the byte length of the entry payload within its section.
	//
	// Offset: 24, Size: 8 bytes
	Length uint64

	// ElemCount is the number of elements in an attribute value, 1 for
	// scalars and strings. Zero for groups and datasets; dataset element
	// counts live in the descriptor dims.
	//
	// Offset: 12, Size: 4 bytes
	ElemCount uint32

	// Kind discriminates groups, attributes and datasets.
	//
	// Offset: 8, Size: 1 byte
	Kind format.EntryKind

	// Type is the data type of an attribute value or of dataset elements.
	// TypeInvalid for groups.
	//
	// Offset: 9, Size: 1 byte
	Type format.DataType

	// Flags is a packed field of entry flags. Bit 0 marks an attribute value
	// as an array; the remaining bits are reserved and must be zero.
	//
	// Offset: 10, Size: 1 byte; byte 11 is reserved
	Flags uint8
}

// IsArray returns whether the attribute value is an array of elements.
func (e Entry) IsArray() bool {
	return (e.Flags & EntryFlagArray) != 0
}

// SetArray marks or unmarks the attribute value as an array.
func (e *Entry) SetArray(isArray bool) {
	if isArray {
		e.Flags |= EntryFlagArray
	} else {
		e.Flags &^= EntryFlagArray
	}
}

// Bytes returns the catalog entry as a byte slice using the specified endian engine.
//
// Parameters:
//   - engine: Endian engine for byte order
//
// Returns:
//   - []byte: 32-byte catalog entry with all fields encoded
func (e *Entry) Bytes(engine endian.EndianEngine) []byte {
	var b [EntrySize]byte // stack allocation, it's faster than heap allocation
	engine.PutUint64(b[0:8], e.PathHash)
	b[8] = uint8(e.Kind)
	b[9] = uint8(e.Type)
	b[10] = e.Flags
	b[11] = 0
	engine.PutUint32(b[12:16], e.ElemCount)
	engine.PutUint64(b[16:24], e.Offset)
	engine.PutUint64(b[24:32], e.Length)

	return b[:]
}

// WriteToSlice writes to a pre-allocated slice and returns the next position.
//
// This is the most efficient method when writing multiple entries sequentially.
//
// Parameters:
//   - data: Pre-allocated byte slice (must have space for 32 bytes at offset)
//   - offset: Starting position in data slice
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position (offset + 32)
func (e *Entry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint64(data[offset:offset+8], e.PathHash)
	data[offset+8] = uint8(e.Kind)
	data[offset+9] = uint8(e.Type)
	data[offset+10] = e.Flags
	data[offset+11] = 0
	engine.PutUint32(data[offset+12:offset+16], e.ElemCount)
	engine.PutUint64(data[offset+16:offset+24], e.Offset)
	engine.PutUint64(data[offset+24:offset+32], e.Length)

	return offset + EntrySize
}

// Validate checks the entry fields against its kind.
//
// Returns:
//   - error: ErrInvalidEntryKind, ErrInvalidDataType or ErrInvalidElemCount
func (e Entry) Validate() error {
	switch e.Kind {
	case format.KindGroup:
		if e.Type != format.TypeInvalid || e.ElemCount != 0 || e.Offset != 0 || e.Length != 0 {
			return errs.ErrInvalidEntryKind
		}
	case format.KindAttribute:
		switch e.Type {
		case format.TypeInt64, format.TypeFloat64, format.TypeString, format.TypeBool:
		default:
			return errs.ErrInvalidDataType
		}
		if e.ElemCount == 0 {
			return errs.ErrInvalidElemCount
		}
		// Arrays carry fixed-width elements only; strings stay scalar.
		if e.IsArray() && e.Type == format.TypeString {
			return errs.ErrInvalidDataType
		}
		if !e.IsArray() && e.ElemCount != 1 {
			return errs.ErrInvalidElemCount
		}
	case format.KindDataset:
		switch e.Type {
		case format.TypeInt64, format.TypeFloat64, format.TypeUint16, format.TypeBool:
		default:
			return errs.ErrInvalidDataType
		}
		if e.ElemCount != 0 {
			return errs.ErrInvalidElemCount
		}
	default:
		return errs.ErrInvalidEntryKind
	}

	return nil
}

// ParseEntry parses an Entry from a byte slice.
//
// The parsed entry is structurally validated against its kind; the path hash
// is verified separately by the reader once path names are decoded.
//
// Parameters:
//   - data: Byte slice containing the catalog entry (must be at least 32 bytes)
//   - engine: Endian engine for byte order
//
// Returns:
//   - Entry: Parsed catalog entry
//   - error: ErrInvalidEntrySize if data is too short, or entry validation errors
func ParseEntry(data []byte, engine endian.EndianEngine) (Entry, error) {
	if len(data) < EntrySize {
		return Entry{}, errs.ErrInvalidEntrySize
	}

	entry := Entry{
		PathHash:  engine.Uint64(data[0:8]),
		Kind:      format.EntryKind(data[8]),
		Type:      format.DataType(data[9]),
		Flags:     data[10],
		ElemCount: engine.Uint32(data[12:16]),
		Offset:    engine.Uint64(data[16:24]),
		Length:    engine.Uint64(data[24:32]),
	}

	if err := entry.Validate(); err != nil {
		return Entry{}, err
	}

	return entry, nil
}
