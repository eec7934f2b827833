package format

type (
	DataType        uint8
	CompressionType uint8
	EntryKind       uint8
)

const (
	TypeInvalid DataType = 0x0 // TypeInvalid represents an absent or unknown type.
	TypeInt64   DataType = 0x1 // TypeInt64 represents 64-bit signed integers.
	TypeFloat64 DataType = 0x2 // TypeFloat64 represents IEEE-754 64-bit floats.
	TypeString  DataType = 0x3 // TypeString represents UTF-8 text.
	TypeBool    DataType = 0x4 // TypeBool represents single-byte booleans.
	TypeUint16  DataType = 0x5 // TypeUint16 represents 16-bit unsigned integers (frame samples).
	TypeBytes   DataType = 0x6 // TypeBytes represents opaque byte payloads.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	KindInvalid   EntryKind = 0x0 // KindInvalid represents an absent or unknown entry kind.
	KindGroup     EntryKind = 0x1 // KindGroup represents a structural group entry.
	KindAttribute EntryKind = 0x2 // KindAttribute represents a key/value attribute entry.
	KindDataset   EntryKind = 0x3 // KindDataset represents a chunked dataset entry.
)

func (t DataType) String() string {
	switch t {
	case TypeInt64:
		return "Int64"
	case TypeFloat64:
		return "Float64"
	case TypeString:
		return "String"
	case TypeBool:
		return "Bool"
	case TypeUint16:
		return "Uint16"
	case TypeBytes:
		return "Bytes"
	default:
		return "Unknown"
	}
}

// ElemSize returns the encoded size of one element in bytes,
// or 0 for variable-size types (String, Bytes).
func (t DataType) ElemSize() int {
	switch t {
	case TypeInt64, TypeFloat64:
		return 8
	case TypeUint16:
		return 2
	case TypeBool:
		return 1
	default:
		return 0
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (k EntryKind) String() string {
	switch k {
	case KindGroup:
		return "Group"
	case KindAttribute:
		return "Attribute"
	case KindDataset:
		return "Dataset"
	default:
		return "Unknown"
	}
}
