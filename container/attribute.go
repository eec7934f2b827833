package container

import (
	"fmt"
	"math"

	"github.com/arloliu/mpfile/endian"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
	"github.com/arloliu/mpfile/section"
)

// EntryInfo describes one catalog entry without decoding its payload.
type EntryInfo struct {
	// Path is the full slash-separated path of the entry.
	Path string
	// Kind reports whether the entry is a group, an attribute, or a dataset.
	Kind format.EntryKind
	// Type is the element type for attributes and datasets,
	// format.TypeInvalid for groups.
	Type format.DataType
	// IsArray reports whether an attribute holds multiple elements.
	IsArray bool
}

// RawAttribute is an attribute value decoded exactly as stored.
//
// Value holds one of int64, float64, string, bool, []int64, []float64 or
// []bool depending on Type and IsArray. No coercion is applied; an attribute
// stored as Int64 always surfaces as int64 even when a reader would prefer a
// float64.
type RawAttribute struct {
	// Path is the full slash-separated path of the attribute.
	Path string
	// Type is the stored element type.
	Type format.DataType
	// IsArray reports whether Value holds a slice.
	IsArray bool
	// Value is the decoded payload.
	Value any
}

// decodeAttrValue decodes one attribute payload from the heap slice delimited
// by the catalog entry. The slice length was bounds-checked by the caller;
// this function validates that it agrees with the entry's type and element
// count.
func decodeAttrValue(entry *section.Entry, payload []byte, engine endian.EndianEngine) (any, error) {
	if entry.Type == format.TypeString {
		// Strings are single variable-size elements, any payload length is
		// valid, including empty.
		return string(payload), nil
	}

	elemSize := entry.Type.ElemSize()
	expected := uint64(elemSize) * uint64(entry.ElemCount)
	if uint64(len(payload)) != expected {
		return nil, fmt.Errorf("%w: %s payload is %d bytes, want %d",
			errs.ErrInvalidAttrPayload, entry.Type, len(payload), expected)
	}

	if !entry.IsArray() {
		return decodeScalar(entry.Type, payload, engine)
	}

	switch entry.Type {
	case format.TypeInt64:
		vals := make([]int64, entry.ElemCount)
		for i := range vals {
			vals[i] = int64(engine.Uint64(payload[i*8:])) //nolint: gosec
		}
		return vals, nil

	case format.TypeFloat64:
		vals := make([]float64, entry.ElemCount)
		for i := range vals {
			vals[i] = math.Float64frombits(engine.Uint64(payload[i*8:]))
		}
		return vals, nil

	case format.TypeBool:
		vals := make([]bool, entry.ElemCount)
		for i := range vals {
			b, err := decodeBool(payload[i])
			if err != nil {
				return nil, err
			}
			vals[i] = b
		}
		return vals, nil

	default:
		return nil, fmt.Errorf("%w: array of %s", errs.ErrInvalidDataType, entry.Type)
	}
}

func decodeScalar(typ format.DataType, payload []byte, engine endian.EndianEngine) (any, error) {
	switch typ {
	case format.TypeInt64:
		return int64(engine.Uint64(payload)), nil //nolint: gosec
	case format.TypeFloat64:
		return math.Float64frombits(engine.Uint64(payload)), nil
	case format.TypeBool:
		return decodeBool(payload[0])
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidDataType, typ)
	}
}

// decodeBool rejects any stored byte other than 0x00 or 0x01 so that a later
// rewrite of the attribute heap round-trips byte for byte.
func decodeBool(b byte) (bool, error) {
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool byte 0x%02X", errs.ErrInvalidAttrPayload, b)
	}
}
