package section

import (
	"github.com/arloliu/mpfile/endian"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
)

// Flag represents the packed 4-byte field following the signature in the
// container header.
type Flag struct {
	// Options is a packed field for various options.
	// Bit 0 is the endianness flag, 0 means little-endian, 1 means big-endian.
	// Bits 1-3 are reserved for future use, must be set to 0.
	// Bits 4-15 are the magic number identifying the container format:
	//   - 0x4DB0 (0b0100_1101_1011_0000): MPB container format v1
	//
	// The Options field itself is always stored little-endian so the magic
	// number and endianness bit can be read before the byte order is known.
	Options uint16

	// Version is the container format version.
	Version uint8

	// AttrCompression is the compression applied to the attribute heap as a
	// whole. Dataset chunks carry their own compression in the descriptor.
	AttrCompression uint8
}

var validAttrCompressions = map[uint8]struct{}{
	uint8(format.CompressionNone): {},
	uint8(format.CompressionZstd): {},
	uint8(format.CompressionS2):   {},
	uint8(format.CompressionLZ4):  {},
}

// NewFlag creates a new Flag with default settings: little-endian payloads,
// format version 1 and a zstd-compressed attribute heap.
func NewFlag() Flag {
	flag := Flag{
		Options:         MagicMPBV1Opt,
		Version:         FormatVersion1,
		AttrCompression: uint8(format.CompressionZstd),
	}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the container payloads are little-endian.
func (f Flag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the container payloads are big-endian.
func (f Flag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *Flag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// GetMagicNumber returns the magic number from the Options field.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsValidMagicNumber checks if the magic number is valid.
func (f Flag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicMPBV1Opt
}

// GetAttrCompression returns the attribute heap compression type.
func (f Flag) GetAttrCompression() format.CompressionType {
	return format.CompressionType(f.AttrCompression)
}

// SetAttrCompression sets the attribute heap compression type.
func (f *Flag) SetAttrCompression(compression format.CompressionType) {
	f.AttrCompression = uint8(compression)
}

// Validate checks if the flag block contains valid values.
func (f Flag) Validate() error {
	if !f.IsValidMagicNumber() {
		return errs.ErrInvalidMagicNumber
	}

	if f.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	if f.Version != FormatVersion1 {
		return errs.ErrUnsupportedVersion
	}

	if _, ok := validAttrCompressions[f.AttrCompression]; !ok {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}

// GetEndianEngine returns the appropriate endian engine based on the flag.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}
