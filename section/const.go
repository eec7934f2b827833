package section

const (
	// Bit masks for the header Options field
	EndiannessMask   = 0x0001 // Mask for endianness bit (bit 0)
	ReservedBitsMask = 0x000E // Mask for reserved bits (bits 1-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic number (bits 4-15)
	MagicMPBV1Opt = 0x4DB0 // Version 1 magic number for the MPB container format.

	// FormatVersion1 is the container format version this package reads and writes.
	FormatVersion1 = uint8(0x01)

	// Catalog entry flag bits
	EntryFlagArray = uint8(0x01) // Attribute value is an array of elements.
)

// Fixed record sizes and limits in the container file.
const (
	HeaderSize    = 64      // fixed header size in bytes
	EntrySize     = 32      // fixed catalog entry size in bytes
	DescBaseSize  = 16      // fixed prefix of a dataset descriptor before dims and chunk refs
	ChunkRefSize  = 24      // fixed chunk reference size in bytes
	MaxEntryCount = 1 << 20 // maximum number of catalog entries per container
	MaxDims       = 4       // maximum dataset dimensions
	MaxPathLen    = 65535   // maximum encoded path length in bytes
)

// Signature is the 8-byte sequence every container starts with. The layout
// follows the PNG/HDF5 convention: a high bit byte to catch 7-bit transports,
// the format name, a CRLF pair to catch line-ending translation, a DOS EOF to
// stop accidental text dumps, and a bare LF to catch LF-to-CRLF rewriting.
var Signature = [8]byte{0x89, 'M', 'P', 'B', 0x0D, 0x0A, 0x1A, 0x0A}
