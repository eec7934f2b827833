// Package section defines the low-level binary structures and constants for
// the MPB container format.
//
// This package provides the foundational types that define the physical layout
// of a container file. It handles binary serialization/deserialization of the
// header, catalog entries and dataset descriptors, ensuring consistent
// byte-level representation across platforms.
//
// # Overview
//
// The section package defines three main categories of types:
//
//  1. Header: Fixed-size container metadata with the packed Flag block
//  2. Entry: Fixed-size catalog records for groups, attributes and datasets
//  3. DatasetDesc/ChunkRef: Variable-size dataset descriptors with chunk runs
//
// # Container Structure
//
// A container consists of fixed-size sections followed by variable-size
// payloads:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (64 bytes, fixed)                                │
//	│  - Signature (8 bytes)                                  │
//	│  - Flag (4 bytes): options, version, attr compression   │
//	│  - EntryCount (4 bytes)                                 │
//	│  - CreatedAt (8 bytes)                                  │
//	│  - Section offsets (40 bytes)                           │
//	├─────────────────────────────────────────────────────────┤
//	│ Path Names Payload (variable)                           │
//	│  - Length-prefixed full paths, storage order            │
//	├─────────────────────────────────────────────────────────┤
//	│ Catalog (N × 32 bytes, fixed per entry)                 │
//	│  - One entry per group/attribute/dataset                │
//	│  - PathHash, kind, type, section-relative offsets       │
//	├─────────────────────────────────────────────────────────┤
//	│ Attribute Heap (variable)                               │
//	│  - Concatenated attribute values                        │
//	│  - Optionally compressed as a whole                     │
//	├─────────────────────────────────────────────────────────┤
//	│ Dataset Descriptors (variable)                          │
//	│  - Dims, chunk compression, chunk references            │
//	├─────────────────────────────────────────────────────────┤
//	│ Chunk Data (variable)                                   │
//	│  - Concatenated compressed chunks, streamed lazily      │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
// Header (64 bytes):
//
//	Bytes  | Field           | Type   | Description
//	-------|-----------------|--------|----------------------------------
//	0-7    | Signature       | [8]byte| 0x89 'M' 'P' 'B' 0x0D 0x0A 0x1A 0x0A
//	8-9    | Options         | uint16 | Endianness bit + magic number
//	10     | Version         | uint8  | Format version (0x01)
//	11     | AttrCompression | uint8  | Attribute heap compression
//	12-15  | EntryCount      | uint32 | Number of catalog entries
//	16-23  | CreatedAt       | int64  | Unix timestamp in microseconds
//	24-31  | NamesOffset     | uint64 | Byte offset to path names payload
//	32-39  | CatalogOffset   | uint64 | Byte offset to catalog section
//	40-47  | AttrHeapOffset  | uint64 | Byte offset to attribute heap
//	48-55  | DescOffset      | uint64 | Byte offset to dataset descriptors
//	56-63  | DataOffset      | uint64 | Byte offset to chunk data
//
// The signature follows the PNG/HDF5 convention and detects the common
// transmission damages: 7-bit stripping, line-ending translation and
// accidental text-mode dumps.
//
// # Flag Format
//
// The flag block is packed into 4 bytes:
//
//	Byte 0-1 (Options, 16 bits, always little-endian on disk):
//	  Bit 0: Endianness (0=little-endian, 1=big-endian)
//	  Bits 1-3: Reserved (must be 0)
//	  Bits 4-15: Magic number (0x4DB0 for MPB v1)
//
//	Byte 2 (Version, 8 bits): container format version
//
//	Byte 3 (AttrCompression, 8 bits):
//	  0x1=None, 0x2=Zstd, 0x3=S2, 0x4=LZ4
//
// # Catalog Entry Format
//
// Entry (32 bytes):
//
//	Bytes  | Field     | Type   | Description
//	-------|-----------|--------|----------------------------------
//	0-7    | PathHash  | uint64 | xxHash64 of the full path
//	8      | Kind      | uint8  | 0x1=Group, 0x2=Attribute, 0x3=Dataset
//	9      | Type      | uint8  | Data type of value/elements
//	10     | Flags     | uint8  | Bit 0: attribute value is an array
//	11     | Reserved  | uint8  | Must be zero
//	12-15  | ElemCount | uint32 | Attribute element count (1 for scalars)
//	16-23  | Offset    | uint64 | Section-relative payload offset
//	24-31  | Length    | uint64 | Payload byte length
//
// Offsets are section-relative: attribute entries point into the decompressed
// attribute heap, dataset entries point into the descriptor section, group
// entries carry no payload. Catalog order is first-touch insertion order and
// is preserved end to end.
//
// # Dataset Descriptor Format
//
// DatasetDesc (16 + 8×dims + 24×chunks bytes):
//
//	Bytes          | Field          | Type   | Description
//	---------------|----------------|--------|---------------------------
//	0              | Compression    | uint8  | Per-chunk compression
//	1              | Type           | uint8  | Element data type
//	2              | DimCount       | uint8  | Number of dimensions (1-4)
//	3              | Reserved       | uint8  | Must be zero
//	4-7            | ChunkCount     | uint32 | Number of chunks (>= 1)
//	8-15           | ChunkRunOffset | uint64 | Absolute offset of first chunk
//	16..           | Dims           | uint64 | Element count per dimension
//	then           | ChunkRefs      | 24 B   | One per chunk, storage order
//
// ChunkRef (24 bytes):
//
//	Bytes  | Field       | Type   | Description
//	-------|-------------|--------|----------------------------------
//	0-7    | Checksum    | uint64 | xxHash64 of decompressed bytes
//	8-11   | OffsetDelta | uint32 | Start-to-start delta (first is 0)
//	12-15  | StoredSize  | uint32 | Bytes on disk
//	16-19  | RawSize     | uint32 | Bytes after decompression
//	20-23  | Reserved    | uint32 | Must be zero
//
// # Delta Offset Encoding
//
// Chunk references store the start-to-start distance to the previous chunk
// instead of absolute file offsets. Deltas stay small even in multi-gigabyte
// containers, and the decoder reconstructs absolute starts in one pass:
//
//	absoluteStart[0] = chunkRunOffset
//	for i := 1; i < chunkCount; i++ {
//	    absoluteStart[i] = absoluteStart[i-1] + delta[i]
//	}
//
// The sum of RawSize over all chunks must equal the dataset's element payload
// (elemSize × product of dims); ParseDatasetDesc rejects descriptors that do
// not reassemble exactly.
//
// # Byte Order (Endianness)
//
// All multi-byte values after the flag block use the byte order specified in
// Options bit 0. The Options field itself is always little-endian so the
// magic number can be read before the byte order is known.
//
// # Thread Safety
//
// All types in this package are plain value types with no hidden state.
// Parsed headers, entries and descriptors are safe for concurrent reads.
//
// # Usage Examples
//
// Parsing a header:
//
//	header, err := section.ParseHeader(data, fileSize)
//	if err != nil {
//	    return err
//	}
//	engine := header.Flag.GetEndianEngine()
//
// Creating catalog entries:
//
//	entry := section.Entry{
//	    PathHash:  hash.ID("instrument/serial"),
//	    Kind:      format.KindAttribute,
//	    Type:      format.TypeString,
//	    ElemCount: 1,
//	    Offset:    heapPos,
//	    Length:    uint64(len(value)),
//	}
//	buf := entry.Bytes(engine)
//
// Most users should interact with the container package instead of using
// section directly. Use this package only when you need fine-grained control
// over binary format details.
package section
