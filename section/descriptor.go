package section

import (
	"math"

	"github.com/arloliu/mpfile/endian"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
)

// ChunkRef records information about a single stored chunk of a dataset.
// It is a fixed size of 24 bytes on disk and uses delta offset encoding.
//
// Delta Offset Encoding:
//   - First chunk: delta is always 0, the chunk starts at ChunkRunOffset
//   - Subsequent chunks: delta = (current_start - previous_start)
//   - Decoding: absolute starts reconstructed by accumulating deltas
type ChunkRef struct {
	// Checksum is the xxHash64 hash of the decompressed chunk bytes.
	//
	// Hashing the decompressed form catches both storage corruption and a
	// decompressor that returns wrong output with a single comparison.
	//
	// Offset: 0, Size: 8 bytes
	Checksum uint64

	// Offset is the absolute file offset of the stored chunk.
	//
	// NOTE: On disk this field is a uint32 start-to-start delta from the
	// previous chunk (4 bytes at offset 8). After decoding it contains the
	// ABSOLUTE file offset, so we use uint64 in memory.
	Offset uint64

	// StoredSize is the byte length of the chunk as stored, after compression.
	//
	// Offset: 12, Size: 4 bytes
	StoredSize uint32

	// RawSize is the byte length of the chunk after decompression.
	//
	// Offset: 16, Size: 4 bytes; bytes 20-23 are reserved
	RawSize uint32
}

// DatasetDesc describes how one dataset's elements are stored: element type,
// logical dimensions, chunk compression and the chunk run.
//
// The descriptor record is variable-size:
//
//	Bytes            | Field          | Description
//	-----------------|----------------|----------------------------------
//	0                | Compression    | chunk compression type
//	1                | Type           | element data type
//	2                | DimCount       | number of dimensions (1-4)
//	3                | Reserved       | must be zero
//	4-7              | ChunkCount     | number of chunks (>= 1)
//	8-15             | ChunkRunOffset | absolute file offset of the first chunk
//	16..16+8×dims    | Dims           | element count per dimension
//	then 24×chunks   | ChunkRefs      | chunk references
type DatasetDesc struct {
	// ChunkRunOffset is the absolute file offset where the dataset's first
	// stored chunk begins.
	ChunkRunOffset uint64

	// Dims holds the element count per dimension, outermost first.
	// A movie dataset is typically [frames, height, width].
	Dims []uint64

	// Chunks holds one reference per stored chunk, in storage order.
	Chunks []ChunkRef

	// Compression is the compression applied to each chunk independently.
	Compression format.CompressionType

	// Type is the element data type. Only fixed-width types are valid.
	Type format.DataType
}

var validChunkCompressions = map[format.CompressionType]struct{}{
	format.CompressionNone: {},
	format.CompressionZstd: {},
	format.CompressionS2:   {},
	format.CompressionLZ4:  {},
}

// DescSize returns the encoded byte size of a descriptor with the given
// dimension and chunk counts.
func DescSize(dimCount, chunkCount int) int {
	return DescBaseSize + 8*dimCount + ChunkRefSize*chunkCount
}

// Size returns the encoded byte size of this descriptor.
func (d *DatasetDesc) Size() int {
	return DescSize(len(d.Dims), len(d.Chunks))
}

// ElemCount returns the total number of elements, the product of all dims.
func (d *DatasetDesc) ElemCount() uint64 {
	count := uint64(1)
	for _, dim := range d.Dims {
		count *= dim
	}

	return count
}

// ByteSize returns the total decompressed byte size of the dataset.
func (d *DatasetDesc) ByteSize() uint64 {
	return d.ElemCount() * uint64(d.Type.ElemSize())
}

// Bytes serializes the descriptor into a byte slice using the specified
// endian engine. Chunk offsets are re-encoded as start-to-start deltas.
//
// Parameters:
//   - engine: Endian engine for byte order
//
// Returns:
//   - []byte: Encoded descriptor record
func (d *DatasetDesc) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, d.Size())

	b[0] = uint8(d.Compression)
	b[1] = uint8(d.Type)
	b[2] = uint8(len(d.Dims))
	b[3] = 0
	engine.PutUint32(b[4:8], uint32(len(d.Chunks))) //nolint: gosec
	engine.PutUint64(b[8:16], d.ChunkRunOffset)

	pos := DescBaseSize
	for _, dim := range d.Dims {
		engine.PutUint64(b[pos:pos+8], dim)
		pos += 8
	}

	prevStart := d.ChunkRunOffset
	for _, chunk := range d.Chunks {
		engine.PutUint64(b[pos:pos+8], chunk.Checksum)
		engine.PutUint32(b[pos+8:pos+12], uint32(chunk.Offset-prevStart)) //nolint: gosec
		engine.PutUint32(b[pos+12:pos+16], chunk.StoredSize)
		engine.PutUint32(b[pos+16:pos+20], chunk.RawSize)
		engine.PutUint32(b[pos+20:pos+24], 0)
		prevStart = chunk.Offset
		pos += ChunkRefSize
	}

	return b
}

// ParseDatasetDesc parses a DatasetDesc from a byte slice.
//
// The slice must span exactly one descriptor record, as delimited by the
// catalog entry length. Chunk deltas are accumulated into absolute file
// offsets, and the chunk run is cross-checked against the declared type and
// dimensions.
//
// Parameters:
//   - data: Byte slice containing exactly one descriptor record
//   - engine: Endian engine for byte order
//
// Returns:
//   - DatasetDesc: Parsed descriptor with absolute chunk offsets
//   - error: ErrInvalidDescriptor, ErrInvalidDataType, ErrInvalidDimensions
//     or ErrInvalidChunkRef
func ParseDatasetDesc(data []byte, engine endian.EndianEngine) (DatasetDesc, error) {
	if len(data) < DescBaseSize {
		return DatasetDesc{}, errs.ErrInvalidDescriptor
	}

	desc := DatasetDesc{
		Compression:    format.CompressionType(data[0]),
		Type:           format.DataType(data[1]),
		ChunkRunOffset: engine.Uint64(data[8:16]),
	}

	if _, ok := validChunkCompressions[desc.Compression]; !ok {
		return DatasetDesc{}, errs.ErrInvalidDescriptor
	}

	elemSize := desc.Type.ElemSize()
	if elemSize == 0 {
		return DatasetDesc{}, errs.ErrInvalidDataType
	}

	dimCount := int(data[2])
	if dimCount < 1 || dimCount > MaxDims {
		return DatasetDesc{}, errs.ErrInvalidDimensions
	}

	if data[3] != 0 {
		return DatasetDesc{}, errs.ErrInvalidDescriptor
	}

	chunkCount := engine.Uint32(data[4:8])
	if chunkCount == 0 {
		return DatasetDesc{}, errs.ErrInvalidDescriptor
	}

	need := uint64(DescBaseSize) + 8*uint64(dimCount) + ChunkRefSize*uint64(chunkCount)
	if uint64(len(data)) != need {
		return DatasetDesc{}, errs.ErrInvalidDescriptor
	}

	pos := DescBaseSize
	desc.Dims = make([]uint64, dimCount)
	elemCount := uint64(1)
	for i := range desc.Dims {
		dim := engine.Uint64(data[pos : pos+8])
		if dim == 0 || elemCount > math.MaxUint64/dim {
			return DatasetDesc{}, errs.ErrInvalidDimensions
		}
		desc.Dims[i] = dim
		elemCount *= dim
		pos += 8
	}

	if elemCount > math.MaxUint64/uint64(elemSize) {
		return DatasetDesc{}, errs.ErrInvalidDimensions
	}
	byteSize := elemCount * uint64(elemSize)

	desc.Chunks = make([]ChunkRef, chunkCount)
	rawTotal := uint64(0)
	prevStart := desc.ChunkRunOffset
	for i := range desc.Chunks {
		chunk := ChunkRef{
			Checksum:   engine.Uint64(data[pos : pos+8]),
			StoredSize: engine.Uint32(data[pos+12 : pos+16]),
			RawSize:    engine.Uint32(data[pos+16 : pos+20]),
		}
		delta := engine.Uint32(data[pos+8 : pos+12])

		if chunk.StoredSize == 0 || chunk.RawSize == 0 {
			return DatasetDesc{}, errs.ErrInvalidChunkRef
		}
		if engine.Uint32(data[pos+20:pos+24]) != 0 {
			return DatasetDesc{}, errs.ErrInvalidChunkRef
		}

		if i == 0 {
			if delta != 0 {
				return DatasetDesc{}, errs.ErrInvalidChunkRef
			}
			chunk.Offset = desc.ChunkRunOffset
		} else {
			// Chunks are laid out in order and must not overlap.
			if uint64(delta) < uint64(desc.Chunks[i-1].StoredSize) {
				return DatasetDesc{}, errs.ErrInvalidChunkRef
			}
			chunk.Offset = prevStart + uint64(delta)
		}

		prevStart = chunk.Offset
		rawTotal += uint64(chunk.RawSize)
		desc.Chunks[i] = chunk
		pos += ChunkRefSize
	}

	// The chunk run must reassemble to exactly the declared element payload.
	if rawTotal != byteSize {
		return DatasetDesc{}, errs.ErrInvalidDescriptor
	}

	return desc, nil
}
