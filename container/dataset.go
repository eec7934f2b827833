package container

import (
	"fmt"
	"io"
	"iter"
	"unsafe"

	"github.com/arloliu/mpfile/compress"
	"github.com/arloliu/mpfile/endian"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
	"github.com/arloliu/mpfile/internal/hash"
	"github.com/arloliu/mpfile/section"
)

// Chunk is one decompressed, checksum-verified slice of a dataset's element
// stream.
type Chunk struct {
	// Index is the position of the chunk within the dataset's chunk run.
	Index int
	// Data is the decompressed chunk payload, freshly allocated per read.
	Data []byte
}

// Dataset is a lazy handle to one dataset entry.
//
// The handle carries only the descriptor; chunk payloads are read from the
// source, decompressed and verified on demand. Handles remain valid until the
// reader is closed and are safe for concurrent use.
type Dataset struct {
	r     *Reader
	desc  *section.DatasetDesc
	codec compress.Codec
	path  string
}

// Path returns the full slash-separated path of the dataset.
func (d *Dataset) Path() string {
	return d.path
}

// Type returns the element type of the dataset.
func (d *Dataset) Type() format.DataType {
	return d.desc.Type
}

// Compression returns the per-chunk compression of the dataset.
func (d *Dataset) Compression() format.CompressionType {
	return d.desc.Compression
}

// Dims returns the logical dimensions of the dataset, outermost first.
// A movie dataset is typically [frames, height, width].
func (d *Dataset) Dims() []uint64 {
	dims := make([]uint64, len(d.desc.Dims))
	copy(dims, d.desc.Dims)

	return dims
}

// NumChunks returns the number of stored chunks.
func (d *Dataset) NumChunks() int {
	return len(d.desc.Chunks)
}

// NumElements returns the total number of elements, the product of all dims.
func (d *Dataset) NumElements() uint64 {
	return d.desc.ElemCount()
}

// ByteSize returns the total decompressed byte size of the dataset.
func (d *Dataset) ByteSize() uint64 {
	return d.desc.ByteSize()
}

// ChunkAt reads, decompresses and verifies the i-th chunk.
//
// Returns:
//   - Chunk: The verified chunk payload
//   - error: A plain error for an out-of-range index, errs.ErrReaderClosed
//     after Close, or CorruptDataError naming the dataset and chunk index
//     when the stored bytes fail decompression, size or checksum checks
func (d *Dataset) ChunkAt(i int) (Chunk, error) {
	if i < 0 || i >= len(d.desc.Chunks) {
		return Chunk{}, fmt.Errorf("chunk index %d out of range [0, %d) for dataset %q",
			i, len(d.desc.Chunks), d.path)
	}
	if d.r.closed {
		return Chunk{}, fmt.Errorf("%w: dataset %q", errs.ErrReaderClosed, d.path)
	}

	ref := &d.desc.Chunks[i]

	stored := make([]byte, ref.StoredSize)
	n, err := d.r.src.ReadAt(stored, int64(ref.Offset)) //nolint: gosec
	if n < len(stored) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return Chunk{}, d.corruptErr(i, fmt.Sprintf("short chunk read: %v", err), err)
	}

	data, err := d.codec.Decompress(stored)
	if err != nil {
		return Chunk{}, d.corruptErr(i, fmt.Sprintf("decompression failed: %v", err), err)
	}

	if len(data) != int(ref.RawSize) {
		return Chunk{}, d.corruptErr(i,
			fmt.Sprintf("decompressed to %d bytes, descriptor records %d", len(data), ref.RawSize), nil)
	}

	// The checksum covers the decompressed bytes, so one comparison catches
	// both storage corruption and a decoder that produced wrong output.
	if sum := hash.Sum64(data); sum != ref.Checksum {
		return Chunk{}, d.corruptErr(i,
			fmt.Sprintf("checksum 0x%016x does not match stored 0x%016x", sum, ref.Checksum),
			errs.ErrChecksumMismatch)
	}

	return Chunk{Index: i, Data: data}, nil
}

// Chunks iterates the dataset's chunks in storage order.
//
// Each step reads, decompresses and verifies one chunk. A failed step yields
// the zero chunk with a CorruptDataError and ends the sequence; chunks
// already yielded remain valid. Re-ranging the sequence restarts at chunk 0,
// and ChunkAt allows resuming from an arbitrary index.
//
//	for chunk, err := range ds.Chunks() {
//	    if err != nil {
//	        return err
//	    }
//	    process(chunk.Data)
//	}
func (d *Dataset) Chunks() iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for i := range d.desc.Chunks {
			chunk, err := d.ChunkAt(i)
			if err != nil {
				yield(Chunk{Index: i}, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// ReadAll reads every chunk and concatenates the decompressed payloads into
// one contiguous buffer of ByteSize bytes.
func (d *Dataset) ReadAll() ([]byte, error) {
	if len(d.desc.Chunks) == 1 {
		chunk, err := d.ChunkAt(0)
		if err != nil {
			return nil, err
		}

		return chunk.Data, nil
	}

	out := make([]byte, 0, d.desc.ByteSize())
	for chunk, err := range d.Chunks() {
		if err != nil {
			return nil, err
		}
		out = append(out, chunk.Data...)
	}

	return out, nil
}

// Uint16s reads the whole dataset as 16-bit unsigned samples, the element
// type of camera frame data.
//
// Returns:
//   - []uint16: All elements in storage order
//   - error: errs.ErrInvalidDataType when the dataset does not hold Uint16
//     elements, otherwise the first chunk read failure
func (d *Dataset) Uint16s() ([]uint16, error) {
	if d.desc.Type != format.TypeUint16 {
		return nil, fmt.Errorf("%w: dataset %q holds %s elements, not Uint16",
			errs.ErrInvalidDataType, d.path, d.desc.Type)
	}

	data, err := d.ReadAll()
	if err != nil {
		return nil, err
	}

	return d.decodeUint16s(data), nil
}

// Uint16sAt reads chunk i as 16-bit unsigned samples. Chunk boundaries
// always fall between elements, so per-chunk decoding never splits a value.
//
// Returns:
//   - []uint16: The chunk's elements in storage order
//   - error: errs.ErrInvalidDataType for a non-Uint16 dataset, otherwise
//     whatever ChunkAt reports
func (d *Dataset) Uint16sAt(i int) ([]uint16, error) {
	if d.desc.Type != format.TypeUint16 {
		return nil, fmt.Errorf("%w: dataset %q holds %s elements, not Uint16",
			errs.ErrInvalidDataType, d.path, d.desc.Type)
	}

	chunk, err := d.ChunkAt(i)
	if err != nil {
		return nil, err
	}

	return d.decodeUint16s(chunk.Data), nil
}

func (d *Dataset) decodeUint16s(data []byte) []uint16 {
	if len(data) == 0 {
		return nil
	}

	if endian.CompareNativeEndian(d.r.engine) {
		// Zero-copy conversion: chunk reads return fresh buffers nothing else
		// aliases, and even-size allocations are at least 2-byte aligned.
		return unsafe.Slice((*uint16)(unsafe.Pointer(&data[0])), len(data)/2)
	}

	vals := make([]uint16, len(data)/2)
	for i := range vals {
		vals[i] = d.r.engine.Uint16(data[i*2:])
	}

	return vals
}

func (d *Dataset) corruptErr(chunk int, reason string, cause error) *errs.CorruptDataError {
	return &errs.CorruptDataError{
		Path:    d.r.origin,
		Dataset: d.path,
		Chunk:   chunk,
		Reason:  reason,
		Err:     cause,
	}
}
