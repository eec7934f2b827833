package container

import (
	"fmt"
	"math"
	"os"
	"slices"
	"time"
	"unsafe"

	"github.com/arloliu/mpfile/compress"
	"github.com/arloliu/mpfile/endian"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
	"github.com/arloliu/mpfile/internal/encoding"
	"github.com/arloliu/mpfile/internal/hash"
	"github.com/arloliu/mpfile/internal/options"
	"github.com/arloliu/mpfile/internal/pool"
	"github.com/arloliu/mpfile/section"
)

// initialEntryCapacity is the initial capacity of the catalog entry slice.
// Instrument files typically carry a few dozen attributes.
const initialEntryCapacity = 32

// pendingDataset holds one dataset's descriptor and compressed chunk payloads
// between PutDataset and Finish. Chunk offsets are assigned in Finish once
// the preceding sections have a known size.
type pendingDataset struct {
	entryIdx int
	desc     section.DatasetDesc
	chunks   [][]byte
}

// Writer builds a container in memory, recording entries in first-touch
// order.
//
// The catalog order of the finished container is exactly the order of Put
// calls, with intermediate group entries created at the position of the first
// path that needs them. A Writer is not safe for concurrent use.
type Writer struct {
	header    *section.Header
	engine    endian.EndianEngine
	attrCodec compress.Codec

	paths    []string
	entries  []section.Entry
	byPath   map[string]int
	heap     *pool.ByteBuffer
	datasets []pendingDataset

	finished bool
}

// NewWriter creates a container writer.
//
// Parameters:
//   - opts: Optional settings: WithLittleEndian (default), WithBigEndian,
//     WithAttrCompression (default Zstd), WithCreatedAt (default now)
//
// Returns:
//   - *Writer: A writer ready for Put calls
//   - error: An error when an option carries an invalid value
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		header:  section.NewHeader(time.Now()),
		paths:   make([]string, 0, initialEntryCapacity),
		entries: make([]section.Entry, 0, initialEntryCapacity),
		byPath:  make(map[string]int, initialEntryCapacity),
	}
	w.engine = w.header.Flag.GetEndianEngine()

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(w.header.Flag.GetAttrCompression(), "attribute heap")
	if err != nil {
		return nil, err
	}
	w.attrCodec = codec
	w.heap = pool.GetChunkBuffer()

	return w, nil
}

// setEndianess sets the endianness option and refreshes the cached engine.
func (w *Writer) setEndianess(endiness endianness) {
	switch endiness {
	case littleEndianOpt:
		w.header.Flag.WithLittleEndian()
	case bigEndianOpt:
		w.header.Flag.WithBigEndian()
	default:
		w.header.Flag.WithLittleEndian()
	}

	w.engine = w.header.Flag.GetEndianEngine()
}

// setAttrCompression sets the attribute heap compression type.
func (w *Writer) setAttrCompression(comp format.CompressionType) error {
	switch comp {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
		w.header.Flag.SetAttrCompression(comp)
		return nil
	default:
		return fmt.Errorf("invalid attribute compression: %v", comp)
	}
}

// PutGroup records a group entry at path, creating missing ancestors.
//
// Recording a path that already exists as a group is a no-op, so callers can
// require a group without tracking what they already created. Reuse of a path
// holding an attribute or dataset returns ErrDuplicatePath.
func (w *Writer) PutGroup(path string) error {
	if w.finished {
		return errs.ErrWriterFinished
	}
	if err := encoding.ValidatePath(path); err != nil {
		return err
	}

	if idx, ok := w.byPath[path]; ok {
		if w.entries[idx].Kind == format.KindGroup {
			return nil
		}

		return fmt.Errorf("%w: %q already holds a %s entry", errs.ErrDuplicatePath, path, w.entries[idx].Kind)
	}

	if err := w.ensureAncestors(path); err != nil {
		return err
	}
	w.appendEntry(path, section.Entry{PathHash: hash.ID(path), Kind: format.KindGroup})

	return nil
}

// PutInt records a scalar Int64 attribute at path.
func (w *Writer) PutInt(path string, value int64) error {
	return w.putAttr(path, format.TypeInt64, false, 1, func() {
		var b [8]byte
		w.engine.PutUint64(b[:], uint64(value)) //nolint: gosec
		w.heap.MustWrite(b[:])
	})
}

// PutFloat records a scalar Float64 attribute at path.
func (w *Writer) PutFloat(path string, value float64) error {
	return w.putAttr(path, format.TypeFloat64, false, 1, func() {
		var b [8]byte
		w.engine.PutUint64(b[:], math.Float64bits(value))
		w.heap.MustWrite(b[:])
	})
}

// PutString records a String attribute at path. Empty strings are valid.
func (w *Writer) PutString(path string, value string) error {
	return w.putAttr(path, format.TypeString, false, 1, func() {
		w.heap.MustWrite([]byte(value))
	})
}

// PutBool records a scalar Bool attribute at path.
func (w *Writer) PutBool(path string, value bool) error {
	return w.putAttr(path, format.TypeBool, false, 1, func() {
		if value {
			w.heap.MustWrite([]byte{0x01})
		} else {
			w.heap.MustWrite([]byte{0x00})
		}
	})
}

// PutInts records an Int64 array attribute at path.
// The array must carry at least one element.
func (w *Writer) PutInts(path string, values []int64) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: empty array for %q", errs.ErrInvalidElemCount, path)
	}

	return w.putAttr(path, format.TypeInt64, true, len(values), func() {
		var b [8]byte
		for _, v := range values {
			w.engine.PutUint64(b[:], uint64(v)) //nolint: gosec
			w.heap.MustWrite(b[:])
		}
	})
}

// PutFloats records a Float64 array attribute at path.
// The array must carry at least one element.
func (w *Writer) PutFloats(path string, values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: empty array for %q", errs.ErrInvalidElemCount, path)
	}

	return w.putAttr(path, format.TypeFloat64, true, len(values), func() {
		var b [8]byte
		for _, v := range values {
			w.engine.PutUint64(b[:], math.Float64bits(v))
			w.heap.MustWrite(b[:])
		}
	})
}

// PutBools records a Bool array attribute at path.
// The array must carry at least one element.
func (w *Writer) PutBools(path string, values []bool) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: empty array for %q", errs.ErrInvalidElemCount, path)
	}

	return w.putAttr(path, format.TypeBool, true, len(values), func() {
		for _, v := range values {
			if v {
				w.heap.MustWrite([]byte{0x01})
			} else {
				w.heap.MustWrite([]byte{0x00})
			}
		}
	})
}

// putAttr validates the path, appends the attribute payload to the heap via
// encode, and records the catalog entry.
func (w *Writer) putAttr(path string, typ format.DataType, isArray bool, elemCount int, encode func()) error {
	if w.finished {
		return errs.ErrWriterFinished
	}
	if err := encoding.ValidatePath(path); err != nil {
		return err
	}
	if idx, ok := w.byPath[path]; ok {
		return fmt.Errorf("%w: %q already holds a %s entry", errs.ErrDuplicatePath, path, w.entries[idx].Kind)
	}
	if err := w.ensureAncestors(path); err != nil {
		return err
	}

	offset := uint64(w.heap.Len())
	encode()

	entry := section.Entry{
		PathHash:  hash.ID(path),
		Kind:      format.KindAttribute,
		Type:      typ,
		ElemCount: uint32(elemCount), //nolint: gosec
		Offset:    offset,
		Length:    uint64(w.heap.Len()) - offset,
	}
	entry.SetArray(isArray)
	w.appendEntry(path, entry)

	return nil
}

// PutDataset records an N-dimensional dataset at path.
//
// The element stream is split into chunks of at most the configured chunk
// size, each chunk checksummed over its raw bytes and then compressed
// independently, so readers can verify and decode chunks in isolation.
//
// Parameters:
//   - path: Full slash-separated dataset path
//   - typ: Element type; only fixed-width types are valid
//   - dims: Element count per dimension, outermost first, 1 to 4 dimensions
//   - data: The element bytes in storage order, len must be elemSize × Π dims
//   - opts: Optional per-dataset settings: WithCompression, WithChunkSize
//
// The data slice is read during PutDataset only for checksumming and
// compression; with CompressionNone the chunk payloads alias data, so the
// caller must keep it unchanged until Finish or WriteFile returns.
func (w *Writer) PutDataset(path string, typ format.DataType, dims []uint64, data []byte, opts ...DatasetOption) error {
	if w.finished {
		return errs.ErrWriterFinished
	}

	cfg := newDatasetConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}

	elemSize := typ.ElemSize()
	if elemSize == 0 {
		return fmt.Errorf("%w: dataset %q cannot hold %s elements", errs.ErrInvalidDataType, path, typ)
	}

	if len(dims) == 0 || len(dims) > section.MaxDims {
		return fmt.Errorf("%w: dataset %q has %d dimensions, want 1 to %d",
			errs.ErrInvalidDimensions, path, len(dims), section.MaxDims)
	}

	elemCount := uint64(1)
	for _, dim := range dims {
		if dim == 0 {
			return fmt.Errorf("%w: dataset %q has a zero dimension", errs.ErrInvalidDimensions, path)
		}
		if elemCount > math.MaxUint64/dim {
			return fmt.Errorf("%w: dataset %q dimension product overflows", errs.ErrInvalidDimensions, path)
		}
		elemCount *= dim
	}

	if len(data) == 0 {
		return fmt.Errorf("%w: %q", errs.ErrEmptyDataset, path)
	}
	if uint64(len(data)) != elemCount*uint64(elemSize) {
		return fmt.Errorf("%w: dataset %q has %d bytes, dims require %d",
			errs.ErrDataSizeMismatch, path, len(data), elemCount*uint64(elemSize))
	}

	if err := encoding.ValidatePath(path); err != nil {
		return err
	}
	if idx, ok := w.byPath[path]; ok {
		return fmt.Errorf("%w: %q already holds a %s entry", errs.ErrDuplicatePath, path, w.entries[idx].Kind)
	}
	if err := w.ensureAncestors(path); err != nil {
		return err
	}

	codec, err := compress.CreateCodec(cfg.compression, "dataset chunks")
	if err != nil {
		return err
	}

	// Chunk boundaries never split an element.
	chunkBytes := cfg.chunkSize - cfg.chunkSize%elemSize
	if chunkBytes <= 0 {
		chunkBytes = elemSize
	}

	numChunks := (len(data) + chunkBytes - 1) / chunkBytes
	refs := make([]section.ChunkRef, 0, numChunks)
	stored := make([][]byte, 0, numChunks)

	for start := 0; start < len(data); start += chunkBytes {
		end := min(start+chunkBytes, len(data))
		raw := data[start:end]

		payload, err := codec.Compress(raw)
		if err != nil {
			return fmt.Errorf("compress dataset %q: %w", path, err)
		}
		if uint64(len(payload)) > math.MaxUint32 {
			return fmt.Errorf("%w: dataset %q chunk compressed to %d bytes", errs.ErrInvalidChunkSize, path, len(payload))
		}

		refs = append(refs, section.ChunkRef{
			Checksum:   hash.Sum64(raw),
			StoredSize: uint32(len(payload)), //nolint: gosec
			RawSize:    uint32(len(raw)),     //nolint: gosec
		})
		stored = append(stored, payload)
	}

	w.appendEntry(path, section.Entry{
		PathHash: hash.ID(path),
		Kind:     format.KindDataset,
		Type:     typ,
	})
	w.datasets = append(w.datasets, pendingDataset{
		entryIdx: len(w.entries) - 1,
		desc: section.DatasetDesc{
			Compression: cfg.compression,
			Type:        typ,
			Dims:        slices.Clone(dims),
			Chunks:      refs,
		},
		chunks: stored,
	})

	return nil
}

// PutUint16s records values as a Uint16 dataset laid out in the writer's
// byte order. It is the produce-side counterpart of Dataset.Uint16s,
// intended for camera frame data.
//
// Parameters:
//   - path: Full slash-separated dataset path
//   - dims: Element count per dimension, outermost first
//   - values: The elements in storage order, len must be Π dims
//   - opts: Optional per-dataset settings: WithCompression, WithChunkSize
func (w *Writer) PutUint16s(path string, dims []uint64, values []uint16, opts ...DatasetOption) error {
	data := make([]byte, len(values)*2)
	if len(values) > 0 {
		if endian.CompareNativeEndian(w.engine) {
			copy(data, unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(data)))
		} else {
			for i, v := range values {
				w.engine.PutUint16(data[i*2:], v)
			}
		}
	}

	return w.PutDataset(path, format.TypeUint16, dims, data, opts...)
}

// ensureAncestors records a group entry for every missing ancestor of path,
// outermost first. An existing ancestor that is not a group fails the call.
func (w *Writer) ensureAncestors(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '/' {
			continue
		}

		ancestor := path[:i]
		if idx, ok := w.byPath[ancestor]; ok {
			if w.entries[idx].Kind != format.KindGroup {
				return fmt.Errorf("%w: ancestor %q of %q holds a %s entry",
					errs.ErrInvalidPath, ancestor, path, w.entries[idx].Kind)
			}
			continue
		}

		w.appendEntry(ancestor, section.Entry{PathHash: hash.ID(ancestor), Kind: format.KindGroup})
	}

	return nil
}

func (w *Writer) appendEntry(path string, entry section.Entry) {
	w.byPath[path] = len(w.entries)
	w.paths = append(w.paths, path)
	w.entries = append(w.entries, entry)
}

// NumEntries returns the number of catalog entries recorded so far, counting
// auto-created groups.
func (w *Writer) NumEntries() int {
	return len(w.entries)
}

// Finish assembles the container and returns its bytes.
//
// The writer becomes unusable afterwards: every later Put or Finish call
// returns ErrWriterFinished.
//
// Returns:
//   - []byte: The complete container byte stream
//   - error: ErrWriterFinished on reuse, ErrInvalidEntryCount for an empty
//     writer, or a path encoding or compression failure
func (w *Writer) Finish() ([]byte, error) {
	return w.finish(nil)
}

// finish assembles the container image. With a staging buffer the image is
// built inside buf and aliases it; without one a fresh slice is allocated
// for the caller to keep.
func (w *Writer) finish(buf *pool.ByteBuffer) ([]byte, error) {
	if w.finished {
		return nil, errs.ErrWriterFinished
	}
	w.finished = true
	defer w.release()

	if len(w.entries) == 0 {
		return nil, fmt.Errorf("%w: container has no entries", errs.ErrInvalidEntryCount)
	}
	if len(w.entries) > section.MaxEntryCount {
		return nil, fmt.Errorf("%w: %d entries exceeds maximum %d",
			errs.ErrInvalidEntryCount, len(w.entries), section.MaxEntryCount)
	}

	namesPayload, err := encoding.EncodePaths(w.paths, w.engine)
	if err != nil {
		return nil, err
	}

	heapPayload, err := w.attrCodec.Compress(w.heap.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress attribute heap: %w", err)
	}

	// First pass: lay out the descriptor section and point each dataset's
	// catalog entry at its descriptor record.
	descTotal := 0
	for i := range w.datasets {
		pd := &w.datasets[i]
		w.entries[pd.entryIdx].Offset = uint64(descTotal)
		w.entries[pd.entryIdx].Length = uint64(pd.desc.Size())
		descTotal += pd.desc.Size()
	}

	// Clone the header so a failed assembly never leaves the writer's own
	// header with half-updated offsets.
	header := *w.header
	header.EntryCount = uint32(len(w.entries)) //nolint: gosec
	header.NamesOffset = section.HeaderSize
	header.CatalogOffset = header.NamesOffset + uint64(len(namesPayload))
	header.AttrHeapOffset = header.CatalogOffset + uint64(len(w.entries))*section.EntrySize
	header.DescOffset = header.AttrHeapOffset + uint64(len(heapPayload))
	header.DataOffset = header.DescOffset + uint64(descTotal)

	// Second pass: assign absolute chunk offsets now that the data region
	// start is known. Chunk runs follow dataset insertion order.
	totalSize := header.DataOffset
	for i := range w.datasets {
		pd := &w.datasets[i]
		pd.desc.ChunkRunOffset = totalSize
		for j := range pd.desc.Chunks {
			pd.desc.Chunks[j].Offset = totalSize
			totalSize += uint64(pd.desc.Chunks[j].StoredSize)
		}
	}

	// Every byte of [0, totalSize) is covered by one of the section copies
	// below, so a recycled staging buffer needs no clearing.
	var data []byte
	if buf != nil {
		buf.Reset()
		buf.ExtendOrGrow(int(totalSize)) //nolint: gosec
		data = buf.Bytes()
	} else {
		data = make([]byte, totalSize)
	}

	copy(data[0:section.HeaderSize], header.Bytes())
	copy(data[header.NamesOffset:], namesPayload)

	offset := int(header.CatalogOffset) //nolint: gosec
	for i := range w.entries {
		offset = w.entries[i].WriteToSlice(data, offset, w.engine)
	}

	copy(data[header.AttrHeapOffset:], heapPayload)

	offset = int(header.DescOffset) //nolint: gosec
	for i := range w.datasets {
		record := w.datasets[i].desc.Bytes(w.engine)
		copy(data[offset:], record)
		offset += len(record)
	}

	offset = int(header.DataOffset) //nolint: gosec
	for i := range w.datasets {
		for _, chunk := range w.datasets[i].chunks {
			copy(data[offset:], chunk)
			offset += len(chunk)
		}
	}

	return data, nil
}

// WriteFile assembles the container and writes it to path with mode 0644.
//
// The image is staged in a pooled buffer and released after the write, so
// unlike Finish nothing escapes to the caller.
func (w *Writer) WriteFile(path string) error {
	buf := pool.GetAssemblyBuffer()
	defer pool.PutAssemblyBuffer(buf)

	data, err := w.finish(buf)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// release returns the heap buffer to the pool and drops the chunk payload
// references.
func (w *Writer) release() {
	if w.heap != nil {
		pool.PutChunkBuffer(w.heap)
		w.heap = nil
	}
	w.datasets = nil
}
