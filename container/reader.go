package container

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/arloliu/mpfile/compress"
	"github.com/arloliu/mpfile/endian"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
	"github.com/arloliu/mpfile/internal/encoding"
	"github.com/arloliu/mpfile/internal/hash"
	"github.com/arloliu/mpfile/internal/options"
	"github.com/arloliu/mpfile/section"
)

// Reader provides random access to the entries of one parsed container.
//
// Open parses the header, path table, catalog, attribute heap and dataset
// descriptors up front; attribute values are decoded eagerly so lookups never
// touch the source again. Dataset chunk payloads stay on the source and are
// read lazily through Dataset.
//
// A Reader is safe for concurrent use by multiple goroutines once Open
// returns. Close must not be called concurrently with in-flight reads.
type Reader struct {
	src    io.ReaderAt
	closer io.Closer
	size   int64
	origin string

	header section.Header
	engine endian.EndianEngine

	// paths, entries, values and descs are parallel slices in catalog
	// (first-touch storage) order. values[i] is nil unless entry i is an
	// attribute; descs[i] is nil unless entry i is a dataset.
	paths   []string
	entries []section.Entry
	values  []any
	descs   []*section.DatasetDesc
	byPath  map[string]int

	closed bool
}

// Open opens and parses the container file at path.
//
// Parameters:
//   - path: Filesystem path of the container file
//   - opts: Optional open-time settings, e.g. WithoutHashVerification()
//
// Returns:
//   - *Reader: The parsed container, owning the underlying file handle
//   - error: NotFoundError if the file cannot be opened or stat'ed,
//     FormatError if the byte stream is not a well-formed container,
//     CorruptDataError if the attribute heap fails decompression
//
// The file handle is released on every error path; callers only need to
// Close the reader on success.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errs.NotFoundError{Path: path, Err: err}
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &errs.NotFoundError{Path: path, Err: err}
	}

	r, err := openReader(f, st.Size(), path, opts)
	if err != nil {
		f.Close()
		return nil, err
	}

	r.closer = f

	return r, nil
}

// OpenFrom parses a container from an arbitrary random-access source.
//
// The reader takes ownership of src: when src implements io.Closer it is
// closed by Reader.Close, and also on every error path inside OpenFrom
// itself.
//
// Parameters:
//   - src: Random-access source holding the container bytes
//   - size: Total size of the container in bytes
//   - opts: Optional open-time settings
func OpenFrom(src io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	r, err := openReader(src, size, "", opts)
	if err != nil {
		if c, ok := src.(io.Closer); ok {
			c.Close()
		}

		return nil, err
	}

	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}

	return r, nil
}

// OpenBytes parses a container held entirely in memory.
// The reader aliases data; the caller must not modify it while reading.
func OpenBytes(data []byte, opts ...Option) (*Reader, error) {
	return openReader(bytes.NewReader(data), int64(len(data)), "", opts)
}

// formatErr wraps a structural parse failure into a FormatError carrying the
// container origin and the byte offset of the violation.
func formatErr(origin string, offset int64, cause error) *errs.FormatError {
	return &errs.FormatError{Path: origin, Reason: cause.Error(), Offset: offset, Err: cause}
}

func openReader(src io.ReaderAt, size int64, origin string, opts []Option) (*Reader, error) {
	cfg := newReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	var hdrBuf [section.HeaderSize]byte
	n, err := src.ReadAt(hdrBuf[:], 0)
	if n < section.HeaderSize {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		cause := fmt.Errorf("%w: read %d of %d header bytes (%v)", errs.ErrInvalidHeaderSize, n, section.HeaderSize, err)

		return nil, formatErr(origin, 0, cause)
	}

	header, err := section.ParseHeader(hdrBuf[:], size)
	if err != nil {
		return nil, formatErr(origin, 0, err)
	}

	r := &Reader{
		src:    src,
		size:   size,
		origin: origin,
		header: header,
		engine: header.Flag.GetEndianEngine(),
	}

	if err := r.parseNames(); err != nil {
		return nil, err
	}
	if err := r.parseCatalog(cfg); err != nil {
		return nil, err
	}
	if err := r.parseAttrHeap(); err != nil {
		return nil, err
	}
	if err := r.parseDescriptors(); err != nil {
		return nil, err
	}

	return r, nil
}

// readSection reads the [offset, offset+length) byte range of the source.
// The header's offset validation already bounded every section extent by the
// container size, so a short read here means the source lied about its size.
func (r *Reader) readSection(offset, length uint64, what string) ([]byte, error) {
	buf := make([]byte, length)
	n, err := r.src.ReadAt(buf, int64(offset)) //nolint: gosec
	if n < len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		cause := fmt.Errorf("reading %s: %w", what, err)

		return nil, formatErr(r.origin, int64(offset), cause) //nolint: gosec
	}

	return buf, nil
}

// parseNames decodes the path table and cross-checks it against the header's
// entry count and the section extent.
func (r *Reader) parseNames() error {
	start := r.header.NamesOffset
	buf, err := r.readSection(start, r.header.CatalogOffset-start, "path table")
	if err != nil {
		return err
	}

	paths, consumed, err := encoding.DecodePaths(buf, r.engine)
	if err != nil {
		return formatErr(r.origin, int64(start), err) //nolint: gosec
	}
	if len(paths) != int(r.header.EntryCount) {
		cause := fmt.Errorf("%w: path table has %d paths, header records %d entries",
			errs.ErrInvalidPathCount, len(paths), r.header.EntryCount)

		return formatErr(r.origin, int64(start), cause) //nolint: gosec
	}
	if consumed != len(buf) {
		cause := fmt.Errorf("%w: %d trailing bytes after %d paths",
			errs.ErrInvalidPathPayload, len(buf)-consumed, len(paths))

		return formatErr(r.origin, int64(start), cause) //nolint: gosec
	}

	r.paths = paths

	return nil
}

// parseCatalog decodes and validates every catalog entry, builds the path
// index, and verifies the stored path hashes unless disabled.
func (r *Reader) parseCatalog(cfg *readerConfig) error {
	start := r.header.CatalogOffset
	count := int(r.header.EntryCount)

	// The header already proved the catalog extent is exactly count entries.
	buf, err := r.readSection(start, uint64(count)*section.EntrySize, "catalog")
	if err != nil {
		return err
	}

	entries := make([]section.Entry, count)
	pathIDs := make([]uint64, count)
	byPath := make(map[string]int, count)

	for i := range count {
		entryOffset := int64(start) + int64(i)*section.EntrySize //nolint: gosec

		entry, err := section.ParseEntry(buf[i*section.EntrySize:(i+1)*section.EntrySize], r.engine)
		if err != nil {
			return formatErr(r.origin, entryOffset, err)
		}

		path := r.paths[i]
		if err := encoding.ValidatePath(path); err != nil {
			return formatErr(r.origin, entryOffset, err)
		}
		if _, dup := byPath[path]; dup {
			return formatErr(r.origin, entryOffset, fmt.Errorf("%w: %q", errs.ErrDuplicatePath, path))
		}

		entries[i] = entry
		pathIDs[i] = entry.PathHash
		byPath[path] = i
	}

	if cfg.verifyHashes {
		if err := encoding.VerifyPathHashes(r.paths, pathIDs, hash.ID); err != nil {
			return formatErr(r.origin, int64(start), err) //nolint: gosec
		}
	}

	r.entries = entries
	r.byPath = byPath

	return nil
}

// parseAttrHeap decompresses the attribute heap and eagerly decodes every
// attribute value, so later lookups are pure map hits that outlive Close.
func (r *Reader) parseAttrHeap() error {
	start := r.header.AttrHeapOffset
	stored, err := r.readSection(start, r.header.DescOffset-start, "attribute heap")
	if err != nil {
		return err
	}

	codec, err := compress.GetCodec(r.header.Flag.GetAttrCompression())
	if err != nil {
		// Unreachable: flag validation already checked the codec.
		return formatErr(r.origin, 0, err)
	}

	heap, err := codec.Decompress(stored)
	if err != nil {
		return &errs.CorruptDataError{
			Path:   r.origin,
			Chunk:  -1,
			Reason: fmt.Sprintf("attribute heap decompression failed: %v", err),
			Err:    err,
		}
	}

	r.values = make([]any, len(r.entries))

	for i := range r.entries {
		entry := &r.entries[i]
		if entry.Kind != format.KindAttribute {
			continue
		}

		end := entry.Offset + entry.Length
		if end < entry.Offset || end > uint64(len(heap)) {
			cause := fmt.Errorf("%w: attribute %q spans [%d, %d) of a %d byte heap",
				errs.ErrInvalidAttrPayload, r.paths[i], entry.Offset, end, len(heap))

			return formatErr(r.origin, int64(start), cause) //nolint: gosec
		}

		value, err := decodeAttrValue(entry, heap[entry.Offset:end], r.engine)
		if err != nil {
			cause := fmt.Errorf("attribute %q: %w", r.paths[i], err)

			return formatErr(r.origin, int64(start), cause) //nolint: gosec
		}

		r.values[i] = value
	}

	return nil
}

// parseDescriptors decodes every dataset descriptor and bounds-checks each
// chunk reference against the data region, so chunk reads can trust their
// offsets.
func (r *Reader) parseDescriptors() error {
	start := r.header.DescOffset
	extent := r.header.DataOffset - start

	buf, err := r.readSection(start, extent, "dataset descriptors")
	if err != nil {
		return err
	}

	r.descs = make([]*section.DatasetDesc, len(r.entries))

	for i := range r.entries {
		entry := &r.entries[i]
		if entry.Kind != format.KindDataset {
			continue
		}

		end := entry.Offset + entry.Length
		if end < entry.Offset || end > extent {
			cause := fmt.Errorf("%w: dataset %q descriptor spans [%d, %d) of a %d byte section",
				errs.ErrInvalidDescriptor, r.paths[i], entry.Offset, end, extent)

			return formatErr(r.origin, int64(start), cause) //nolint: gosec
		}

		descOffset := int64(start) + int64(entry.Offset) //nolint: gosec

		desc, err := section.ParseDatasetDesc(buf[entry.Offset:end], r.engine)
		if err != nil {
			cause := fmt.Errorf("dataset %q: %w", r.paths[i], err)

			return formatErr(r.origin, descOffset, cause)
		}

		if desc.Type != entry.Type {
			cause := fmt.Errorf("%w: dataset %q descriptor type %s does not match catalog type %s",
				errs.ErrInvalidDescriptor, r.paths[i], desc.Type, entry.Type)

			return formatErr(r.origin, descOffset, cause)
		}

		for j := range desc.Chunks {
			ref := &desc.Chunks[j]
			chunkEnd := ref.Offset + uint64(ref.StoredSize)
			if ref.Offset < r.header.DataOffset || chunkEnd < ref.Offset || chunkEnd > uint64(r.size) {
				cause := fmt.Errorf("%w: dataset %q chunk %d spans [%d, %d) outside the data region [%d, %d)",
					errs.ErrInvalidChunkRef, r.paths[i], j, ref.Offset, chunkEnd, r.header.DataOffset, r.size)

				return formatErr(r.origin, descOffset, cause)
			}
		}

		r.descs[i] = &desc
	}

	return nil
}

// ListGroups returns the names of all top-level entries in catalog storage
// order. The order is exactly the order the entries were first recorded by
// the writer; it is never re-sorted.
func (r *Reader) ListGroups() []string {
	groups := make([]string, 0, 8)
	for _, path := range r.paths {
		if !strings.Contains(path, "/") {
			groups = append(groups, path)
		}
	}

	return groups
}

// Entries iterates over every catalog entry in storage order.
func (r *Reader) Entries() iter.Seq[EntryInfo] {
	return func(yield func(EntryInfo) bool) {
		for i := range r.entries {
			info := EntryInfo{
				Path:    r.paths[i],
				Kind:    r.entries[i].Kind,
				Type:    r.entries[i].Type,
				IsArray: r.entries[i].IsArray(),
			}
			if !yield(info) {
				return
			}
		}
	}
}

// Attr returns the attribute stored at path, exactly as stored.
//
// No type coercion is applied: an Int64 attribute surfaces as int64 even when
// the caller expects a float64. Schema-aware conversion lives a layer above.
//
// Returns:
//   - RawAttribute: The decoded attribute
//   - error: MissingKeyError when path is absent or names a group or dataset
//
// Attribute values are decoded at open time, so Attr keeps working after
// Close.
func (r *Reader) Attr(path string) (RawAttribute, error) {
	idx, ok := r.byPath[path]
	if !ok || r.entries[idx].Kind != format.KindAttribute {
		return RawAttribute{}, &errs.MissingKeyError{Path: r.origin, Key: path}
	}

	return r.attrAt(idx), nil
}

// Attrs iterates over every attribute in storage order.
// Consumers that must not drop unknown keys, like the metadata extras sweep,
// rely on this order being the writer's first-touch order.
func (r *Reader) Attrs() iter.Seq[RawAttribute] {
	return func(yield func(RawAttribute) bool) {
		for i := range r.entries {
			if r.entries[i].Kind != format.KindAttribute {
				continue
			}
			if !yield(r.attrAt(i)) {
				return
			}
		}
	}
}

func (r *Reader) attrAt(idx int) RawAttribute {
	entry := &r.entries[idx]

	return RawAttribute{
		Path:    r.paths[idx],
		Type:    entry.Type,
		IsArray: entry.IsArray(),
		Value:   r.values[idx],
	}
}

// Dataset returns a lazy handle to the dataset stored at path.
//
// Returns:
//   - *Dataset: Handle exposing dims, type and the chunk sequence
//   - error: MissingKeyError when path is absent or names a group or attribute
//
// No chunk data is read until the handle's Chunks, ChunkAt, ReadAll or
// Uint16s methods are called.
func (r *Reader) Dataset(path string) (*Dataset, error) {
	idx, ok := r.byPath[path]
	if !ok || r.entries[idx].Kind != format.KindDataset {
		return nil, &errs.MissingKeyError{Path: r.origin, Key: path}
	}

	desc := r.descs[idx]

	codec, err := compress.GetCodec(desc.Compression)
	if err != nil {
		// Unreachable: descriptor validation already checked the codec.
		return nil, formatErr(r.origin, -1, err)
	}

	return &Dataset{r: r, path: path, desc: desc, codec: codec}, nil
}

// NumEntries returns the number of catalog entries in the container.
func (r *Reader) NumEntries() int {
	return len(r.entries)
}

// CreatedAt returns the container creation time recorded in the header.
func (r *Reader) CreatedAt() time.Time {
	return r.header.CreatedAtTime()
}

// Origin returns the filesystem path this reader was opened from, or an empty
// string for in-memory and io.ReaderAt sources.
func (r *Reader) Origin() string {
	return r.origin
}

// Close releases the underlying source.
//
// Close is idempotent: the first call closes the source and returns its
// error, every later call returns nil without touching the source. Attribute
// lookups keep working after Close; only chunk reads fail with
// errs.ErrReaderClosed.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.src = nil

	if r.closer != nil {
		c := r.closer
		r.closer = nil

		return c.Close()
	}

	return nil
}
