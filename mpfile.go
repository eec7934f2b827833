// Package mpfile reads mass photometry acquisition files in the .mp
// container format.
//
// An .mp file is a single-file hierarchy of groups, attributes and chunked
// datasets produced by the acquisition software. This module splits the
// work into three layers: the container package parses the raw hierarchy,
// the metadata package maps version-specific attribute layouts onto one
// canonical record, and the movie package decodes the camera frame stack.
//
// # Core Features
//
//   - Zero-copy container parsing with xxHash64 chunk verification
//   - Per-chunk compression (None, Zstd, S2, LZ4) decoded transparently
//   - Lazy, restartable dataset iteration via iter.Seq2
//   - Versioned metadata schemas mapped onto one canonical Record
//   - Provenance tracking: every field knows if it was measured or defaulted
//   - Delta-encoded movie reconstruction with keyframe verification
//   - Concurrent batch extraction with bounded workers
//
// # Basic Usage
//
// Extracting acquisition metadata from a single file:
//
//	import "github.com/arloliu/mpfile"
//
//	rec, err := mpfile.ExtractFile("sample_001.mp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s @ %.1f Hz, %d x %d px\n",
//	    rec.Instrument, rec.EffectiveFrameRate(), rec.ImageHeight, rec.ImageWidth)
//
// Scanning a directory of acquisitions concurrently:
//
//	for res := range mpfile.ExtractAll(ctx, paths, metadata.WithConcurrency(8)) {
//	    if res.Err != nil {
//	        log.Printf("%s: %v", res.Path, res.Err)
//	        continue
//	    }
//	    fmt.Println(res.Path, res.Record.AcquiredAt)
//	}
//
// Walking the raw hierarchy directly:
//
//	r, err := mpfile.Open("sample_001.mp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	for _, group := range r.ListGroups() {
//	    fmt.Println(group)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the
// container, metadata and movie packages, covering the most common use
// cases. For fine-grained control, open-time options or streaming frame
// access, use those packages directly.
package mpfile

import (
	"context"
	"iter"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/internal/hash"
	"github.com/arloliu/mpfile/metadata"
	"github.com/arloliu/mpfile/movie"
)

// DefaultChunkSize is the target uncompressed chunk payload size used by
// the container writer when no explicit chunk size is configured.
const DefaultChunkSize = container.DefaultChunkSize

// Open opens an .mp container file for reading.
//
// The returned reader gives access to the raw hierarchy: groups,
// attributes and datasets. Attributes are decoded eagerly at open;
// dataset chunks are read lazily on demand.
//
// Parameters:
//   - path: Filesystem path of the container
//   - opts: Optional open-time settings (see container.Option)
//
// Returns:
//   - *container.Reader: The opened reader; callers must Close it.
//   - error: NotFoundError when the file does not exist, FormatError when
//     it is not a valid container.
//
// Example:
//
//	r, err := mpfile.Open("sample_001.mp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	attr, _ := r.Attr("movie/configuration/acq_camera/frame_rate")
//	fmt.Println(attr.Value)
func Open(path string, opts ...container.Option) (*container.Reader, error) {
	return container.Open(path, opts...)
}

// OpenBytes parses an .mp container held entirely in memory.
//
// The reader aliases data; the caller must not modify the slice while
// reading. Useful for containers fetched over the network or embedded in
// tests.
//
// Parameters:
//   - data: The raw container bytes
//   - opts: Optional open-time settings (see container.Option)
//
// Returns:
//   - *container.Reader: The opened reader.
//   - error: FormatError when data is not a valid container.
func OpenBytes(data []byte, opts ...container.Option) (*container.Reader, error) {
	return container.OpenBytes(data, opts...)
}

// ExtractFile opens path, extracts its acquisition metadata and closes it
// again.
//
// The returned record carries the canonical fields of every schema
// version, with coercion, documented defaults and provenance applied.
// Attributes outside the canonical schema are preserved in Record.Extras.
//
// Parameters:
//   - path: Filesystem path of the container
//
// Returns:
//   - *metadata.Record: The extracted metadata.
//   - error: NotFoundError, FormatError or SchemaError depending on where
//     extraction failed.
//
// Example:
//
//	rec, err := mpfile.ExtractFile("sample_001.mp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, field := range rec.DefaultedFields() {
//	    log.Printf("field %s fell back to its default", field)
//	}
func ExtractFile(path string) (*metadata.Record, error) {
	r, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return metadata.Extract(r)
}

// ExtractAll extracts metadata from many files concurrently.
//
// Files are processed by a bounded worker pool while results are yielded
// in input order, one Result per path. A failing file never stops the
// batch; its Result carries the error instead.
//
// Parameters:
//   - ctx: Cancels outstanding work when done
//   - paths: Container files to process
//   - opts: metadata.WithConcurrency, metadata.WithFileTimeout
//
// Returns:
//   - iter.Seq[metadata.Result]: One result per input path, in input
//     order. Breaking out of the loop cancels the remaining work.
//
// Example:
//
//	results := mpfile.ExtractAll(ctx, paths,
//	    metadata.WithConcurrency(8),
//	    metadata.WithFileTimeout(30*time.Second),
//	)
//	for res := range results {
//	    if res.Err != nil {
//	        log.Printf("%s: %v", res.Path, res.Err)
//	        continue
//	    }
//	    fmt.Println(res.Path, res.Record.Version)
//	}
func ExtractAll(ctx context.Context, paths []string, opts ...metadata.BatchOption) iter.Seq[metadata.Result] {
	return metadata.ExtractAll(ctx, paths, opts...)
}

// ReadFile opens path and decodes both the movie and the metadata in one
// call.
//
// Delta-encoded frame data is reconstructed and verified against the
// stored keyframe. For frame-level streaming without loading the whole
// movie, use movie.StreamFrom with an open reader instead.
//
// Parameters:
//   - path: Filesystem path of the container
//
// Returns:
//   - *movie.Movie: The decoded frame stack.
//   - *metadata.Record: The extracted metadata.
//   - error: The first error encountered; both results are nil on error.
//
// Example:
//
//	mov, rec, err := mpfile.ReadFile("sample_001.mp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d frames of %d x %d from %s\n",
//	    mov.FrameCount(), mov.Height(), mov.Width(), rec.Camera)
func ReadFile(path string) (*movie.Movie, *metadata.Record, error) {
	r, err := container.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = r.Close() }()

	rec, err := metadata.Extract(r)
	if err != nil {
		return nil, nil, err
	}

	mov, err := movie.ReadFrom(r)
	if err != nil {
		return nil, nil, err
	}

	return mov, rec, nil
}

// PathID converts an entry path to its 64-bit hash identifier.
//
// The container catalog stores the xxHash64 of every entry path, so
// callers that index many containers can pre-compute IDs once and compare
// against catalog hashes without re-hashing.
//
// The hash is deterministic across runs and platforms. Identical paths
// always map to identical IDs.
//
// Example:
//
//	frameID := mpfile.PathID("movie/frame")
func PathID(path string) uint64 {
	return hash.ID(path)
}
