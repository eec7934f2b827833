// Package container provides reading and writing of mass photometry
// acquisition containers in the MPB binary format.
//
// This package is the primary interface for working with .mp files. It exposes
// a Reader for random access to the attributes and datasets stored in a
// container, and a Writer for producing new containers, typically used by
// tests and conversion tooling.
//
// # Core Types
//
// **Reader**: Random access to a parsed container
//   - Open: Opens a container file from disk
//   - OpenFrom: Parses a container from any io.ReaderAt
//   - OpenBytes: Parses a container held in memory
//
// **Writer**: Builds a container in memory
//   - NewWriter: Creates a writer with configurable byte order and compression
//   - Finish: Assembles the final byte stream
//   - WriteFile: Assembles and writes the stream to disk
//
// **Dataset**: Lazy handle to N-dimensional array data
//   - Chunks: Iterates stored chunks in order, decompressing and verifying each
//   - ReadAll: Concatenates every chunk into one contiguous buffer
//
// **RawAttribute**: A decoded attribute value with its stored type preserved
//
// # Reading Workflow
//
//	r, err := container.Open("sample.mp")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	// Attribute lookup returns the stored value without coercion.
//	attr, err := r.Attr("movie/time_created")
//
//	// Datasets decompress lazily, one chunk at a time.
//	ds, err := r.Dataset("movie/frame")
//	for chunk, err := range ds.Chunks() {
//	    if err != nil {
//	        return err
//	    }
//	    process(chunk.Data)
//	}
//
// # Writing Workflow
//
//	w, err := container.NewWriter(container.WithAttrCompression(format.CompressionZstd))
//	w.PutString("instrument/model", "Refeyn TwoMP")
//	w.PutInt("format_version_number", 3)
//	w.PutDataset("movie/frame", format.TypeUint16, []uint64{100, 40, 30}, frameBytes,
//	    container.WithCompression(format.CompressionLZ4),
//	)
//	data, err := w.Finish()
//
// Intermediate group entries are created automatically: PutString above
// records a "instrument" group before the "instrument/model" attribute.
//
// # Error Handling
//
// Failures are classified by kind sentinels from the errs package:
//   - errs.ErrNotFound: The file path could not be opened
//   - errs.ErrFormat: The byte stream is not a well-formed container
//   - errs.ErrCorruptData: Stored bytes failed decompression or checksum verification
//   - errs.ErrMissingKey: The requested attribute or dataset path does not exist
//
// Use errors.Is to classify and errors.As to recover the typed detail:
//
//	var cerr *errs.CorruptDataError
//	if errors.As(err, &cerr) {
//	    log.Printf("chunk %d of %s is damaged", cerr.Chunk, cerr.Dataset)
//	}
//
// # Thread Safety
//
// **Reader**: Safe for concurrent use after Open returns. Close must not race
// with in-flight reads.
//
// **Writer**: Not thread-safe. Use one writer per goroutine.
//
// **Dataset**: Safe for concurrent use; each chunk read is independent.
package container
