package container

import (
	"fmt"
	"math"
	"time"

	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
	"github.com/arloliu/mpfile/internal/options"
)

// DefaultChunkSize is the target chunk payload size, in uncompressed bytes,
// used by PutDataset when no WithChunkSize option is given.
const DefaultChunkSize = 256 * 1024

// endianness represents the byte order configuration option.
type endianness uint8

const (
	littleEndianOpt endianness = iota
	bigEndianOpt    endianness = iota
)

// Option represents a functional option for configuring the Reader.
// This is a type alias for the generic Option interface specialized for readerConfig.
type Option = options.Option[*readerConfig]

// readerConfig holds the open-time settings of a Reader.
type readerConfig struct {
	verifyHashes bool
}

func newReaderConfig() *readerConfig {
	return &readerConfig{verifyHashes: true}
}

// WithoutHashVerification disables verification of the stored path hashes
// against the path table during open.
//
// Verification catches containers whose catalog was reordered or spliced
// without rewriting the hashes. Skipping it shaves a little open time for
// containers produced by a trusted writer.
func WithoutHashVerification() Option {
	return options.NoError(func(c *readerConfig) {
		c.verifyHashes = false
	})
}

// WriterOption represents a functional option for configuring the Writer.
// This is a type alias for the generic Option interface specialized for Writer.
type WriterOption = options.Option[*Writer]

// WithLittleEndian sets the writer to use little-endian byte order for
// multi-byte payload values. It is the default option.
func WithLittleEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.setEndianess(littleEndianOpt)
	})
}

// WithBigEndian sets the writer to use big-endian byte order for multi-byte
// payload values. It rarely needs to be used unless interoperability with
// big-endian systems is required.
func WithBigEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.setEndianess(bigEndianOpt)
	})
}

// WithAttrCompression sets the compression applied to the attribute heap as a
// whole. The default is format.CompressionZstd.
func WithAttrCompression(comp format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		return w.setAttrCompression(comp)
	})
}

// WithCreatedAt overrides the creation timestamp recorded in the container
// header. The default is the time NewWriter was called.
func WithCreatedAt(t time.Time) WriterOption {
	return options.NoError(func(w *Writer) {
		w.header.CreatedAt = t.UnixMicro()
	})
}

// DatasetOption represents a functional option for a single PutDataset call.
// This is a type alias for the generic Option interface specialized for datasetConfig.
type DatasetOption = options.Option[*datasetConfig]

// datasetConfig holds the per-dataset settings of a PutDataset call.
type datasetConfig struct {
	chunkSize   int
	compression format.CompressionType
}

func newDatasetConfig() *datasetConfig {
	return &datasetConfig{
		chunkSize:   DefaultChunkSize,
		compression: format.CompressionNone,
	}
}

// WithCompression sets the per-chunk compression for one dataset.
// The default is format.CompressionNone.
func WithCompression(comp format.CompressionType) DatasetOption {
	return options.New(func(c *datasetConfig) error {
		switch comp {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.compression = comp
			return nil
		default:
			return fmt.Errorf("invalid dataset compression: %v", comp)
		}
	})
}

// WithChunkSize sets the target uncompressed chunk payload size in bytes for
// one dataset. The effective size is rounded down to a whole number of
// elements, with a minimum of one element per chunk.
func WithChunkSize(size int) DatasetOption {
	return options.New(func(c *datasetConfig) error {
		if size <= 0 || uint64(size) > math.MaxUint32 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidChunkSize, size)
		}
		c.chunkSize = size

		return nil
	})
}
