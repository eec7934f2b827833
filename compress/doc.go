// Package compress provides compression and decompression codecs for container
// payloads: dataset chunks and the attribute heap.
//
// Compression is applied per dataset (every chunk of a dataset shares one
// codec, recorded in its descriptor) and optionally to the attribute heap as a
// whole (recorded in the container header). Decompression happens transparently
// during reads; callers never see compressed bytes.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Codecs are stateless values; CreateCodec builds one per configuration and
// GetCodec hands out shared built-in instances for the read path.
//
// # Supported Algorithms
//
// **NoOp** (format.CompressionNone): passes data through untouched. The
// default for datasets whose chunks are already dense (raw camera frames
// often compress poorly).
//
// **Zstandard** (format.CompressionZstd): best ratio, moderate speed. Two
// implementations share the ZstdCompressor type: a pure-Go one
// (klauspost/compress/zstd, pooled encoders and decoders, the default) and a
// cgo one (valyala/gozstd) selected by building with the `gozstd` tag.
//
// **S2** (format.CompressionS2): snappy-compatible format with better
// ratios; fast on both paths. A good default for delta-encoded movie frames,
// which are mostly small values.
//
// **LZ4** (format.CompressionLZ4): block format, very fast decompression,
// moderate ratio. Suits read-heavy workloads where files are scanned often.
//
// # Algorithm Selection Guide
//
// | Payload                   | Recommended | Reason                        |
// |---------------------------|-------------|-------------------------------|
// | Raw movie frames          | None or LZ4 | dense data, read speed        |
// | Delta-encoded movie frames| S2 or Zstd  | small values compress well    |
// | Attribute heap            | None        | tiny, not worth the overhead  |
// | Archival containers       | Zstd        | storage cost dominates        |
//
// # Error Handling
//
// Compress errors are rare (allocation failures, oversized input). Decompress
// errors are the interesting ones: corrupted chunk bytes fail here before the
// checksum is even consulted, and the container layer wraps them into its
// corrupt-data error kind. A decompression that "succeeds" with wrong output
// is caught by the chunk checksum instead.
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use; the zstd and LZ4
// codecs pool their internal encoder state.
package compress
