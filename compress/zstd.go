package compress

// ZstdCompressor provides Zstandard compression for container payloads.
//
// This codec is designed for scenarios where compression ratio is more
// important than compression speed, making it ideal for:
//   - Archival containers kept for long retention periods
//   - Delta-encoded movie frames, which are mostly near-zero values
//   - Network transfer of acquisition files
//
// Two implementations back this type: the default pure-Go one
// (klauspost/compress/zstd, see zstd_pure.go) and a cgo one backed by
// valyala/gozstd, selected by building with the `gozstd` tag.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd codec instance
//
// Example:
//
//	codec := NewZstdCompressor()
//	compressed, err := codec.Compress(chunk)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
