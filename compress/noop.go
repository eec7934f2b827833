package compress

// NoOpCompressor provides a no-operation codec that passes data through
// without compression.
//
// This codec is used for:
//   - Datasets whose chunks are already dense (raw camera frames often
//     compress poorly and are cheaper to store as-is)
//   - The attribute heap default, where payloads are too small to benefit
//   - Baseline measurements in benchmarks
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress bypasses compression and returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
// Callers should not modify the input data after calling this method if they
// plan to use the returned slice.
//
// Parameters:
//   - data: Input data (returned as-is)
//
// Returns:
//   - []byte: Same slice as input data
//   - error: Always nil
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress bypasses decompression and returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
//
// Parameters:
//   - data: Input data (returned as-is)
//
// Returns:
//   - []byte: Same slice as input data
//   - error: Always nil
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
