package compress

import (
	"fmt"
	"testing"

	"github.com/arloliu/mpfile/format"
)

// generateBenchmarkData creates chunk-sized payloads with the patterns seen
// in containers: raw camera frames, delta-encoded frames, and attribute text.
func generateBenchmarkData(size int, kind string) []byte {
	data := make([]byte, size)

	switch kind {
	case "delta_frame":
		// Delta-encoded frames are mostly zeros with sparse small diffs.
		for i := 0; i < len(data); i += 89 {
			data[i] = byte(i % 5)
		}
	case "raw_frame":
		// Little-endian uint16 samples around a baseline with shot noise.
		for i := 0; i+1 < len(data); i += 2 {
			v := uint16(2048 + (i%13)*7)
			data[i] = byte(v)
			data[i+1] = byte(v >> 8)
		}
	default:
		// Incompressible filler.
		for i := range data {
			data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
		}
	}

	return data
}

func benchSizes() []int {
	return []int{
		8 * 1024,   // small attribute heap
		64 * 1024,  // default chunk
		256 * 1024, // large chunk
	}
}

func BenchmarkAllCodecs_Compress(b *testing.B) {
	kinds := []string{"delta_frame", "raw_frame", "incompressible"}

	for codecName, codec := range getAllCodecs() {
		b.Run(codecName, func(b *testing.B) {
			for _, size := range benchSizes() {
				for _, kind := range kinds {
					b.Run(fmt.Sprintf("%dKB_%s", size/1024, kind), func(b *testing.B) {
						data := generateBenchmarkData(size, kind)

						b.ResetTimer()
						b.ReportAllocs()
						b.SetBytes(int64(len(data)))

						for b.Loop() {
							_, err := codec.Compress(data)
							if err != nil {
								b.Fatal(err)
							}
						}
					})
				}
			}
		})
	}
}

func BenchmarkAllCodecs_Decompress(b *testing.B) {
	kinds := []string{"delta_frame", "raw_frame", "incompressible"}

	for codecName, codec := range getAllCodecs() {
		b.Run(codecName, func(b *testing.B) {
			for _, size := range benchSizes() {
				for _, kind := range kinds {
					b.Run(fmt.Sprintf("%dKB_%s", size/1024, kind), func(b *testing.B) {
						data := generateBenchmarkData(size, kind)
						compressed, err := codec.Compress(data)
						if err != nil {
							b.Fatal(err)
						}

						b.ResetTimer()
						b.ReportAllocs()
						b.SetBytes(int64(len(data)))

						for b.Loop() {
							_, err := codec.Decompress(compressed)
							if err != nil {
								b.Fatal(err)
							}
						}
					})
				}
			}
		})
	}
}

// BenchmarkCodecComparison_Chunk compares codecs on a default-size chunk,
// reporting compression ratio alongside throughput.
func BenchmarkCodecComparison_Chunk(b *testing.B) {
	const size = 64 * 1024
	data := generateBenchmarkData(size, "delta_frame")

	codecs := []struct {
		name string
		typ  format.CompressionType
	}{
		{"NoOp", format.CompressionNone},
		{"LZ4", format.CompressionLZ4},
		{"S2", format.CompressionS2},
		{"Zstd", format.CompressionZstd},
	}

	for _, codec := range codecs {
		c, _ := CreateCodec(codec.typ, "bench")
		compressed, _ := c.Compress(data)

		b.Run(codec.name, func(b *testing.B) {
			b.ReportMetric(float64(len(compressed))/float64(size)*100, "ratio%")
			b.ReportAllocs()
			b.SetBytes(int64(size))
			b.ResetTimer()

			for b.Loop() {
				out, err := c.Compress(data)
				if err != nil {
					b.Fatal(err)
				}
				_, err = c.Decompress(out)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkZstdDecompress_Sequential simulates reading a whole movie dataset:
// decoding many chunks back to back (pool reuse scenario).
func BenchmarkZstdDecompress_Sequential(b *testing.B) {
	const chunkSize = 64 * 1024
	data := generateBenchmarkData(chunkSize, "delta_frame")
	compressor := NewZstdCompressor()
	compressed, _ := compressor.Compress(data)

	b.Run("128chunks", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(compressed)))
		b.ResetTimer()

		for b.Loop() {
			for range 128 {
				_, _ = compressor.Decompress(compressed)
			}
		}
	})
}

// BenchmarkZstdDecompress_Parallel tests pool behavior under concurrent
// extraction load.
func BenchmarkZstdDecompress_Parallel(b *testing.B) {
	const size = 64 * 1024
	data := generateBenchmarkData(size, "raw_frame")
	compressor := NewZstdCompressor()
	compressed, _ := compressor.Compress(data)

	b.ReportAllocs()
	b.SetBytes(int64(len(compressed)))
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = compressor.Decompress(compressed)
		}
	})
}

// BenchmarkLZ4Compress_Parallel tests LZ4 pool behavior under concurrent load.
func BenchmarkLZ4Compress_Parallel(b *testing.B) {
	const size = 64 * 1024
	data := generateBenchmarkData(size, "raw_frame")
	compressor := NewLZ4Compressor()

	b.ReportAllocs()
	b.SetBytes(int64(size))
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = compressor.Compress(data)
		}
	})
}
