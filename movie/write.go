package movie

import (
	"fmt"
	"slices"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
	"github.com/arloliu/mpfile/internal/options"
)

// DefaultChunkFrames is the number of frames stored per dataset chunk.
const DefaultChunkFrames = 16

// WriteOption configures Write.
type WriteOption = options.Option[*writeConfig]

type writeConfig struct {
	deltaEncode bool
	compression format.CompressionType
	chunkFrames int
}

func newWriteConfig() *writeConfig {
	return &writeConfig{
		compression: format.CompressionZstd,
		chunkFrames: DefaultChunkFrames,
	}
}

// WithDeltaEncoding stores frames as per-pixel differences and writes the
// keyframe dataset and codec attribute alongside them.
func WithDeltaEncoding() WriteOption {
	return options.NoError(func(cfg *writeConfig) {
		cfg.deltaEncode = true
	})
}

// WithCompression selects the chunk compression of the frame and keyframe
// datasets. The default is Zstd.
func WithCompression(compression format.CompressionType) WriteOption {
	return options.NoError(func(cfg *writeConfig) {
		cfg.compression = compression
	})
}

// WithChunkFrames sets how many frames each stored chunk holds. The
// default is DefaultChunkFrames.
func WithChunkFrames(n int) WriteOption {
	return options.New(func(cfg *writeConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d frames per chunk", errs.ErrInvalidChunkSize, n)
		}
		cfg.chunkFrames = n

		return nil
	})
}

// Write stores frames as the container's movie group: the frame dataset,
// plus the keyframe dataset and codec attribute when delta encoding is
// enabled. Chunks are sized in whole frames so streaming readers cross
// chunk boundaries only between frames.
//
// Parameters:
//   - w: container writer to add the movie to
//   - frames: pixel values, count x height x width in row-major order
//   - height, width: frame shape in pixels
//   - opts: WithDeltaEncoding, WithCompression, WithChunkFrames
//
// Returns:
//   - error: ErrInvalidDimensions for a non-positive shape,
//     ErrEmptyDataset for no frames, ErrDataSizeMismatch when len(frames)
//     is not a whole number of frames
func Write(w *container.Writer, frames []uint16, height, width int, opts ...WriteOption) error {
	cfg := newWriteConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}

	if height <= 0 || width <= 0 {
		return fmt.Errorf("%w: frame shape %dx%d", errs.ErrInvalidDimensions, height, width)
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: %q", errs.ErrEmptyDataset, framePath)
	}

	size := height * width
	if len(frames)%size != 0 {
		return fmt.Errorf("%w: %d values is not a whole number of %dx%d frames",
			errs.ErrDataSizeMismatch, len(frames), height, width)
	}

	count := len(frames) / size
	dims := []uint64{uint64(count), uint64(height), uint64(width)} //nolint: gosec
	dsOpts := []container.DatasetOption{
		container.WithCompression(cfg.compression),
		container.WithChunkSize(cfg.chunkFrames * size * 2),
	}

	if !cfg.deltaEncode {
		return w.PutUint16s(framePath, dims, frames, dsOpts...)
	}

	stored := slices.Clone(frames)
	encodeFrames(stored, size)
	if err := w.PutUint16s(framePath, dims, stored, dsOpts...); err != nil {
		return err
	}

	// First and last raw frame; readers check the reconstruction against
	// the final one.
	key := make([]uint16, 0, 2*size)
	key = append(key, frames[:size]...)
	key = append(key, frames[len(frames)-size:]...)
	kfDims := []uint64{2, uint64(height), uint64(width)} //nolint: gosec
	if err := w.PutUint16s(keyframePath, kfDims, key, container.WithCompression(cfg.compression)); err != nil {
		return err
	}

	return w.PutString(codecPath, codecDelta)
}
