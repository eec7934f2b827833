package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{Path: "sample.mp", Err: fs.ErrNotExist})

	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, fs.ErrNotExist, "cause should stay reachable through Unwrap")
	require.NotErrorIs(t, err, ErrFormat)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "sample.mp", nf.Path)
}

func TestFormatError(t *testing.T) {
	t.Run("With offset", func(t *testing.T) {
		err := error(&FormatError{Path: "bad.mp", Reason: "invalid container signature", Offset: 0, Err: ErrInvalidSignature})

		require.ErrorIs(t, err, ErrFormat)
		require.ErrorIs(t, err, ErrInvalidSignature)
		require.Contains(t, err.Error(), "bad.mp")
		require.Contains(t, err.Error(), "offset 0")
	})

	t.Run("Without offset", func(t *testing.T) {
		err := error(&FormatError{Reason: "unsupported format version", Offset: -1, Err: ErrUnsupportedVersion})

		require.ErrorIs(t, err, ErrFormat)
		require.NotContains(t, err.Error(), "offset")
		require.Contains(t, err.Error(), "container", "empty path should fall back to a generic label")
	})
}

func TestCorruptDataError(t *testing.T) {
	err := error(&CorruptDataError{
		Path:    "sample.mp",
		Dataset: "movie/frame",
		Chunk:   3,
		Reason:  "chunk checksum mismatch",
		Err:     ErrChecksumMismatch,
	})

	require.ErrorIs(t, err, ErrCorruptData)
	require.ErrorIs(t, err, ErrChecksumMismatch)
	require.Contains(t, err.Error(), `dataset "movie/frame" chunk 3`)

	var cd *CorruptDataError
	require.ErrorAs(t, err, &cd)
	require.Equal(t, 3, cd.Chunk)
}

func TestMissingKeyError(t *testing.T) {
	err := error(&MissingKeyError{Path: "sample.mp", Key: "movie/time_created"})

	require.ErrorIs(t, err, ErrMissingKey)
	require.NotErrorIs(t, err, ErrSchema)
	require.Contains(t, err.Error(), `key "movie/time_created" not found`)
}

func TestSchemaError(t *testing.T) {
	err := error(&SchemaError{
		Path:   "sample.mp",
		Field:  "framerate",
		Key:    "movie/configuration/acq_camera/frame_rate",
		Reason: "expected Float64, got String",
	})

	require.ErrorIs(t, err, ErrSchema)
	require.Contains(t, err.Error(), `field "framerate"`)
	require.Contains(t, err.Error(), "expected Float64, got String")

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "framerate", se.Field)
}

func TestKindsStayDistinct(t *testing.T) {
	kinds := []error{ErrNotFound, ErrFormat, ErrCorruptData, ErrMissingKey, ErrSchema}
	for i, a := range kinds {
		for j, b := range kinds {
			if i == j {
				continue
			}
			require.NotErrorIs(t, a, b)
		}
	}
}

func TestWrappedThroughFmt(t *testing.T) {
	// Kinds must survive another fmt.Errorf %w layer, which is how the
	// metadata batch wraps per-file failures.
	inner := &CorruptDataError{Path: "b.mp", Reason: "zstd decompression failed", Chunk: -1}
	err := fmt.Errorf("extract b.mp: %w", inner)

	require.ErrorIs(t, err, ErrCorruptData)

	var cd *CorruptDataError
	require.True(t, errors.As(err, &cd))
	require.Equal(t, "b.mp", cd.Path)
}
