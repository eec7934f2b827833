package container

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
	"github.com/arloliu/mpfile/section"
)

// acquisitionPaths is the expected catalog order of buildAcquisition,
// including auto-created groups.
var acquisitionPaths = []string{
	"format_version_number",
	"movie",
	"movie/configuration",
	"movie/configuration/acq_camera",
	"movie/configuration/acq_camera/model",
	"movie/configuration/acq_camera/frame_rate",
	"movie/configuration/acq_camera/frame_binning",
	"movie/configuration/acq_camera/pixel_binning",
	"movie/configuration/acq_camera/exposure_time",
	"movie/device_serials",
	"movie/device_serials/InstrumentName",
	"movie/device_info",
	"movie/device_info/SoftwareVersion",
	"movie/time_created",
	"movie/burst_mode",
	"movie/roi",
	"movie/frame",
	"movie/keyframe",
}

// frameSamples builds a deterministic camera-like sample stream.
func frameSamples(count int) []uint16 {
	vals := make([]uint16, count)
	for i := range vals {
		vals[i] = uint16(2048 + (i%7)*13 + (i/20)%5) //nolint: gosec
	}

	return vals
}

func samplePayload(vals []uint16, order binary.ByteOrder) []byte {
	buf := make([]byte, len(vals)*2)
	for i, v := range vals {
		order.PutUint16(buf[i*2:], v)
	}

	return buf
}

// buildAcquisition writes a small but realistic acquisition container with
// little-endian payloads and returns its bytes.
func buildAcquisition(t *testing.T) []byte {
	t.Helper()

	w, err := NewWriter()
	require.NoError(t, err)

	require.NoError(t, w.PutInt("format_version_number", 3))
	require.NoError(t, w.PutString("movie/configuration/acq_camera/model", "MARS_CMOS"))
	require.NoError(t, w.PutFloat("movie/configuration/acq_camera/frame_rate", 993.93))
	require.NoError(t, w.PutInt("movie/configuration/acq_camera/frame_binning", 5))
	require.NoError(t, w.PutInt("movie/configuration/acq_camera/pixel_binning", 4))
	require.NoError(t, w.PutFloat("movie/configuration/acq_camera/exposure_time", 0.95))
	require.NoError(t, w.PutString("movie/device_serials/InstrumentName", "Refeyn TwoMP"))
	require.NoError(t, w.PutString("movie/device_info/SoftwareVersion", "2.5.0"))
	require.NoError(t, w.PutString("movie/time_created", "2023-06-21 14:03:11"))
	require.NoError(t, w.PutBool("movie/burst_mode", false))
	require.NoError(t, w.PutInts("movie/roi", []int64{0, 0, 40, 30}))

	frames := samplePayload(frameSamples(120), binary.LittleEndian)
	require.NoError(t, w.PutDataset("movie/frame", format.TypeUint16, []uint64{6, 4, 5}, frames,
		WithChunkSize(96), WithCompression(format.CompressionLZ4)))

	keyframes := samplePayload(frameSamples(40), binary.LittleEndian)
	require.NoError(t, w.PutDataset("movie/keyframe", format.TypeUint16, []uint64{2, 4, 5}, keyframes))

	data, err := w.Finish()
	require.NoError(t, err)

	return data
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.mp")

	require.NoError(t, os.WriteFile(path, buildAcquisition(t), 0o644))

	t.Run("Valid file", func(t *testing.T) {
		r, err := Open(path)
		require.NoError(t, err)
		defer r.Close()

		require.Equal(t, path, r.Origin())
		require.Equal(t, len(acquisitionPaths), r.NumEntries())
	})

	t.Run("Missing file", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.mp")

		_, err := Open(missing)
		require.ErrorIs(t, err, errs.ErrNotFound)

		var nfe *errs.NotFoundError
		require.ErrorAs(t, err, &nfe)
		require.Equal(t, missing, nfe.Path)
	})

	t.Run("Directory", func(t *testing.T) {
		_, err := Open(dir)
		require.Error(t, err)
	})
}

func TestOpenBytes_FormatErrors(t *testing.T) {
	valid := buildAcquisition(t)

	tests := []struct {
		name    string
		mutate  func(data []byte) []byte
		wantErr error
	}{
		{
			name:    "Truncated header",
			mutate:  func(data []byte) []byte { return data[:10] },
			wantErr: errs.ErrInvalidHeaderSize,
		},
		{
			name: "Stripped signature high bit",
			mutate: func(data []byte) []byte {
				data[0] &= 0x7F
				return data
			},
			wantErr: errs.ErrInvalidSignature,
		},
		{
			name: "Wrong magic number",
			mutate: func(data []byte) []byte {
				data[9] ^= 0xF0
				return data
			},
			wantErr: errs.ErrInvalidMagicNumber,
		},
		{
			name: "Unsupported version",
			mutate: func(data []byte) []byte {
				data[10] = 0x7F
				return data
			},
			wantErr: errs.ErrUnsupportedVersion,
		},
		{
			name: "Reserved flag bits",
			mutate: func(data []byte) []byte {
				data[8] |= 0x02
				return data
			},
			wantErr: errs.ErrInvalidHeaderFlags,
		},
		{
			name: "Zero entry count",
			mutate: func(data []byte) []byte {
				binary.LittleEndian.PutUint32(data[12:16], 0)
				return data
			},
			wantErr: errs.ErrInvalidEntryCount,
		},
		{
			name: "Container cut below data region",
			mutate: func(data []byte) []byte {
				return data[:100]
			},
			wantErr: errs.ErrInvalidSectionOffsets,
		},
		{
			name: "Truncated chunk data",
			mutate: func(data []byte) []byte {
				// The header still parses; the last chunk now reaches past
				// the end of the container.
				return data[:len(data)-1]
			},
			wantErr: errs.ErrInvalidChunkRef,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(bytes.Clone(valid))

			_, err := OpenBytes(data)
			require.ErrorIs(t, err, errs.ErrFormat)
			require.ErrorIs(t, err, tt.wantErr)

			var ferr *errs.FormatError
			require.ErrorAs(t, err, &ferr)
		})
	}
}

func TestOpenBytes_HashVerification(t *testing.T) {
	valid := buildAcquisition(t)

	// The path table begins right after the header: a 4-byte count, then a
	// 2-byte length prefix before the first path's bytes.
	firstPathByte := section.HeaderSize + 4 + 2
	require.Equal(t, byte('f'), valid[firstPathByte])

	damaged := bytes.Clone(valid)
	damaged[firstPathByte] = 'g'

	t.Run("Mismatch detected", func(t *testing.T) {
		_, err := OpenBytes(damaged)
		require.ErrorIs(t, err, errs.ErrFormat)
		require.ErrorIs(t, err, errs.ErrHashMismatch)
	})

	t.Run("Verification disabled", func(t *testing.T) {
		r, err := OpenBytes(damaged, WithoutHashVerification())
		require.NoError(t, err)
		defer r.Close()

		// Lookups go by the altered name, hashes are never consulted.
		attr, err := r.Attr("gormat_version_number")
		require.NoError(t, err)
		require.Equal(t, int64(3), attr.Value)
	})
}

func TestReader_ListGroups(t *testing.T) {
	r, err := OpenBytes(buildAcquisition(t))
	require.NoError(t, err)
	defer r.Close()

	// Top-level entries in first-touch storage order, never re-sorted.
	require.Equal(t, []string{"format_version_number", "movie"}, r.ListGroups())
}

func TestReader_Entries(t *testing.T) {
	r, err := OpenBytes(buildAcquisition(t))
	require.NoError(t, err)
	defer r.Close()

	var paths []string
	kinds := make(map[string]format.EntryKind, len(acquisitionPaths))
	for info := range r.Entries() {
		paths = append(paths, info.Path)
		kinds[info.Path] = info.Kind
	}

	require.Equal(t, acquisitionPaths, paths)
	require.Equal(t, format.KindAttribute, kinds["format_version_number"])
	require.Equal(t, format.KindGroup, kinds["movie"])
	require.Equal(t, format.KindGroup, kinds["movie/configuration/acq_camera"])
	require.Equal(t, format.KindAttribute, kinds["movie/roi"])
	require.Equal(t, format.KindDataset, kinds["movie/frame"])

	t.Run("Early break", func(t *testing.T) {
		count := 0
		for range r.Entries() {
			count++
			if count == 3 {
				break
			}
		}
		require.Equal(t, 3, count)
	})
}

func TestReader_Attr(t *testing.T) {
	r, err := OpenBytes(buildAcquisition(t))
	require.NoError(t, err)
	defer r.Close()

	t.Run("Stored types come back unchanged", func(t *testing.T) {
		attr, err := r.Attr("movie/configuration/acq_camera/frame_binning")
		require.NoError(t, err)
		require.Equal(t, format.TypeInt64, attr.Type)
		require.False(t, attr.IsArray)
		require.IsType(t, int64(0), attr.Value)
		require.Equal(t, int64(5), attr.Value)

		attr, err = r.Attr("movie/configuration/acq_camera/frame_rate")
		require.NoError(t, err)
		require.IsType(t, float64(0), attr.Value)
		require.InDelta(t, 993.93, attr.Value, 1e-9)

		attr, err = r.Attr("movie/configuration/acq_camera/model")
		require.NoError(t, err)
		require.Equal(t, "MARS_CMOS", attr.Value)

		attr, err = r.Attr("movie/burst_mode")
		require.NoError(t, err)
		require.Equal(t, false, attr.Value)
	})

	t.Run("Array attribute", func(t *testing.T) {
		attr, err := r.Attr("movie/roi")
		require.NoError(t, err)
		require.True(t, attr.IsArray)
		require.Equal(t, []int64{0, 0, 40, 30}, attr.Value)
	})

	t.Run("Missing key", func(t *testing.T) {
		_, err := r.Attr("movie/no_such_key")
		require.ErrorIs(t, err, errs.ErrMissingKey)

		var mke *errs.MissingKeyError
		require.ErrorAs(t, err, &mke)
		require.Equal(t, "movie/no_such_key", mke.Key)
	})

	t.Run("Group path is not an attribute", func(t *testing.T) {
		_, err := r.Attr("movie")
		require.ErrorIs(t, err, errs.ErrMissingKey)
	})

	t.Run("Dataset path is not an attribute", func(t *testing.T) {
		_, err := r.Attr("movie/frame")
		require.ErrorIs(t, err, errs.ErrMissingKey)
	})
}

func TestReader_Attrs(t *testing.T) {
	r, err := OpenBytes(buildAcquisition(t))
	require.NoError(t, err)
	defer r.Close()

	var paths []string
	for attr := range r.Attrs() {
		paths = append(paths, attr.Path)
	}

	// Attributes only, still in storage order.
	require.Equal(t, []string{
		"format_version_number",
		"movie/configuration/acq_camera/model",
		"movie/configuration/acq_camera/frame_rate",
		"movie/configuration/acq_camera/frame_binning",
		"movie/configuration/acq_camera/pixel_binning",
		"movie/configuration/acq_camera/exposure_time",
		"movie/device_serials/InstrumentName",
		"movie/device_info/SoftwareVersion",
		"movie/time_created",
		"movie/burst_mode",
		"movie/roi",
	}, paths)
}

func TestReader_Dataset(t *testing.T) {
	r, err := OpenBytes(buildAcquisition(t))
	require.NoError(t, err)
	defer r.Close()

	t.Run("Missing key", func(t *testing.T) {
		_, err := r.Dataset("movie/no_such_dataset")
		require.ErrorIs(t, err, errs.ErrMissingKey)
	})

	t.Run("Attribute path is not a dataset", func(t *testing.T) {
		_, err := r.Dataset("movie/roi")
		require.ErrorIs(t, err, errs.ErrMissingKey)
	})

	t.Run("Lookup succeeds", func(t *testing.T) {
		ds, err := r.Dataset("movie/frame")
		require.NoError(t, err)
		require.Equal(t, "movie/frame", ds.Path())
	})
}

func TestReader_Close(t *testing.T) {
	r, err := OpenBytes(buildAcquisition(t))
	require.NoError(t, err)

	ds, err := r.Dataset("movie/frame")
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	t.Run("Attributes survive Close", func(t *testing.T) {
		attr, err := r.Attr("format_version_number")
		require.NoError(t, err)
		require.Equal(t, int64(3), attr.Value)

		require.Equal(t, []string{"format_version_number", "movie"}, r.ListGroups())
	})

	t.Run("Chunk reads fail after Close", func(t *testing.T) {
		_, err := ds.ChunkAt(0)
		require.ErrorIs(t, err, errs.ErrReaderClosed)

		for _, err := range ds.Chunks() {
			require.ErrorIs(t, err, errs.ErrReaderClosed)
		}
	})
}

// countingCloser wraps an in-memory source and counts Close calls.
type countingCloser struct {
	*bytes.Reader
	closes int
}

func (c *countingCloser) Close() error {
	c.closes++
	return nil
}

func TestOpenFrom_SourceOwnership(t *testing.T) {
	valid := buildAcquisition(t)

	t.Run("Close closes the source once", func(t *testing.T) {
		src := &countingCloser{Reader: bytes.NewReader(valid)}

		r, err := OpenFrom(src, int64(len(valid)))
		require.NoError(t, err)

		require.NoError(t, r.Close())
		require.NoError(t, r.Close())
		require.Equal(t, 1, src.closes)
	})

	t.Run("Parse failure closes the source", func(t *testing.T) {
		damaged := bytes.Clone(valid)
		damaged[0] = 0x00
		src := &countingCloser{Reader: bytes.NewReader(damaged)}

		_, err := OpenFrom(src, int64(len(damaged)))
		require.ErrorIs(t, err, errs.ErrFormat)
		require.Equal(t, 1, src.closes)
	})

	t.Run("Plain ReaderAt needs no closer", func(t *testing.T) {
		r, err := OpenFrom(bytes.NewReader(valid), int64(len(valid)))
		require.NoError(t, err)
		require.NoError(t, r.Close())
	})
}

func TestReader_CreatedAt(t *testing.T) {
	created := time.Date(2023, 6, 21, 14, 3, 11, 123456000, time.UTC)

	w, err := NewWriter(WithCreatedAt(created))
	require.NoError(t, err)
	require.NoError(t, w.PutInt("format_version_number", 2))

	data, err := w.Finish()
	require.NoError(t, err)

	r, err := OpenBytes(data)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.CreatedAt().Equal(created), "got %v, want %v", r.CreatedAt(), created)
}

func TestReader_BigEndianRoundTrip(t *testing.T) {
	w, err := NewWriter(WithBigEndian(), WithAttrCompression(format.CompressionNone))
	require.NoError(t, err)

	require.NoError(t, w.PutInt("format_version_number", 2))
	require.NoError(t, w.PutFloat("configuration/Devices/AcqCam/FrameRate", 331.31))
	require.NoError(t, w.PutString("device_info/InstrumentName", "Refeyn OneMP"))
	require.NoError(t, w.PutInts("roi", []int64{-7, 1 << 40}))

	vals := frameSamples(40)
	require.NoError(t, w.PutDataset("frame", format.TypeUint16, []uint64{2, 4, 5},
		samplePayload(vals, binary.BigEndian)))

	data, err := w.Finish()
	require.NoError(t, err)

	r, err := OpenBytes(data)
	require.NoError(t, err)
	defer r.Close()

	attr, err := r.Attr("format_version_number")
	require.NoError(t, err)
	require.Equal(t, int64(2), attr.Value)

	attr, err = r.Attr("configuration/Devices/AcqCam/FrameRate")
	require.NoError(t, err)
	require.InDelta(t, 331.31, attr.Value, 1e-9)

	attr, err = r.Attr("device_info/InstrumentName")
	require.NoError(t, err)
	require.Equal(t, "Refeyn OneMP", attr.Value)

	attr, err = r.Attr("roi")
	require.NoError(t, err)
	require.Equal(t, []int64{-7, 1 << 40}, attr.Value)

	ds, err := r.Dataset("frame")
	require.NoError(t, err)

	got, err := ds.Uint16s()
	require.NoError(t, err)
	require.Equal(t, vals, got)
}
