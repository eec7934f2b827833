package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/errs"
)

func buildContainer(t *testing.T, put func(w *container.Writer)) *container.Reader {
	t.Helper()

	w, err := container.NewWriter()
	require.NoError(t, err)
	put(w)

	data, err := w.Finish()
	require.NoError(t, err)

	r, err := container.OpenBytes(data)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return r
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		put  func(w *container.Writer)
		want Version
	}{
		{
			name: "v3 with devices tree",
			put: func(w *container.Writer) {
				require.NoError(t, w.PutInt(VersionKey, 3))
				require.NoError(t, w.PutInt(v3DevicesKeys.ImageHeight, 30))
			},
			want: VersionV3Devices,
		},
		{
			name: "v3 without devices tree",
			put: func(w *container.Writer) {
				require.NoError(t, w.PutInt(VersionKey, 3))
				require.NoError(t, w.PutFloat(v3AcqCameraKeys.FrameRate, 993.93))
			},
			want: VersionV3AcqCamera,
		},
		{
			name: "explicit v2",
			put: func(w *container.Writer) {
				require.NoError(t, w.PutInt(VersionKey, 2))
			},
			want: VersionV2,
		},
		{
			name: "legacy file without marker",
			put: func(w *container.Writer) {
				require.NoError(t, w.PutString(v2Keys.AcquiredAt, "2019-03-01 09:00:00"))
			},
			want: VersionV2,
		},
		{
			name: "marker on a group is not an attribute",
			put: func(w *container.Writer) {
				require.NoError(t, w.PutGroup(VersionKey))
				require.NoError(t, w.PutInt("other", 1))
			},
			want: VersionV2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := buildContainer(t, tt.put)

			got, err := Detect(r)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_BadMarker(t *testing.T) {
	tests := []struct {
		name string
		put  func(w *container.Writer)
	}{
		{
			name: "unsupported version number",
			put: func(w *container.Writer) {
				require.NoError(t, w.PutInt(VersionKey, 7))
			},
		},
		{
			name: "marker stored as string",
			put: func(w *container.Writer) {
				require.NoError(t, w.PutString(VersionKey, "3"))
			},
		},
		{
			name: "marker stored as float",
			put: func(w *container.Writer) {
				require.NoError(t, w.PutFloat(VersionKey, 3.0))
			},
		},
		{
			name: "marker stored as array",
			put: func(w *container.Writer) {
				require.NoError(t, w.PutInts(VersionKey, []int64{3}))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := buildContainer(t, tt.put)

			got, err := Detect(r)
			require.ErrorIs(t, err, errs.ErrSchema)
			require.Equal(t, VersionUnknown, got)

			var schemaErr *errs.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			require.Equal(t, FieldFormatVersion, schemaErr.Field)
			require.Equal(t, VersionKey, schemaErr.Key)
		})
	}
}

func TestVersionString(t *testing.T) {
	require.Equal(t, "v2", VersionV2.String())
	require.Equal(t, "v3-devices", VersionV3Devices.String())
	require.Equal(t, "v3-acq-camera", VersionV3AcqCamera.String())
	require.Equal(t, "unknown", VersionUnknown.String())
}

func TestVersionKeys(t *testing.T) {
	t.Run("v2", func(t *testing.T) {
		ks := VersionV2.Keys()
		require.Equal(t, "configuration/Devices/AcqCam/FrameRate", ks.FrameRate)
		require.Equal(t, "configuration/Engines/AcqMovieEngine/FrameBinning", ks.FrameBinning)
		require.Equal(t, "time_created", ks.AcquiredAt)
		require.Equal(t, "frame", ks.FrameDataset)
		require.NotEmpty(t, ks.ImageHeight)
	})

	t.Run("v3 devices", func(t *testing.T) {
		ks := VersionV3Devices.Keys()
		require.Equal(t, "movie/configuration/Devices/AcqCam/SoftwareFrameBinning", ks.FrameBinning)
		require.Equal(t, "movie/device_info/InstrumentName", ks.Instrument)
		require.Equal(t, "movie/frame", ks.FrameDataset)
		require.Equal(t, "movie/configuration/Devices/AcqCam/Height", ks.ImageHeight)
		require.Equal(t, "movie/configuration/Devices/AcqCam/Width", ks.ImageWidth)
	})

	t.Run("v3 acq camera", func(t *testing.T) {
		ks := VersionV3AcqCamera.Keys()
		require.Equal(t, "movie/configuration/acq_camera/frame_rate", ks.FrameRate)
		require.Equal(t, "movie/device_serials/InstrumentName", ks.Instrument)
		require.Equal(t, "movie/keyframe", ks.KeyframeDataset)
		require.Empty(t, ks.ImageHeight)
		require.Empty(t, ks.ImageWidth)
	})

	t.Run("unknown version is empty", func(t *testing.T) {
		require.Equal(t, KeySet{}, VersionUnknown.Keys())
	})
}

func TestConsumedKeys(t *testing.T) {
	t.Run("includes discriminator", func(t *testing.T) {
		for _, v := range []Version{VersionV2, VersionV3Devices, VersionV3AcqCamera} {
			require.Contains(t, v.ConsumedKeys(), VersionKey, "version %s", v)
		}
	})

	t.Run("v3 devices claims shape attributes", func(t *testing.T) {
		consumed := VersionV3Devices.ConsumedKeys()
		require.Contains(t, consumed, v3DevicesKeys.ImageHeight)
		require.Contains(t, consumed, v3DevicesKeys.ImageWidth)
		require.Len(t, consumed, 11)
	})

	t.Run("v3 acq camera has no shape attributes", func(t *testing.T) {
		consumed := VersionV3AcqCamera.ConsumedKeys()
		require.Contains(t, consumed, v3AcqCameraKeys.Camera)
		require.NotContains(t, consumed, v3AcqCameraKeys.KeyframeDataset)
		require.Len(t, consumed, 9)
	})
}
