package movie

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeltaCodec_Inverse(t *testing.T) {
	// 3 frames of 3 pixels with wraparound in both directions.
	pix := []uint16{
		10, 65535, 0, // frame 0, stored raw
		5, 2, 65530, // frame 1
		0, 0, 0, // frame 2
	}

	enc := slices.Clone(pix)
	encodeFrames(enc, 3)

	require.Equal(t, pix[:3], enc[:3], "frame 0 must stay raw")
	require.Equal(t, []uint16{65531, 3, 65530}, enc[3:6])
	require.Equal(t, []uint16{65531, 65534, 6}, enc[6:9])

	dec := slices.Clone(enc)
	decodeFrames(dec, 3)
	require.Equal(t, pix, dec)
}

func TestDeltaCodec_SingleFrame(t *testing.T) {
	pix := []uint16{7, 8, 9, 10}

	enc := slices.Clone(pix)
	encodeFrames(enc, 4)
	require.Equal(t, pix, enc)

	decodeFrames(enc, 4)
	require.Equal(t, pix, enc)
}

func TestStd(t *testing.T) {
	require.Zero(t, std(nil))
	require.Zero(t, std([]uint16{5, 5, 5}))
	require.InDelta(t, 2.0, std([]uint16{0, 4}), 1e-12)
	require.InDelta(t, 0.5, std([]uint16{1, 2, 1, 2, 1, 2, 1, 2}), 1e-12)
}
